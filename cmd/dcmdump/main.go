// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// dcmdump prints the metadata of DICOM files and the offset of their pixel data.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fvpolpeta/vtk-dicom/dicom"
	"github.com/fvpolpeta/vtk-dicom/registration"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "dcmdump: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("dcmdump", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: dcmdump [options] <file>...\n\n")
		fmt.Fprintf(stderr, "Print the metadata of DICOM files\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
	}

	bufferSize := flags.Int("buffer", dicom.DefaultBufferSize, "Read buffer size in bytes")
	verbose := flags.Bool("v", false, "Verbose output")
	dropGroupLengths := flags.Bool("drop-group-lengths", false, "Omit group length elements")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() < 1 {
		flags.Usage()
		return fmt.Errorf("no input files")
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	opts := []dicom.ParseOption{dicom.WithBufferSize(*bufferSize), dicom.WithLogger(log)}
	if *dropGroupLengths {
		opts = append(opts, dicom.DropGroupLengths)
	}

	names := flags.Args()
	store := dicom.NewMetaData()
	results, err := dicom.ParseFiles(context.Background(), names, store, opts...)
	if err != nil {
		return err
	}

	for i, name := range names {
		ds, ok := store.DataSet(i)
		if !ok {
			ds = dicom.NewDataSet()
		}
		dump(stdout, name, ds, results[i], log)
	}
	return nil
}

func dump(w io.Writer, name string, ds *dicom.DataSet, res dicom.Result, log logrus.FieldLogger) {
	fmt.Fprintf(w, "# %s\n", name)
	fmt.Fprintf(w, "# transfer syntax %s\n", res.TransferSyntaxUID)
	if s := ds.String(); s != "" {
		fmt.Fprintln(w, s)
	}

	if registration.IsRegistration(ds) {
		reg, err := registration.FromDataSet(ds, log.WithField("file", name))
		if err != nil {
			log.WithError(err).WithField("file", name).Warn("reading spatial registration")
		} else {
			fmt.Fprintf(w, "# registration with %d transforms\n%v\n", reg.NumberOfTransforms(), reg.Transform())
		}
	}

	switch {
	case !res.HasPixelData:
		fmt.Fprintf(w, "# no pixel data, end of stream at %d\n", res.FileOffset)
	case res.Deflated:
		fmt.Fprintf(w, "# pixel data at inflated offset %d\n", res.FileOffset)
	default:
		fmt.Fprintf(w, "# pixel data at offset %d\n", res.FileOffset)
	}
}
