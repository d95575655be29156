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

package dicom

import (
	"io"
	"os"
)

// ByteSource supplies the bytes of a DICOM stream from front to back. Read follows the io.Reader
// contract; a read returning 0 bytes together with io.EOF marks the end of the stream.
type ByteSource interface {
	io.Reader
	io.Closer
}

// OpenFile opens the named file as a ByteSource.
func OpenFile(name string) (ByteSource, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, &IOError{"opening file", err}
	}
	return f, nil
}

// NewReaderSource returns a ByteSource reading from r. Closing the source closes r if r is an
// io.Closer.
func NewReaderSource(r io.Reader) ByteSource {
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}
	return readerSource{r}
}

type readerSource struct {
	io.Reader
}

func (readerSource) Close() error {
	return nil
}
