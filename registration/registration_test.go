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
package registration

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/fvpolpeta/vtk-dicom/dicom"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func pad(s string, padding byte) []byte {
	b := []byte(s)
	if len(b)%2 == 1 {
		b = append(b, padding)
	}
	return b
}

// element encodes tag and value in implicit VR little endian
func element(tag dicom.DataElementTag, value []byte) []byte {
	b := make([]byte, 8, 8+len(value))
	binary.LittleEndian.PutUint16(b, tag.GroupNumber())
	binary.LittleEndian.PutUint16(b[2:], tag.ElementNumber())
	binary.LittleEndian.PutUint32(b[4:], uint32(len(value)))
	return append(b, value...)
}

func item(elements ...[]byte) []byte {
	return element(dicom.ItemTag, concat(elements...))
}

func sequence(tag dicom.DataElementTag, items ...[]byte) []byte {
	return element(tag, concat(items...))
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func explicitUI(tag dicom.DataElementTag, uid string) []byte {
	value := pad(uid, 0)
	b := make([]byte, 8)
	binary.LittleEndian.PutUint16(b, tag.GroupNumber())
	binary.LittleEndian.PutUint16(b[2:], tag.ElementNumber())
	copy(b[4:], "UI")
	binary.LittleEndian.PutUint16(b[6:], uint16(len(value)))
	return append(b, value...)
}

// file prefixes an implicit VR little endian data set with a preamble and a meta header
func file(dataSet ...[]byte) []byte {
	meta := explicitUI(dicom.TransferSyntaxUIDTag, dicom.ImplicitVRLittleEndianUID)
	return concat(make([]byte, 128), []byte("DICM"), meta, concat(dataSet...))
}

func truncate(b []byte, n int) []byte {
	return b[:len(b)-n]
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "reg.dcm")
	if err := os.WriteFile(name, data, 0o600); err != nil {
		t.Fatalf("writing %v: %v", name, err)
	}
	return name
}

func decimalStrings(m Matrix) []byte {
	values := make([]string, len(m))
	for i, v := range m {
		values[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return pad(strings.Join(values, "\\"), ' ')
}

func matrixItem(matrixType string, m []byte) []byte {
	return item(
		element(dicom.FrameOfReferenceTransformationMatrixTypeTag, pad(matrixType, ' ')),
		element(dicom.FrameOfReferenceTransformationMatrixTag, m),
	)
}

func registrationItem(matrices ...[]byte) []byte {
	return item(sequence(dicom.MatrixRegistrationSequenceTag,
		item(sequence(dicom.MatrixSequenceTag, matrices...)),
		// only the first item of the Matrix Registration Sequence is read
		item(sequence(dicom.MatrixSequenceTag, matrixItem("RIGID", decimalStrings(Identity())))),
	))
}

func header(sopClass, modality string) []byte {
	return concat(
		element(dicom.SOPClassUIDTag, pad(sopClass, 0)),
		element(dicom.ModalityTag, pad(modality, ' ')),
	)
}

func translation(x, y, z float64) Matrix {
	m := Identity()
	m[3], m[7], m[11] = x, y, z
	return m
}

func scale(s float64) Matrix {
	m := Identity()
	m[0], m[5], m[10] = s, s, s
	return m
}

func TestReader_ReadFile(t *testing.T) {
	m1, m2, m3 := translation(1, 0, 0), scale(2), translation(0, 5, 0)
	data := file(
		header(SpatialRegistrationStorageUID, "REG"),
		sequence(dicom.RegistrationSequenceTag,
			registrationItem(matrixItem("RIGID", decimalStrings(m1)), matrixItem("RIGID_SCALE", decimalStrings(m2))),
			registrationItem(matrixItem("AFFINE", decimalStrings(m3))),
		),
	)

	log, hook := test.NewNullLogger()
	reg, err := NewReader(log).ReadFile(writeFile(t, data))
	if err != nil {
		t.Fatalf("ReadFile(_) => %v", err)
	}

	if got := reg.NumberOfTransforms(); got != 3 {
		t.Fatalf("NumberOfTransforms() => %v, want 3", got)
	}
	for i, want := range []Matrix{m1, m2, m3} {
		if got, ok := reg.NthTransform(i); !ok || got != want {
			t.Fatalf("NthTransform(%v) => (%v, %v), want %v", i, got, ok, want)
		}
	}
	if _, ok := reg.NthTransform(3); ok {
		t.Fatalf("NthTransform(3) should not exist")
	}
	if got, want := reg.Transform().Apply([3]float64{}), [3]float64{2, 5, 0}; got != want {
		t.Fatalf("Transform().Apply(origin) => %v, want %v", got, want)
	}
	if len(hook.AllEntries()) != 0 {
		t.Fatalf("unexpected log entries: %v", hook.AllEntries())
	}
}

func TestReader_ReadFile_warnings(t *testing.T) {
	data := file(
		header(SpatialRegistrationStorageUID, "CT"),
		sequence(dicom.RegistrationSequenceTag,
			registrationItem(matrixItem("PERSPECTIVE", decimalStrings(Identity())))),
	)

	log, hook := test.NewNullLogger()
	reg, err := NewReader(log).ReadFile(writeFile(t, data))
	if err != nil {
		t.Fatalf("ReadFile(_) => %v", err)
	}
	if reg.NumberOfTransforms() != 1 || reg.Transform() != Identity() {
		t.Fatalf("ReadFile(_) => %v transforms, want the identity", reg.NumberOfTransforms())
	}

	var warnings []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings = append(warnings, e.Message)
		}
	}
	if len(warnings) != 2 {
		t.Fatalf("got warnings %q, want one for the modality and one for the matrix type", warnings)
	}
}

func TestReader_ReadFile_errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{
			"not a registration",
			file(header("1.2.840.10008.5.1.4.1.1.4", "MR")),
			ErrNotRegistration,
		},
		{
			"missing registration sequence",
			file(header(SpatialRegistrationStorageUID, "REG")),
			ErrMissingSequence,
		},
		{
			"missing matrix sequence",
			file(header(SpatialRegistrationStorageUID, "REG"),
				sequence(dicom.RegistrationSequenceTag, item(sequence(dicom.MatrixRegistrationSequenceTag, item())))),
			ErrMissingSequence,
		},
		{
			"matrix with 12 values",
			file(header(SpatialRegistrationStorageUID, "REG"),
				sequence(dicom.RegistrationSequenceTag,
					registrationItem(matrixItem("RIGID", pad("1\\0\\0\\0\\0\\1\\0\\0\\0\\0\\1\\0", ' '))))),
			ErrInvalidMatrix,
		},
		{
			"truncated file",
			truncate(file(header(SpatialRegistrationStorageUID, "REG")), 3),
			dicom.ErrTruncatedValue,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log, _ := test.NewNullLogger()
			if _, err := NewReader(log).ReadFile(writeFile(t, tc.data)); !errors.Is(err, tc.want) {
				t.Fatalf("ReadFile(_) => %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCanReadFile(t *testing.T) {
	reg := file(header(SpatialRegistrationStorageUID, "REG"))
	image := file(header("1.2.840.10008.5.1.4.1.1.4", "MR"))

	if !CanReadFile(writeFile(t, reg)) {
		t.Fatalf("CanReadFile(registration) => false, want true")
	}
	if CanReadFile(writeFile(t, image)) {
		t.Fatalf("CanReadFile(image) => true, want false")
	}
	if CanReadFile(filepath.Join(t.TempDir(), "missing.dcm")) {
		t.Fatalf("CanReadFile(missing file) => true, want false")
	}
}
