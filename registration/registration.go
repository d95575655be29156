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
// Package registration reads the frame of reference transformations of DICOM Spatial Registration
// objects.
package registration

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fvpolpeta/vtk-dicom/dicom"
	"github.com/sirupsen/logrus"
)

// SpatialRegistrationStorageUID is the SOP Class UID of Spatial Registration objects
const SpatialRegistrationStorageUID = "1.2.840.10008.5.1.4.1.1.66.1"

var (
	// ErrNotRegistration indicates that a data set is not a Spatial Registration object
	ErrNotRegistration = errors.New("not a spatial registration object")
	// ErrMissingSequence indicates that a sequence of the registration module is absent or empty
	ErrMissingSequence = errors.New("missing registration sequence")
	// ErrInvalidMatrix indicates a transformation matrix without exactly 16 values
	ErrInvalidMatrix = errors.New("invalid frame of reference transformation matrix")
)

// knownMatrixTypes are the defined terms of Frame of Reference Transformation Matrix Type (0070,030C)
var knownMatrixTypes = map[string]bool{
	"RIGID":       true,
	"RIGID_SCALE": true,
	"AFFINE":      true,
}

// Registration holds the transformations of a Spatial Registration object in the order they
// appear in the file.
type Registration struct {
	transforms []Matrix
}

// NumberOfTransforms returns the number of matrices found in the registration
func (r *Registration) NumberOfTransforms() int {
	return len(r.transforms)
}

// Transforms returns the matrices of the registration
func (r *Registration) Transforms() []Matrix {
	return append([]Matrix(nil), r.transforms...)
}

// NthTransform returns the i-th matrix of the registration
func (r *Registration) NthTransform(i int) (Matrix, bool) {
	if i < 0 || i >= len(r.transforms) {
		return Matrix{}, false
	}
	return r.transforms[i], true
}

// Transform returns the concatenation of all the matrices: each matrix is applied after the ones
// preceding it. A registration without matrices yields the identity.
func (r *Registration) Transform() Matrix {
	t := Identity()
	for _, m := range r.transforms {
		t = m.Mul(t)
	}
	return t
}

// Reader reads Spatial Registration files with a dicom.Parser.
type Reader struct {
	log  logrus.FieldLogger
	opts []dicom.ParseOption
}

// NewReader returns a Reader logging to log and parsing with opts.
func NewReader(log logrus.FieldLogger, opts ...dicom.ParseOption) *Reader {
	return &Reader{log: log, opts: opts}
}

var defaultReader = NewReader(logrus.StandardLogger())

// CanReadFile reports whether the named file is a Spatial Registration object. Parse errors are
// not logged.
func CanReadFile(name string) bool {
	return defaultReader.CanReadFile(name)
}

// ReadFile reads the named Spatial Registration file.
func ReadFile(name string) (*Registration, error) {
	return defaultReader.ReadFile(name)
}

// CanReadFile reports whether the named file is a Spatial Registration object. Parse errors are
// not logged.
func (r *Reader) CanReadFile(name string) bool {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	store := dicom.NewMetaData()
	p := dicom.NewParser(store, append(r.opts[:len(r.opts):len(r.opts)], dicom.WithLogger(quiet))...)
	// a damaged file may still carry its SOP Class UID
	_, _ = p.Update(name)

	ds, ok := store.DataSet(0)
	return ok && IsRegistration(ds)
}

// ReadFile reads the named Spatial Registration file.
func (r *Reader) ReadFile(name string) (*Registration, error) {
	store := dicom.NewMetaData()
	p := dicom.NewParser(store, append(r.opts[:len(r.opts):len(r.opts)], dicom.WithLogger(r.log))...)
	if _, err := p.Update(name); err != nil {
		return nil, err
	}

	ds, ok := store.DataSet(0)
	if !ok {
		ds = dicom.NewDataSet()
	}
	return FromDataSet(ds, r.log.WithField("file", name))
}

// IsRegistration reports whether the SOP Class UID of ds is Spatial Registration Storage.
func IsRegistration(ds *dicom.DataSet) bool {
	return sopClassUID(ds) == SpatialRegistrationStorageUID
}

func sopClassUID(ds *dicom.DataSet) string {
	elem, ok := ds.Get(dicom.SOPClassUIDTag)
	if !ok {
		return ""
	}
	uid, _ := elem.StringValue()
	return strings.TrimRight(uid, "\x00 ")
}

// FromDataSet extracts the registration matrices of ds. The Matrix Registration Sequence of every
// item of the Registration Sequence contributes its first item only.
func FromDataSet(ds *dicom.DataSet, log logrus.FieldLogger) (*Registration, error) {
	if sop := sopClassUID(ds); sop != SpatialRegistrationStorageUID {
		return nil, fmt.Errorf("%w: required SOP Class UID is %v, got %q",
			ErrNotRegistration, SpatialRegistrationStorageUID, sop)
	}
	if modality := stringValue(ds, dicom.ModalityTag); modality != "REG" {
		log.WithField("modality", modality).Warn(`expected modality "REG"`)
	}

	registrations, err := sequenceItems(ds, dicom.RegistrationSequenceTag)
	if err != nil {
		return nil, err
	}

	reg := &Registration{}
	for _, item := range registrations {
		matrixRegistrations, err := sequenceItems(item, dicom.MatrixRegistrationSequenceTag)
		if err != nil {
			return nil, err
		}
		matrices, err := sequenceItems(matrixRegistrations[0], dicom.MatrixSequenceTag)
		if err != nil {
			return nil, err
		}

		for _, m := range matrices {
			if matrixType := stringValue(m, dicom.FrameOfReferenceTransformationMatrixTypeTag); !knownMatrixTypes[matrixType] {
				log.WithField("type", matrixType).Warn("unrecognized matrix type")
			}
			matrix, err := matrixValue(m)
			if err != nil {
				return nil, err
			}
			reg.transforms = append(reg.transforms, matrix)
		}
	}
	return reg, nil
}

func sequenceItems(ds *dicom.DataSet, tag dicom.DataElementTag) ([]*dicom.DataSet, error) {
	elem, ok := ds.Get(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrMissingSequence, tag)
	}
	seq, err := elem.SequenceValue()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingSequence, err)
	}
	if len(seq.Items) == 0 {
		return nil, fmt.Errorf("%w: %v has no items", ErrMissingSequence, tag)
	}
	return seq.Items, nil
}

func stringValue(ds *dicom.DataSet, tag dicom.DataElementTag) string {
	elem, ok := ds.Get(tag)
	if !ok {
		return ""
	}
	s, _ := elem.StringValue()
	return s
}

func matrixValue(ds *dicom.DataSet) (Matrix, error) {
	elem, ok := ds.Get(dicom.FrameOfReferenceTransformationMatrixTag)
	if !ok {
		return Matrix{}, fmt.Errorf("%w: %v not found", ErrInvalidMatrix, dicom.FrameOfReferenceTransformationMatrixTag)
	}
	values, err := elem.FloatValues()
	if err != nil {
		return Matrix{}, fmt.Errorf("%w: %v", ErrInvalidMatrix, err)
	}
	if len(values) != 16 {
		return Matrix{}, fmt.Errorf("%w: got %d values, want 16", ErrInvalidMatrix, len(values))
	}

	var m Matrix
	copy(m[:], values)
	return m, nil
}
