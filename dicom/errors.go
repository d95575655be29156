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
	"errors"
	"fmt"
)

// Kinds of parse failures. Errors returned by the Parser wrap one of these and can be tested with
// errors.Is.
var (
	// ErrMissingMagicMarker reports that the "DICM" marker was not found. It is never fatal, it is
	// only recorded on the Result.
	ErrMissingMagicMarker = errors.New("dicom: missing DICM magic marker")

	// ErrUnsupportedTransferSyntax reports a transfer syntax UID the parser does not know.
	ErrUnsupportedTransferSyntax = errors.New("dicom: unsupported transfer syntax")

	// ErrTruncatedElement reports an element header cut short by the end of the stream.
	ErrTruncatedElement = errors.New("dicom: truncated element header")

	// ErrTruncatedValue reports an element value extending past the end of the stream.
	ErrTruncatedValue = errors.New("dicom: truncated element value")

	// ErrMalformedLength reports a length inconsistent with the enclosing structure, such as an item
	// overrunning its sequence or an undefined length on a VR which cannot have one.
	ErrMalformedLength = errors.New("dicom: malformed length")

	// ErrInvalidVR reports an explicit VR code that is not a DICOM VR.
	ErrInvalidVR = errors.New("dicom: invalid VR")
)

// IOError is returned when the ByteSource fails to open or read.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("dicom: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ElementError locates a decoding failure within the stream.
type ElementError struct {
	Tag DataElementTag

	// Offset is the absolute position of the element's first byte
	Offset int64

	Err error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("element %v at offset %d: %v", e.Tag, e.Offset, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}
