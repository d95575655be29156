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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
)

// elementHeader is the part of a data element preceding its value field
type elementHeader struct {
	tag    DataElementTag
	vr     *VR
	length uint32

	// offset is the absolute position of the first byte of the tag
	offset int64
}

// elementReader decodes data elements from a dcmReader with the rules of one transfer syntax.
type elementReader struct {
	dr     *dcmReader
	syntax *TransferSyntax
	dict   Dictionary
	log    logrus.FieldLogger

	// transforms are applied to the elements of sequence items before they are added to the item
	transforms []Transform
}

// readHeader decodes the tag, VR and value length of the next element. io.EOF is returned when the
// stream ends cleanly before the tag. Item and delimitation tags (FFFE,xxxx) are returned with a nil
// VR since they never carry one.
func (r *elementReader) readHeader() (elementHeader, error) {
	h := elementHeader{offset: r.dr.offset()}

	tag, err := r.dr.Tag(r.syntax.ByteOrder)
	if err == io.EOF {
		return h, io.EOF
	}
	if err != nil {
		return h, r.headerError(h, err)
	}
	h.tag = tag

	if tag.GroupNumber() == 0xFFFE {
		if h.length, err = r.dr.UInt32(r.syntax.ByteOrder); err != nil {
			return h, r.headerError(h, err)
		}
		return h, nil
	}

	if h.vr, err = r.syntax.readVR(r.dr, tag, r.dict); err != nil {
		return h, r.headerError(h, err)
	}
	if h.length, err = r.syntax.readValueLength(r.dr, h.vr); err != nil {
		return h, r.headerError(h, err)
	}

	return h, nil
}

// headerError classifies a failure while decoding an element header
func (r *elementReader) headerError(h elementHeader, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = ErrTruncatedElement
	}
	return &ElementError{h.tag, h.offset, err}
}

// valueError classifies a failure while decoding the value field of the element h. A nested element
// cut short by the end of the stream truncates the value of every enclosing element.
func (r *elementReader) valueError(h elementHeader, err error) error {
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		err = ErrTruncatedValue
	case errors.Is(err, ErrTruncatedElement):
		err = fmt.Errorf("%w: %v", ErrTruncatedValue, err)
	}
	return &ElementError{h.tag, h.offset, err}
}

// readDataElement decodes the next element. io.EOF is returned when the stream ends cleanly
// between two elements.
func (r *elementReader) readDataElement() (*DataElement, error) {
	h, err := r.readHeader()
	if err != nil {
		return nil, err
	}
	return r.readElementValue(h)
}

// readElementValue decodes the value field of the element whose header is h.
func (r *elementReader) readElementValue(h elementHeader) (*DataElement, error) {
	if h.vr == nil {
		return nil, &ElementError{h.tag, h.offset,
			fmt.Errorf("%w: unexpected item tag in a data set", ErrMalformedLength)}
	}
	if h.length == UndefinedLength && !h.vr.allowsUndefinedLength() {
		return nil, &ElementError{h.tag, h.offset,
			fmt.Errorf("%w: undefined length for VR %v", ErrMalformedLength, h.vr)}
	}

	value, err := r.readValue(h)
	if err != nil {
		return nil, r.valueError(h, err)
	}

	return &DataElement{h.tag, h.vr, value, h.length}, nil
}

func (r *elementReader) readValue(h elementHeader) (interface{}, error) {
	if h.vr == SQVR {
		return r.readSequence(h.length)
	}
	if h.length == UndefinedLength {
		if h.vr == UNVR {
			// Specified in http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2.2
			// UN with undefined length is a sequence encoded in implicit VR little endian
			nested := *r
			nested.syntax = implicitVRLittleEndian
			return nested.readSequence(h.length)
		}
		// Specified in http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
		// OB and OW with undefined length are in the encapsulated format
		return r.readFragments()
	}

	if h.length%2 == 1 {
		r.log.WithFields(logrus.Fields{"tag": h.tag, "vr": h.vr.Name, "length": h.length}).
			Debug("odd value length")
	}

	buff, err := r.dr.Bytes(int64(h.length))
	if err != nil {
		return nil, err
	}

	return decodeValue(buff, h.vr, r.syntax.ByteOrder)
}

// decodeValue interprets the raw bytes of a value field according to its VR.
func decodeValue(buff []byte, vr *VR, order binary.ByteOrder) (interface{}, error) {
	switch vr.kind {
	case textVR:
		return decodeText(buff, vr, unicode.IsSpace), nil
	case uniqueIdentifierVR:
		return decodeText(buff, vr, func(r rune) bool {
			return r == 0x00 || r == ' '
		}), nil
	case numberBinaryVR:
		return decodeNumberBinary(buff, vr, order)
	case tagVR:
		return decodeTags(buff, order), nil
	case bulkDataVR:
		return decodeBulkData(buff, vr, order)
	default:
		return nil, fmt.Errorf("unknown vr type found: %v", vr.kind)
	}
}

func decodeTags(buff []byte, order binary.ByteOrder) []uint32 {
	ret := make([]uint32, len(buff)/tagSize)
	for i := range ret {
		ret[i] = uint32(decodeTag(buff[i*tagSize:], order))
	}
	return ret
}

func decodeText(buff []byte, vr *VR, isPadding func(rune) bool) []string {
	if len(buff) == 0 {
		return []string{}
	}

	valueField := string(buff)

	// LT, ST and UT do not have value multiplicity, backslashes are part of the text
	if vr == UTVR || vr == STVR || vr == LTVR || vr == URVR {
		return []string{strings.TrimRightFunc(valueField, isPadding)}
	}

	strs := strings.Split(valueField, "\\")
	for i, s := range strs {
		strs[i] = strings.TrimFunc(s, isPadding)
	}
	return strs
}

func decodeNumberBinary(buff []byte, vr *VR, order binary.ByteOrder) (interface{}, error) {
	switch vr {
	case SSVR:
		data := make([]int16, len(buff)/2)
		for i := range data {
			data[i] = int16(order.Uint16(buff[2*i:]))
		}
		return data, nil
	case USVR:
		data := make([]uint16, len(buff)/2)
		for i := range data {
			data[i] = order.Uint16(buff[2*i:])
		}
		return data, nil
	case SLVR:
		data := make([]int32, len(buff)/4)
		for i := range data {
			data[i] = int32(order.Uint32(buff[4*i:]))
		}
		return data, nil
	case ULVR, OLVR:
		data := make([]uint32, len(buff)/4)
		for i := range data {
			data[i] = order.Uint32(buff[4*i:])
		}
		return data, nil
	case SVVR:
		data := make([]int64, len(buff)/8)
		for i := range data {
			data[i] = int64(order.Uint64(buff[8*i:]))
		}
		return data, nil
	case UVVR, OVVR:
		data := make([]uint64, len(buff)/8)
		for i := range data {
			data[i] = order.Uint64(buff[8*i:])
		}
		return data, nil
	case FLVR, OFVR:
		data := make([]float32, len(buff)/4)
		for i := range data {
			data[i] = math.Float32frombits(order.Uint32(buff[4*i:]))
		}
		return data, nil
	case FDVR, ODVR:
		data := make([]float64, len(buff)/8)
		for i := range data {
			data[i] = math.Float64frombits(order.Uint64(buff[8*i:]))
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown vr: %v", vr)
	}
}

// decodeBulkData decodes the VRs of potentially enormous size. OB, OW and UN are kept as raw bytes.
// Please refer to DICOM PS3.5 Part 5 for details on UC, UR, UT value representations
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.1
func decodeBulkData(buff []byte, vr *VR, order binary.ByteOrder) (interface{}, error) {
	switch vr {
	case OBVR, OWVR, UNVR:
		return buff, nil
	case UCVR:
		// UC may be padded with trailing spaces and uses the "\" to delimit multiple values
		if len(buff) == 0 {
			return []string{}, nil
		}
		strs := strings.Split(string(buff), "\\")
		for i, s := range strs {
			strs[i] = strings.TrimRightFunc(s, unicode.IsSpace)
		}
		return strs, nil
	case URVR, UTVR:
		// UR: Trailing spaces shall be ignored. Backslash is not allowed.
		// UT: Trailing spaces may be ignored (and are in this implementation).
		return decodeText(buff, vr, unicode.IsSpace), nil
	default:
		return decodeNumberBinary(buff, vr, order)
	}
}
