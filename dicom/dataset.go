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
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DataElement models a DICOM Data Element as defined in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10
type DataElement struct {
	Tag DataElementTag

	// Value Representation
	VR *VR

	// ValueField represents the field within a Data Element that contains its value(s)
	// Can be any of of the following types:
	// []string,
	// []byte
	// [][]byte (fragments of an encapsulated value)
	// []int16,
	// []uint16,
	// []int32,
	// []uint32,
	// []int64,
	// []uint64,
	// []float32,
	// []float64
	// *Sequence
	ValueField interface{}

	// ValueLength is equal to the length of the ValueField in bytes.
	// Can be equal to 0xFFFFFFFF to represent an undefined length:
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
	ValueLength uint32
}

func (e *DataElement) String() string {
	return e.string(0)
}

// maxPrintedBytes is the number of bytes above which binary values are summarized by String
const maxPrintedBytes = 16

func (e *DataElement) string(indentLvl int) string {
	prefix := strings.Repeat(">", indentLvl)
	var value interface{} = e.ValueField
	switch v := e.ValueField.(type) {
	case *Sequence:
		value = v.string(indentLvl)
	case []byte:
		if len(v) > maxPrintedBytes {
			value = fmt.Sprintf("(%d bytes)", len(v))
		}
	case [][]byte:
		value = fmt.Sprintf("(%d fragments)", len(v))
	}
	return fmt.Sprintf("%s%v %v #%v %v", prefix, e.Tag, e.VR, e.ValueLength, value)
}

// StringValue returns the first string of a textual ValueField
func (e *DataElement) StringValue() (string, error) {
	strs, ok := e.ValueField.([]string)
	if !ok {
		return "", fmt.Errorf("element %v does not have a textual value", e.Tag)
	}
	if len(strs) == 0 {
		return "", fmt.Errorf("element %v is empty", e.Tag)
	}
	return strs[0], nil
}

// IntValue returns the first value of an integer ValueField. Integer strings (IS) are parsed.
func (e *DataElement) IntValue() (int64, error) {
	switch v := e.ValueField.(type) {
	case []int16:
		if len(v) > 0 {
			return int64(v[0]), nil
		}
	case []uint16:
		if len(v) > 0 {
			return int64(v[0]), nil
		}
	case []int32:
		if len(v) > 0 {
			return int64(v[0]), nil
		}
	case []uint32:
		if len(v) > 0 {
			return int64(v[0]), nil
		}
	case []int64:
		if len(v) > 0 {
			return v[0], nil
		}
	case []string:
		if len(v) > 0 {
			return strconv.ParseInt(strings.TrimSpace(v[0]), 10, 64)
		}
	default:
		return 0, fmt.Errorf("element %v does not have an integer value", e.Tag)
	}
	return 0, fmt.Errorf("element %v is empty", e.Tag)
}

// FloatValues returns every value of a numeric ValueField as float64. Decimal strings (DS, IS) are
// parsed.
func (e *DataElement) FloatValues() ([]float64, error) {
	switch v := e.ValueField.(type) {
	case []float64:
		return v, nil
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out, nil
	case []string:
		out := make([]float64, 0, len(v))
		for _, s := range v {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("element %v: %w", e.Tag, err)
			}
			out = append(out, f)
		}
		return out, nil
	}

	i, err := e.IntValue()
	if err != nil {
		return nil, err
	}
	return []float64{float64(i)}, nil
}

// SequenceValue returns the Sequence of a SQ element
func (e *DataElement) SequenceValue() (*Sequence, error) {
	seq, ok := e.ValueField.(*Sequence)
	if !ok {
		return nil, fmt.Errorf("element %v is not a sequence", e.Tag)
	}
	return seq, nil
}

// DataSet models a DICOM Data Set as defined
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10
type DataSet struct {
	// Elements is a map of DataElement tags to *DataElement
	Elements map[DataElementTag]*DataElement

	// Length is the length in bytes of the data set when it is a sequence item. Can be equal to
	// UndefinedLength.
	Length uint32
}

// NewDataSet returns an empty DataSet
func NewDataSet() *DataSet {
	return &DataSet{Elements: map[DataElementTag]*DataElement{}}
}

// SortedTags returns the tags of the DataSet in ascending order, the order in which they are
// stored in a DICOM file.
func (ds *DataSet) SortedTags() []DataElementTag {
	tags := make([]DataElementTag, 0, len(ds.Elements))
	for tag := range ds.Elements {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Get returns the element with the given tag
func (ds *DataSet) Get(tag DataElementTag) (*DataElement, bool) {
	e, ok := ds.Elements[tag]
	return e, ok
}

func (ds *DataSet) String() string {
	return ds.string(0)
}

func (ds *DataSet) string(indentLvl int) string {
	lines := make([]string, 0, len(ds.Elements))
	for _, tag := range ds.SortedTags() {
		lines = append(lines, ds.Elements[tag].string(indentLvl))
	}
	return strings.Join(lines, "\n")
}
