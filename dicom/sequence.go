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
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Sequence models a DICOM sequence
type Sequence struct {
	Items []*DataSet
}

func (seq *Sequence) String() string {
	return seq.string(0)
}

func (seq *Sequence) string(indentLvl int) string {
	lines := make([]string, 0)
	for _, obj := range seq.Items {
		lines = append(lines, obj.string(indentLvl+1))
	}
	return "\n" + strings.Join(lines, "\n")
}

func (seq *Sequence) append(dataSet *DataSet) {
	seq.Items = append(seq.Items, dataSet)
}

// readSequence decodes a Sequence of Items. Sequences of explicit length end after length bytes,
// sequences of undefined length end with a Sequence Delimitation Item.
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.5
func (r *elementReader) readSequence(length uint32) (*Sequence, error) {
	seq := &Sequence{}
	end := r.dr.offset() + int64(length)

	for length == UndefinedLength || r.dr.offset() < end {
		h, err := r.readItemHeader()
		if err != nil {
			return nil, err
		}

		switch h.tag {
		case SequenceDelimitationItemTag:
			if length != UndefinedLength {
				return nil, &ElementError{h.tag, h.offset, fmt.Errorf(
					"%w: unexpected sequence delimitation item tag in explicit length sequence", ErrMalformedLength)}
			}
			r.checkDelimiterLength(h)
			return seq, nil
		case ItemTag:
			item, err := r.readItem(h.length)
			if err != nil {
				return nil, err
			}
			seq.append(item)
		default:
			return nil, &ElementError{h.tag, h.offset, fmt.Errorf(
				"%w: invalid item tag in sequence, got %v want %v or %v",
				ErrMalformedLength, h.tag, ItemTag, SequenceDelimitationItemTag)}
		}
	}

	if r.dr.offset() > end {
		return nil, fmt.Errorf("%w: sequence items overrun the sequence length %d by %d bytes",
			ErrMalformedLength, length, r.dr.offset()-end)
	}
	return seq, nil
}

// readItem decodes the data set of a sequence item whose header has already been consumed.
func (r *elementReader) readItem(length uint32) (*DataSet, error) {
	item := NewDataSet()
	item.Length = length
	end := r.dr.offset() + int64(length)

	for length == UndefinedLength || r.dr.offset() < end {
		h, err := r.readItemHeader()
		if err != nil {
			return nil, err
		}

		if h.tag == ItemDelimitationItemTag {
			r.checkDelimiterLength(h)
			if length != UndefinedLength {
				r.log.WithField("offset", h.offset).Debug("item delimitation item in explicit length item")
				continue
			}
			return item, nil
		}
		elem, err := r.readElementValue(h)
		if err != nil {
			return nil, err
		}
		if elem, err = applyTransforms(elem, r.transforms); err != nil {
			return nil, err
		}
		if elem != nil {
			item.Elements[elem.Tag] = elem
		}
	}

	if r.dr.offset() > end {
		return nil, fmt.Errorf("%w: item elements overrun the item length %d by %d bytes",
			ErrMalformedLength, length, r.dr.offset()-end)
	}
	return item, nil
}

// readFragments decodes the fragments of an encapsulated value: an optional basic offset table
// followed by one item per fragment, terminated by a Sequence Delimitation Item.
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
func (r *elementReader) readFragments() ([][]byte, error) {
	fragments := make([][]byte, 0)
	for {
		h, err := r.readItemHeader()
		if err != nil {
			return nil, err
		}

		switch h.tag {
		case SequenceDelimitationItemTag:
			r.checkDelimiterLength(h)
			return fragments, nil
		case ItemTag:
			if h.length == UndefinedLength {
				return nil, &ElementError{h.tag, h.offset,
					fmt.Errorf("%w: fragment of undefined length", ErrMalformedLength)}
			}
			fragment, err := r.dr.Bytes(int64(h.length))
			if err != nil {
				return nil, err
			}
			fragments = append(fragments, fragment)
		default:
			return nil, &ElementError{h.tag, h.offset,
				fmt.Errorf("%w: invalid fragment tag %v", ErrMalformedLength, h.tag)}
		}
	}
}

// readItemHeader reads the next header within a sequence value, where the end of the stream is
// always premature.
func (r *elementReader) readItemHeader() (elementHeader, error) {
	h, err := r.readHeader()
	if err == io.EOF {
		return h, io.ErrUnexpectedEOF
	}
	return h, err
}

func (r *elementReader) checkDelimiterLength(h elementHeader) {
	if h.length != 0 {
		r.log.WithFields(logrus.Fields{"tag": h.tag, "length": h.length, "offset": h.offset}).
			Warn("expected 0 length on delimitation item")
	}
}
