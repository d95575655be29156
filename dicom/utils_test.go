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
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var (
	le = binary.LittleEndian
	be = binary.BigEndian
)

var sampleBytes = []byte{1, 2, 3, 4}

const sampleSOPClassUID = "1.2.840.10008.5.1.4.1.1.4"

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func u16(order binary.ByteOrder, v uint16) []byte {
	b := make([]byte, 2)
	order.PutUint16(b, v)
	return b
}

func u32(order binary.ByteOrder, v uint32) []byte {
	b := make([]byte, 4)
	order.PutUint32(b, v)
	return b
}

func tagBytes(order binary.ByteOrder, tag DataElementTag) []byte {
	return concat(u16(order, tag.GroupNumber()), u16(order, tag.ElementNumber()))
}

// text pads s to an even length with a space
func text(s string) []byte {
	if len(s)%2 == 1 {
		s += " "
	}
	return []byte(s)
}

// uid pads s to an even length with a NUL
func uid(s string) []byte {
	if len(s)%2 == 1 {
		s += "\x00"
	}
	return []byte(s)
}

func explicitHeader(order binary.ByteOrder, tag DataElementTag, vr *VR, length uint32) []byte {
	if vr.HasLongLength() {
		return concat(tagBytes(order, tag), []byte(vr.Name), []byte{0, 0}, u32(order, length))
	}
	return concat(tagBytes(order, tag), []byte(vr.Name), u16(order, uint16(length)))
}

func implicitHeader(order binary.ByteOrder, tag DataElementTag, length uint32) []byte {
	return concat(tagBytes(order, tag), u32(order, length))
}

// itemHeader encodes an item or delimitation item, which has the same shape in every syntax
func itemHeader(order binary.ByteOrder, tag DataElementTag, length uint32) []byte {
	return implicitHeader(order, tag, length)
}

func explicitElement(order binary.ByteOrder, tag DataElementTag, vr *VR, value []byte) []byte {
	return concat(explicitHeader(order, tag, vr, uint32(len(value))), value)
}

func explicitLE(tag DataElementTag, vr *VR, value []byte) []byte {
	return explicitElement(le, tag, vr, value)
}

func implicitLE(tag DataElementTag, value []byte) []byte {
	return concat(implicitHeader(le, tag, uint32(len(value))), value)
}

// metaHeaderElements returns the File Meta Information elements written by metaHeader
func metaHeaderElements(tsUID string) []*DataElement {
	version := []byte{0, 1}
	sopClass := uid(sampleSOPClassUID)
	syntax := uid(tsUID)
	length := uint32(len(explicitLE(FileMetaInformationVersionTag, OBVR, version)) +
		len(explicitLE(MediaStorageSOPClassUIDTag, UIVR, sopClass)) +
		len(explicitLE(TransferSyntaxUIDTag, UIVR, syntax)))

	return []*DataElement{
		{FileMetaInformationGroupLengthTag, ULVR, []uint32{length}, 4},
		{FileMetaInformationVersionTag, OBVR, version, uint32(len(version))},
		{MediaStorageSOPClassUIDTag, UIVR, []string{sampleSOPClassUID}, uint32(len(sopClass))},
		{TransferSyntaxUIDTag, UIVR, []string{tsUID}, uint32(len(syntax))},
	}
}

// metaHeader encodes a File Meta Information group advertising the transfer syntax tsUID
func metaHeader(tsUID string) []byte {
	elems := concat(
		explicitLE(FileMetaInformationVersionTag, OBVR, []byte{0, 1}),
		explicitLE(MediaStorageSOPClassUIDTag, UIVR, uid(sampleSOPClassUID)),
		explicitLE(TransferSyntaxUIDTag, UIVR, uid(tsUID)),
	)
	return concat(explicitLE(FileMetaInformationGroupLengthTag, ULVR, u32(le, uint32(len(elems)))), elems)
}

// withPreamble prefixes the parts with an empty preamble and the DICM marker
func withPreamble(parts ...[]byte) []byte {
	return concat(make([]byte, preambleLength), []byte(magicMarker), concat(parts...))
}

func dcmReaderFromBytes(data []byte) *dcmReader {
	return newDcmReader(bytes.NewReader(data), MinBufferSize)
}

func nullLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func elementReaderFromBytes(data []byte, syntax *TransferSyntax) *elementReader {
	return &elementReader{dcmReaderFromBytes(data), syntax, StandardDictionary, nullLogger(), nil}
}

func createSingletonSequence(elements ...*DataElement) *Sequence {
	ds := NewDataSet()
	for _, elem := range elements {
		ds.Elements[elem.Tag] = elem
	}
	return &Sequence{Items: []*DataSet{ds}}
}

func createDataSet(elements ...*DataElement) *DataSet {
	return createSingletonSequence(elements...).Items[0]
}

// compareDataElements compares tags, VRs and values. Value lengths are ignored so that explicit
// and undefined length encodings of the same content compare equal.
func compareDataElements(e1 *DataElement, e2 *DataElement, t *testing.T) {
	t.Helper()
	if e1 == nil || e2 == nil {
		if e1 != e2 {
			t.Fatalf("expected both elements to be nil: got %v, want %v", e1, e2)
		}
		return
	}
	if e1.VR != e2.VR {
		t.Fatalf("expected VRs of %v to be equal: got %v, want %v", e1.Tag, e1.VR, e2.VR)
	}
	if e1.Tag != e2.Tag {
		t.Fatalf("expected tags to be equal: got %v, want %v", e1.Tag, e2.Tag)
	}

	if e1.VR != SQVR && !(e1.VR == UNVR && e1.ValueLength == UndefinedLength) {
		if !reflect.DeepEqual(e1.ValueField, e2.ValueField) {
			t.Fatalf("expected ValueFields of %v to be equal: got %v, want %v",
				e1.Tag, e1.ValueField, e2.ValueField)
		}
		return
	}
	compareSequences(e1.ValueField.(*Sequence), e2.ValueField.(*Sequence), t)
}

func compareSequences(s1 *Sequence, s2 *Sequence, t *testing.T) {
	t.Helper()
	if len(s1.Items) != len(s2.Items) {
		t.Fatalf("expected sequences to have same length: got %v, want %v",
			len(s1.Items), len(s2.Items))
	}

	for i := range s1.Items {
		compareDataSets(s1.Items[i], s2.Items[i], t)
	}
}

func compareDataSets(d1 *DataSet, d2 *DataSet, t *testing.T) {
	t.Helper()
	k1, k2 := d1.SortedTags(), d2.SortedTags()

	if !reflect.DeepEqual(k1, k2) {
		t.Fatalf("expected datasets to have same keys: got %v, want %v", k1, k2)
	}

	for _, tag := range k1 {
		compareDataElements(d1.Elements[tag], d2.Elements[tag], t)
	}
}
