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
	"sync"
)

// AttributeStore receives the elements decoded by a Parser. index identifies the instance within a
// series the element belongs to. Parsers running concurrently write to distinct indices of the same
// store, so implementations must tolerate concurrent calls with different indices.
type AttributeStore interface {
	Put(index int, element *DataElement)
}

// MetaData is an in-memory AttributeStore holding one DataSet per instance index. A later element
// with the same tag replaces an earlier one.
type MetaData struct {
	mu    sync.RWMutex
	slots map[int]*DataSet
}

// NewMetaData returns an empty MetaData
func NewMetaData() *MetaData {
	return &MetaData{slots: map[int]*DataSet{}}
}

// Put stores element in the DataSet of index
func (m *MetaData) Put(index int, element *DataElement) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ds, ok := m.slots[index]
	if !ok {
		ds = NewDataSet()
		m.slots[index] = ds
	}
	ds.Elements[element.Tag] = element
}

// Get returns the element with the given tag stored for index
func (m *MetaData) Get(index int, tag DataElementTag) (*DataElement, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ds, ok := m.slots[index]
	if !ok {
		return nil, false
	}
	return ds.Get(tag)
}

// DataSet returns a copy of the DataSet stored for index. The elements are shared.
func (m *MetaData) DataSet(index int) (*DataSet, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ds, ok := m.slots[index]
	if !ok {
		return nil, false
	}
	cp := NewDataSet()
	for tag, elem := range ds.Elements {
		cp.Elements[tag] = elem
	}
	return cp, true
}

// Indices returns the indices holding at least one element, in ascending order
func (m *MetaData) Indices() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	indices := make([]int, 0, len(m.slots))
	for i := range m.slots {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// Len returns the number of elements stored for index
func (m *MetaData) Len(index int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if ds, ok := m.slots[index]; ok {
		return len(ds.Elements)
	}
	return 0
}

// DecodedStrings returns the text values of the element with the given tag decoded from the
// Specific Character Set (0008,0005) of index. Without a Specific Character Set the default
// character repertoire is assumed.
func (m *MetaData) DecodedStrings(index int, tag DataElementTag) ([]string, error) {
	elem, ok := m.Get(index, tag)
	if !ok {
		return nil, fmt.Errorf("element %v not found at index %d", tag, index)
	}
	values, ok := elem.ValueField.([]string)
	if !ok {
		return nil, fmt.Errorf("element %v does not have a textual value", tag)
	}

	var terms []string
	if cs, ok := m.Get(index, SpecificCharacterSetTag); ok {
		terms, _ = cs.ValueField.([]string)
	}
	return decodeStrings(values, terms)
}
