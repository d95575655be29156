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

	"github.com/sirupsen/logrus"
)

// Transform describes a transformation applied to a DataElement
type Transform func(*DataElement) (*DataElement, error)

// ParseOption configures the behavior of a Parser.
type ParseOption struct {
	apply func(*parseConfig)
}

type parseConfig struct {
	bufferSize int
	index      int
	dict       Dictionary
	log        logrus.FieldLogger
	transforms []Transform
}

func newParseConfig(opts ...ParseOption) parseConfig {
	cfg := parseConfig{
		bufferSize: DefaultBufferSize,
		dict:       StandardDictionary,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return cfg
}

// WithBufferSize returns a ParseOption setting the capacity of the parse buffer. Sizes below
// MinBufferSize are raised to it.
func WithBufferSize(n int) ParseOption {
	return ParseOption{func(cfg *parseConfig) {
		if n < MinBufferSize {
			n = MinBufferSize
		}
		cfg.bufferSize = n
	}}
}

// WithIndex returns a ParseOption selecting the index of the AttributeStore receiving the elements.
func WithIndex(index int) ParseOption {
	return ParseOption{func(cfg *parseConfig) {
		cfg.index = index
	}}
}

// WithDictionary returns a ParseOption replacing the dictionary used to resolve the VRs of implicit
// VR data sets.
func WithDictionary(dict Dictionary) ParseOption {
	return ParseOption{func(cfg *parseConfig) {
		cfg.dict = dict
	}}
}

// WithLogger returns a ParseOption directing the parser's diagnostics to log.
func WithLogger(log logrus.FieldLogger) ParseOption {
	return ParseOption{func(cfg *parseConfig) {
		cfg.log = log
	}}
}

// WithTransform returns a ParseOption that applies the given transformation to each DataElement in
// the DICOM file in the order encountered. For DataElements that contain a sequence, the transform
// is applied to nested DataElements first (i.e. transform is called on DataElements in post-order).
// If the transform returns an error, parsing stops and the error is returned.
// If no error is returned and a non-nil DataElement is returned, this DataElement is forwarded to
// the AttributeStore (or added to its sequence item). If a nil DataElement is returned, the
// DataElement is dropped.
func WithTransform(t Transform) ParseOption {
	return ParseOption{func(cfg *parseConfig) {
		cfg.transforms = append(cfg.transforms, t)
	}}
}

// DropGroupLengths will exclude all group length elements (gggg,0000)
var DropGroupLengths = WithTransform(func(element *DataElement) (*DataElement, error) {
	if element.Tag.IsGroupLength() {
		return nil, nil
	}
	return element, nil
})

// DropBasicOffsetTable will exclude the basic offset table fragment from values encoded using
// the encapsulated (compressed) format. For more information on the offset table and encapsulated
// formats please see http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
var DropBasicOffsetTable = WithTransform(func(element *DataElement) (*DataElement, error) {
	if fragments, ok := element.ValueField.([][]byte); ok && len(fragments) > 0 {
		return &DataElement{element.Tag, element.VR, fragments[1:], element.ValueLength}, nil
	}
	return element, nil
})

// DropBulkData will exclude the elements for which bulkDataDefinition returns true
func DropBulkData(bulkDataDefinition func(*DataElement) bool) ParseOption {
	return WithTransform(func(element *DataElement) (*DataElement, error) {
		if bulkDataDefinition(element) {
			return nil, nil
		}
		return element, nil
	})
}

// DefaultBulkDataDefinition returns true if and only if the tag corresponds to a data element
// that contains large non-metadata fields
func DefaultBulkDataDefinition(elem *DataElement) bool {
	tag := elem.Tag
	if isRepeatingGroup(tag.GroupNumber()) {
		// (50xx,3000) is stored as CurveDataTag = 0x50003000
		tag &= repeatingGroupMask
	}
	switch tag {
	case PixelDataProviderURLTag, AudioSampleDataTag, CurveDataTag, SpectroscopyDataTag,
		OverlayDataTag, EncapsulatedDocumentTag, FloatPixelDataTag, DoubleFloatPixelDataTag,
		PixelDataTag, WaveformDataTag:
		return true
	}
	return false
}

func applyTransforms(element *DataElement, transforms []Transform) (*DataElement, error) {
	var err error
	for i, t := range transforms {
		element, err = t(element)
		if err != nil {
			return nil, fmt.Errorf("applying transform %v: %w", i, err)
		}
		if element == nil { // transform wants to filter this element out
			return nil, nil
		}
	}
	return element, nil
}
