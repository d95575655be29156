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
	"fmt"
)

// DataElementTag is a unique identifier for a Data Element composed of an ordered pair
// of numbers called the group number and the element number as specified in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10.
//
// The least significant 16 bits is the element number. The most significant 16 bits is the group
// number, so the natural ordering of DataElementTag values is the (group, element) ordering.
type DataElementTag uint32

// NewTag returns the DataElementTag for the given group and element numbers.
func NewTag(group, element uint16) DataElementTag {
	return DataElementTag(uint32(group)<<16 | uint32(element))
}

// GroupNumber returns the group number component of the DataElementTag
func (t DataElementTag) GroupNumber() uint16 {
	return uint16(t >> 16)
}

// ElementNumber returns the element number component of the DataElementTag
func (t DataElementTag) ElementNumber() uint16 {
	return uint16(t & 0xFFFF)
}

// IsMetaElement is true if and only if the Data Element belongs to the File Meta Information
// group (0002,xxxx)
func (t DataElementTag) IsMetaElement() bool {
	return t.GroupNumber() == metaGroup
}

// IsPrivate is true if and only if the tag belongs to a private group (odd group number)
func (t DataElementTag) IsPrivate() bool {
	return t.GroupNumber()%2 == 1
}

// IsGroupLength is true for group length elements (gggg,0000)
func (t DataElementTag) IsGroupLength() bool {
	return t.ElementNumber() == 0
}

// String formats the tag as (gggg,eeee)
func (t DataElementTag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.GroupNumber(), t.ElementNumber())
}

func decodeTag(b []byte, order binary.ByteOrder) DataElementTag {
	return NewTag(order.Uint16(b[0:2]), order.Uint16(b[2:4]))
}

const metaGroup = 0x0002

// Tags referenced by the parser and the registration reader. The full set of attributes known to
// the parser lives in the StandardDictionary.
const (
	FileMetaInformationGroupLengthTag DataElementTag = 0x00020000
	FileMetaInformationVersionTag     DataElementTag = 0x00020001
	MediaStorageSOPClassUIDTag        DataElementTag = 0x00020002
	MediaStorageSOPInstanceUIDTag     DataElementTag = 0x00020003
	TransferSyntaxUIDTag              DataElementTag = 0x00020010
	ImplementationClassUIDTag         DataElementTag = 0x00020012
	ImplementationVersionNameTag      DataElementTag = 0x00020013

	SpecificCharacterSetTag     DataElementTag = 0x00080005
	ImageTypeTag                DataElementTag = 0x00080008
	SOPClassUIDTag              DataElementTag = 0x00080016
	SOPInstanceUIDTag           DataElementTag = 0x00080018
	ModalityTag                 DataElementTag = 0x00080060
	ReferencedStudySequenceTag  DataElementTag = 0x00081110
	ReferencedImageSequenceTag  DataElementTag = 0x00081140
	ReferencedSOPClassUIDTag    DataElementTag = 0x00081150
	ReferencedSOPInstanceUIDTag DataElementTag = 0x00081155

	PatientNameTag DataElementTag = 0x00100010
	PatientIDTag   DataElementTag = 0x00100020

	TargetUIDTag DataElementTag = 0x00182042

	StudyInstanceUIDTag        DataElementTag = 0x0020000D
	SeriesInstanceUIDTag       DataElementTag = 0x0020000E
	InstanceNumberTag          DataElementTag = 0x00200013
	ImagePositionPatientTag    DataElementTag = 0x00200032
	ImageOrientationPatientTag DataElementTag = 0x00200037
	FrameOfReferenceUIDTag     DataElementTag = 0x00200052

	SamplesPerPixelTag     DataElementTag = 0x00280002
	RowsTag                DataElementTag = 0x00280010
	ColumnsTag             DataElementTag = 0x00280011
	PixelSpacingTag        DataElementTag = 0x00280030
	BitsAllocatedTag       DataElementTag = 0x00280100
	PixelRepresentationTag DataElementTag = 0x00280103
	GrayLookupTableDataTag DataElementTag = 0x00281200

	RegistrationSequenceTag       DataElementTag = 0x00700308
	MatrixRegistrationSequenceTag DataElementTag = 0x00700309
	MatrixSequenceTag             DataElementTag = 0x0070030A

	IconImageSequenceTag DataElementTag = 0x00880200

	FrameOfReferenceTransformationMatrixTypeTag DataElementTag = 0x0070030C
	FrameOfReferenceTransformationMatrixTag     DataElementTag = 0x300600C6

	PixelDataProviderURLTag DataElementTag = 0x00287FE0
	EncapsulatedDocumentTag DataElementTag = 0x00420011
	AudioSampleDataTag      DataElementTag = 0x5000200C
	CurveDataTag            DataElementTag = 0x50003000
	WaveformDataTag         DataElementTag = 0x54001010
	SpectroscopyDataTag     DataElementTag = 0x56004000
	OverlayDataTag          DataElementTag = 0x60003000
	FloatPixelDataTag       DataElementTag = 0x7FE00008
	DoubleFloatPixelDataTag DataElementTag = 0x7FE00009
	PixelDataTag            DataElementTag = 0x7FE00010

	ItemTag                     DataElementTag = 0xFFFEE000
	ItemDelimitationItemTag     DataElementTag = 0xFFFEE00D
	SequenceDelimitationItemTag DataElementTag = 0xFFFEE0DD
)
