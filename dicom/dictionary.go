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

// Dictionary resolves the VR of a tag. It is consulted by the implicit VR syntax, where VRs are
// not stored in the file.
type Dictionary interface {
	// LookupVR returns the VR of the tag and true, or false if the tag is unknown.
	LookupVR(tag DataElementTag) (*VR, bool)
}

// DictionaryEntry describes one attribute of a data dictionary.
type DictionaryEntry struct {
	Tag  DataElementTag
	VR   *VR
	Name string
}

// TagDictionary is a Dictionary backed by a table of DictionaryEntry values. Entries may describe
// repeating groups such as (50xx,3000) by setting the xx digits to 0.
type TagDictionary struct {
	entries map[DataElementTag]DictionaryEntry
}

// NewTagDictionary returns a TagDictionary holding the given entries. Later entries replace earlier
// entries with the same tag.
func NewTagDictionary(entries ...DictionaryEntry) *TagDictionary {
	d := &TagDictionary{make(map[DataElementTag]DictionaryEntry, len(entries))}
	for _, e := range entries {
		d.entries[e.Tag] = e
	}
	return d
}

// repeatingGroupMask handles the curve (50xx) and overlay (60xx) wildcards in the DICOM data
// dictionary. Tags are stored with the x's set to '0' in hex, so (50xx,3000) is stored as
// 0x50003000 and matched by (tag & 0xFF00FFFF) == 0x50003000.
const repeatingGroupMask = 0xFF00FFFF

func isRepeatingGroup(group uint16) bool {
	g := group & 0xFF00
	return g == 0x5000 || g == 0x6000
}

// Lookup returns the DictionaryEntry for the tag.
func (d *TagDictionary) Lookup(tag DataElementTag) (DictionaryEntry, bool) {
	if e, ok := d.entries[tag]; ok {
		return e, true
	}
	if tag.IsGroupLength() {
		return DictionaryEntry{tag, ULVR, "GroupLength"}, true
	}
	if tag.IsPrivate() {
		// private creator elements (gggg,0010-00FF)
		if el := tag.ElementNumber(); el >= 0x0010 && el <= 0x00FF {
			return DictionaryEntry{tag, LOVR, "PrivateCreator"}, true
		}
		return DictionaryEntry{}, false
	}
	if isRepeatingGroup(tag.GroupNumber()) {
		if e, ok := d.entries[DataElementTag(uint32(tag)&repeatingGroupMask)]; ok {
			return DictionaryEntry{tag, e.VR, e.Name}, true
		}
	}
	return DictionaryEntry{}, false
}

// LookupVR implements Dictionary.
func (d *TagDictionary) LookupVR(tag DataElementTag) (*VR, bool) {
	e, ok := d.Lookup(tag)
	if !ok {
		return nil, false
	}
	return e.VR, true
}

// Name returns the attribute keyword of the tag, or "" for unknown tags.
func (d *TagDictionary) Name(tag DataElementTag) string {
	e, _ := d.Lookup(tag)
	return e.Name
}

// DictionaryVR returns the VR of the tag in the StandardDictionary, or UN when the tag is unknown.
func (t DataElementTag) DictionaryVR() *VR {
	return lookupVR(StandardDictionary, t)
}

func lookupVR(d Dictionary, tag DataElementTag) *VR {
	if d != nil {
		if vr, ok := d.LookupVR(tag); ok && vr != nil {
			return vr
		}
	}
	return UNVR
}

// StandardDictionary holds the commonly used public attributes of
// http://dicom.nema.org/medical/dicom/current/output/html/part06.html. Where the standard allows
// several VRs for an attribute, the last one listed is used.
var StandardDictionary = NewTagDictionary(
	DictionaryEntry{FileMetaInformationGroupLengthTag, ULVR, "FileMetaInformationGroupLength"},
	DictionaryEntry{FileMetaInformationVersionTag, OBVR, "FileMetaInformationVersion"},
	DictionaryEntry{MediaStorageSOPClassUIDTag, UIVR, "MediaStorageSOPClassUID"},
	DictionaryEntry{MediaStorageSOPInstanceUIDTag, UIVR, "MediaStorageSOPInstanceUID"},
	DictionaryEntry{TransferSyntaxUIDTag, UIVR, "TransferSyntaxUID"},
	DictionaryEntry{ImplementationClassUIDTag, UIVR, "ImplementationClassUID"},
	DictionaryEntry{ImplementationVersionNameTag, SHVR, "ImplementationVersionName"},
	DictionaryEntry{0x00020016, AEVR, "SourceApplicationEntityTitle"},
	DictionaryEntry{0x00020100, UIVR, "PrivateInformationCreatorUID"},
	DictionaryEntry{0x00020102, OBVR, "PrivateInformation"},

	DictionaryEntry{SpecificCharacterSetTag, CSVR, "SpecificCharacterSet"},
	DictionaryEntry{ImageTypeTag, CSVR, "ImageType"},
	DictionaryEntry{0x00080012, DAVR, "InstanceCreationDate"},
	DictionaryEntry{0x00080013, TMVR, "InstanceCreationTime"},
	DictionaryEntry{0x00080014, UIVR, "InstanceCreatorUID"},
	DictionaryEntry{SOPClassUIDTag, UIVR, "SOPClassUID"},
	DictionaryEntry{SOPInstanceUIDTag, UIVR, "SOPInstanceUID"},
	DictionaryEntry{0x00080020, DAVR, "StudyDate"},
	DictionaryEntry{0x00080021, DAVR, "SeriesDate"},
	DictionaryEntry{0x00080022, DAVR, "AcquisitionDate"},
	DictionaryEntry{0x00080023, DAVR, "ContentDate"},
	DictionaryEntry{0x0008002A, DTVR, "AcquisitionDateTime"},
	DictionaryEntry{0x00080030, TMVR, "StudyTime"},
	DictionaryEntry{0x00080031, TMVR, "SeriesTime"},
	DictionaryEntry{0x00080032, TMVR, "AcquisitionTime"},
	DictionaryEntry{0x00080033, TMVR, "ContentTime"},
	DictionaryEntry{0x00080050, SHVR, "AccessionNumber"},
	DictionaryEntry{ModalityTag, CSVR, "Modality"},
	DictionaryEntry{0x00080064, CSVR, "ConversionType"},
	DictionaryEntry{0x00080070, LOVR, "Manufacturer"},
	DictionaryEntry{0x00080080, LOVR, "InstitutionName"},
	DictionaryEntry{0x00080090, PNVR, "ReferringPhysicianName"},
	DictionaryEntry{0x00081010, SHVR, "StationName"},
	DictionaryEntry{0x00081030, LOVR, "StudyDescription"},
	DictionaryEntry{0x0008103E, LOVR, "SeriesDescription"},
	DictionaryEntry{0x00081090, LOVR, "ManufacturerModelName"},
	DictionaryEntry{ReferencedStudySequenceTag, SQVR, "ReferencedStudySequence"},
	DictionaryEntry{0x00081115, SQVR, "ReferencedSeriesSequence"},
	DictionaryEntry{ReferencedImageSequenceTag, SQVR, "ReferencedImageSequence"},
	DictionaryEntry{ReferencedSOPClassUIDTag, UIVR, "ReferencedSOPClassUID"},
	DictionaryEntry{ReferencedSOPInstanceUIDTag, UIVR, "ReferencedSOPInstanceUID"},
	DictionaryEntry{0x00082111, STVR, "DerivationDescription"},
	DictionaryEntry{0x00089215, SQVR, "DerivationCodeSequence"},

	DictionaryEntry{PatientNameTag, PNVR, "PatientName"},
	DictionaryEntry{PatientIDTag, LOVR, "PatientID"},
	DictionaryEntry{0x00100030, DAVR, "PatientBirthDate"},
	DictionaryEntry{0x00100040, CSVR, "PatientSex"},
	DictionaryEntry{0x00101010, ASVR, "PatientAge"},
	DictionaryEntry{0x00101020, DSVR, "PatientSize"},
	DictionaryEntry{0x00101030, DSVR, "PatientWeight"},
	DictionaryEntry{0x00104000, LTVR, "PatientComments"},

	DictionaryEntry{0x00180015, CSVR, "BodyPartExamined"},
	DictionaryEntry{0x00180050, DSVR, "SliceThickness"},
	DictionaryEntry{0x00180060, DSVR, "KVP"},
	DictionaryEntry{0x00180080, DSVR, "RepetitionTime"},
	DictionaryEntry{0x00180081, DSVR, "EchoTime"},
	DictionaryEntry{0x00180087, DSVR, "MagneticFieldStrength"},
	DictionaryEntry{0x00180088, DSVR, "SpacingBetweenSlices"},
	DictionaryEntry{0x00181020, LOVR, "SoftwareVersions"},
	DictionaryEntry{0x00181030, LOVR, "ProtocolName"},
	DictionaryEntry{0x00181150, ISVR, "ExposureTime"},
	DictionaryEntry{0x00181151, ISVR, "XRayTubeCurrent"},
	DictionaryEntry{0x00185100, CSVR, "PatientPosition"},
	DictionaryEntry{TargetUIDTag, UIVR, "TargetUID"},

	DictionaryEntry{StudyInstanceUIDTag, UIVR, "StudyInstanceUID"},
	DictionaryEntry{SeriesInstanceUIDTag, UIVR, "SeriesInstanceUID"},
	DictionaryEntry{0x00200010, SHVR, "StudyID"},
	DictionaryEntry{0x00200011, ISVR, "SeriesNumber"},
	DictionaryEntry{0x00200012, ISVR, "AcquisitionNumber"},
	DictionaryEntry{InstanceNumberTag, ISVR, "InstanceNumber"},
	DictionaryEntry{0x00200020, CSVR, "PatientOrientation"},
	DictionaryEntry{ImagePositionPatientTag, DSVR, "ImagePositionPatient"},
	DictionaryEntry{ImageOrientationPatientTag, DSVR, "ImageOrientationPatient"},
	DictionaryEntry{FrameOfReferenceUIDTag, UIVR, "FrameOfReferenceUID"},
	DictionaryEntry{0x00201040, LOVR, "PositionReferenceIndicator"},
	DictionaryEntry{0x00201041, DSVR, "SliceLocation"},
	DictionaryEntry{0x00204000, LTVR, "ImageComments"},

	DictionaryEntry{SamplesPerPixelTag, USVR, "SamplesPerPixel"},
	DictionaryEntry{0x00280004, CSVR, "PhotometricInterpretation"},
	DictionaryEntry{0x00280006, USVR, "PlanarConfiguration"},
	DictionaryEntry{0x00280008, ISVR, "NumberOfFrames"},
	DictionaryEntry{0x00280009, ATVR, "FrameIncrementPointer"},
	DictionaryEntry{RowsTag, USVR, "Rows"},
	DictionaryEntry{ColumnsTag, USVR, "Columns"},
	DictionaryEntry{PixelSpacingTag, DSVR, "PixelSpacing"},
	DictionaryEntry{BitsAllocatedTag, USVR, "BitsAllocated"},
	DictionaryEntry{0x00280101, USVR, "BitsStored"},
	DictionaryEntry{0x00280102, USVR, "HighBit"},
	DictionaryEntry{PixelRepresentationTag, USVR, "PixelRepresentation"},
	DictionaryEntry{0x00280106, SSVR, "SmallestImagePixelValue"},
	DictionaryEntry{0x00280107, SSVR, "LargestImagePixelValue"},
	DictionaryEntry{0x00281050, DSVR, "WindowCenter"},
	DictionaryEntry{0x00281051, DSVR, "WindowWidth"},
	DictionaryEntry{0x00281052, DSVR, "RescaleIntercept"},
	DictionaryEntry{0x00281053, DSVR, "RescaleSlope"},
	DictionaryEntry{0x00281054, LOVR, "RescaleType"},
	DictionaryEntry{0x00281101, SSVR, "RedPaletteColorLookupTableDescriptor"},
	DictionaryEntry{0x00281201, OWVR, "RedPaletteColorLookupTableData"},
	DictionaryEntry{GrayLookupTableDataTag, OWVR, "GrayLookupTableData"},
	DictionaryEntry{0x00282110, CSVR, "LossyImageCompression"},
	DictionaryEntry{0x00283010, SQVR, "VOILUTSequence"},

	DictionaryEntry{0x00321060, LOVR, "RequestedProcedureDescription"},
	DictionaryEntry{0x00400244, DAVR, "PerformedProcedureStepStartDate"},
	DictionaryEntry{0x00400254, LOVR, "PerformedProcedureStepDescription"},
	DictionaryEntry{0x0040A730, SQVR, "ContentSequence"},

	DictionaryEntry{0x00500004, CSVR, "CalibrationImage"},
	DictionaryEntry{0x00540081, USVR, "NumberOfSlices"},

	DictionaryEntry{0x00620001, CSVR, "SegmentationType"},
	DictionaryEntry{0x00640002, SQVR, "DeformableRegistrationSequence"},
	DictionaryEntry{0x00640003, UIVR, "SourceFrameOfReferenceUID"},
	DictionaryEntry{0x00640005, SQVR, "DeformableRegistrationGridSequence"},
	DictionaryEntry{0x00640007, ULVR, "GridDimensions"},
	DictionaryEntry{0x00640008, FDVR, "GridResolution"},
	DictionaryEntry{0x00640009, OFVR, "VectorGridData"},
	DictionaryEntry{0x0064000F, SQVR, "PreDeformationMatrixRegistrationSequence"},
	DictionaryEntry{0x00640010, SQVR, "PostDeformationMatrixRegistrationSequence"},

	DictionaryEntry{0x00700001, SQVR, "GraphicAnnotationSequence"},
	DictionaryEntry{0x00700080, CSVR, "ContentLabel"},
	DictionaryEntry{0x00700081, LOVR, "ContentDescription"},
	DictionaryEntry{0x00700084, PNVR, "ContentCreatorName"},
	DictionaryEntry{RegistrationSequenceTag, SQVR, "RegistrationSequence"},
	DictionaryEntry{MatrixRegistrationSequenceTag, SQVR, "MatrixRegistrationSequence"},
	DictionaryEntry{MatrixSequenceTag, SQVR, "MatrixSequence"},
	DictionaryEntry{FrameOfReferenceTransformationMatrixTypeTag, CSVR, "FrameOfReferenceTransformationMatrixType"},
	DictionaryEntry{0x0070030D, SQVR, "RegistrationTypeCodeSequence"},
	DictionaryEntry{0x0070030F, STVR, "FiducialDescription"},

	DictionaryEntry{IconImageSequenceTag, SQVR, "IconImageSequence"},

	DictionaryEntry{FrameOfReferenceTransformationMatrixTag, DSVR, "FrameOfReferenceTransformationMatrix"},
	DictionaryEntry{0x300600C8, LOVR, "FrameOfReferenceTransformationComment"},

	// repeating groups
	DictionaryEntry{0x50000005, USVR, "CurveDimensions"},
	DictionaryEntry{0x50002610, USVR, "CurveDataDescriptor"},
	DictionaryEntry{AudioSampleDataTag, OWVR, "AudioSampleData"},
	DictionaryEntry{CurveDataTag, OWVR, "CurveData"},
	DictionaryEntry{0x60000010, USVR, "OverlayRows"},
	DictionaryEntry{0x60000011, USVR, "OverlayColumns"},
	DictionaryEntry{0x60000040, CSVR, "OverlayType"},
	DictionaryEntry{0x60000050, SSVR, "OverlayOrigin"},
	DictionaryEntry{0x60000100, USVR, "OverlayBitsAllocated"},
	DictionaryEntry{0x60000102, USVR, "OverlayBitPosition"},
	DictionaryEntry{OverlayDataTag, OWVR, "OverlayData"},

	DictionaryEntry{PixelDataProviderURLTag, URVR, "PixelDataProviderURL"},
	DictionaryEntry{EncapsulatedDocumentTag, OBVR, "EncapsulatedDocument"},
	DictionaryEntry{WaveformDataTag, OWVR, "WaveformData"},
	DictionaryEntry{SpectroscopyDataTag, OFVR, "SpectroscopyData"},
	DictionaryEntry{FloatPixelDataTag, OFVR, "FloatPixelData"},
	DictionaryEntry{DoubleFloatPixelDataTag, ODVR, "DoubleFloatPixelData"},
	DictionaryEntry{PixelDataTag, OWVR, "PixelData"},
	DictionaryEntry{0xFFFAFFFA, SQVR, "DigitalSignaturesSequence"},
	DictionaryEntry{0xFFFCFFFC, OBVR, "DataSetTrailingPadding"},
)
