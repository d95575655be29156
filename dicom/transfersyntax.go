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
	"strings"
)

// list of transfer syntaxes obtained from
// http://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_A
const (
	// ImplicitVRLittleEndianUID is the Implicit VR Little Endian UID
	ImplicitVRLittleEndianUID = "1.2.840.10008.1.2"
	// ExplicitVRLittleEndianUID is the Explicit VR Little Endian UID
	ExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1"
	// EncapsulatedUncompressedExplicitVRLittleEndianUID is the Encapsulated Uncompressed Explicit
	// VR Little Endian UID
	EncapsulatedUncompressedExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1.98"
	// DeflatedExplicitVRLittleEndianUID is the Deflated Explicit VR Little Endian UID
	DeflatedExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1.99"
	// ExplicitVRBigEndianUID is the Explicit VR Big Endian UID
	ExplicitVRBigEndianUID = "1.2.840.10008.1.2.2"
	// JPEGBaselineUID is the JPEG Baseline (Process 1) transfer syntax UID
	JPEGBaselineUID = "1.2.840.10008.1.2.4.50"
	// JPEGLosslessSV1UID is the JPEG Lossless, Non-Hierarchical, First-Order Prediction UID
	JPEGLosslessSV1UID = "1.2.840.10008.1.2.4.70"
	// JPEG2000UID is the JPEG 2000 Image Compression UID
	JPEG2000UID = "1.2.840.10008.1.2.4.91"
	// RLELosslessUID is the RLE Lossless UID
	RLELosslessUID = "1.2.840.10008.1.2.5"
)

// TransferSyntax describes how the data set of an instance is encoded.
type TransferSyntax struct {
	UID  string
	Name string

	// Implicit is true when VRs are not stored in the data set
	Implicit bool

	// ByteOrder of binary numbers, tags and lengths
	ByteOrder binary.ByteOrder

	// Deflated syntaxes compress the whole data set with deflate
	Deflated bool

	// Encapsulated syntaxes store compressed pixel data as a sequence of fragments
	Encapsulated bool
}

func (ts *TransferSyntax) String() string {
	return ts.Name
}

var (
	implicitVRLittleEndian = &TransferSyntax{
		UID: ImplicitVRLittleEndianUID, Name: "Implicit VR Little Endian",
		Implicit: true, ByteOrder: binary.LittleEndian,
	}
	explicitVRLittleEndian = &TransferSyntax{
		UID: ExplicitVRLittleEndianUID, Name: "Explicit VR Little Endian",
		ByteOrder: binary.LittleEndian,
	}
	explicitVRBigEndian = &TransferSyntax{
		UID: ExplicitVRBigEndianUID, Name: "Explicit VR Big Endian",
		ByteOrder: binary.BigEndian,
	}
	deflatedExplicitVRLittleEndian = &TransferSyntax{
		UID: DeflatedExplicitVRLittleEndianUID, Name: "Deflated Explicit VR Little Endian",
		ByteOrder: binary.LittleEndian, Deflated: true,
	}
)

// encapsulatedSyntaxes are the compressed pixel data syntaxes. Their data sets are all encoded in
// explicit VR little endian.
var encapsulatedSyntaxes = map[string]string{
	EncapsulatedUncompressedExplicitVRLittleEndianUID: "Encapsulated Uncompressed Explicit VR Little Endian",

	JPEGBaselineUID:           "JPEG Baseline (Process 1)",
	"1.2.840.10008.1.2.4.51":  "JPEG Extended (Process 2 & 4)",
	"1.2.840.10008.1.2.4.57":  "JPEG Lossless, Non-Hierarchical (Process 14)",
	JPEGLosslessSV1UID:        "JPEG Lossless, Non-Hierarchical, First-Order Prediction",
	"1.2.840.10008.1.2.4.80":  "JPEG-LS Lossless Image Compression",
	"1.2.840.10008.1.2.4.81":  "JPEG-LS Lossy (Near-Lossless) Image Compression",
	"1.2.840.10008.1.2.4.90":  "JPEG 2000 Image Compression (Lossless Only)",
	JPEG2000UID:               "JPEG 2000 Image Compression",
	"1.2.840.10008.1.2.4.92":  "JPEG 2000 Part 2 Multi-component Image Compression (Lossless Only)",
	"1.2.840.10008.1.2.4.93":  "JPEG 2000 Part 2 Multi-component Image Compression",
	"1.2.840.10008.1.2.4.94":  "JPIP Referenced",
	"1.2.840.10008.1.2.4.95":  "JPIP Referenced Deflate",
	"1.2.840.10008.1.2.4.100": "MPEG2 Main Profile / Main Level",
	"1.2.840.10008.1.2.4.101": "MPEG2 Main Profile / High Level",
	"1.2.840.10008.1.2.4.102": "MPEG-4 AVC/H.264 High Profile / Level 4.1",
	"1.2.840.10008.1.2.4.103": "MPEG-4 AVC/H.264 BD-compatible High Profile / Level 4.1",
	"1.2.840.10008.1.2.4.104": "MPEG-4 AVC/H.264 High Profile / Level 4.2 For 2D Video",
	"1.2.840.10008.1.2.4.105": "MPEG-4 AVC/H.264 High Profile / Level 4.2 For 3D Video",
	"1.2.840.10008.1.2.4.106": "MPEG-4 AVC/H.264 Stereo High Profile / Level 4.2",
	"1.2.840.10008.1.2.4.107": "HEVC/H.265 Main Profile / Level 5.1",
	"1.2.840.10008.1.2.4.108": "HEVC/H.265 Main 10 Profile / Level 5.1",
	"1.2.840.10008.1.2.4.110": "JPEG XL Lossless",
	"1.2.840.10008.1.2.4.111": "JPEG XL JPEG Recompression",
	"1.2.840.10008.1.2.4.112": "JPEG XL",
	"1.2.840.10008.1.2.4.201": "High-Throughput JPEG 2000 Image Compression (Lossless Only)",
	"1.2.840.10008.1.2.4.202": "High-Throughput JPEG 2000 with RPCL Options Image Compression (Lossless Only)",
	"1.2.840.10008.1.2.4.203": "High-Throughput JPEG 2000 Image Compression",
	RLELosslessUID:            "RLE Lossless",
}

// LookupTransferSyntax returns the TransferSyntax identified by uid. Trailing NUL or space padding
// is ignored. ErrUnsupportedTransferSyntax is returned for unknown UIDs.
func LookupTransferSyntax(uid string) (*TransferSyntax, error) {
	uid = strings.TrimRight(uid, "\x00 ")
	switch uid {
	case ImplicitVRLittleEndianUID:
		return implicitVRLittleEndian, nil
	case ExplicitVRLittleEndianUID:
		return explicitVRLittleEndian, nil
	case ExplicitVRBigEndianUID:
		return explicitVRBigEndian, nil
	case DeflatedExplicitVRLittleEndianUID:
		return deflatedExplicitVRLittleEndian, nil
	}

	if name, ok := encapsulatedSyntaxes[uid]; ok {
		return &TransferSyntax{
			UID: uid, Name: name, ByteOrder: binary.LittleEndian, Encapsulated: true,
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedTransferSyntax, uid)
}

const (
	vrSize  = 2
	tagSize = 4
)

// readVR returns the VR of the element identified by tag. In the explicit syntaxes the VR is read
// from the stream, in the implicit syntax it is resolved through the dictionary.
func (ts *TransferSyntax) readVR(dr *dcmReader, tag DataElementTag, dict Dictionary) (*VR, error) {
	if ts.Implicit {
		return lookupVR(dict, tag), nil
	}

	b, err := dr.next(vrSize)
	if err != nil {
		return nil, err
	}
	return lookupVRByName(string(b))
}

// readValueLength reads the value length field following the VR. For explicit VR, lengths can be
// stored in a 32 bit field or a 16 bit field depending on the VR type. The 2 cases are defined at
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.2
func (ts *TransferSyntax) readValueLength(dr *dcmReader, vr *VR) (uint32, error) {
	if ts.Implicit {
		return dr.UInt32(ts.ByteOrder)
	}

	if vr.HasLongLength() {
		// 2 reserved bytes precede the 32 bit length
		b, err := dr.next(2 + 4)
		if err != nil {
			return 0, err
		}
		return ts.ByteOrder.Uint32(b[2:]), nil
	}

	length, err := dr.UInt16(ts.ByteOrder)
	if err != nil {
		return 0, err
	}
	return uint32(length), nil
}
