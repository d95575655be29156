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
)

// vrType is to group common encodings together
type vrType int

const (
	// textVR is for value fields that will be interpreted as simple text with space padding
	textVR vrType = iota

	// numberBinaryVR is for value fields that are parsed as binary numbers
	numberBinaryVR

	// bulkDataVR groups sequences of binary numbers and unlimited text
	bulkDataVR

	// uniqueIdentifierVR is for VR: UI. It has null padding
	uniqueIdentifierVR

	// sequenceVR is for VR: SQ
	sequenceVR

	// tagVR is for tags. Distinct from numberBinaryVR due to little endian byte ordering
	tagVR
)

// UndefinedLength as specified
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
const UndefinedLength = 0xffffffff

// VR models the DICOM Value representations (VR)
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
type VR struct {
	// Name represents the 2-character VR Code
	Name string

	kind vrType

	// longForm VRs are encoded in the explicit syntaxes with 2 reserved bytes and a 32 bit length.
	longForm bool
}

func (vr *VR) String() string {
	return vr.Name
}

// HasLongLength reports whether the VR uses the 2 reserved bytes + 32 bit length form in the
// explicit VR syntaxes. The set is defined in Table 7.1-1 of
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.2
func (vr *VR) HasLongLength() bool {
	return vr.longForm
}

// allowsUndefinedLength is true for the VRs which may be delimited by items instead of a byte
// count: sequences, UN (sequences of unknown type) and the encapsulated pixel data VRs.
func (vr *VR) allowsUndefinedLength() bool {
	switch vr {
	case SQVR, UNVR, OBVR, OWVR:
		return true
	}
	return false
}

var vrLookupMap = map[string]*VR{}

func newVR(text string, vrType vrType, longForm bool) *VR {
	vr := &VR{text, vrType, longForm}
	vrLookupMap[vr.Name] = vr

	return vr
}

func lookupVRByName(name string) (*VR, error) {
	r, ok := vrLookupMap[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVR, name)
	}
	return r, nil
}

// isVRCode is true when b holds two upper case ASCII letters, the shape of every VR code.
func isVRCode(b []byte) bool {
	return len(b) >= 2 && b[0] >= 'A' && b[0] <= 'Z' && b[1] >= 'A' && b[1] <= 'Z'
}

// VR list obtained from
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
var (
	// textual VRs
	CSVR = newVR("CS", textVR, false)
	SHVR = newVR("SH", textVR, false)
	LOVR = newVR("LO", textVR, false)
	STVR = newVR("ST", textVR, false)
	LTVR = newVR("LT", textVR, false)
	ASVR = newVR("AS", textVR, false)

	// person name
	PNVR = newVR("PN", textVR, false)

	// application entity
	AEVR = newVR("AE", textVR, false)

	// dates/time VR
	DAVR = newVR("DA", textVR, false)
	TMVR = newVR("TM", textVR, false)
	DTVR = newVR("DT", textVR, false)

	// textual numbers
	ISVR = newVR("IS", textVR, false)
	DSVR = newVR("DS", textVR, false)

	// binary numbers
	SSVR = newVR("SS", numberBinaryVR, false)
	USVR = newVR("US", numberBinaryVR, false)
	SLVR = newVR("SL", numberBinaryVR, false)
	ULVR = newVR("UL", numberBinaryVR, false)
	FLVR = newVR("FL", numberBinaryVR, false)
	FDVR = newVR("FD", numberBinaryVR, false)
	SVVR = newVR("SV", numberBinaryVR, true)
	UVVR = newVR("UV", numberBinaryVR, true)

	// large binary sequences
	OBVR = newVR("OB", bulkDataVR, true)
	ODVR = newVR("OD", bulkDataVR, true)
	OLVR = newVR("OL", bulkDataVR, true)
	OVVR = newVR("OV", bulkDataVR, true)
	OWVR = newVR("OW", bulkDataVR, true)
	OFVR = newVR("OF", bulkDataVR, true)

	// unlimited char
	UCVR = newVR("UC", bulkDataVR, true)

	// unknown
	UNVR = newVR("UN", bulkDataVR, true)

	// URL
	URVR = newVR("UR", bulkDataVR, true)

	// unlimited text
	UTVR = newVR("UT", bulkDataVR, true)

	// attribute tag
	ATVR = newVR("AT", tagVR, false)

	// unique identifier
	UIVR = newVR("UI", uniqueIdentifierVR, false)

	// sequence
	SQVR = newVR("SQ", sequenceVR, true)
)
