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
	"io"
	"testing"
)

func TestResult_PixelDataRegion(t *testing.T) {
	tests := []struct {
		name   string
		in     Result
		want   ByteRegion
		wantOK bool
	}{
		{
			"native pixel data",
			Result{FileOffset: 300, HasPixelData: true, PixelDataLength: 16},
			ByteRegion{300, 16},
			true,
		},
		{
			"no pixel data",
			Result{FileOffset: 300},
			ByteRegion{},
			false,
		},
		{
			"encapsulated pixel data",
			Result{FileOffset: 300, HasPixelData: true, PixelDataLength: UndefinedLength},
			ByteRegion{},
			false,
		},
		{
			"deflated data set",
			Result{FileOffset: 300, HasPixelData: true, PixelDataLength: 16, Deflated: true},
			ByteRegion{},
			false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.in.PixelDataRegion()
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("PixelDataRegion() => (%v, %v), want (%v, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestNewPixelDataReader(t *testing.T) {
	pixels := sequentialBytes(64)
	file := withPreamble(
		metaHeader(ExplicitVRLittleEndianUID),
		explicitLE(PatientNameTag, PNVR, text("DOE^JOHN")),
		explicitLE(PixelDataTag, OWVR, pixels),
	)

	_, res, err := Parse(bytes.NewReader(file), WithLogger(nullLogger()))
	if err != nil {
		t.Fatalf("Parse(_) => %v", err)
	}
	r, err := NewPixelDataReader(bytes.NewReader(file), res)
	if err != nil {
		t.Fatalf("NewPixelDataReader(_, _) => %v", err)
	}
	if r.Offset != int64(len(file)-len(pixels)) {
		t.Fatalf("Offset => %v, want %v", r.Offset, len(file)-len(pixels))
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading pixel data: %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Fatalf("pixel data reader returned %v bytes, want %v", len(got), len(pixels))
	}

	if _, err := NewPixelDataReader(bytes.NewReader(file), Result{}); err == nil {
		t.Fatalf("NewPixelDataReader without pixel data should fail")
	}
}
