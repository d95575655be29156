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
	"errors"
	"io"
)

// ByteRegion is a contiguous sequence of bytes in a file described by an Offset and a length
type ByteRegion struct {
	Offset int64
	Length int64
}

// BulkDataReader represents a streamable contiguous sequence of bytes within a file
type BulkDataReader struct {
	io.Reader

	// Offset is the number of bytes in the file preceding the bulk data described
	// by the BulkDataReader
	Offset int64
}

// PixelDataRegion returns the region of the file holding the Pixel Data value. It is only known
// for pixel data of explicit length in a data set that is not deflated.
func (r Result) PixelDataRegion() (ByteRegion, bool) {
	if !r.HasPixelData || r.Deflated || r.PixelDataLength == UndefinedLength {
		return ByteRegion{}, false
	}
	return ByteRegion{r.FileOffset, int64(r.PixelDataLength)}, true
}

// NewPixelDataReader returns a BulkDataReader over the Pixel Data value of the file parsed into r.
func NewPixelDataReader(file io.ReaderAt, r Result) (*BulkDataReader, error) {
	region, ok := r.PixelDataRegion()
	if !ok {
		return nil, errors.New("pixel data region unknown")
	}
	return &BulkDataReader{io.NewSectionReader(file, region.Offset, region.Length), region.Offset}, nil
}
