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
	"errors"
	"io"
	"testing"
	"testing/iotest"
)

func sequentialBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

// stalledReader never makes progress
type stalledReader struct{}

func (stalledReader) Read(p []byte) (int, error) {
	return 0, nil
}

func TestNewDcmReader_minimumBufferSize(t *testing.T) {
	dr := newDcmReader(bytes.NewReader(nil), 10)
	if len(dr.buf) != MinBufferSize {
		t.Fatalf("newDcmReader(_, 10) buffer size => %v, want %v", len(dr.buf), MinBufferSize)
	}
}

func TestDcmReader_Bytes(t *testing.T) {
	data := sequentialBytes(3000)
	tests := []struct {
		name string
		r    io.Reader
	}{
		{
			"value larger than the buffer",
			bytes.NewReader(data),
		},
		{
			"source returning one byte at a time",
			iotest.OneByteReader(bytes.NewReader(data)),
		},
		{
			"source returning half of the requested bytes",
			iotest.HalfReader(bytes.NewReader(data)),
		},
		{
			"source returning the last bytes with io.EOF",
			iotest.DataErrReader(bytes.NewReader(data)),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dr := newDcmReader(tc.r, MinBufferSize)
			if err := dr.Skip(7); err != nil {
				t.Fatalf("Skip(7) => %v", err)
			}
			got, err := dr.Bytes(2500)
			if err != nil {
				t.Fatalf("Bytes(2500) => %v", err)
			}
			if !bytes.Equal(got, data[7:2507]) {
				t.Fatalf("Bytes(2500) returned the wrong bytes")
			}
			if dr.offset() != 2507 {
				t.Fatalf("offset() => %v, want %v", dr.offset(), 2507)
			}
			if err := dr.Skip(int64(len(data) - 2507)); err != nil {
				t.Fatalf("Skip(_) => %v", err)
			}
			if eof, err := dr.atEOF(); !eof || err != nil {
				t.Fatalf("atEOF() => (%v, %v), want (true, nil)", eof, err)
			}
		})
	}
}

func TestDcmReader_offsetAcrossRefills(t *testing.T) {
	data := sequentialBytes(1024)
	dr := newDcmReader(iotest.OneByteReader(bytes.NewReader(data)), MinBufferSize)

	for i := 0; i < len(data)/4; i++ {
		if got, want := dr.offset(), int64(4*i); got != want {
			t.Fatalf("offset() => %v, want %v", got, want)
		}
		b, err := dr.next(4)
		if err != nil {
			t.Fatalf("next(4) => %v", err)
		}
		if !bytes.Equal(b, data[4*i:4*i+4]) {
			t.Fatalf("next(4) => %v, want %v", b, data[4*i:4*i+4])
		}
	}
}

func TestDcmReader_truncated(t *testing.T) {
	tests := []struct {
		name string
		read func(dr *dcmReader) error
		want error
	}{
		{
			"peek on an exhausted stream",
			func(dr *dcmReader) error {
				_, err := dr.peek(4)
				return err
			},
			io.EOF,
		},
		{
			"tag cut by the end of the stream",
			func(dr *dcmReader) error {
				if _, err := dr.next(2); err != nil {
					return err
				}
				_, err := dr.Tag(le)
				return err
			},
			io.ErrUnexpectedEOF,
		},
		{
			"bytes past the end of the stream",
			func(dr *dcmReader) error {
				_, err := dr.Bytes(10)
				return err
			},
			io.ErrUnexpectedEOF,
		},
		{
			"skip past the end of the stream",
			func(dr *dcmReader) error {
				return dr.Skip(10)
			},
			io.ErrUnexpectedEOF,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := sampleBytes
			if tc.want == io.EOF {
				data = nil
			}
			if err := tc.read(dcmReaderFromBytes(data)); err != tc.want {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDcmReader_ioErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		r    io.Reader
		want error
	}{
		{
			"read failure",
			iotest.ErrReader(boom),
			boom,
		},
		{
			"timeout after some data",
			iotest.TimeoutReader(iotest.OneByteReader(bytes.NewReader(sampleBytes))),
			iotest.ErrTimeout,
		},
		{
			"source never making progress",
			stalledReader{},
			io.ErrNoProgress,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dr := newDcmReader(tc.r, MinBufferSize)
			_, err := dr.Bytes(8)

			var ioErr *IOError
			if !errors.As(err, &ioErr) {
				t.Fatalf("Bytes(8) => %v, want an *IOError", err)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Bytes(8) => %v, want it to wrap %v", err, tc.want)
			}
		})
	}
}

// lastReadFails returns its data and err from the same Read call
type lastReadFails struct {
	data []byte
	err  error
}

func (r *lastReadFails) Read(p []byte) (int, error) {
	n := copy(p, r.data)
	r.data = r.data[n:]
	if len(r.data) > 0 {
		return n, nil
	}
	return n, r.err
}

func TestDcmReader_errorAfterData(t *testing.T) {
	boom := errors.New("boom")
	data := sequentialBytes(100)
	dr := newDcmReader(&lastReadFails{data, boom}, MinBufferSize)

	got, err := dr.Bytes(int64(len(data)))
	if err != nil {
		t.Fatalf("Bytes(%d) => %v, want the bytes delivered with the failure", len(data), err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("Bytes(%d) => %v, want %v", len(data), got, data)
	}
	if dr.offset() != int64(len(data)) {
		t.Fatalf("offset() => %v, want %v", dr.offset(), len(data))
	}

	_, err = dr.next(1)
	var ioErr *IOError
	if !errors.As(err, &ioErr) || !errors.Is(err, boom) {
		t.Fatalf("next(1) => %v, want an *IOError wrapping %v", err, boom)
	}
}

func TestDcmReader_rest(t *testing.T) {
	data := sequentialBytes(1000)
	dr := newDcmReader(bytes.NewReader(data), MinBufferSize)
	if _, err := dr.next(10); err != nil {
		t.Fatalf("next(10) => %v", err)
	}

	got, err := io.ReadAll(dr.rest())
	if err != nil {
		t.Fatalf("reading rest: %v", err)
	}
	if !bytes.Equal(got, data[10:]) {
		t.Fatalf("rest() returned %v bytes, want %v", len(got), len(data)-10)
	}
}

func TestReadTag(t *testing.T) {
	testCases := []struct {
		name  string
		in    []byte
		want  DataElementTag
		order binary.ByteOrder
	}{
		{
			"read tag in big endian",
			[]byte{0x00, 0x02, 0x00, 0x10},
			0x00020010,
			be,
		},
		{
			"read tag in little endian",
			[]byte{0x02, 0x00, 0x10, 0x00},
			0x00020010,
			le,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := dcmReaderFromBytes(tc.in).Tag(tc.order)
			if err != nil {
				t.Fatalf("Tag(_) => %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
