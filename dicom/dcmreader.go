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
	"io"
)

const (
	// DefaultBufferSize is the capacity of the parse buffer unless configured otherwise.
	DefaultBufferSize = 8192

	// MinBufferSize is the smallest parse buffer capacity. Smaller requests are raised to it.
	MinBufferSize = 256

	// maxEmptyReads bounds the number of consecutive (0, nil) reads tolerated from a source
	maxEmptyReads = 100
)

// dcmReader is a fixed capacity window over a ByteSource, providing convenience methods for
// parsing tags, numbers and values. The unparsed bytes are buf[s:e]; base is the absolute stream
// offset of buf[0], so the absolute offset of any position p in the window is base + p.
//
// All reads are checked against e. Values larger than the window are consumed chunk by chunk,
// refilling the window in between.
type dcmReader struct {
	src  io.Reader
	buf  []byte
	s, e int
	base int64
	eof  bool

	// err is a source failure held back until the bytes read along with it are consumed
	err error
}

func newDcmReader(src io.Reader, size int) *dcmReader {
	if size < MinBufferSize {
		size = MinBufferSize
	}
	return &dcmReader{src: src, buf: make([]byte, size)}
}

// remaining returns the number of unparsed bytes in the window.
func (dr *dcmReader) remaining() int {
	return dr.e - dr.s
}

// offset returns the absolute stream offset of the next unparsed byte.
func (dr *dcmReader) offset() int64 {
	return dr.base + int64(dr.s)
}

// refill moves the unparsed bytes to the front of the buffer and appends the next chunk read from
// the source. It returns false when the source is exhausted and no unparsed bytes remain. A read
// failing after it delivered bytes is reported by the next refill.
func (dr *dcmReader) refill() (bool, error) {
	if dr.err != nil {
		return dr.e > dr.s, dr.err
	}

	n := copy(dr.buf, dr.buf[dr.s:dr.e])
	dr.base += int64(dr.s)
	dr.s, dr.e = 0, n

	for empty := 0; !dr.eof && dr.e < len(dr.buf); empty++ {
		got, err := dr.src.Read(dr.buf[dr.e:])
		dr.e += got
		if err == io.EOF {
			dr.eof = true
			break
		}
		if err != nil {
			dr.err = &IOError{"reading", err}
			if got > 0 {
				break
			}
			return dr.e > 0, dr.err
		}
		if got > 0 {
			break
		}
		if empty >= maxEmptyReads {
			return dr.e > 0, &IOError{"reading", io.ErrNoProgress}
		}
	}

	return !dr.eof || dr.e > 0, nil
}

// ensure refills the window until n bytes are unparsed. It returns false if the stream ends
// first. n must not exceed the buffer capacity.
func (dr *dcmReader) ensure(n int) (bool, error) {
	for dr.remaining() < n {
		if dr.eof {
			return false, nil
		}
		if _, err := dr.refill(); err != nil {
			return false, err
		}
	}
	return true, nil
}

// atEOF reports whether the stream has no unparsed bytes left.
func (dr *dcmReader) atEOF() (bool, error) {
	ok, err := dr.ensure(1)
	return !ok, err
}

// peek returns the next n bytes without consuming them. The returned slice is only valid until the
// next call on dr. io.EOF is returned when no bytes are left at all and io.ErrUnexpectedEOF when the
// stream ends within the n bytes.
func (dr *dcmReader) peek(n int) ([]byte, error) {
	ok, err := dr.ensure(n)
	if err != nil {
		return nil, err
	}
	if !ok {
		if dr.remaining() == 0 {
			return nil, io.EOF
		}
		return nil, io.ErrUnexpectedEOF
	}
	return dr.buf[dr.s : dr.s+n], nil
}

// advance consumes n bytes previously made available by peek.
func (dr *dcmReader) advance(n int) {
	if n > dr.remaining() {
		panic("dicom: advance past the end of the parse window")
	}
	dr.s += n
}

// next returns and consumes the next n bytes; see peek.
func (dr *dcmReader) next(n int) ([]byte, error) {
	b, err := dr.peek(n)
	if err != nil {
		return nil, err
	}
	dr.advance(n)
	return b, nil
}

// Tag returns a DataElementTag from the input stream
func (dr *dcmReader) Tag(order binary.ByteOrder) (DataElementTag, error) {
	b, err := dr.next(4)
	if err != nil {
		return 0, err
	}
	return decodeTag(b, order), nil
}

// UInt16 returns a uint16 from the input stream
func (dr *dcmReader) UInt16(order binary.ByteOrder) (uint16, error) {
	b, err := dr.next(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(b), nil
}

// UInt32 returns a uint32 from the input stream
func (dr *dcmReader) UInt32(order binary.ByteOrder) (uint32, error) {
	b, err := dr.next(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(b), nil
}

// String returns a string of length n from the input stream
func (dr *dcmReader) String(n int64) (string, error) {
	b, err := dr.Bytes(n)
	return string(b), err
}

// Bytes returns the next n bytes of the input stream in a newly allocated slice. n may exceed the
// buffer capacity. The slice grows with the bytes actually read, so a bogus length fails with
// io.ErrUnexpectedEOF at the end of the stream instead of allocating n bytes up front.
func (dr *dcmReader) Bytes(n int64) ([]byte, error) {
	out := make([]byte, 0, min(n, int64(len(dr.buf))))
	for int64(len(out)) < n {
		if dr.remaining() == 0 {
			if dr.eof {
				return out, io.ErrUnexpectedEOF
			}
			if _, err := dr.refill(); err != nil {
				return out, err
			}
			continue
		}
		k := int(min(int64(dr.remaining()), n-int64(len(out))))
		out = append(out, dr.buf[dr.s:dr.s+k]...)
		dr.s += k
	}
	return out, nil
}

// Skip advances the input stream by n bytes
func (dr *dcmReader) Skip(n int64) error {
	for n > 0 {
		if dr.remaining() == 0 {
			if dr.eof {
				return io.ErrUnexpectedEOF
			}
			if _, err := dr.refill(); err != nil {
				return err
			}
			continue
		}
		k := int(min(int64(dr.remaining()), n))
		dr.s += k
		n -= int64(k)
	}
	return nil
}

// rest returns a reader over the unparsed bytes of the window followed by the rest of the source.
// dr must not be used afterwards.
func (dr *dcmReader) rest() io.Reader {
	leftover := make([]byte, dr.remaining())
	copy(leftover, dr.buf[dr.s:dr.e])
	dr.s = dr.e
	if dr.eof {
		return bytes.NewReader(leftover)
	}
	return io.MultiReader(bytes.NewReader(leftover), dr.src)
}
