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
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/sirupsen/logrus"
)

const (
	preambleLength = 128
	magicMarker    = "DICM"
)

// State is the stage a Parser has reached.
type State int

// Parser states. A parse moves forward through them and ends in StateDone or StateFailed.
const (
	StateStart State = iota
	StatePreamble
	StateMetaHeader
	StateTransferSyntaxResolved
	StateDataSet
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateStart:                  "Start",
	StatePreamble:               "Preamble",
	StateMetaHeader:             "MetaHeader",
	StateTransferSyntaxResolved: "TransferSyntaxResolved",
	StateDataSet:                "DataSet",
	StateDone:                   "Done",
	StateFailed:                 "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Result describes a successful parse.
type Result struct {
	// FileOffset is the absolute offset of the first byte of the Pixel Data value, or the length of
	// the stream when there is no Pixel Data. For deflated data sets, offsets past the meta header
	// count inflated bytes.
	FileOffset int64

	// HasPixelData is true when the parse stopped at the Pixel Data element
	HasPixelData bool

	// PixelDataLength is the value length of the Pixel Data element, UndefinedLength for
	// encapsulated pixel data.
	PixelDataLength uint32

	// TransferSyntaxUID of the data set. Sniffed syntaxes report their UID as well.
	TransferSyntaxUID string

	// MissingMagic is true when the "DICM" marker was not found
	MissingMagic bool

	// Deflated is true when the data set was inflated before decoding
	Deflated bool
}

// Parser decodes the metadata of DICOM instances into an AttributeStore. A Parser may be reused
// for several instances one after another but is not safe for concurrent use; run one Parser per
// goroutine instead.
type Parser struct {
	store AttributeStore
	cfg   parseConfig
	state State
}

// NewParser returns a Parser forwarding elements to store, configured by opts.
func NewParser(store AttributeStore, opts ...ParseOption) *Parser {
	return &Parser{store: store, cfg: newParseConfig(opts...)}
}

// State returns the stage reached by the last parse
func (p *Parser) State() State {
	return p.state
}

// Update opens and parses the named file.
func (p *Parser) Update(name string) (Result, error) {
	p.state = StateStart
	src, err := OpenFile(name)
	if err != nil {
		p.state = StateFailed
		return Result{}, err
	}
	return p.Parse(src)
}

// Parse decodes src into the AttributeStore, stopping at the Pixel Data element or at the end of
// the stream. src is closed before Parse returns. Elements forwarded before a failure remain in the
// store.
func (p *Parser) Parse(src ByteSource) (Result, error) {
	defer func() {
		if err := src.Close(); err != nil {
			p.cfg.log.WithError(err).Warn("closing byte source")
		}
	}()

	p.state = StateStart
	res, err := p.parse(src)
	if err != nil {
		p.state = StateFailed
		p.cfg.log.WithError(err).WithField("index", p.cfg.index).Debug("parse failed")
		return res, err
	}
	p.state = StateDone
	return res, nil
}

func (p *Parser) parse(src io.Reader) (Result, error) {
	var res Result
	dr := newDcmReader(src, p.cfg.bufferSize)
	log := p.cfg.log.WithField("index", p.cfg.index)

	p.state = StatePreamble
	hasMetaHeader, err := readDicomSignature(dr, &res)
	if err != nil {
		return res, err
	}
	if res.MissingMagic {
		log.WithError(ErrMissingMagicMarker).Warn("parsing without the DICM marker")
	}

	p.state = StateMetaHeader
	var meta []*DataElement
	if hasMetaHeader {
		if meta, err = p.readMetaHeader(dr); err != nil {
			return res, fmt.Errorf("reading meta header: %w", err)
		}
	}

	syntax, err := findSyntax(meta)
	if err != nil {
		return res, err
	}
	if syntax == nil {
		if syntax, err = sniffSyntax(dr); err != nil {
			return res, err
		}
		log.WithField("syntax", syntax).Warn("transfer syntax not found in meta header, guessed from the data set")
	}
	res.TransferSyntaxUID = syntax.UID
	p.state = StateTransferSyntaxResolved
	log.WithField("syntax", syntax).Debug("transfer syntax resolved")

	for _, elem := range meta {
		if err := p.forward(elem); err != nil {
			return res, err
		}
	}

	if syntax.Deflated {
		// rest consumes the window, the data set starts at the current offset
		base := dr.offset()
		fr := &inflater{flate.NewReader(dr.rest()), log}
		defer fr.Close()
		dr = newDcmReader(fr, p.cfg.bufferSize)
		dr.base = base
		res.Deflated = true
	}

	p.state = StateDataSet
	return res, p.readDataSet(dr, syntax, &res)
}

// inflater ends the data set where a cut deflate stream ends, so that the element being decoded
// there reports its own truncation.
type inflater struct {
	io.ReadCloser
	log logrus.FieldLogger
}

func (r *inflater) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if err == io.ErrUnexpectedEOF {
		r.log.Warn("deflated data set ends before its final block")
		err = io.EOF
	}
	return n, err
}

// readDicomSignature consumes the preamble and the "DICM" marker. It reports whether a meta header
// follows. A missing marker is recorded on res, the meta header is then looked for at the start of
// the stream and right after the preamble.
func readDicomSignature(dr *dcmReader, res *Result) (bool, error) {
	// preamble, marker and the group number of the first meta element
	if _, err := dr.ensure(preambleLength + len(magicMarker) + 2); err != nil {
		return false, err
	}
	head := dr.buf[dr.s:dr.e]

	if len(head) >= preambleLength+len(magicMarker) &&
		string(head[preambleLength:preambleLength+len(magicMarker)]) == magicMarker {
		dr.advance(preambleLength + len(magicMarker))
		return true, nil
	}

	res.MissingMagic = true
	if len(head) >= 2 && binary.LittleEndian.Uint16(head) == metaGroup {
		return true, nil
	}
	if n := preambleLength + len(magicMarker); len(head) >= n+2 && binary.LittleEndian.Uint16(head[n:]) == metaGroup {
		// preamble with a damaged marker
		dr.advance(n)
		return true, nil
	}
	return false, nil
}

// readMetaHeader decodes the File Meta Information elements, always encoded in explicit VR little
// endian. It stops when the group changes or the group length is exhausted. The elements are
// returned instead of forwarded so that nothing reaches the store for an unsupported syntax.
func (p *Parser) readMetaHeader(dr *dcmReader) ([]*DataElement, error) {
	r := &elementReader{dr, explicitVRLittleEndian, p.cfg.dict, p.cfg.log, p.cfg.transforms}
	meta := make([]*DataElement, 0)
	end := int64(-1)

	for end < 0 || dr.offset() < end {
		b, err := dr.peek(2)
		if err == io.EOF {
			break
		}
		if err == nil && binary.LittleEndian.Uint16(b) != metaGroup {
			break
		}

		elem, err := r.readDataElement()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if lengths, ok := elem.ValueField.([]uint32); ok && elem.Tag == FileMetaInformationGroupLengthTag && len(lengths) == 1 {
			end = dr.offset() + int64(lengths[0])
		}
		meta = append(meta, elem)
	}

	return meta, nil
}

// findSyntax returns the TransferSyntax named by the meta header, or nil if the meta header does
// not name one.
func findSyntax(meta []*DataElement) (*TransferSyntax, error) {
	for _, elem := range meta {
		if elem.Tag == TransferSyntaxUIDTag {
			return findSyntaxFromElement(elem)
		}
	}
	return nil, nil
}

func findSyntaxFromElement(element *DataElement) (*TransferSyntax, error) {
	uid, err := element.StringValue()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedTransferSyntax, err)
	}
	return LookupTransferSyntax(uid)
}

// sniffSyntax guesses the syntax of a data set without meta header from its first element: an
// explicit VR element has two upper case letters after the tag.
func sniffSyntax(dr *dcmReader) (*TransferSyntax, error) {
	b, err := dr.peek(tagSize + vrSize)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return implicitVRLittleEndian, nil
	}
	if err != nil {
		return nil, err
	}
	if isVRCode(b[tagSize:]) {
		return explicitVRLittleEndian, nil
	}
	return implicitVRLittleEndian, nil
}

// readDataSet decodes the elements of the main data set until the Pixel Data element or the end of
// the stream.
func (p *Parser) readDataSet(dr *dcmReader, syntax *TransferSyntax, res *Result) error {
	r := &elementReader{dr, syntax, p.cfg.dict, p.cfg.log, p.cfg.transforms}

	for {
		h, err := r.readHeader()
		if err == io.EOF {
			res.FileOffset = dr.offset()
			return nil
		}
		if err != nil {
			return err
		}

		if h.tag == PixelDataTag {
			res.FileOffset = dr.offset()
			res.HasPixelData = true
			res.PixelDataLength = h.length
			p.cfg.log.WithFields(logrus.Fields{
				"index":  p.cfg.index,
				"offset": res.FileOffset,
				"length": h.length,
			}).Debug("stopped at pixel data")
			return nil
		}

		elem, err := r.readElementValue(h)
		if err != nil {
			return err
		}
		if err := p.forward(elem); err != nil {
			return err
		}
	}
}

// forward applies the transforms to elem and puts the result into the store
func (p *Parser) forward(elem *DataElement) error {
	elem, err := applyTransforms(elem, p.cfg.transforms)
	if err != nil {
		return err
	}
	if elem != nil {
		p.store.Put(p.cfg.index, elem)
	}
	return nil
}

// Parse parses a DICOM stream represented as an io.Reader, returning the DataSet of its metadata
// together with the Result. WithIndex is ignored.
func Parse(r io.Reader, opts ...ParseOption) (*DataSet, Result, error) {
	store := NewMetaData()
	p := NewParser(store, append(opts[:len(opts):len(opts)], WithIndex(0))...)

	res, err := p.Parse(NewReaderSource(r))
	ds, ok := store.DataSet(0)
	if !ok {
		ds = NewDataSet()
	}
	return ds, res, err
}
