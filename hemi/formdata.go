// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Multipart/form-data parsing. See RFC 7578: https://datatracker.ietf.org/doc/html/rfc7578

package hemi

import (
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/hexinfra/mpform/hemi/library/arena"
	"github.com/hexinfra/mpform/hemi/library/omap"
)

var logger = loggo.GetLogger("mpform.hemi")

const ( // defined errors
	ErrHeaderParse = errors.ConstError("bad multipart/form-data content type")
	ErrBodyParse   = errors.ConstError("bad multipart/form-data content")
)

const ( // initial sizes
	formDataAttributesSize = 4
	formDataPartsSize      = 4
	partHeadersSize        = 3 // RFC 7578 only expects content-disposition, content-type and content-transfer-encoding
)

// FormData is a parsed multipart/form-data request. All strings in it are allocated from the arena used to parse it.
type FormData struct {
	MimeType   string    // like: "multipart/form-data". valid only if HasMimeType()
	Attributes *omap.Map // like: boundary=----XYZ. duplicates are kept
	Parts      []*Part   // in order of appearance
	mimeSet    bool
}

func NewFormData() *FormData {
	return &FormData{
		Attributes: omap.New(formDataAttributesSize),
		Parts:      make([]*Part, 0, formDataPartsSize),
	}
}

func (d *FormData) HasMimeType() bool { return d.mimeSet }
func (d *FormData) setMimeType(mimeType string) {
	d.MimeType, d.mimeSet = mimeType, true
}

// Boundary returns the first "boundary" attribute.
func (d *FormData) Boundary() (string, bool) { return d.Attributes.Find("boundary") }

// Part is a boundary-delimited section of multipart content.
type Part struct {
	Content    string    // the single content line. valid only if HasContent()
	Headers    *omap.Map // in order of appearance. duplicates are kept
	contentSet bool
}

func newPart() *Part {
	return &Part{Headers: omap.New(partHeadersSize)}
}

func (p *Part) HasContent() bool { return p.contentSet }
func (p *Part) setContent(content string) {
	p.Content, p.contentSet = content, true
}

// Header returns the first header named name, ignoring case.
func (p *Part) Header(name string) (string, bool) { return p.Headers.FindFold(name) }

// FormView is a copy of FormData that outlives the arena. It is used for encoding.
type FormView struct {
	MimeType   string      `json:"mimeType" yaml:"mimeType"`
	Attributes [][2]string `json:"attributes" yaml:"attributes"`
	Parts      []PartView  `json:"parts" yaml:"parts"`
}

// PartView is a copy of Part.
type PartView struct {
	Headers [][2]string `json:"headers" yaml:"headers"`
	Content string      `json:"content" yaml:"content"`
}

func (d *FormData) View() *FormView {
	view := &FormView{
		MimeType:   strings.Clone(d.MimeType),
		Attributes: clonePairs(d.Attributes.All()),
		Parts:      make([]PartView, len(d.Parts)),
	}
	for i, part := range d.Parts {
		view.Parts[i].Headers = clonePairs(part.Headers.All())
		view.Parts[i].Content = strings.Clone(part.Content)
	}
	return view
}
func clonePairs(pairs [][2]string) [][2]string {
	for i := range pairs {
		pairs[i][0], pairs[i][1] = strings.Clone(pairs[i][0]), strings.Clone(pairs[i][1])
	}
	return pairs
}

// Parse parses a Content-Type value and then the content with the boundary found in it.
func Parse(a *arena.Arena, contentType string, content []byte) (*FormData, error) {
	data := NewFormData()
	if err := ParseContentType(a, data, contentType); err != nil {
		return nil, errors.Trace(err)
	}
	boundary, _ := data.Boundary() // ensured by ParseContentType
	if err := ParseContent(a, &data.Parts, boundary, content); err != nil {
		return nil, errors.Trace(err)
	}
	if logger.IsDebugEnabled() {
		logger.Debugf("parsed %s with %d parts, arena: %s", data.MimeType, len(data.Parts), a.Stats())
	}
	return data, nil
}

// ParseRequest is like Parse but takes the Content-Type value from the request header fields.
func ParseRequest(a *arena.Arena, requestHeaders *omap.Map, content []byte) (*FormData, error) {
	contentType, ok := requestHeaders.FindFold("Content-Type")
	if !ok {
		return nil, errors.Annotate(ErrHeaderParse, "no content-type field")
	}
	return Parse(a, contentType, content)
}
