// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Content of multipart/form-data. The content looks like:
//
//	--boundary CRLF
//	Content-Disposition: form-data; name="field1" CRLF
//	Content-Type: text/plain CRLF
//	CRLF
//	value1 CRLF
//	--boundary-- CRLF

package hemi

import (
	"bytes"

	"github.com/juju/errors"

	"github.com/hexinfra/mpform/hemi/library/arena"
)

type formState uint8

const (
	stateBoundaryName   formState = iota // --boundary
	statePartHeaderLine                  // field-name: field-value CRLF
	statePartContent                     // the content line
	statePartDone                        // -- after the boundary
)

var bytesCRLF = []byte("\r\n")

func isDashes(p []byte) bool { return len(p) >= 2 && p[0] == '-' && p[1] == '-' }
func isCRLF(p []byte) bool   { return len(p) >= 2 && p[0] == '\r' && p[1] == '\n' }

// contentParser walks the content with a cursor that only moves forward.
type contentParser struct {
	arena    *arena.Arena
	boundary string
	text     []byte
	pFore    int
	part     *Part // current part
	parts    *[]*Part
}

// ParseContent splits content into parts delimited by boundary and appends them to parts.
// Only the first line after the header fields of a part is taken as its content.
func ParseContent(a *arena.Arena, parts *[]*Part, boundary string, content []byte) error {
	p := contentParser{
		arena:    a,
		boundary: boundary,
		text:     content,
		parts:    parts,
	}
	state := stateBoundaryName
	for state != statePartDone {
		next, err := p.step(state)
		if err != nil {
			if logger.IsTraceEnabled() {
				logger.Tracef("state=%d fore=%d: %v", state, p.pFore, err)
			}
			return err
		}
		state = next
	}
	return nil
}

func (p *contentParser) step(state formState) (formState, error) {
	switch state {
	case stateBoundaryName:
		return p.boundaryName()
	case statePartHeaderLine:
		return p.partHeaderLine()
	case statePartContent:
		return p.partContent()
	default:
		panic("BUG: unknown form state")
	}
}

func (p *contentParser) boundaryName() (formState, error) {
	text, fore := p.text, p.pFore
	if !isDashes(text[fore:]) {
		return statePartDone, errors.Annotatef(ErrBodyParse, "expect \"--\" at %d", fore)
	}
	fore += 2
	if edge := fore + len(p.boundary); edge > len(text) || string(text[fore:edge]) != p.boundary {
		return statePartDone, errors.Annotatef(ErrBodyParse, "expect boundary %q at %d", p.boundary, fore)
	}
	fore += len(p.boundary)

	var next formState
	if isCRLF(text[fore:]) { // --boundary CRLF
		p.part = newPart()
		*p.parts = append(*p.parts, p.part)
		logger.Tracef("found part %d at %d", len(*p.parts), p.pFore)
		next = statePartHeaderLine
	} else if isDashes(text[fore:]) { // --boundary--
		next = statePartDone
	} else {
		return statePartDone, errors.Annotatef(ErrBodyParse, "expect CRLF or \"--\" after boundary at %d", fore)
	}
	p.pFore = fore + 2
	return next, nil
}

func (p *contentParser) partHeaderLine() (formState, error) {
	rest := p.text[p.pFore:]
	eol := bytes.Index(rest, bytesCRLF)
	if eol == -1 {
		return statePartDone, errors.Annotatef(ErrBodyParse, "unterminated field at %d", p.pFore)
	}
	if eol == 0 { // end of fields
		p.pFore += 2
		return statePartContent, nil
	}
	line := rest[:eol]
	colon := bytes.IndexByte(line, ':')
	if colon == -1 {
		return statePartDone, errors.Annotatef(ErrBodyParse, "expect ':' in field at %d", p.pFore)
	}
	value := colon + 1
	for value < len(line) && line[value] == ' ' {
		value++
	}
	p.part.Headers.Add(p.arena.String(line[:colon]), p.arena.String(line[value:]))
	p.pFore += eol + 2
	return statePartHeaderLine, nil
}

func (p *contentParser) partContent() (formState, error) {
	rest := p.text[p.pFore:]
	eol := bytes.Index(rest, bytesCRLF)
	if eol == -1 {
		return statePartDone, errors.Annotatef(ErrBodyParse, "unterminated content at %d", p.pFore)
	}
	p.part.setContent(p.arena.String(rest[:eol]))
	p.pFore += eol + 2
	return stateBoundaryName, nil
}
