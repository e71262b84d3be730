// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Content-Type field value of multipart/form-data.

package hemi

import (
	"strings"

	"github.com/juju/errors"

	"github.com/hexinfra/mpform/hemi/library/arena"
	"github.com/hexinfra/mpform/hemi/library/omap"
)

// ParseContentType parses text like `multipart/form-data; boundary=----XYZ` into data.MimeType and data.Attributes.
// A "boundary" attribute is required. Quoted boundary (boundary="XYZ") is not supported.
func ParseContentType(a *arena.Arena, data *FormData, text string) error {
	if text == "" {
		return errors.Annotate(ErrHeaderParse, "empty content type")
	}
	semic := strings.IndexByte(text, ';')
	if semic == -1 { // only the mime type exists, which is illegal since boundary is required
		return errors.Annotatef(ErrHeaderParse, "no parameters in %q", text)
	}
	data.setMimeType(a.Clone(text[:semic]))

	// Skip ';' and the spaces after it. Only this first gap is trimmed.
	back := semic + 1
	for back < len(text) && text[back] == ' ' {
		back++
	}
	for back < len(text) {
		fore := strings.IndexByte(text[back:], ';')
		if fore == -1 {
			break
		}
		fore += back
		if fore > back { // ";;" has nothing in between
			addAttribute(a, data.Attributes, text[back:fore])
		}
		back = fore + 1
	}
	if back < len(text) { // the last pair
		addAttribute(a, data.Attributes, text[back:])
	}

	if !data.Attributes.Has("boundary") {
		return errors.Annotatef(ErrHeaderParse, "no boundary in %q", text)
	}
	return nil
}

func addAttribute(a *arena.Arena, attributes *omap.Map, pair string) { // key=value
	key, value := pair, ""
	if equal := strings.IndexByte(pair, '='); equal >= 0 {
		key, value = pair[:equal], pair[equal+1:]
	}
	attributes.Add(a.Clone(key), a.Clone(value))
}
