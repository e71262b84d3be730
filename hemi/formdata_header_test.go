// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package hemi

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/hexinfra/mpform/hemi/library/arena"
)

func TestParseContentType(t *testing.T) {
	c := qt.New(t)
	a := arena.Default()
	defer a.Free()

	tests := []struct {
		text     string
		mimeType string
		boundary string
	}{
		{"multipart/form-data; boundary=----WebKitFormBoundaryXYZ", "multipart/form-data", "----WebKitFormBoundaryXYZ"},
		{"multipart/form-data;boundary=abc", "multipart/form-data", "abc"},
		{"multipart/form-data;    boundary=abc", "multipart/form-data", "abc"},
		{"multipart/mixed; boundary=a=b", "multipart/mixed", "a=b"},
		{"; boundary=x", "", "x"},
	}
	for _, test := range tests {
		data := NewFormData()
		err := ParseContentType(a, data, test.text)
		c.Assert(err, qt.IsNil, qt.Commentf("%q", test.text))
		c.Assert(data.HasMimeType(), qt.IsTrue)
		c.Assert(data.MimeType, qt.Equals, test.mimeType)
		boundary, ok := data.Boundary()
		c.Assert(ok, qt.IsTrue)
		c.Assert(boundary, qt.Equals, test.boundary)
	}
}

func TestParseContentTypeNoParameters(t *testing.T) {
	c := qt.New(t)
	a := arena.Default()
	defer a.Free()

	data := NewFormData()
	err := ParseContentType(a, data, "multipart/form-data")
	c.Assert(err, qt.ErrorIs, ErrHeaderParse)
	c.Assert(data.HasMimeType(), qt.IsFalse)
	c.Assert(data.MimeType, qt.Equals, "")
	c.Assert(data.Attributes.Len(), qt.Equals, 0)
}

func TestParseContentTypeEmpty(t *testing.T) {
	c := qt.New(t)
	data := NewFormData()
	err := ParseContentType(arena.Default(), data, "")
	c.Assert(err, qt.ErrorIs, ErrHeaderParse)
	c.Assert(data.HasMimeType(), qt.IsFalse)
}

func TestParseContentTypeNoBoundary(t *testing.T) {
	c := qt.New(t)
	a := arena.Default()
	defer a.Free()

	tests := []struct {
		text       string
		attributes [][2]string
	}{
		{"multipart/form-data;", [][2]string{}},
		{"multipart/form-data;   ", [][2]string{}},
		{"multipart/form-data; charset=utf-8", [][2]string{{"charset", "utf-8"}}},
		{"multipart/form-data; charset", [][2]string{{"charset", ""}}},
		// Only the gap after the first ';' is trimmed.
		{"multipart/form-data; charset=utf-8; boundary=x", [][2]string{{"charset", "utf-8"}, {" boundary", "x"}}},
	}
	for _, test := range tests {
		data := NewFormData()
		err := ParseContentType(a, data, test.text)
		c.Assert(err, qt.ErrorIs, ErrHeaderParse, qt.Commentf("%q", test.text))
		c.Assert(data.MimeType, qt.Equals, "multipart/form-data")
		c.Assert(data.Attributes.All(), qt.DeepEquals, test.attributes)
	}
}

func TestParseContentTypeAttributes(t *testing.T) {
	c := qt.New(t)
	a := arena.Default()
	defer a.Free()

	data := NewFormData()
	err := ParseContentType(a, data, "multipart/form-data; boundary=a;charset=utf-8;;boundary=b;")
	c.Assert(err, qt.IsNil)
	c.Assert(data.Attributes.All(), qt.DeepEquals, [][2]string{
		{"boundary", "a"},
		{"charset", "utf-8"},
		{"boundary", "b"},
	})
	boundary, _ := data.Boundary()
	c.Assert(boundary, qt.Equals, "a")
}

func TestParseContentTypeCopies(t *testing.T) {
	c := qt.New(t)
	a := arena.Default()
	defer a.Free()

	text := []byte("multipart/form-data; boundary=XYZ")
	data := NewFormData()
	c.Assert(ParseContentType(a, data, string(text)), qt.IsNil)
	c.Assert(a.Used(), qt.Equals, int64(len("multipart/form-data")+len("boundary")+len("XYZ")))
}

func BenchmarkParseContentType(b *testing.B) {
	a := arena.Default()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseContentType(a, NewFormData(), "multipart/form-data; boundary=----WebKitFormBoundaryXYZ")
		if i%100 == 99 {
			a.Free()
		}
	}
	a.Free()
}
