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

const webkitBoundary = "----WebKitFormBoundaryXYZ"

const webkitContent = "" +
	"------WebKitFormBoundaryXYZ\r\n" +
	"Content-Disposition: form-data; name=\"field1\"\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"value1\r\n" +
	"------WebKitFormBoundaryXYZ\r\n" +
	"Content-Disposition: form-data; name=\"field2\"\r\n" +
	"Content-Type: application/json\r\n" +
	"\r\n" +
	"{\"key\": \"value\"}\r\n" +
	"------WebKitFormBoundaryXYZ--\r\n"

func TestParseContent(t *testing.T) {
	c := qt.New(t)
	a := arena.Default()
	defer a.Free()

	var parts []*Part
	err := ParseContent(a, &parts, webkitBoundary, []byte(webkitContent))
	c.Assert(err, qt.IsNil)
	c.Assert(parts, qt.HasLen, 2)

	c.Assert(parts[0].Headers.All(), qt.DeepEquals, [][2]string{
		{"Content-Disposition", "form-data; name=\"field1\""},
		{"Content-Type", "text/plain"},
	})
	c.Assert(parts[0].HasContent(), qt.IsTrue)
	c.Assert(parts[0].Content, qt.Equals, "value1")

	c.Assert(parts[1].Headers.All(), qt.DeepEquals, [][2]string{
		{"Content-Disposition", "form-data; name=\"field2\""},
		{"Content-Type", "application/json"},
	})
	c.Assert(parts[1].Content, qt.Equals, "{\"key\": \"value\"}")
	contentType, ok := parts[1].Header("content-type")
	c.Assert(ok, qt.IsTrue)
	c.Assert(contentType, qt.Equals, "application/json")
}

func TestParseContentTerminal(t *testing.T) {
	c := qt.New(t)
	a := arena.Default()
	defer a.Free()

	tests := []struct {
		content string
		nParts  int
	}{
		{"--b--\r\n", 0},
		{"--b--", 0},
		{"--b\r\n\r\nx\r\n--b--", 1},
		// Anything after the terminal boundary is not looked at.
		{"--b\r\n\r\nx\r\n--b--\r\n--b\r\n", 1},
		{"--b\r\n\r\nx\r\n--b--garbage", 1},
	}
	for _, test := range tests {
		var parts []*Part
		err := ParseContent(a, &parts, "b", []byte(test.content))
		c.Assert(err, qt.IsNil, qt.Commentf("%q", test.content))
		c.Assert(parts, qt.HasLen, test.nParts, qt.Commentf("%q", test.content))
	}
}

func TestParseContentEmptyParts(t *testing.T) {
	c := qt.New(t)
	a := arena.Default()
	defer a.Free()

	var parts []*Part
	err := ParseContent(a, &parts, "b", []byte("--b\r\n\r\n\r\n--b\r\nX-A:   1\r\nX-A:2\r\nX-B:\r\n\r\nz\r\n--b--\r\n"))
	c.Assert(err, qt.IsNil)
	c.Assert(parts, qt.HasLen, 2)

	c.Assert(parts[0].Headers.Len(), qt.Equals, 0)
	c.Assert(parts[0].HasContent(), qt.IsTrue)
	c.Assert(parts[0].Content, qt.Equals, "")

	c.Assert(parts[1].Headers.All(), qt.DeepEquals, [][2]string{{"X-A", "1"}, {"X-A", "2"}, {"X-B", ""}})
	c.Assert(parts[1].Headers.FindAll("X-A"), qt.DeepEquals, []string{"1", "2"})
	c.Assert(parts[1].Content, qt.Equals, "z")
}

func TestParseContentErrors(t *testing.T) {
	c := qt.New(t)
	a := arena.Default()
	defer a.Free()

	tests := []struct {
		name     string
		boundary string
		content  string
	}{
		{"empty", "b", ""},
		{"no dashes", "b", "b\r\n\r\nx\r\n--b--\r\n"},
		{"single dash", "b", "-b\r\n"},
		{"boundary mismatch", "b", "--c\r\n\r\nx\r\n--c--\r\n"},
		{"short boundary", "b", "--"},
		{"truncated boundary", "bound", "--bou"},
		{"bad framing", "b", "--bx\r\n\r\nx\r\n--b--\r\n"},
		{"nothing after boundary", "b", "--b"},
		{"half CRLF after boundary", "b", "--b\r"},
		{"no colon", "b", "--b\r\nContent-Disposition form-data\r\n\r\nx\r\n--b--\r\n"},
		{"colon in later line only", "b", "--b\r\nA\r\nB: c\r\n\r\nx\r\n--b--\r\n"},
		{"unterminated field", "b", "--b\r\nA: b"},
		{"unterminated content", "b", "--b\r\nA: b\r\n\r\nvalue"},
		{"multi-line content", "b", "--b\r\n\r\nline1\r\nline2\r\n--b--\r\n"},
		{"no terminal boundary", "b", "--b\r\n\r\nx\r\n"},
	}
	for _, test := range tests {
		var parts []*Part
		err := ParseContent(a, &parts, test.boundary, []byte(test.content))
		c.Assert(err, qt.ErrorIs, ErrBodyParse, qt.Commentf("%s", test.name))
	}
}

func TestParseContentPartBeforeFields(t *testing.T) {
	c := qt.New(t)
	a := arena.Default()
	defer a.Free()

	// A part is added once its boundary is found, before its fields are read.
	var parts []*Part
	err := ParseContent(a, &parts, "b", []byte("--b\r\nbroken\r\n"))
	c.Assert(err, qt.ErrorIs, ErrBodyParse)
	c.Assert(parts, qt.HasLen, 1)
	c.Assert(parts[0].Headers.Len(), qt.Equals, 0)
	c.Assert(parts[0].HasContent(), qt.IsFalse)
}

func TestParseContentAgain(t *testing.T) {
	c := qt.New(t)
	content := []byte(webkitContent)

	parse := func() []PartView {
		a := arena.Default()
		defer a.Free()
		data, err := Parse(a, "multipart/form-data; boundary="+webkitBoundary, content)
		c.Assert(err, qt.IsNil)
		return data.View().Parts
	}
	c.Assert(parse(), qt.DeepEquals, parse())
	c.Assert(string(content), qt.Equals, webkitContent)
}

func BenchmarkParseContent(b *testing.B) {
	content := []byte(webkitContent)
	a := arena.Default()
	b.SetBytes(int64(len(content)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var parts []*Part
		if err := ParseContent(a, &parts, webkitBoundary, content); err != nil {
			b.Fatal(err)
		}
		a.Free()
	}
}
