// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Omap is an ordered association list of name-value pairs. Duplicate names are kept.

package omap

import (
	"strings"
)

// Entry is a name-value pair.
type Entry struct {
	Key   string
	Value string
}

// Map keeps entries in insertion order. Lookups return the first match.
type Map struct {
	entries []Entry
}

func New(capacity int) *Map {
	return &Map{entries: make([]Entry, 0, capacity)}
}

// Add appends a pair. It never overwrites.
func (m *Map) Add(key string, value string) {
	m.entries = append(m.entries, Entry{key, value})
}

func (m *Map) Find(key string) (value string, ok bool) {
	for i := 0; i < len(m.entries); i++ {
		if entry := &m.entries[i]; entry.Key == key {
			return entry.Value, true
		}
	}
	return "", false
}
func (m *Map) FindFold(key string) (value string, ok bool) { // case-insensitive, for http field names
	for i := 0; i < len(m.entries); i++ {
		if entry := &m.entries[i]; strings.EqualFold(entry.Key, key) {
			return entry.Value, true
		}
	}
	return "", false
}
func (m *Map) FindAll(key string) (values []string) {
	for i := 0; i < len(m.entries); i++ {
		if entry := &m.entries[i]; entry.Key == key {
			values = append(values, entry.Value)
		}
	}
	return
}
func (m *Map) Has(key string) bool {
	_, ok := m.Find(key)
	return ok
}

func (m *Map) Len() int         { return len(m.entries) }
func (m *Map) At(i int) Entry   { return m.entries[i] }
func (m *Map) Entries() []Entry { return m.entries } // read only!

// All returns a copy of all pairs in order, like [["name", "value"], ...].
func (m *Map) All() [][2]string {
	all := make([][2]string, len(m.entries))
	for i, entry := range m.entries {
		all[i] = [2]string{entry.Key, entry.Value}
	}
	return all
}

func (m *Map) Reset() {
	clear(m.entries)
	m.entries = m.entries[:0]
}
