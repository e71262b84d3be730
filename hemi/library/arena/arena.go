// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Arena is a bump allocator. Memory is handed out from pooled chunks and is released in bulk by Free().

package arena

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
)

const ( // sizes
	K = 1 << 10

	_4K   = 4 * K
	_16K  = 16 * K
	_64K1 = 64*K - 1
)

// ErrBadChunkSize is returned by New when chunkSize is out of (0, 64K).
const ErrBadChunkSize = errors.ConstError("bad arena chunk size")

var ( // pools
	pool4K   sync.Pool
	pool16K  sync.Pool
	pool64K1 sync.Pool
)

func get4K() []byte   { return getNK(&pool4K, _4K) }
func get16K() []byte  { return getNK(&pool16K, _16K) }
func get64K1() []byte { return getNK(&pool64K1, _64K1) }
func getNK(pool *sync.Pool, size int) []byte {
	if x := pool.Get(); x != nil {
		return x.([]byte)
	}
	return make([]byte, size)
}
func putNK(p []byte) bool {
	switch cap(p) {
	case _4K:
		pool4K.Put(p[:_4K])
	case _16K:
		pool16K.Put(p[:_16K])
	case _64K1:
		pool64K1.Put(p[:_64K1])
	default: // made for a large allocation. leave it to gc
		return false
	}
	return true
}

// Arena
type Arena struct {
	chunkSize int      // preferred size of pooled chunks
	chunks    [][]byte // chunks[len-1] is the current one
	edge      int      // used bytes in current chunk
	used      int64    // bytes handed out so far
	reserved  int64    // bytes held by all chunks
}

// New creates an arena whose chunks are taken from the pool that best fits chunkSize.
func New(chunkSize int) (*Arena, error) {
	if chunkSize <= 0 || chunkSize >= 64*K {
		return nil, errors.Annotatef(ErrBadChunkSize, "chunk size %d", chunkSize)
	}
	return &Arena{chunkSize: chunkSize}, nil
}

// Default returns an arena with 4K chunks.
func Default() *Arena {
	return &Arena{chunkSize: _4K}
}

func (a *Arena) grow(n int) {
	var chunk []byte
	if size := max(n, a.chunkSize); size <= _4K {
		chunk = get4K()
	} else if size <= _16K {
		chunk = get16K()
	} else if size <= _64K1 {
		chunk = get64K1()
	} else { // larger than any pooled chunk
		chunk = make([]byte, n)
	}
	a.chunks = append(a.chunks, chunk)
	a.edge = 0
	a.reserved += int64(cap(chunk))
}

// Alloc returns n bytes that stay valid until Free is called. The bytes are not zeroed.
func (a *Arena) Alloc(n int) []byte {
	if n < 0 {
		panic("arena: negative size")
	}
	if n == 0 {
		return nil
	}
	if len(a.chunks) == 0 || cap(a.chunks[len(a.chunks)-1])-a.edge < n {
		a.grow(n)
	}
	chunk := a.chunks[len(a.chunks)-1]
	p := chunk[a.edge : a.edge+n : a.edge+n]
	a.edge += n
	a.used += int64(n)
	return p
}

// Copy copies p into the arena.
func (a *Arena) Copy(p []byte) []byte {
	q := a.Alloc(len(p))
	copy(q, p)
	return q
}

// String copies p into the arena and returns a string view of the copy. WARNING: the string dies with the arena!
func (a *Arena) String(p []byte) string {
	if len(p) == 0 {
		return ""
	}
	return weakString(a.Copy(p))
}

// Clone copies s into the arena.
func (a *Arena) Clone(s string) string {
	if len(s) == 0 {
		return ""
	}
	p := a.Alloc(len(s))
	copy(p, s)
	return weakString(p)
}

// Free returns all chunks to their pools. Everything allocated before is invalid afterwards.
func (a *Arena) Free() {
	for i, chunk := range a.chunks {
		putNK(chunk)
		a.chunks[i] = nil
	}
	a.chunks = a.chunks[:0]
	a.edge = 0
	a.used = 0
	a.reserved = 0
}

func (a *Arena) Used() int64     { return a.used }
func (a *Arena) Reserved() int64 { return a.reserved }
func (a *Arena) Chunks() int     { return len(a.chunks) }

// Stats returns a human readable summary like "37 B used of 4.1 kB in 1 chunks".
func (a *Arena) Stats() string {
	return fmt.Sprintf("%s used of %s in %d chunks", humanize.Bytes(uint64(a.used)), humanize.Bytes(uint64(a.reserved)), len(a.chunks))
}

func weakString(p []byte) string { // WARNING: *DO NOT* mutate p while s is in use!
	return unsafe.String(unsafe.SliceData(p), len(p))
}
