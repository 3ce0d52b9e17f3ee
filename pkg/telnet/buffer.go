package telnet

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded is returned by Buffer.Put when a write does not fit in
// the reserved capacity. Callers are expected to Reserve first.
var ErrCapacityExceeded = errors.New("buffer capacity exceeded")

// Buffer is a fixed-capacity, append-only byte accumulator. It never grows on
// its own; Reserve and Resize are the only ways to change its capacity.
//
// A Buffer has a single owner and is not safe for concurrent use.
type Buffer struct {
	data   []byte
	cursor int
}

// NewBuffer returns an empty buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, capacity)}
}

// BufferFrom returns a full buffer holding a copy of p.
func BufferFrom(p []byte) *Buffer {
	b := NewBuffer(len(p))
	copy(b.data, p)
	b.cursor = len(p)
	return b
}

// Cap returns the total capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Len returns the number of bytes written.
func (b *Buffer) Len() int { return b.cursor }

// Available returns the number of bytes that can be Put without reserving.
func (b *Buffer) Available() int { return len(b.data) - b.cursor }

// Reserve grows the capacity by extra bytes. Written content keeps its offset.
func (b *Buffer) Reserve(extra int) {
	if extra <= 0 {
		return
	}
	grown := make([]byte, len(b.data)+extra)
	copy(grown, b.data[:b.cursor])
	b.data = grown
}

// Put appends p. It fails without writing anything if p does not fit.
func (b *Buffer) Put(p []byte) error {
	if b.cursor+len(p) > len(b.data) {
		return fmt.Errorf("put %d bytes with %d of %d used: %w", len(p), b.cursor, len(b.data), ErrCapacityExceeded)
	}
	b.cursor += copy(b.data[b.cursor:], p)
	return nil
}

// Split removes the written region and returns it as a new buffer. The
// receiver is left empty with the capacity that was still unused.
func (b *Buffer) Split() *Buffer {
	taken := BufferFrom(b.data[:b.cursor])
	b.data = make([]byte, len(b.data)-b.cursor)
	b.cursor = 0
	return taken
}

// Resize sets the capacity to n, truncating written content if needed.
func (b *Buffer) Resize(n int) {
	if n < 0 {
		n = 0
	}
	switch {
	case n > len(b.data):
		b.Reserve(n - len(b.data))
	case n < len(b.data):
		b.data = append([]byte(nil), b.data[:n]...)
		if b.cursor > n {
			b.cursor = n
		}
	}
}

// Freeze returns a copy of the written region.
func (b *Buffer) Freeze() []byte {
	return append([]byte{}, b.data[:b.cursor]...)
}

// Clear zeroes the buffer and rewinds the cursor. Capacity is unchanged.
func (b *Buffer) Clear() {
	clear(b.data)
	b.cursor = 0
}

// Clone returns an independent copy, including unused capacity.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{
		data:   append([]byte{}, b.data...),
		cursor: b.cursor,
	}
}
