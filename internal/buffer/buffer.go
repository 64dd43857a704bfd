// Package buffer holds file bytes for the duration of a single request.
//
// A Buffer is owned by exactly one request and is never written to disk,
// shared across requests, or retained past the handler's return. Handlers
// collect every buffer they allocate in a Scope and release the scope with
// defer, so backing memory is dropped on every exit path: normal return,
// error, timeout, or client disconnect.
package buffer

import "bytes"

// Buffer is the in-memory content of one uploaded or generated file.
// The content-kind hint is used only to pick response headers.
type Buffer struct {
	data []byte
	kind string
}

// New wraps data in a Buffer with the given content-kind hint.
// The buffer takes ownership of data; callers must not reuse the slice.
func New(data []byte, kind string) *Buffer {
	return &Buffer{data: data, kind: kind}
}

// Bytes returns the underlying content. Valid until Release.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the content length in bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Kind returns the content-kind hint (a MIME type).
func (b *Buffer) Kind() string {
	return b.kind
}

// Reader returns a fresh ReadSeeker over the content.
func (b *Buffer) Reader() *bytes.Reader {
	return bytes.NewReader(b.data)
}

// Release zeroes and drops the backing memory. Safe to call more than once.
// Zeroing is best effort against heap inspection; the hard guarantee is that
// the slice becomes unreachable when the owning request exits.
func (b *Buffer) Release() {
	if b == nil || b.data == nil {
		return
	}
	for i := range b.data {
		b.data[i] = 0
	}
	b.data = nil
}

// Scope tracks every buffer allocated during one request so that a single
// deferred Release covers them all, whatever the exit path.
type Scope struct {
	bufs []*Buffer
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// Track wraps data in a Buffer and registers it with the scope.
func (s *Scope) Track(data []byte, kind string) *Buffer {
	b := New(data, kind)
	s.bufs = append(s.bufs, b)
	return b
}

// Add registers an existing buffer with the scope.
func (s *Scope) Add(b *Buffer) *Buffer {
	if b != nil {
		s.bufs = append(s.bufs, b)
	}
	return b
}

// Len returns the number of tracked buffers.
func (s *Scope) Len() int {
	return len(s.bufs)
}

// Release releases every tracked buffer. Safe to call more than once.
func (s *Scope) Release() {
	for _, b := range s.bufs {
		b.Release()
	}
	s.bufs = nil
}
