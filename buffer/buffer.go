// Package buffer implements the fixed-capacity circular byte buffer shared
// by the archive and entry state machines: a consumed region at the front,
// a data region holding unread bytes, and a space region available for the
// next read.
package buffer

import "fmt"

// DefaultCapacity is used by both the archive and entry state machines. It
// must exceed 64 KiB since the end-of-central-directory scan window can be
// as large as 65535 bytes of comment plus the fixed-size record.
const DefaultCapacity = 256 * 1024

// Buffer is a fixed-capacity byte buffer with three regions: consumed bytes
// at the front (discarded), a data region of unread filled bytes, and a
// space region of writable tail. It is not safe for concurrent use.
type Buffer struct {
	buf   []byte
	start int // data begins here
	end   int // data ends here (space begins here)

	readBytes int64 // total bytes fill()ed since the last reset(), across shift()
}

// New allocates a Buffer with the given fixed capacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic(fmt.Sprintf("buffer: invalid capacity %d", capacity))
	}
	return &Buffer{buf: make([]byte, capacity)}
}

// Cap returns the buffer's fixed capacity.
func (b *Buffer) Cap() int { return len(b.buf) }

// Data returns the unread, filled slice. The returned slice aliases the
// buffer's storage and is invalidated by the next Fill, Consume, Shift, or
// Reset call.
func (b *Buffer) Data() []byte { return b.buf[b.start:b.end] }

// Space returns the writable tail. Callers fill it and then call Fill with
// the number of bytes written. The returned slice aliases the buffer's
// storage and is invalidated by the next mutating call.
func (b *Buffer) Space() []byte { return b.buf[b.end:] }

// Fill marks n bytes of Space as newly filled, extending Data. It panics if
// n exceeds the available space.
func (b *Buffer) Fill(n int) {
	if n < 0 || b.end+n > len(b.buf) {
		panic(fmt.Sprintf("buffer: fill(%d) exceeds available space %d", n, len(b.buf)-b.end))
	}
	b.end += n
	b.readBytes += int64(n)
}

// Consume marks n bytes of Data as consumed, shrinking Data from the front.
// It panics if n exceeds the available data.
func (b *Buffer) Consume(n int) {
	if n < 0 || b.start+n > b.end {
		panic(fmt.Sprintf("buffer: consume(%d) exceeds available data %d", n, b.end-b.start))
	}
	b.start += n
}

// Shift compacts the buffer by moving the data region down to offset 0,
// maximizing the contiguous space available for the next read.
func (b *Buffer) Shift() {
	if b.start == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.start:b.end])
	b.start = 0
	b.end = n
}

// Reset empties the buffer entirely, discarding both data and the
// accumulated read-byte count.
func (b *Buffer) Reset() {
	b.start = 0
	b.end = 0
	b.readBytes = 0
}

// ReadBytes returns the total number of bytes ever passed to Fill since
// construction or the last Reset, regardless of how much has since been
// consumed or shifted out.
func (b *Buffer) ReadBytes() int64 { return b.readBytes }

// ReadOffset returns the absolute file offset the caller should read into
// Space next, given base, the file offset corresponding to ReadBytes() == 0.
func (b *Buffer) ReadOffset(base int64) int64 { return base + b.readBytes }
