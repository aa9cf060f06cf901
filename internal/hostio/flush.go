// Completion: 100% - Module complete
package hostio

import (
	"bufio"
	"io"
)

// WriteFlusher is a byte sink whose buffered bytes reach the underlying
// writer on Flush.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

var discardWriteFlusher WriteFlusher = nopFlusher{io.Discard}

// NewWriteFlusher wraps w in a bufio.Writer unless it already flushes or
// buffers in memory.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	if w == nil || w == io.Discard {
		return discardWriteFlusher
	}

	if wf, is := w.(WriteFlusher); is {
		return wf
	}

	// in memory buffers, as implemented by types like bytes.Buffer and
	// strings.Builder, do not need to be flushed
	type buffer interface {
		io.Writer
		Cap() int
		Len() int
		Grow(n int)
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		return nopFlusher{w}
	}

	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }

// NewByteReader returns r itself when it can already read single bytes.
func NewByteReader(r io.Reader) io.ByteReader {
	if r == nil {
		return emptyReader{}
	}
	if br, is := r.(io.ByteReader); is {
		return br
	}
	return bufio.NewReader(r)
}

type emptyReader struct{}

func (emptyReader) ReadByte() (byte, error) { return 0, io.EOF }
