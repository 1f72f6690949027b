package decompress

import (
	"compress/bzip2"
	"io"
)

// newBzip2Adapter wraps stdlib compress/bzip2, which exposes only a decoder
// (method 12 is read-only in this format), matching the reference reader's
// direct use of the same package.
func newBzip2Adapter() Adapter {
	return newPipeAdapter(func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(bzip2.NewReader(r)), nil
	})
}
