package decompress

import (
	"compress/flate"
	"io"
)

// newDeflateAdapter wraps stdlib compress/flate, the same decoder the
// reference ZIP reader this package is modeled on uses directly for method 8.
func newDeflateAdapter() Adapter {
	return newPipeAdapter(func(r io.Reader) (io.ReadCloser, error) {
		return flate.NewReader(r), nil
	})
}
