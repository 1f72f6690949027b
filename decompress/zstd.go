package decompress

import (
	"io"

	"github.com/DataDog/zstd"
)

// newZstdAdapter wraps github.com/DataDog/zstd (method 93), the zstd dep
// already present transitively in the reference repo's module graph.
func newZstdAdapter() Adapter {
	return newPipeAdapter(func(r io.Reader) (io.ReadCloser, error) {
		return zstd.NewReader(r), nil
	})
}
