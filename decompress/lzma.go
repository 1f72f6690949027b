package decompress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/therootcompany/xz/lzma"
)

// ErrLZMAPropertiesMissing is returned when method 14 is selected but no
// properties bytes were supplied.
var ErrLZMAPropertiesMissing = errors.New("zipcore/decompress: lzma properties missing")

// newLZMAAdapter wraps github.com/therootcompany/xz/lzma, which speaks the
// classic .lzma stream shape: 5 property bytes followed by an 8-byte
// little-endian uncompressed size. The ZIP format's method-14 stream omits
// that trailing size field (the ZIP entry already carries it), so this
// adapter synthesizes the classic header by appending the "unknown size"
// sentinel (all 0xFF) before splicing in the real compressed bytes.
func newLZMAAdapter(props []byte) (Adapter, error) {
	if len(props) == 0 {
		return nil, ErrLZMAPropertiesMissing
	}
	header := make([]byte, 0, len(props)+8)
	header = append(header, props...)
	for i := 0; i < 8; i++ {
		header = append(header, 0xff)
	}
	return newPipeAdapter(func(r io.Reader) (io.ReadCloser, error) {
		dec, err := lzma.NewReader(io.MultiReader(bytes.NewReader(header), r))
		if err != nil {
			return nil, fmt.Errorf("zipcore/decompress: lzma: %w", err)
		}
		return dec, nil
	}), nil
}
