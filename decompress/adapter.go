// Package decompress wraps every supported compression method behind one
// uniform, non-blocking feed/drain contract so the entry state machine never
// has to know which codec is behind a given entry.
package decompress

import "errors"

// Method identifies a ZIP compression method by its on-wire numeric code.
type Method uint16

const (
	MethodStore    Method = 0
	MethodDeflate  Method = 8
	MethodDeflate64 Method = 9
	MethodBzip2    Method = 12
	MethodLZMA     Method = 14
	MethodZstd     Method = 93
)

// ErrMethodNotSupported is returned by New for a method code this package
// has never heard of.
var ErrMethodNotSupported = errors.New("zipcore/decompress: unsupported compression method")

// ErrMethodNotEnabled is returned by New for a method this package
// recognizes but deliberately does not implement.
var ErrMethodNotEnabled = errors.New("zipcore/decompress: method recognized but not enabled")

// Adapter turns compressed bytes into decompressed bytes without performing
// any I/O of its own. Process may consume zero bytes and produce output (a
// pure drain), consume bytes and produce zero (a pure feed), or both. It
// must make progress whenever moreInputComing is false and input or
// internal decoder state still has pending data; once fully drained with no
// more input coming, it returns bytesRead == 0, bytesWritten == 0, err ==
// nil and the caller should stop calling Process.
type Adapter interface {
	Process(input, output []byte, moreInputComing bool) (bytesRead, bytesWritten int, err error)
	Close() error
}

// New constructs the Adapter for method. lzmaProps is used only for LZMA:
// the raw properties bytes preceding the compressed stream; other codecs
// ignore it.
func New(method Method, lzmaProps []byte) (Adapter, error) {
	switch method {
	case MethodStore:
		return &storeAdapter{}, nil
	case MethodDeflate:
		return newDeflateAdapter(), nil
	case MethodBzip2:
		return newBzip2Adapter(), nil
	case MethodLZMA:
		return newLZMAAdapter(lzmaProps)
	case MethodZstd:
		return newZstdAdapter(), nil
	case MethodDeflate64:
		return nil, ErrMethodNotEnabled
	default:
		return nil, ErrMethodNotSupported
	}
}
