package decompress

// Method 9 (Enhanced Deflate/Deflate64) has no maintained Go implementation
// in the ecosystem this module draws from; New returns ErrMethodNotEnabled
// for it rather than carrying a half-working decoder.
