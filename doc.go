// Package zipcore is a sans-I/O ZIP archive parsing engine.
//
// It exposes two finite state machines, one in [github.com/go-zipcore/zipcore/fsm]
// for locating and decoding the central directory (the "AFSM") and one for
// streaming a single entry's decompressed content (the "EFSM"). Neither
// machine performs I/O: callers feed them byte buffers and re-invoke them
// after satisfying a read request, which makes the same state machines
// reusable from blocking code, a worker pool, or an async runtime.
//
// This package holds the format-independent data model ([Archive], [Entry],
// [Mode], [Encoding]) produced by the AFSM, plus the sanitizer used to turn
// an entry name into a safe extraction path. See the zipsync subpackage for
// a ready-to-use blocking wrapper.
package zipcore
