package zipsync

import (
	"io"

	"github.com/go-zipcore/zipcore"
	"github.com/go-zipcore/zipcore/fsm"
)

// StreamedEntry is one entry's metadata as recoverable from a local header
// alone: a streaming read never reaches the central directory, so no mode,
// timestamps, or ownership are available (see zipcore.Entry for those).
type StreamedEntry struct {
	Name   string
	Method zipcore.Method
}

// minSignatureLen is how many bytes are needed to tell a local file header's
// signature apart from anything else (a central directory header, the end
// of the stream). Every zip record signature is 4 bytes.
const minSignatureLen = 4

// EntryStream reads entries from a non-seekable io.Reader one at a time, in
// wire order, without ever looking at the central directory. It is the
// streaming counterpart to Archive.Open: useful for pipes and HTTP bodies
// where an io.ReaderAt isn't available. Each entry's reader must be fully
// drained or Closed before Next is called again, since they share one
// underlying byte source.
type EntryStream struct {
	r io.Reader

	// pending sits at a potential entry boundary whose signature hasn't
	// been checked yet: either the very start of the stream, or the EFSM
	// of the entry Next most recently returned, once it finished. nil while
	// that entry is still being read, and once the stream is known
	// exhausted; Next reports io.EOF in both cases.
	pending *fsm.EntryFSM
	err     error
}

// StreamEntries begins a streaming read of r.
func StreamEntries(r io.Reader) *EntryStream {
	return &EntryStream{r: r, pending: fsm.NewStreamingEntryFSM(0)}
}

// Next advances to the next entry. It returns io.EOF once the stream's next
// bytes no longer look like a local header (the central directory, or the
// end of the archive). The io.ReadCloser returned by the previous call must
// be fully drained or Closed before calling Next again.
func (s *EntryStream) Next() (*StreamedEntry, io.ReadCloser, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	if s.pending == nil {
		s.err = io.EOF
		return nil, nil, io.EOF
	}

	efsm, err := s.probe(s.pending)
	if err != nil {
		s.err = err
		return nil, nil, err
	}
	if efsm == nil {
		s.err = io.EOF
		return nil, nil, io.EOF
	}
	s.pending = nil

	sr := &streamEntryReader{stream: s, efsm: efsm}
	if err := sr.ensureHeader(); err != nil {
		s.err = err
		return nil, nil, err
	}
	name, err := efsm.Name()
	if err != nil {
		s.err = err
		return nil, nil, err
	}
	meta := &StreamedEntry{Name: name, Method: efsm.Method()}
	return meta, sr, nil
}

// probe fills candidate's buffer with at least minSignatureLen bytes, then
// asks it whether an entry actually starts there. Filling first means
// NextEntry's verdict is never the ambiguous "not enough data yet" case —
// by the time it's consulted, the signature comparison is decisive.
func (s *EntryStream) probe(candidate *fsm.EntryFSM) (*fsm.EntryFSM, error) {
	for candidate.Buffered() < minSignatureLen {
		n, err := s.r.Read(candidate.Space())
		if n > 0 {
			candidate.Fill(n)
		}
		if err != nil {
			if err == io.EOF {
				if candidate.Buffered() == 0 {
					return nil, nil
				}
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
	return candidate.NextEntry()
}

// streamEntryReader is Archive's entryReader, adapted for a plain
// sequential io.Reader instead of an io.ReaderAt: request offsets are
// meaningless here, since the source can't be addressed, so fill just pulls
// the next chunk off r regardless of what the FSM's ReadRequest.Offset says.
type streamEntryReader struct {
	stream *EntryStream
	efsm   *fsm.EntryFSM

	pending      []byte
	scratch      []byte
	headerLoaded bool
	done         bool
	err          error
}

// ensureHeader drives the EFSM just far enough to have parsed the local
// header, buffering any decompressed bytes already produced along the way
// so Read doesn't lose them.
func (sr *streamEntryReader) ensureHeader() error {
	if sr.headerLoaded {
		return nil
	}
	n, err := sr.step()
	if err != nil {
		return err
	}
	if n > 0 {
		sr.pending = append(sr.pending, sr.scratch[:n]...)
	}
	sr.headerLoaded = true
	return nil
}

// step runs Process/read rounds until the EFSM produces output, finishes,
// or fails, returning bytes written (0 only when the entry finished without
// producing further output, or on error).
func (sr *streamEntryReader) step() (int, error) {
	if sr.scratch == nil {
		sr.scratch = make([]byte, 4096)
	}
	for {
		written, req, done, err := sr.efsm.Process(sr.scratch)
		if err != nil {
			return written, err
		}
		if written > 0 {
			if done {
				sr.done = true
				sr.stream.pending = sr.efsm
			}
			return written, nil
		}
		if done {
			sr.done = true
			sr.stream.pending = sr.efsm
			return 0, nil
		}
		if req == nil {
			return 0, io.ErrNoProgress
		}
		space := sr.efsm.Space()
		n, rerr := sr.stream.r.Read(space)
		if n > 0 {
			sr.efsm.Fill(n)
		}
		if rerr != nil {
			if rerr == io.EOF && n > 0 {
				continue
			}
			return 0, rerr
		}
	}
}

func (sr *streamEntryReader) Read(p []byte) (int, error) {
	if len(sr.pending) > 0 {
		n := copy(p, sr.pending)
		sr.pending = sr.pending[n:]
		return n, nil
	}
	if sr.err != nil {
		return 0, sr.err
	}
	if sr.done {
		return 0, io.EOF
	}
	n, err := sr.step()
	if err != nil {
		sr.err = err
		if n > 0 {
			return n, nil
		}
		return 0, err
	}
	if n == 0 && sr.done {
		return 0, io.EOF
	}
	if n > len(p) {
		c := copy(p, sr.scratch[:n])
		sr.pending = append(sr.pending, sr.scratch[c:n]...)
		return c, nil
	}
	copy(p, sr.scratch[:n])
	return n, nil
}

func (sr *streamEntryReader) Close() error {
	return sr.efsm.Close()
}
