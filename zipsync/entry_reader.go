package zipsync

import (
	"io"

	"github.com/go-zipcore/zipcore"
	"github.com/go-zipcore/zipcore/fsm"
)

// entryReader adapts an EntryFSM plus a blocking io.ReaderAt into an
// io.ReadCloser, the shape every zip-reading caller actually wants.
type entryReader struct {
	archive *Archive
	entry   *zipcore.Entry
	efsm    *fsm.EntryFSM

	pending []byte // decompressed bytes produced but not yet returned to Read
	scratch []byte
	done    bool
	err     error
}

func (er *entryReader) Read(p []byte) (int, error) {
	if len(er.pending) > 0 {
		n := copy(p, er.pending)
		er.pending = er.pending[n:]
		return n, nil
	}
	if er.err != nil {
		return 0, er.err
	}
	if er.done {
		return 0, io.EOF
	}

	if er.scratch == nil {
		n := len(p)
		if n < 4096 {
			n = 4096
		}
		er.scratch = make([]byte, n)
	}
	for {
		written, req, done, err := er.efsm.Process(er.scratch)
		if written > 0 {
			n := copy(p, er.scratch[:written])
			if n < written {
				er.pending = append(er.pending, er.scratch[n:written]...)
			}
			if done {
				er.done = true
			}
			if err != nil {
				er.err = err
			}
			return n, nil
		}
		if err != nil {
			er.err = err
			return 0, err
		}
		if done {
			er.done = true
			return 0, io.EOF
		}
		if req == nil {
			er.err = io.ErrNoProgress
			return 0, er.err
		}
		if err := fill(er.archive.r, er.efsm.Space(), er.efsm.Fill, *req, er.archive.options.ReadChunkSize); err != nil {
			er.err = err
			return 0, err
		}
	}
}

func (er *entryReader) Close() error {
	return er.efsm.Close()
}
