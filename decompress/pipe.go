package decompress

import (
	"io"
	"sync"
)

// queueReader is the blocking io.Reader a wrapped decoder pulls from. feed
// appends newly-received compressed bytes; noMoreInput marks that the
// adapter will never feed more, so once the queue drains, Read returns
// io.EOF instead of blocking forever.
type queueReader struct {
	mu          sync.Mutex
	cond        *sync.Cond
	buf         []byte
	noMoreInput bool
	closed      bool
}

func newQueueReader() *queueReader {
	q := &queueReader{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queueReader) feed(p []byte) {
	q.mu.Lock()
	q.buf = append(q.buf, p...)
	q.cond.Broadcast()
	q.mu.Unlock()
}

func (q *queueReader) setNoMoreInput() {
	q.mu.Lock()
	q.noMoreInput = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// stop unblocks any Read permanently, used when Close tears down the
// bridging goroutine early.
func (q *queueReader) stop() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

func (q *queueReader) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.buf) == 0 && !q.noMoreInput && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return 0, io.ErrClosedPipe
	}
	if len(q.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(p, q.buf)
	q.buf = q.buf[n:]
	return n, nil
}

// outQueue is the lock-protected sink the bridging goroutine writes
// decompressed bytes into. drain can either poll (wait=false, used while
// more input is still coming and there's no reason to block) or wait until
// there is something to report (wait=true, used once no more input is
// coming, so "nothing happened" always means "genuinely finished" rather
// than "the goroutine hasn't gotten to it yet").
type outQueue struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  []byte
	err  error // sticky terminal error or io.EOF from the decoder goroutine
	done bool
}

func newOutQueue() *outQueue {
	o := &outQueue{}
	o.cond = sync.NewCond(&o.mu)
	return o
}

func (o *outQueue) Write(p []byte) (int, error) {
	o.mu.Lock()
	o.buf = append(o.buf, p...)
	o.cond.Broadcast()
	o.mu.Unlock()
	return len(p), nil
}

func (o *outQueue) finish(err error) {
	o.mu.Lock()
	o.err = err
	o.done = true
	o.cond.Broadcast()
	o.mu.Unlock()
}

func (o *outQueue) drain(p []byte, wait bool) (n int, done bool, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for wait && len(o.buf) == 0 && !o.done {
		o.cond.Wait()
	}
	n = copy(p, o.buf)
	o.buf = o.buf[n:]
	if len(o.buf) == 0 && o.done {
		return n, true, o.err
	}
	return n, false, nil
}

// pipeAdapter bridges a blocking io.Reader-based decoder behind the
// non-blocking Adapter contract. A single goroutine runs the decoder's Read
// loop against in, copying everything it produces into out; Process only
// ever touches the queues, never the decoder itself.
type pipeAdapter struct {
	in       *queueReader
	out      *outQueue
	wg       sync.WaitGroup
	started  bool
	finished bool
}

// newPipeAdapter starts the bridging goroutine, which calls newDecoder with
// the queueReader as its upstream and copies everything newDecoder's Reader
// produces into the outQueue until EOF or error.
func newPipeAdapter(newDecoder func(io.Reader) (io.ReadCloser, error)) *pipeAdapter {
	p := &pipeAdapter{in: newQueueReader(), out: newOutQueue()}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		dec, err := newDecoder(p.in)
		if err != nil {
			p.out.finish(err)
			return
		}
		defer dec.Close()
		buf := make([]byte, 32*1024)
		for {
			n, err := dec.Read(buf)
			if n > 0 {
				p.out.Write(buf[:n])
			}
			if err != nil {
				if err == io.EOF {
					p.out.finish(nil)
				} else {
					p.out.finish(err)
				}
				return
			}
		}
	}()
	return p
}

func (p *pipeAdapter) Process(input, output []byte, moreInputComing bool) (int, int, error) {
	if len(input) > 0 {
		p.in.feed(input)
	}
	if !moreInputComing {
		p.in.setNoMoreInput()
	}
	// Once no more input is coming, block until the decoder goroutine has
	// either produced something or genuinely finished; otherwise "nothing
	// happened this call" would be indistinguishable from "fully drained",
	// and the caller (which stops calling Process once it sees 0,0,nil)
	// would give up before the goroutine had a chance to run.
	written, done, err := p.out.drain(output, !moreInputComing)
	if err != nil {
		return len(input), written, err
	}
	if done && written == 0 {
		return len(input), 0, nil
	}
	return len(input), written, nil
}

func (p *pipeAdapter) Close() error {
	if p.finished {
		return nil
	}
	p.finished = true
	p.in.stop()
	p.wg.Wait()
	return nil
}
