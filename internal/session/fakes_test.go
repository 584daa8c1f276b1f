package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/five82/logscope/internal/logapi"
)

// resources counts open tail connections plus in-flight searches and records
// whether the two ever overlapped.
type resources struct {
	active     atomic.Int32
	violations atomic.Int32
	opened     atomic.Int32
}

func (r *resources) acquire() {
	if r == nil {
		return
	}
	r.opened.Add(1)
	if r.active.Add(1) > 1 {
		r.violations.Add(1)
	}
}

func (r *resources) release() {
	if r == nil {
		return
	}
	r.active.Add(-1)
}

type fakeConn struct {
	stream string
	frames chan []byte
	closed chan struct{}
	once   sync.Once
	res    *resources
}

func newFakeConn(stream string, res *resources) *fakeConn {
	return &fakeConn{
		stream: stream,
		frames: make(chan []byte),
		closed: make(chan struct{}),
		res:    res,
	}
}

func (c *fakeConn) ReadFrame() ([]byte, error) {
	select {
	case p, ok := <-c.frames:
		if !ok {
			return nil, logapi.ErrUnexpectedClose
		}
		return p, nil
	case <-c.closed:
		return nil, logapi.ErrUnexpectedClose
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() {
		close(c.closed)
		c.res.release()
	})
	return nil
}

// send pushes one frame to the reader. It reports false if the connection was
// closed first.
func (c *fakeConn) send(payload string) bool {
	select {
	case c.frames <- []byte(payload):
		return true
	case <-c.closed:
		return false
	}
}

type fakeDialer struct {
	conns chan *fakeConn
	err   error
	res   *resources
	dials atomic.Int32
}

func newFakeDialer(res *resources) *fakeDialer {
	return &fakeDialer{conns: make(chan *fakeConn, 32), res: res}
}

func (d *fakeDialer) DialTail(ctx context.Context, stream string) (logapi.TailConn, error) {
	d.dials.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.err != nil {
		return nil, d.err
	}
	d.res.acquire()
	conn := newFakeConn(stream, d.res)
	select {
	case d.conns <- conn:
	default:
	}
	return conn, nil
}

// hangingDialer never connects; it gives up when ctx is canceled.
type hangingDialer struct{}

func (hangingDialer) DialTail(ctx context.Context, _ string) (logapi.TailConn, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type searchCall struct {
	query logapi.SearchQuery
	reply chan searchReply
}

type searchReply struct {
	lines []string
	err   error
}

// fakeSearcher hands every call to the test through calls. When a call's ctx
// is canceled before the test replies, lateLines are returned without an
// error to model a response racing the cancellation.
type fakeSearcher struct {
	calls     chan searchCall
	lateLines []string
	res       *resources
}

func newFakeSearcher(res *resources) *fakeSearcher {
	return &fakeSearcher{calls: make(chan searchCall, 32), res: res}
}

func (s *fakeSearcher) Search(ctx context.Context, q logapi.SearchQuery) ([]string, error) {
	s.res.acquire()
	defer s.res.release()

	call := searchCall{query: q, reply: make(chan searchReply, 1)}
	s.calls <- call
	select {
	case r := <-call.reply:
		return r.lines, r.err
	case <-ctx.Done():
		if s.lateLines != nil {
			return s.lateLines, nil
		}
		return nil, ctx.Err()
	}
}

// instantSearcher answers every search immediately.
type instantSearcher struct {
	lines []string
	res   *resources
}

func (s *instantSearcher) Search(ctx context.Context, q logapi.SearchQuery) ([]string, error) {
	s.res.acquire()
	defer s.res.release()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), s.lines...), nil
}

var errBoom = errors.New("boom")
