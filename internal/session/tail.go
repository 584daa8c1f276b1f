package session

import (
	"context"
	"sync"

	"github.com/valyala/fastjson"

	"github.com/five82/logscope/internal/logapi"
)

// TailEventKind identifies a TailEvent.
type TailEventKind int

const (
	// TailConnected fires once the subscription is established.
	TailConnected TailEventKind = iota
	// TailLines carries the decoded lines of one frame.
	TailLines
	// TailFailed fires at most once and ends the session.
	TailFailed
)

// TailEvent is delivered by a Tail to its owner.
type TailEvent struct {
	Kind  TailEventKind
	Lines []string
	Err   error // *TailError when Kind is TailFailed
}

// DeliverFunc receives tail events. The context is canceled when the tail is
// closed; a DeliverFunc that blocks must give up when it is.
type DeliverFunc func(ctx context.Context, ev TailEvent)

// Tail is one live subscription to a stream.
type Tail struct {
	stream  string
	dialer  logapi.TailDialer
	deliver DeliverFunc

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	closed bool
	conn   logapi.TailConn
}

// OpenTail starts a subscription to stream and returns immediately. Dialing
// and reading happen on a goroutine owned by the Tail; events are handed to
// deliver in transport order.
func OpenTail(ctx context.Context, dialer logapi.TailDialer, stream string, deliver DeliverFunc) *Tail {
	tctx, cancel := context.WithCancel(ctx)
	t := &Tail{
		stream:  stream,
		dialer:  dialer,
		deliver: deliver,
		ctx:     tctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go t.run()
	return t
}

// Stream returns the stream this tail is subscribed to.
func (t *Tail) Stream() string {
	return t.stream
}

// Close tears the subscription down and waits for its goroutine to exit. No
// event is delivered after Close returns. Close is safe to call more than once.
func (t *Tail) Close() {
	t.cancel()

	t.mu.Lock()
	t.closed = true
	conn := t.conn
	t.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	<-t.done
}

// Done is closed when the tail's goroutine has exited.
func (t *Tail) Done() <-chan struct{} {
	return t.done
}

func (t *Tail) run() {
	defer close(t.done)

	conn, err := t.dialer.DialTail(t.ctx, t.stream)
	if err != nil {
		t.fail(err)
		return
	}
	defer func() { _ = conn.Close() }()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.conn = conn
	t.mu.Unlock()

	if !t.emit(TailEvent{Kind: TailConnected}) {
		return
	}

	var parser fastjson.Parser
	for {
		payload, err := conn.ReadFrame()
		if err != nil {
			t.fail(err)
			return
		}
		lines, err := logapi.DecodeFrame(&parser, payload)
		if err != nil {
			t.fail(err)
			return
		}
		if len(lines) == 0 {
			continue
		}
		if !t.emit(TailEvent{Kind: TailLines, Lines: lines}) {
			return
		}
	}
}

func (t *Tail) fail(err error) {
	t.emit(TailEvent{Kind: TailFailed, Err: &TailError{Stream: t.stream, Err: err}})
}

// emit hands ev to the owner unless the tail was closed. It holds mu while
// delivering so Close cannot return in the middle of a delivery.
func (t *Tail) emit(ev TailEvent) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.deliver(t.ctx, ev)
	return true
}
