package session

import (
	"context"
	"strings"
	"sync"

	"pkt.systems/pslog"

	"github.com/five82/logscope/internal/linebuf"
	"github.com/five82/logscope/internal/logapi"
	"github.com/five82/logscope/internal/logx"
)

// DefaultLimit is the tail buffer limit used when Options.Limit is unset.
const DefaultLimit = 50

const eventQueueDepth = 64

// Options configure a Controller.
type Options struct {
	Dialer   logapi.TailDialer
	Searcher logapi.Searcher
	Limit    int
	// OnChange receives every new snapshot. It runs on the controller's loop
	// and must not call back into the controller.
	OnChange func(Snapshot)
}

// Controller arbitrates between tailing and searching. All state is owned by
// one loop goroutine; intents and session callbacks are serialized through it.
type Controller struct {
	dialer   logapi.TailDialer
	searcher logapi.Searcher
	onChange func(Snapshot)
	log      pslog.Logger

	ctx       context.Context
	stop      context.CancelFunc
	requests  chan request
	events    chan event
	done      chan struct{}
	closeOnce sync.Once

	// Loop-owned state.
	mode    Mode
	status  Status
	err     error
	stream  string
	tailing bool
	limit   int
	params  SearchParams
	buf     linebuf.Buffer
	results []string
	gen     uint64
	tail    *Tail
	query   *Query
	version uint64
}

type request struct {
	apply func() error
	reply chan error
}

type event struct {
	gen  uint64
	tail *TailEvent
	res  *QueryResult
}

// NewController starts the controller loop. Canceling ctx has the same effect
// as Close.
func NewController(ctx context.Context, opts Options) *Controller {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	lctx, stop := context.WithCancel(ctx)
	c := &Controller{
		dialer:   opts.Dialer,
		searcher: opts.Searcher,
		onChange: opts.OnChange,
		log:      logx.Ctx(ctx),
		ctx:      lctx,
		stop:     stop,
		requests: make(chan request),
		events:   make(chan event, eventQueueDepth),
		done:     make(chan struct{}),
		limit:    limit,
		buf:      linebuf.New(limit),
	}
	go c.run()
	return c
}

// SelectStream changes the selected stream. An empty name clears the
// selection and forces Idle. Switching streams cancels a search in progress;
// selecting the current stream again changes nothing.
func (c *Controller) SelectStream(name string) error {
	name = strings.TrimSpace(name)
	return c.do(func() error {
		if name == c.stream {
			return nil
		}
		c.stream = name
		c.reconcile(true)
		return nil
	})
}

// SetTailing records the tail intent. Enabling it with a stream selected
// starts a tail session, tearing down a search first. Enabling it again after
// the tail failed starts a fresh session.
func (c *Controller) SetTailing(on bool) error {
	return c.do(func() error {
		restart := on && c.mode == ModeTailing && c.status == StatusError
		if on == c.tailing && !restart {
			return nil
		}
		c.tailing = on
		c.reconcile(restart)
		return nil
	})
}

// SetBufferLimit changes the tail buffer limit. While tailing the new limit is
// applied to the existing lines in place; the connection is kept.
func (c *Controller) SetBufferLimit(n int) error {
	return c.do(func() error {
		c.buf = c.buf.WithLimit(n)
		if c.buf.Limit() == c.limit {
			return nil
		}
		c.limit = c.buf.Limit()
		c.log.Debug("buffer limit changed", "limit", c.limit, "mode", c.mode.String())
		c.publish()
		return nil
	})
}

// SubmitSearch starts a search over the selected stream, canceling whatever
// session is active. Only the newest search can reach the line sequence.
func (c *Controller) SubmitSearch(rng logapi.TimeRange, term string) error {
	return c.do(func() error {
		if c.stream == "" {
			return ErrNoStream
		}
		c.teardown()
		c.tailing = false
		c.startQuery(SearchParams{Stream: c.stream, Range: rng, Term: strings.TrimSpace(term)})
		return nil
	})
}

// ClearSearch leaves Searching for Idle, canceling the query if it is in
// flight.
func (c *Controller) ClearSearch() error {
	return c.do(func() error {
		if c.mode != ModeSearching {
			return nil
		}
		c.teardown()
		c.enterIdle()
		return nil
	})
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := c.do(func() error {
		snap = c.snapshot()
		return nil
	})
	return snap, err
}

// Close tears down the active session and stops the loop. It is safe to call
// more than once.
func (c *Controller) Close() error {
	c.closeOnce.Do(c.stop)
	<-c.done
	return nil
}

// Done is closed once the loop has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) do(apply func() error) error {
	req := request{apply: apply, reply: make(chan error, 1)}
	select {
	case c.requests <- req:
	case <-c.done:
		return ErrClosed
	}
	return <-req.reply
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			c.teardown()
			if c.mode != ModeIdle {
				c.enterIdle()
			}
			c.log.Debug("session controller stopped")
			return
		case req := <-c.requests:
			req.reply <- req.apply()
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

// reconcile moves the controller to the mode implied by the current intent.
// force restarts the tail even when one is already open for the stream.
func (c *Controller) reconcile(force bool) {
	wantTail := c.tailing && c.stream != ""
	if wantTail && c.mode == ModeTailing && c.tail != nil && c.tail.Stream() == c.stream && !force {
		return
	}
	c.teardown()
	if wantTail {
		c.startTail()
		return
	}
	c.enterIdle()
}

// teardown releases whatever the active session holds. It returns after the
// session's goroutine has exited, so nothing from it can run afterwards.
func (c *Controller) teardown() {
	if c.tail != nil {
		c.tail.Close()
		c.log.Debug("tail closed", "stream", c.tail.Stream(), "gen", c.gen)
		c.tail = nil
	}
	if c.query != nil {
		c.query.Cancel()
		_ = c.query.Wait()
		c.log.Debug("search released", "stream", c.query.Params().Stream, "gen", c.gen)
		c.query = nil
	}
	// Bumping the generation invalidates events already queued by the old
	// session.
	c.gen++
}

func (c *Controller) enterIdle() {
	c.mode = ModeIdle
	c.status = StatusNone
	c.err = nil
	c.params = SearchParams{}
	c.buf = linebuf.New(c.limit)
	c.results = nil
	c.publish()
}

func (c *Controller) startTail() {
	gen := c.gen
	c.mode = ModeTailing
	c.status = StatusLoading
	c.err = nil
	c.params = SearchParams{}
	c.buf = linebuf.New(c.limit)
	c.results = nil

	log := logx.WithSession(logx.WithStream(c.log, c.stream), "tail", gen)
	log.Debug("tail opening")
	c.tail = OpenTail(c.ctx, c.dialer, c.stream, func(ctx context.Context, ev TailEvent) {
		c.post(ctx, event{gen: gen, tail: &ev})
	})
	c.publish()
}

func (c *Controller) startQuery(params SearchParams) {
	gen := c.gen
	c.mode = ModeSearching
	c.status = StatusLoading
	c.err = nil
	c.params = params
	c.buf = linebuf.New(c.limit)
	c.results = nil

	log := logx.WithSession(logx.WithStream(c.log, params.Stream), "search", gen)
	log.Debug("search started", "start", logapi.FormatTimestamp(params.Range.Start), "end", logapi.FormatTimestamp(params.Range.End), "term", params.Term)
	c.query = StartQuery(c.ctx, c.searcher, params, func(ctx context.Context, res QueryResult) {
		c.post(ctx, event{gen: gen, res: &res})
	})
	c.publish()
}

func (c *Controller) post(ctx context.Context, ev event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}

// handle applies a session callback if it still belongs to the active
// session; anything from a torn-down session is dropped.
func (c *Controller) handle(ev event) {
	if ev.gen != c.gen {
		c.log.Trace("dropped stale session event", "gen", ev.gen, "active", c.gen)
		return
	}
	switch {
	case ev.tail != nil && c.mode == ModeTailing && c.tail != nil:
		c.handleTail(*ev.tail)
	case ev.res != nil && c.mode == ModeSearching && c.query != nil:
		c.handleResult(*ev.res)
	}
}

func (c *Controller) handleTail(ev TailEvent) {
	switch ev.Kind {
	case TailConnected:
		c.status = StatusReady
		logx.WithStream(c.log, c.stream).Info("tail connected")
	case TailLines:
		c.buf = c.buf.Append(ev.Lines...)
	case TailFailed:
		// The session is over: release it but keep the lines on screen.
		c.tail.Close()
		c.tail = nil
		c.gen++
		c.status = StatusError
		c.err = ev.Err
		logx.WithStream(c.log, c.stream).Warn("tail stopped", "err", ev.Err)
	}
	c.publish()
}

func (c *Controller) handleResult(res QueryResult) {
	// The request goroutine has settled; the handle only needs reaping.
	_ = c.query.Wait()
	c.query = nil
	c.gen++
	if res.Err != nil {
		c.status = StatusError
		c.err = res.Err
		logx.WithStream(c.log, c.params.Stream).Warn("search failed", "err", res.Err)
	} else {
		c.status = StatusReady
		c.results = res.Lines
		logx.WithStream(c.log, c.params.Stream).Debug("search settled", "lines", len(res.Lines))
	}
	c.publish()
}

func (c *Controller) snapshot() Snapshot {
	snap := Snapshot{
		Mode:    c.mode,
		Status:  c.status,
		Stream:  c.stream,
		Tailing: c.tailing,
		Limit:   c.limit,
		Err:     c.err,
		Version: c.version,
	}
	switch c.mode {
	case ModeTailing:
		snap.Lines = c.buf.Lines()
	case ModeSearching:
		snap.Range = c.params.Range
		snap.Term = c.params.Term
		snap.Lines = append([]string(nil), c.results...)
	}
	return snap
}

func (c *Controller) publish() {
	c.version++
	if c.onChange != nil {
		c.onChange(c.snapshot())
	}
}
