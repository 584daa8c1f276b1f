package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/five82/logscope/internal/logapi"
)

func collectTail() (chan TailEvent, DeliverFunc) {
	events := make(chan TailEvent, 16)
	return events, func(ctx context.Context, ev TailEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}
}

func nextEvent(t *testing.T, events <-chan TailEvent) TailEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tail event")
		return TailEvent{}
	}
}

func TestTail_DeliversFramesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	dialer := newFakeDialer(nil)
	events, deliver := collectTail()
	tail := OpenTail(context.Background(), dialer, "app", deliver)
	defer tail.Close()

	assert.Equal(t, "app", tail.Stream())
	assert.Equal(t, TailConnected, nextEvent(t, events).Kind)

	conn := <-dialer.conns
	require.True(t, conn.send(`"a"`))
	require.True(t, conn.send(`["b","c"]`))

	first := nextEvent(t, events)
	assert.Equal(t, TailLines, first.Kind)
	assert.Equal(t, []string{"a"}, first.Lines)

	second := nextEvent(t, events)
	assert.Equal(t, []string{"b", "c"}, second.Lines)
}

func TestTail_EmptyBatchIsSkipped(t *testing.T) {
	defer goleak.VerifyNone(t)

	dialer := newFakeDialer(nil)
	events, deliver := collectTail()
	tail := OpenTail(context.Background(), dialer, "app", deliver)
	defer tail.Close()

	nextEvent(t, events)
	conn := <-dialer.conns
	require.True(t, conn.send(`[]`))
	require.True(t, conn.send(`"x"`))

	assert.Equal(t, []string{"x"}, nextEvent(t, events).Lines)
}

func TestTail_ServerCloseFailsSession(t *testing.T) {
	defer goleak.VerifyNone(t)

	dialer := newFakeDialer(nil)
	events, deliver := collectTail()
	tail := OpenTail(context.Background(), dialer, "app", deliver)
	defer tail.Close()

	nextEvent(t, events)
	conn := <-dialer.conns
	close(conn.frames)

	ev := nextEvent(t, events)
	require.Equal(t, TailFailed, ev.Kind)
	var tailErr *TailError
	require.ErrorAs(t, ev.Err, &tailErr)
	assert.Equal(t, "app", tailErr.Stream)
	assert.ErrorIs(t, ev.Err, logapi.ErrUnexpectedClose)
	assert.Contains(t, ev.Err.Error(), "tailing stopped")

	select {
	case <-tail.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("tail goroutine did not exit after failure")
	}
}

func TestTail_MalformedFrameFailsSession(t *testing.T) {
	defer goleak.VerifyNone(t)

	dialer := newFakeDialer(nil)
	events, deliver := collectTail()
	tail := OpenTail(context.Background(), dialer, "app", deliver)
	defer tail.Close()

	nextEvent(t, events)
	conn := <-dialer.conns
	require.True(t, conn.send(`{"line":1}`))

	ev := nextEvent(t, events)
	require.Equal(t, TailFailed, ev.Kind)
	assert.ErrorIs(t, ev.Err, logapi.ErrMalformedFrame)
}

func TestTail_DialFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	dialer := newFakeDialer(nil)
	dialer.err = errBoom
	events, deliver := collectTail()
	tail := OpenTail(context.Background(), dialer, "app", deliver)
	defer tail.Close()

	ev := nextEvent(t, events)
	require.Equal(t, TailFailed, ev.Kind)
	assert.True(t, errors.Is(ev.Err, errBoom))
}

func TestTail_CloseSilencesLaterEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	res := &resources{}
	dialer := newFakeDialer(res)
	events, deliver := collectTail()
	tail := OpenTail(context.Background(), dialer, "app", deliver)

	nextEvent(t, events)
	conn := <-dialer.conns

	tail.Close()
	tail.Close()

	assert.Equal(t, int32(0), res.active.Load(), "connection released")
	assert.False(t, conn.send(`"late"`), "closed connection accepts no frames")
	select {
	case ev := <-events:
		t.Fatalf("unexpected event after Close: %+v", ev)
	default:
	}
}

func TestTail_CloseBeforeConnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	events, deliver := collectTail()
	tail := OpenTail(context.Background(), hangingDialer{}, "app", deliver)
	tail.Close()

	select {
	case ev := <-events:
		t.Fatalf("unexpected event after Close: %+v", ev)
	default:
	}
}
