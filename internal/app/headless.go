package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/five82/logscope/internal/logapi"
	"github.com/five82/logscope/internal/logx"
	"github.com/five82/logscope/internal/session"
)

// PrintStreams writes one stream name per line.
func PrintStreams(ctx context.Context, w io.Writer, lister logapi.StreamLister) error {
	streams, err := lister.ListStreams(ctx)
	if err != nil {
		return &session.ListError{Err: err}
	}
	for _, name := range streams {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// Tail follows stream and writes each line as it arrives. It returns nil when
// ctx is canceled or, with limit > 0, after limit lines. A failed tail returns its
// *session.TailError; there is no reconnect.
func Tail(ctx context.Context, w io.Writer, dialer logapi.TailDialer, stream string, limit int) error {
	log := logx.WithStream(logx.Ctx(ctx), stream)

	events := make(chan session.TailEvent)
	tail := session.OpenTail(ctx, dialer, stream, func(ctx context.Context, ev session.TailEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	})
	defer tail.Close()

	printed := 0
	for {
		select {
		case <-ctx.Done():
			log.Debug("tail interrupted", "lines", printed)
			return nil
		case ev := <-events:
			switch ev.Kind {
			case session.TailConnected:
				log.Info("tail connected")
			case session.TailLines:
				for _, line := range ev.Lines {
					if _, err := fmt.Fprintln(w, line); err != nil {
						return fmt.Errorf("write output: %w", err)
					}
					printed++
					if limit > 0 && printed >= limit {
						return nil
					}
				}
			case session.TailFailed:
				return ev.Err
			}
		}
	}
}

// Search runs one historical search and writes its lines. Interrupting it
// returns nil without output.
func Search(ctx context.Context, w io.Writer, searcher logapi.Searcher, params session.SearchParams) error {
	var lines []string
	q := session.StartQuery(ctx, searcher, params, func(_ context.Context, res session.QueryResult) {
		lines = res.Lines
	})
	if err := q.Wait(); err != nil {
		if errors.Is(err, session.ErrCanceled) {
			logx.WithStream(logx.Ctx(ctx), params.Stream).Debug("search interrupted")
			return nil
		}
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}
