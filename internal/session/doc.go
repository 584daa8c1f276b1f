// Package session is the stream session engine: it decides whether logscope is
// tailing a stream, searching one, or doing nothing, and owns the network
// resources each of those needs.
//
// # Overview
//
// Three pieces make up the package:
//
//   - Tail: one live websocket subscription that decodes frames and hands
//     lines to its owner in arrival order.
//   - Query: one historical search that its owner can cancel.
//   - Controller: the mode arbiter that starts and stops Tails and Queries in
//     response to user intents and exposes the resulting lines and status.
//
// # Modes
//
//	            SetTailing(true) + stream
//	  ┌──────┐ ─────────────────────────→ ┌─────────┐
//	  │ Idle │                            │ Tailing │
//	  └──────┘ ←───────────────────────── └─────────┘
//	     ↑ ↓    SetTailing(false), ""          │ ↑
//	     │ │                    SubmitSearch  ↓ │ SetTailing(true)
//	     │ └──────── SubmitSearch ─────→ ┌───────────┐
//	     └───────── ClearSearch ──────── │ Searching │
//	                                     └───────────┘
//
// Tailing and Searching carry a Status (Loading, Ready or Error); Idle has
// none. Changing the buffer limit while tailing trims the existing lines and
// keeps the connection. Submitting a search while another is in flight
// cancels the older one.
//
// # Teardown
//
// Every transition tears the old session down before the new one starts.
// Tail.Close and Query.Cancel followed by Query.Wait return only after the
// session goroutine has exited, so at no point are a tail connection and a
// search request held together.
//
// Session callbacks carry the generation of the session that produced them.
// The controller bumps its generation on every teardown and drops events whose
// generation no longer matches, so a frame or response racing a teardown never
// reaches the line sequence.
//
// # Errors
//
// Tail failures surface as *TailError and leave the buffered lines in place;
// the tail is not reconnected until the user enables tailing again. Search
// failures surface as *SearchError. A canceled query reports ErrCanceled from
// Wait and never produces a status error.
//
// # Concurrency
//
// The Controller runs one loop goroutine that owns all of its state. Intent
// methods block until the loop has applied them, which keeps tests
// deterministic and gives callers a consistent Snapshot afterwards. OnChange
// runs on that loop and must not call back into the Controller.
package session
