// Package ui provides the Bubble Tea terminal interface for logscope.
//
// # Layout
//
// The screen is a header with the session badges, a one-line banner for
// errors and notices, a stream picker on the left, the log pane on the right
// and a command bar at the bottom. The help overlay and the search form are
// drawn over the whole screen.
//
// # Event Flow
//
//  1. Run starts the program with the model built by New.
//  2. Key presses become controller intents (select, tail, limit, search,
//     clear) which return once the controller has applied them.
//  3. The controller publishes snapshots into state.Store; the model waits on
//     Store.Updates and re-renders the log pane when the snapshot version
//     changes.
//  4. Context cancellation stops the program.
//
// The UI never talks to the log server itself. Stream list reloads go through
// the Reload callback and session traffic goes through the Controller.
//
// # Key Bindings
//
//   - j/k, enter: Move in the stream list and select a stream
//   - x: Clear the selected stream
//   - t: Toggle tailing (re-enable after a failure to reconnect)
//   - l: Cycle the buffer limit
//   - s or /: Search a time range, c: clear the search
//   - f: Toggle follow mode in the log pane
//   - r: Reload the stream list
//   - T: Cycle theme, ?: help, q or Ctrl+C: quit
package ui
