// Package app provides the orchestration layer for logscope.
//
// # Overview
//
// This package wires together configuration, the log server client, the
// session controller, the state store and the UI. It is the composition root
// for the TUI, and it also hosts the headless drivers used by the streams,
// tail and search subcommands.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()            Read logscope config
//	       ├─────> logx.NewFileLogger()     Logs go to a file, not the terminal
//	       ├─────> logapi.NewClient()       HTTP + websocket client
//	       ├─────> state.Store{}            Shared state container
//	       ├─────> session.NewController()  Publishes snapshots into the store
//	       ├─────> StreamLoader.Load()      One fetch of the stream list
//	       └─────> ui.Run()                 Start TUI (blocks)
//
// # Stream List
//
// The stream list is fetched once at startup and again only when the user
// asks for it. A failure is stored as a *session.ListError and shown as a
// banner; it is never retried automatically.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration
//   - Log file cannot be created
//   - Invalid server address
//
// Everything that happens after startup is session state: tail and search
// failures are reported by the controller in its snapshot, not returned.
package app
