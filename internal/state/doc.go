// Package state holds the data the logscope UI renders.
//
// # Overview
//
// Two producers feed the Store:
//
//	Stream loader:                 Session controller:
//	┌──────────────────────┐      ┌────────────────────────┐
//	│ client.ListStreams() │      │ OnChange(snapshot)     │
//	│        ↓             │      │        ↓               │
//	│ store.UpdateStreams()│      │ store.UpdateSession()  │
//	└──────────┬───────────┘      └───────────┬────────────┘
//	           └──────────────┬───────────────┘
//	                          ↓ Updates()
//	                    UI: store.Snapshot()
//
// The stream list is fetched once per load (and again on a manual reload). A
// failed fetch keeps the previous list and records a *session.ListError so the
// UI can show a banner.
//
// The session part is whatever the controller last published. Snapshots carry
// a version; an older version never overwrites a newer one.
//
// # Notifications
//
// Updates returns a channel with room for one signal. Producers never block on
// it, and a UI that is busy rendering sees a single pending signal however many
// updates arrived meanwhile. It reads the full Snapshot after each signal.
//
// # Copying
//
// Snapshot returns copies of the stream list, the session lines and the list
// error, so renderers may keep or modify what they get.
//
// The zero Store is ready to use.
package state
