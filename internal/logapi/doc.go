// Package logapi is the wire client for a log stream server.
//
// # Endpoints
//
//	GET /api/streams                        JSON array of stream names
//	GET /api/search_logs/{stream}?start&end[&term]
//	                                        JSON array of lines
//	GET /api/tail/{stream}  (websocket)     push stream of frames
//
// Search bounds are RFC 3339 timestamps in UTC. The term parameter is omitted
// entirely when the term is blank, never sent empty.
//
// # Tail Frames
//
// Each websocket message carries one line encoded as a JSON string or a batch
// encoded as a JSON array of strings. DecodeFrame accepts both. There is no
// acknowledgement protocol, and the server never closes a tail on its own, so
// ReadFrame reports any close or EOF as ErrUnexpectedClose.
//
// # Compression
//
// Requests advertise zstd and gzip. Responses are decoded with
// github.com/klauspost/compress according to Content-Encoding. Tail
// connections can negotiate permessage-deflate via Options.Compression.
//
// # Errors
//
// Non-success responses are *StatusError. Canceled requests wrap
// context.Canceled; IsCanceled tells them apart from real failures.
package logapi
