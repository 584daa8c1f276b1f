// Package config loads logscope's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/logscope/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing or blank, use defaults
//
// # TOML Format
//
//	server = "127.0.0.1:5000"        # host:port, http(s):// or ws(s):// URL
//	tail_limit = 50                  # initial tail buffer limit
//	request_timeout_seconds = 10     # list and search requests
//	compression = true               # permessage-deflate on tail sockets
//	log_file = "~/.local/state/logscope/logscope.log"
//
// Every field is optional. tail_limit and request_timeout_seconds must be
// positive when present; anything else is a load error rather than a silent
// clamp. Tilde expansion applies to the config path and log_file.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//   - Out-of-range numbers
//
// Command line flags override Server after loading; that happens in the cmd
// package, not here.
package config
