// Package config loads dinotail's TOML configuration.
//
// # Resolution
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/dinotail/config.toml
//  3. If the file doesn't exist, use Default()
//  4. Missing or blank keys keep their defaults
//
// # TOML Format
//
//	api_bind = "127.0.0.1:8553"     # dinosaur proxy api-bind
//	buffer_capacity = 1000          # records kept in memory
//	window_size = 20                # records per page
//	refresh_ms = 100                # view refresh tick
//	status_poll_seconds = 5         # proxy status poll interval
//	log_file = "~/.local/state/dinotail/dinotail.log"
//	log_level = "info"
//	metrics_addr = ""               # e.g. "127.0.0.1:9108"; empty disables
//
//	[filter]                        # initial filter patterns (regexp)
//	qname = ""
//	client = ""
//	qtype = ""
//	rcode = ""
//	status = ""
//	date = ""
//
// Tilde expansion is applied to the config path and log_file.
//
// # Errors
//
// Load fails on unreadable files ("open config: ...", "read config: ..."),
// invalid TOML ("parse config: ...") and values the buffer or pager would
// reject. A non-positive buffer_capacity wraps ring.ErrInvalidCapacity and a
// non-positive window_size wraps pager.ErrInvalidWindow. A missing file is
// not an error.
package config
