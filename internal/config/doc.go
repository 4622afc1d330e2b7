// Package config loads lantern's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/lantern/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - API base: http://127.0.0.1:8000 (local development service)
//   - Request timeout: 120s
//   - Log file: ~/.local/state/lantern/lantern.log
//   - History file: ~/.local/state/lantern/history.jsonl
//   - Export directory: current working directory
//   - max_results: 3
//
// # TOML Format
//
//	api_base = "http://127.0.0.1:8000"
//	request_timeout = "90s"
//	log_file = "~/.local/state/lantern/lantern.log"
//	history_file = "~/.local/state/lantern/history.jsonl"
//	export_dir = "~/Documents/briefs"
//	max_results = 5
//	exclude_web_search = false
//	demo_mode = false
//
// Every field is optional. Tilde expansion is performed on paths and
// max_results is clamped into [1, 10].
//
// # Error Handling
//
// Load returns errors for unreadable files, invalid TOML and unparseable
// durations. A missing file is not an error.
package config
