// Package app is the composition root for lantern.
//
// It loads configuration and preferences, builds the zap logger, the
// research client and the lifecycle controller, and then hands them to one
// of three front ends:
//
//   - Run: the interactive Bubble Tea UI. Logs go to the configured log
//     file because the terminal belongs to the UI.
//   - RunOnce: a single query whose answer is written to an io.Writer as
//     markdown and optionally saved to a file. Logs go to stderr.
//   - History: prints the most recent entries from the history file.
//
// # Data Flow
//
//	┌──────────────┐
//	│   setup()    │
//	└──────┬───────┘
//	       ├─────> config.Load()        ~/.config/lantern/config.toml
//	       ├─────> prefs.Load()         theme and remembered options
//	       ├─────> newLogger()          zap production config
//	       ├─────> research.NewClient() POST {api_base}/api/run
//	       └─────> lifecycle.New()      single-flight controller
//	                  └─> Settled hook ─> history.Append()
//
// Every request that settles, from either front end, is appended to the
// history file. A failed append is logged and otherwise ignored.
//
// # Configuration Precedence
//
// Command-line overrides (--base-url, --timeout) win over the config file,
// which wins over built-in defaults. Query options start from the config
// file, are overlaid with saved preferences, and for RunOnce finally with
// explicit flags.
package app
