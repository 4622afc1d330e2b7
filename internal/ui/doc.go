// Package ui provides the terminal user interface for lantern.
//
// The UI is a Bubble Tea program built around a single Model. It never talks
// to the analysis service directly: queries are handed to a
// lifecycle.Controller, and the model renders whatever the controller
// reports.
//
// # Layout
//
// From top to bottom the screen shows:
//
//   - Header: the service address and the options applied to the next query
//     (web search, demo mode, max results)
//   - Query input (bubbles textinput)
//   - Status line: a spinner while a request is pending, otherwise the
//     controller's transient status or a local flash message
//   - Results viewport: the glamour-rendered answer, a soft notice when the
//     service reported a partial failure, and the numbered sources as
//     host and path; on failure an error banner with a remediation hint
//   - Footer: key hints for the focused area
//
// Help and recent-query overlays are drawn with lipgloss.Place over the whole
// window and close on any key.
//
// # Data Flow
//
// Submitting returns a channel that yields the settled state; the model waits
// on it in a tea.Cmd and refreshes when it arrives. Independently, a poll tick
// reads controller.Snapshot() so that status messages expire on screen
// without any extra wiring.
//
// # Focus
//
// Tab moves focus between the query input and the results pane. Printable
// keys always go to the input while it has focus; single-letter commands
// (copy, export, history, theme, help) only work from the results pane.
// Option toggles use alt chords so the input keeps its ctrl editing keys.
//
// Theme and query option changes are written to the preferences file as they
// happen.
package ui
