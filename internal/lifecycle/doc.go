// Package lifecycle owns the request state machine for a research query.
//
// # Overview
//
// A Controller holds exactly one State and moves it through four phases:
//
//	         Submit (admitted)
//	┌──────┐ ───────────────> ┌─────────┐  2xx + JSON object   ┌───────────┐
//	│ Idle │                  │ Pending │ ───────────────────> │ Succeeded │
//	└──────┘                  └─────────┘                      └───────────┘
//	                              │  non-2xx, transport error,
//	                              │  bad body, timeout, Cancel   ┌────────┐
//	                              └────────────────────────────> │ Failed │
//	                                                             └────────┘
//
// Succeeded and Failed both accept a new Submit, which clears the previous
// answer or error and returns to Pending.
//
// # Admission
//
// Submit is a no-op, returning false, when the trimmed query is empty or a
// request is already in flight. That rule, not cancellation of the older
// request, is what keeps a single request in flight. Admission is a
// non-blocking acquire of a weighted semaphore of size one. The request
// goroutine releases it only after the outcome is applied and the Settled
// hook has returned, so at most one Runner.Run call exists per Controller,
// responses are never applied out of order, and history for one request is
// written before the next is admitted.
//
// # Status Messages
//
// Every transition also sets a transient status line:
//
//   - Pending: "Running analysis…" until the request settles
//   - Succeeded: "Analysis complete", cleared after SuccessStatusTTL
//   - Failed: "Error: <message>", cleared after ErrorStatusTTL
//
// Clear timers are fire-and-forget. A newer status replaces the text and
// makes any older pending clear a no-op.
//
// # Timeouts And Cancellation
//
// Each request runs under Options.Timeout (DefaultTimeout when zero) and
// Cancel aborts it on demand. Both settle the request as Failed with a
// readable message, so a hung service never strands the UI in Pending.
//
// # Concurrency
//
// Submit returns immediately; the request runs on its own goroutine and the
// outcome and its status line are applied together under the Controller's
// lock. Readers call State,
// StatusMessage or Snapshot, which return copies, in the same way the UI
// polls on its refresh tick.
package lifecycle
