// Package research is the client for the analysis service's single endpoint.
//
// # Overview
//
// The service accepts one natural-language query and answers with a
// synthesized text plus the references it drew on. There is no streaming and
// no session: one POST, one response.
//
//	POST {api_base}/api/run
//	Content-Type: application/json
//
//	{"query": "...", "no_search": false, "max_results": 3,
//	 "seed_urls": [], "force_local": false, "demo_mode": false}
//
// The response body is {"answer": "...", "sources": ["https://..."], "error": "..."}
// where error is optional and, when present, accompanies a partial result.
//
// # Building Requests
//
// BuildRequest maps the user's QueryOptions onto RunRequest. It is pure: the
// query is trimmed, max_results is clamped into [1, 10], seed_urls is always
// an empty array and force_local is always false.
//
// # Parsing Responses
//
// ParseResult never trusts the shape of a 2xx body. Any JSON object is
// accepted; a missing or empty answer becomes PlaceholderAnswer, a sources
// value that is not an array becomes an empty list, and non-string list
// entries keep their raw JSON text. Only a body that is not a JSON object is
// rejected with *MalformedResponseError.
//
// # Error Handling
//
// Run classifies every failure:
//
//   - *ValidationError: empty query, rejected before any I/O
//   - *TransportError: connection refused, DNS failure, timeout, cancellation
//   - *HTTPError: non-2xx status; the body text is kept for the message
//   - *MalformedResponseError: unparseable 2xx body
//
// Message turns any of these into one readable line for the status bar and
// the error banner. Nothing is retried; a retry is a new submission.
package research
