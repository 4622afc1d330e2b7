package research

import "strings"

const (
	// MinResults and MaxResults bound QueryOptions.MaxResults.
	MinResults = 1
	MaxResults = 10
	// DefaultMaxResults is used when QueryOptions.MaxResults is zero.
	DefaultMaxResults = 3
)

// QueryOptions is what the user edits before submitting.
type QueryOptions struct {
	Query            string
	ExcludeWebSearch bool
	MaxResults       int
	DemoMode         bool
}

// Blank reports whether the query has no content after trimming.
func (o QueryOptions) Blank() bool {
	return strings.TrimSpace(o.Query) == ""
}

// RunRequest mirrors the body accepted by POST /api/run.
type RunRequest struct {
	Query      string   `json:"query"`
	NoSearch   bool     `json:"no_search"`
	MaxResults int      `json:"max_results"`
	SeedURLs   []string `json:"seed_urls"`
	ForceLocal bool     `json:"force_local"`
	DemoMode   bool     `json:"demo_mode"`
}

// Result is the parsed body of a successful /api/run call.
type Result struct {
	Answer  string
	Sources []string
	// Notice carries the optional soft error sent alongside a partial result.
	Notice string
}

// BuildRequest maps options onto the wire payload. Seed URLs are always
// empty and local synthesis is never forced from this client.
func BuildRequest(opts QueryOptions) RunRequest {
	return RunRequest{
		Query:      strings.TrimSpace(opts.Query),
		NoSearch:   opts.ExcludeWebSearch,
		MaxResults: ClampResults(opts.MaxResults),
		SeedURLs:   []string{},
		ForceLocal: false,
		DemoMode:   opts.DemoMode,
	}
}

// ClampResults keeps n inside [MinResults, MaxResults]; zero selects the default.
func ClampResults(n int) int {
	switch {
	case n == 0:
		return DefaultMaxResults
	case n < MinResults:
		return MinResults
	case n > MaxResults:
		return MaxResults
	}
	return n
}
