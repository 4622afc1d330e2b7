// Package history keeps a JSON-lines log of settled research requests.
package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/five82/lantern/internal/lifecycle"
	"github.com/five82/lantern/internal/research"
)

// Entry is one settled request.
type Entry struct {
	RequestID  string    `json:"request_id"`
	Query      string    `json:"query"`
	Outcome    string    `json:"outcome"`
	Message    string    `json:"message,omitempty"`
	Sources    int       `json:"sources"`
	MaxResults int       `json:"max_results"`
	NoSearch   bool      `json:"no_search"`
	DemoMode   bool      `json:"demo_mode"`
	FinishedAt time.Time `json:"finished_at"`
	ElapsedMS  int64     `json:"elapsed_ms"`
}

// FromState converts a settled lifecycle state into an Entry.
func FromState(st lifecycle.State) Entry {
	return Entry{
		RequestID:  st.RequestID,
		Query:      st.Query,
		Outcome:    st.Phase.String(),
		Message:    st.Message,
		Sources:    len(st.Sources),
		MaxResults: research.ClampResults(st.Options.MaxResults),
		NoSearch:   st.Options.ExcludeWebSearch,
		DemoMode:   st.Options.DemoMode,
		FinishedAt: st.FinishedAt,
		ElapsedMS:  st.Elapsed().Milliseconds(),
	}
}

// Format renders e as one line for terminal listings.
func Format(e Entry) string {
	when := "-"
	if !e.FinishedAt.IsZero() {
		when = e.FinishedAt.Local().Format("2006-01-02 15:04")
	}
	elapsed := (time.Duration(e.ElapsedMS) * time.Millisecond).Round(100 * time.Millisecond)
	line := fmt.Sprintf("%s  %-9s  %2d sources  %6s  %s", when, e.Outcome, e.Sources, elapsed, e.Query)
	if e.Message != "" {
		line += "  (" + e.Message + ")"
	}
	return line
}

var appendMu sync.Mutex

// Append writes e as one line at the end of the file at path, creating it
// and its directory when missing.
func Append(path string, e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	appendMu.Lock()
	defer appendMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Read returns at most max of the newest entries, oldest first. A missing
// file yields no entries; lines that fail to decode are skipped.
func Read(path string, max int) ([]Entry, error) {
	if max <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer file.Close()

	ring := make([]Entry, max)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		ring[idx] = e
		idx = (idx + 1) % max
		if count < max {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	entries := make([]Entry, count)
	if count == max {
		for i := 0; i < count; i++ {
			entries[i] = ring[(idx+i)%max]
		}
	} else {
		copy(entries, ring[:count])
	}
	return entries, nil
}
