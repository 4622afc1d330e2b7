package lifecycle

import (
	"fmt"
	"sync"
	"time"
)

// statusTimer holds the transient status line. Every assignment bumps the
// generation, so a clear scheduled for an older message is a no-op.
type statusTimer struct {
	successTTL time.Duration
	errorTTL   time.Duration

	mu     sync.Mutex
	status Status
	gen    uint64
	timer  *time.Timer
}

func (s *statusTimer) set(text, detail string, kind StatusKind) {
	s.assign(Status{Text: text, Detail: detail, Kind: kind}, 0)
}

func (s *statusTimer) succeeded(detail string) {
	s.assign(Status{Text: StatusComplete, Detail: detail, Kind: StatusSuccess}, s.successTTL)
}

func (s *statusTimer) failed(message string) {
	s.assign(Status{Text: fmt.Sprintf(statusErrorFmt, message), Kind: StatusError}, s.errorTTL)
}

func (s *statusTimer) assign(next Status, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if ttl > 0 {
		next.Expires = time.Now().Add(ttl)
		gen := s.gen
		s.timer = time.AfterFunc(ttl, func() { s.clear(gen) })
	}
	s.status = next
}

func (s *statusTimer) clear(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.status = Status{}
	s.timer = nil
}

func (s *statusTimer) get() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// stop clears the status and cancels any scheduled clear.
func (s *statusTimer) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.status = Status{}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
