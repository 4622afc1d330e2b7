package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap/zaptest"

	"github.com/five82/lantern/internal/config"
	"github.com/five82/lantern/internal/history"
	"github.com/five82/lantern/internal/lifecycle"
	"github.com/five82/lantern/internal/prefs"
	"github.com/five82/lantern/internal/research"
)

const testBaseURL = "http://svc.test"

type stubRunner struct {
	mu     sync.Mutex
	calls  int
	block  bool
	result research.Result
	err    error
}

func (s *stubRunner) Run(ctx context.Context, req research.RunRequest) (research.Result, error) {
	s.mu.Lock()
	s.calls++
	block, res, err := s.block, s.result, s.err
	s.mu.Unlock()
	if block {
		<-ctx.Done()
		return research.Result{}, &research.TransportError{Err: ctx.Err()}
	}
	return res, err
}

func (s *stubRunner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fixture struct {
	model      Model
	controller *lifecycle.Controller
	cfg        *config.Config
	prefsPath  string
}

func newFixture(t *testing.T, runner research.Runner) *fixture {
	t.Helper()
	dir := t.TempDir()
	controller := lifecycle.New(runner, lifecycle.Options{Logger: zaptest.NewLogger(t)})
	t.Cleanup(controller.Close)

	cfg := config.Default()
	cfg.APIBase = testBaseURL
	cfg.ExportDir = filepath.Join(dir, "exports")
	cfg.HistoryFile = filepath.Join(dir, "history.jsonl")

	f := &fixture{controller: controller, cfg: &cfg, prefsPath: filepath.Join(dir, "prefs.toml")}
	f.model = New(Options{
		Controller: controller,
		Config:     f.cfg,
		Query:      research.QueryOptions{MaxResults: 3},
		BaseURL:    testBaseURL,
		PrefsPath:  f.prefsPath,
		Logger:     zaptest.NewLogger(t),
	})
	f.send(tea.WindowSizeMsg{Width: 200, Height: 40})
	return f
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	next, cmd := f.model.Update(msg)
	f.model = next.(Model)
	return cmd
}

func (f *fixture) key(k tea.KeyType) tea.Cmd {
	return f.send(tea.KeyMsg{Type: k})
}

func (f *fixture) alt(r rune) tea.Cmd {
	return f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true})
}

func (f *fixture) typeText(s string) {
	for _, r := range s {
		f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (f *fixture) view() string {
	return ansi.Strip(f.model.View())
}

// settle waits for the controller to finish and delivers the settled message.
func (f *fixture) settle(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !f.controller.State().Settled() {
		if time.Now().After(deadline) {
			t.Fatalf("request did not settle")
		}
		time.Sleep(5 * time.Millisecond)
	}
	f.send(settledMsg(f.controller.State()))
}

func TestSubmit_RendersAnswerAndSources(t *testing.T) {
	runner := &stubRunner{result: research.Result{
		Answer:  "EPA finalized enforceable limits.",
		Sources: []string{"https://www.epa.gov/pfas/", "not a url"},
		Notice:  "one fetch failed",
	}}
	f := newFixture(t, runner)

	f.typeText("PFAS limits")
	if cmd := f.key(tea.KeyEnter); cmd == nil {
		t.Fatalf("enter returned nil cmd, want wait+spinner")
	}
	f.settle(t)

	out := f.view()
	for _, want := range []string{"EPA finalized enforceable limits.", "Note: one fetch failed", "Sources", "epa.gov /pfas", "link not a url"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
	if runner.callCount() != 1 {
		t.Fatalf("runner called %d times, want 1", runner.callCount())
	}
}

func TestSubmit_BlankQueryIsIgnored(t *testing.T) {
	runner := &stubRunner{}
	f := newFixture(t, runner)

	f.typeText("   ")
	if cmd := f.key(tea.KeyEnter); cmd != nil {
		t.Fatalf("enter on blank query returned a cmd")
	}
	if got := f.controller.State().Phase; got != lifecycle.Idle {
		t.Fatalf("Phase = %v, want idle", got)
	}
	if runner.callCount() != 0 {
		t.Fatalf("runner called %d times, want 0", runner.callCount())
	}
}

func TestSubmit_FailureShowsBannerWithHint(t *testing.T) {
	runner := &stubRunner{err: &research.HTTPError{StatusCode: 429, Body: "rate limited"}}
	f := newFixture(t, runner)

	f.typeText("PFAS")
	f.key(tea.KeyEnter)
	f.settle(t)

	out := f.view()
	if !strings.Contains(out, "HTTP 429: rate limited") {
		t.Fatalf("view missing error message:\n%s", out)
	}
	if hint := fmt.Sprintf(remediationFmt, testBaseURL); !strings.Contains(out, hint) {
		t.Fatalf("view missing remediation hint %q:\n%s", hint, out)
	}
}

func TestEscCancelsPendingRequest(t *testing.T) {
	runner := &stubRunner{block: true}
	f := newFixture(t, runner)

	f.typeText("slow query")
	f.key(tea.KeyEnter)
	if got := f.controller.State().Phase; got != lifecycle.Pending {
		t.Fatalf("Phase = %v, want pending", got)
	}
	if !strings.Contains(f.view(), "esc to cancel") {
		t.Fatalf("status line missing cancel hint:\n%s", f.view())
	}

	f.key(tea.KeyEsc)
	f.settle(t)

	st := f.controller.State()
	if st.Phase != lifecycle.Failed || st.Message != "request cancelled" {
		t.Fatalf("state = %v %q, want failed request cancelled", st.Phase, st.Message)
	}
	if f.model.focus != focusInput {
		t.Fatalf("esc that cancelled a request should not move focus")
	}
}

func TestSingleLetterKeysTypeIntoInput(t *testing.T) {
	var copied []string
	orig := clipboardWriteAll
	clipboardWriteAll = func(s string) error {
		copied = append(copied, s)
		return nil
	}
	t.Cleanup(func() { clipboardWriteAll = orig })

	f := newFixture(t, &stubRunner{result: research.Result{Answer: "the answer"}})

	f.typeText("cxTH?")
	if got := f.model.input.Value(); got != "cxTH?" {
		t.Fatalf("input = %q, want cxTH?", got)
	}
	if f.model.showHelp || f.model.showHistory || len(copied) != 0 {
		t.Fatalf("letters triggered commands while input focused")
	}

	f.key(tea.KeyEnter)
	f.settle(t)
	f.key(tea.KeyTab)
	f.typeText("c")

	if len(copied) != 1 || copied[0] != "the answer" {
		t.Fatalf("copied = %#v, want [the answer]", copied)
	}
	if !strings.Contains(f.view(), "Answer copied to clipboard") {
		t.Fatalf("view missing copy confirmation:\n%s", f.view())
	}
}

func TestCopyWithoutAnswer(t *testing.T) {
	called := false
	orig := clipboardWriteAll
	clipboardWriteAll = func(string) error { called = true; return nil }
	t.Cleanup(func() { clipboardWriteAll = orig })

	f := newFixture(t, &stubRunner{})
	f.key(tea.KeyTab)
	f.typeText("c")

	if called {
		t.Fatalf("clipboard written with no answer")
	}
	if !strings.Contains(f.view(), "Nothing to copy yet") {
		t.Fatalf("view missing hint:\n%s", f.view())
	}
}

func TestOptionTogglesArePersisted(t *testing.T) {
	f := newFixture(t, &stubRunner{})

	f.alt('w')
	f.alt('m')
	f.key(tea.KeyCtrlUp)

	if !f.model.query.ExcludeWebSearch || !f.model.query.DemoMode || f.model.query.MaxResults != 4 {
		t.Fatalf("query = %#v, want no web, demo, max 4", f.model.query)
	}

	p, _ := prefs.Load(f.prefsPath)
	if p.ExcludeWebSearch == nil || !*p.ExcludeWebSearch {
		t.Fatalf("prefs ExcludeWebSearch = %v, want true", p.ExcludeWebSearch)
	}
	if p.MaxResults == nil || *p.MaxResults != 4 {
		t.Fatalf("prefs MaxResults = %v, want 4", p.MaxResults)
	}
	if !strings.Contains(f.view(), "web off") || !strings.Contains(f.view(), "max 4") {
		t.Fatalf("header does not reflect options:\n%s", f.view())
	}
}

func TestInputKeepsEditingKeys(t *testing.T) {
	f := newFixture(t, &stubRunner{})

	f.typeText("water quality")
	f.key(tea.KeyCtrlW)
	if got := f.model.input.Value(); got != "water " {
		t.Fatalf("input after ctrl+w = %q, want %q", got, "water ")
	}
	f.key(tea.KeyCtrlD)
	if f.model.query.ExcludeWebSearch || f.model.query.DemoMode {
		t.Fatalf("query = %#v, want options unchanged by input editing keys", f.model.query)
	}

	f.alt('w')
	if got := f.model.input.Value(); got != "water " {
		t.Fatalf("input after alt+w = %q, want it unchanged", got)
	}
	if !f.model.query.ExcludeWebSearch {
		t.Fatalf("alt+w did not toggle web search")
	}
}

func TestMaxResultsStaysInRange(t *testing.T) {
	f := newFixture(t, &stubRunner{})
	f.key(tea.KeyTab)

	for i := 0; i < 20; i++ {
		f.typeText("+")
	}
	if got := f.model.query.MaxResults; got != research.MaxResults {
		t.Fatalf("MaxResults = %d, want %d", got, research.MaxResults)
	}
	for i := 0; i < 20; i++ {
		f.typeText("-")
	}
	if got := f.model.query.MaxResults; got != research.MinResults {
		t.Fatalf("MaxResults = %d, want %d", got, research.MinResults)
	}
}

func TestSubmittedRequestUsesToggles(t *testing.T) {
	runner := &recordingRunner{}
	f := newFixture(t, runner)

	f.alt('w')
	f.key(tea.KeyCtrlDown)
	f.typeText("  water quality  ")
	f.key(tea.KeyEnter)
	f.settle(t)

	req := runner.last()
	if req.Query != "water quality" || !req.NoSearch || req.MaxResults != 2 {
		t.Fatalf("request = %#v, want trimmed query, no_search, max 2", req)
	}
}

type recordingRunner struct {
	mu  sync.Mutex
	req research.RunRequest
}

func (r *recordingRunner) Run(ctx context.Context, req research.RunRequest) (research.Result, error) {
	r.mu.Lock()
	r.req = req
	r.mu.Unlock()
	return research.Result{Answer: "ok"}, nil
}

func (r *recordingRunner) last() research.RunRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.req
}

func TestCycleThemePersists(t *testing.T) {
	f := newFixture(t, &stubRunner{})
	f.key(tea.KeyTab)
	f.typeText("T")

	if f.model.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate", f.model.theme.Name)
	}
	p, _ := prefs.Load(f.prefsPath)
	if p.Theme != "Slate" {
		t.Fatalf("prefs theme = %q, want Slate", p.Theme)
	}
}

func TestExportWritesMarkdown(t *testing.T) {
	f := newFixture(t, &stubRunner{result: research.Result{
		Answer:  "Body text.",
		Sources: []string{"https://epa.gov/x"},
	}})

	f.typeText("PFAS")
	f.key(tea.KeyEnter)
	f.settle(t)
	f.key(tea.KeyTab)
	f.typeText("x")

	matches, err := filepath.Glob(filepath.Join(f.cfg.ExportDir, "research-*.md"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("exports = %v (err %v), want exactly one file", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "[epa.gov /x](https://epa.gov/x)") {
		t.Fatalf("export missing source link:\n%s", data)
	}
}

func TestHistoryOverlay(t *testing.T) {
	f := newFixture(t, &stubRunner{})
	if err := history.Append(f.cfg.HistoryFile, history.Entry{Query: "older question", Outcome: "succeeded"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := history.Append(f.cfg.HistoryFile, history.Entry{Query: "newer question", Outcome: "failed", Message: "boom"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	f.key(tea.KeyTab)
	f.typeText("H")
	out := f.view()
	if !strings.Contains(out, "Recent queries") {
		t.Fatalf("history overlay not shown:\n%s", out)
	}
	newer, older := strings.Index(out, "newer question"), strings.Index(out, "older question")
	if newer < 0 || older < 0 || newer > older {
		t.Fatalf("history not listed newest first:\n%s", out)
	}

	f.typeText("q")
	if f.model.showHistory {
		t.Fatalf("history overlay still shown after key press")
	}
}

func TestHelpOverlay(t *testing.T) {
	f := newFixture(t, &stubRunner{})
	f.key(tea.KeyTab)
	f.typeText("?")

	if !strings.Contains(f.view(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown:\n%s", f.view())
	}
	f.key(tea.KeyEnter)
	if f.model.showHelp {
		t.Fatalf("help still shown after key press")
	}
}

func TestQuitCancelsPending(t *testing.T) {
	f := newFixture(t, &stubRunner{block: true})
	f.typeText("q")
	f.key(tea.KeyEnter)

	cmd := f.key(tea.KeyCtrlC)
	if cmd == nil {
		t.Fatalf("ctrl+c returned nil cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("ctrl+c did not quit")
	}
	f.settle(t)
	if got := f.controller.State().Message; got != "request cancelled" {
		t.Fatalf("Message = %q, want request cancelled", got)
	}
}

func TestSnapshotTickShowsExpiringStatus(t *testing.T) {
	f := newFixture(t, &stubRunner{result: research.Result{Answer: "ok"}})
	f.typeText("q")
	f.key(tea.KeyEnter)
	f.settle(t)

	if !strings.Contains(f.view(), lifecycle.StatusComplete) {
		t.Fatalf("status line missing %q:\n%s", lifecycle.StatusComplete, f.view())
	}

	f.send(snapshotMsg(lifecycle.Snapshot{State: f.controller.State()}))
	if strings.Contains(f.view(), lifecycle.StatusComplete) {
		t.Fatalf("status line kept an expired status:\n%s", f.view())
	}
}

func TestViewBeforeResize(t *testing.T) {
	m := New(Options{})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View = %q, want Loading...", got)
	}
	if err := Run(Options{}); err == nil {
		t.Fatalf("Run without controller returned nil error")
	}
}
