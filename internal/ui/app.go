package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/five82/lantern/internal/config"
	"github.com/five82/lantern/internal/export"
	"github.com/five82/lantern/internal/history"
	"github.com/five82/lantern/internal/lifecycle"
	"github.com/five82/lantern/internal/prefs"
	"github.com/five82/lantern/internal/research"
)

// clipboardWriteAll is swapped out in tests.
var clipboardWriteAll = clipboard.WriteAll

const (
	defaultPollTick = 250 * time.Millisecond
	flashTTL        = 3 * time.Second
	historyLimit    = 15
	chromeLines     = 4 // header, input, status, footer
)

type focusArea int

const (
	focusInput focusArea = iota
	focusResults
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller *lifecycle.Controller
	Config     *config.Config
	// Query seeds the input and the option toggles.
	Query     research.QueryOptions
	BaseURL   string
	ThemeName string
	PrefsPath string
	PollTick  time.Duration
	Logger    *zap.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx        context.Context
	controller *lifecycle.Controller
	config     *config.Config
	prefsPath  string
	baseURL    string
	pollTick   time.Duration
	logger     *zap.Logger
	keys       keyMap

	theme  Theme
	width  int
	height int
	ready  bool
	focus  focusArea

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// query holds the toggles applied to the next submission.
	query research.QueryOptions

	snapshot   lifecycle.Snapshot
	contentKey string

	md      *glamour.TermRenderer
	mdWidth int
	mdStyle string

	flash      string
	flashKind  lifecycle.StatusKind
	flashUntil time.Time

	showHelp       bool
	showHistory    bool
	historyEntries []history.Entry
	historyErr     error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = defaultPollTick
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = cfg.APIBase
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	query := opts.Query
	query.MaxResults = research.ClampResults(query.MaxResults)

	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "Ask about a regulation, a policy or a dataset"
	input.CharLimit = 1000
	input.SetValue(query.Query)
	input.Focus()

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:        ctx,
		controller: opts.Controller,
		config:     cfg,
		prefsPath:  prefsPath,
		baseURL:    baseURL,
		pollTick:   pollTick,
		logger:     logger,
		keys:       DefaultKeyMap(),
		theme:      GetTheme(opts.ThemeName),
		focus:      focusInput,
		input:      input,
		spinner:    spin,
		query:      query,
	}
	m.applyInputStyles()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(m.pollTick),
		fetchSnapshotCmd(m.controller),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.viewportHeight())
		}
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		if m.flash != "" && time.Now().After(m.flashUntil) {
			m.flash = ""
		}
		return m, tea.Batch(fetchSnapshotCmd(m.controller), tickCmd(m.pollTick))

	case snapshotMsg:
		m.applySnapshot(lifecycle.Snapshot(msg))
		return m, nil

	case settledMsg:
		if m.controller != nil {
			m.applySnapshot(m.controller.Snapshot())
		}
		return m, nil

	case spinner.TickMsg:
		if m.snapshot.State.Phase != lifecycle.Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showHistory {
		return m.renderHistory()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.controller != nil {
			m.controller.Cancel()
		}
		return m, tea.Quit
	}

	// Overlays close on any key.
	if m.showHelp || m.showHistory {
		m.showHelp = false
		m.showHistory = false
		return m, nil
	}

	if m.focus == focusInput && !msg.Alt && (msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace) {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusInput {
			m.setFocus(focusResults)
		} else {
			m.setFocus(focusInput)
		}
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if m.controller != nil && m.controller.Cancel() {
			return m, nil
		}
		if m.focus == focusInput {
			m.setFocus(focusResults)
		}
		return m, nil

	case key.Matches(msg, m.keys.WebSearch):
		m.query.ExcludeWebSearch = !m.query.ExcludeWebSearch
		m.setFlash("Web search "+onOff(!m.query.ExcludeWebSearch), lifecycle.StatusNone)
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Demo):
		m.query.DemoMode = !m.query.DemoMode
		m.setFlash("Demo mode "+onOff(m.query.DemoMode), lifecycle.StatusNone)
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.MoreHits):
		m.adjustMaxResults(1)
		return m, nil

	case key.Matches(msg, m.keys.FewerHits):
		m.adjustMaxResults(-1)
		return m, nil
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Copy):
		m.copyAnswer()
		return m, nil
	case key.Matches(msg, m.keys.Export):
		m.exportAnswer()
		return m, nil
	case key.Matches(msg, m.keys.History):
		m.historyEntries, m.historyErr = history.Read(m.config.HistoryFile, historyLimit)
		m.showHistory = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyInputStyles()
		m.refreshContent()
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.EditQuery):
		m.setFocus(focusInput)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// submit hands the current query to the controller. Blank queries and
// submissions while a request is pending are ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.controller == nil {
		return m, nil
	}
	opts := m.query
	opts.Query = m.input.Value()

	done, ok := m.controller.Submit(m.ctx, opts)
	if !ok {
		m.logger.Debug("submission ignored",
			zap.Bool("blank", opts.Blank()),
			zap.Stringer("phase", m.snapshot.State.Phase))
		return m, nil
	}
	m.applySnapshot(m.controller.Snapshot())
	return m, tea.Batch(waitForSettled(done), m.spinner.Tick)
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.applyInputStyles()
}

func (m *Model) adjustMaxResults(delta int) {
	n := research.ClampResults(m.query.MaxResults) + delta
	if n < research.MinResults {
		n = research.MinResults
	}
	if n > research.MaxResults {
		n = research.MaxResults
	}
	m.query.MaxResults = n
	m.setFlash(fmt.Sprintf("Max results %d", n), lifecycle.StatusNone)
	m.savePrefs()
}

func (m *Model) copyAnswer() {
	st := m.snapshot.State
	if st.Phase != lifecycle.Succeeded {
		m.setFlash("Nothing to copy yet", lifecycle.StatusNone)
		return
	}
	if err := clipboardWriteAll(st.Answer); err != nil {
		m.logger.Warn("clipboard copy failed", zap.Error(err))
		m.setFlash("Copy failed: "+err.Error(), lifecycle.StatusError)
		return
	}
	m.setFlash("Answer copied to clipboard", lifecycle.StatusSuccess)
}

func (m *Model) exportAnswer() {
	doc, ok := export.FromState(m.snapshot.State)
	if !ok {
		m.setFlash("Nothing to export yet", lifecycle.StatusNone)
		return
	}
	path, err := export.Save(m.config.ExportDir, doc)
	if err != nil {
		m.logger.Warn("export failed", zap.Error(err))
		m.setFlash("Export failed: "+err.Error(), lifecycle.StatusError)
		return
	}
	m.logger.Info("answer exported", zap.String("path", path))
	m.setFlash("Saved "+path, lifecycle.StatusSuccess)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.With(m.theme.Name, m.query)); err != nil {
		m.logger.Warn("save prefs failed", zap.String("path", m.prefsPath), zap.Error(err))
	}
}

func (m *Model) setFlash(text string, kind lifecycle.StatusKind) {
	m.flash = text
	m.flashKind = kind
	m.flashUntil = time.Now().Add(flashTTL)
}

func (m *Model) applySnapshot(snap lifecycle.Snapshot) {
	m.snapshot = snap
	next := snap.State.RequestID + "/" + snap.State.Phase.String()
	if next == m.contentKey {
		return
	}
	m.contentKey = next
	m.refreshContent()
	m.viewport.GotoTop()
}

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = m.viewportHeight()
	m.input.Width = maxInt(m.width-4, 10)
	m.refreshContent()
}

func (m Model) viewportHeight() int {
	return maxInt(m.height-chromeLines, 1)
}

func (m *Model) applyInputStyles() {
	styles := m.theme.Styles()
	if m.focus == focusInput {
		m.input.PromptStyle = styles.AccentText.Bold(true)
	} else {
		m.input.PromptStyle = styles.FaintText
	}
	m.input.TextStyle = styles.Text
	m.input.PlaceholderStyle = styles.FaintText
	m.spinner.Style = styles.InfoText
}

// Messages

type tickMsg time.Time

type snapshotMsg lifecycle.Snapshot

type settledMsg lifecycle.State

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(c *lifecycle.Controller) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(c.Snapshot())
	}
}

func waitForSettled(done <-chan lifecycle.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-done
		if !ok {
			return nil
		}
		return settledMsg(st)
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	if opts.Controller == nil {
		return fmt.Errorf("ui requires a controller")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func truncate(value string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= limit {
		return string(runes)
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}
