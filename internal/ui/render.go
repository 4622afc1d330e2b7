package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/lantern/internal/history"
	"github.com/five82/lantern/internal/lifecycle"
)

const remediationFmt = "Check that the analysis service is reachable at %s, then press enter to retry."

// renderMain renders header, query input, status line, results and footer.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	surface := lipgloss.Color(m.theme.Surface)
	muted := styles.MutedText.Background(surface)
	text := styles.Text.Background(surface)
	gap := lipgloss.NewStyle().Background(surface).Render("  ")

	parts := []string{
		styles.Logo.Render("lantern"),
		muted.Render(truncate(m.baseURL, 40)),
		text.Render("web " + onOff(!m.query.ExcludeWebSearch)),
		text.Render("demo " + onOff(m.query.DemoMode)),
		text.Render(fmt.Sprintf("max %d", m.query.MaxResults)),
	}
	return styles.Header.Width(m.width).Render(strings.Join(parts, gap))
}

func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	st := m.snapshot.State
	status := m.snapshot.Status

	if st.Phase == lifecycle.Pending {
		text := status.Text
		if text == "" {
			text = lifecycle.StatusRunning
		}
		elapsed := st.Elapsed().Round(100 * time.Millisecond)
		return " " + m.spinner.View() + " " + styles.InfoText.Render(text) + " " +
			styles.FaintText.Render(elapsed.String()+" · esc to cancel")
	}
	if m.flash != "" {
		return " " + styles.StatusStyle(m.flashKind).Render(m.flash)
	}
	if !status.Empty() {
		line := " " + styles.StatusStyle(status.Kind).Render(status.Text)
		if status.Detail != "" {
			line += styles.MutedText.Render(" · " + truncate(status.Detail, maxInt(m.width-len(status.Text)-6, 10)))
		}
		return line
	}
	return " " + styles.FaintText.Render("enter to run · tab to browse results · h for help")
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var hints []string
	if m.focus == focusInput {
		hints = []string{"enter run", "tab results", "alt+w web", "alt+m demo", "ctrl+↑/↓ max", "ctrl+c quit"}
	} else {
		hints = []string{"/ edit", "c copy", "x export", "H history", "T theme", "h help", "ctrl+c quit"}
	}
	return styles.Footer.Render(truncate(strings.Join(hints, " · "), maxInt(m.width-2, 1)))
}

// refreshContent rebuilds the results viewport for the current state.
func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.resultsContent(m.viewport.Width))
}

func (m *Model) resultsContent(width int) string {
	styles := m.theme.Styles()
	st := m.snapshot.State
	inner := maxInt(width-2, 10)

	switch st.Phase {
	case lifecycle.Idle:
		return "\n " + styles.MutedText.Render("Ask a question and press enter. The answer and its sources show up here.")

	case lifecycle.Pending:
		return "\n " + styles.MutedText.Render("Researching: ") + styles.Text.Render(truncate(st.Query, inner-14))

	case lifecycle.Failed:
		body := styles.DangerText.Render("Request failed") + "\n" +
			styles.Text.Render(st.Message) + "\n\n" +
			styles.MutedText.Render(fmt.Sprintf(remediationFmt, m.baseURL))
		return "\n" + styles.Banner.Width(inner).Render(body)
	}

	var b strings.Builder
	if st.Notice != "" {
		b.WriteString("\n ")
		b.WriteString(styles.WarningText.Render("Note: " + st.Notice))
		b.WriteString("\n")
	}
	b.WriteString(m.renderMarkdown(st.Answer, inner))
	b.WriteString("\n\n ")
	b.WriteString(styles.AccentText.Bold(true).Render("Sources"))
	b.WriteString("\n")

	views := st.SourceViews()
	if len(views) == 0 {
		b.WriteString(" ")
		b.WriteString(styles.FaintText.Render("No sources returned."))
		b.WriteString("\n")
	}
	for i, v := range views {
		fmt.Fprintf(&b, " %s %s %s\n",
			styles.FaintText.Render(fmt.Sprintf("%2d.", i+1)),
			styles.AccentText.Render(v.Host),
			styles.MutedText.Render(v.Path))
	}
	return b.String()
}

// renderMarkdown renders the answer with glamour, falling back to the raw
// text when rendering fails.
func (m *Model) renderMarkdown(answer string, width int) string {
	if m.md == nil || m.mdWidth != width || m.mdStyle != m.theme.Markdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.theme.Markdown),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.logger.Debug("markdown renderer unavailable", zap.Error(err))
			return answer
		}
		m.md, m.mdWidth, m.mdStyle = r, width, m.theme.Markdown
	}
	out, err := m.md.Render(answer)
	if err != nil {
		m.logger.Debug("markdown render failed", zap.Error(err))
		return answer
	}
	return strings.TrimRight(out, "\n")
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	k := m.keys

	sections := []helpSection{
		{title: "Query", bindings: []keyHelp{
			help(k.Submit), help(k.Focus), help(k.Cancel),
			help(k.WebSearch), help(k.Demo), help(k.MoreHits), help(k.FewerHits),
		}},
		{title: "Results", bindings: []keyHelp{
			help(k.EditQuery), help(k.Copy), help(k.Export), help(k.History),
			{"↑/↓ pgup/pgdn", "Scroll"},
		}},
		{title: "General", bindings: []keyHelp{
			help(k.CycleTheme), help(k.Help), help(k.Quit),
		}},
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.bindings {
			b.WriteString(styles.Key.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}
	return m.overlay(b.String(), 48)
}

// renderHistory renders the recent queries overlay.
func (m Model) renderHistory() string {
	styles := m.theme.Styles()
	width := maxInt(minInt(m.width-6, 100), 20)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Recent queries"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	switch {
	case m.historyErr != nil:
		b.WriteString(styles.DangerText.Render("Could not read history: " + m.historyErr.Error()))
	case len(m.historyEntries) == 0:
		b.WriteString(styles.MutedText.Render("No history yet."))
	default:
		// Newest first.
		for i := len(m.historyEntries) - 1; i >= 0; i-- {
			e := m.historyEntries[i]
			style := styles.Text
			if e.Outcome == lifecycle.Failed.String() {
				style = styles.DangerText.UnsetBold()
			}
			b.WriteString(style.Render(truncate(history.Format(e), width-6)))
			b.WriteString("\n")
		}
	}
	return m.overlay(b.String(), width)
}

func (m Model) overlay(content string, width int) string {
	modal := m.theme.Styles().Modal.Width(width).Render(content)
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title    string
	bindings []keyHelp
}

type keyHelp struct {
	key  string
	desc string
}

func help(b key.Binding) keyHelp {
	h := b.Help()
	return keyHelp{key: h.Key, desc: h.Desc}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
