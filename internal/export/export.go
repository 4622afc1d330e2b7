// Package export renders a research result as a markdown document.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/lantern/internal/lifecycle"
	"github.com/five82/lantern/internal/sources"
)

// Document is what gets exported.
type Document struct {
	Query     string
	Answer    string
	Notice    string
	Sources   []string
	CreatedAt time.Time
}

// FromState builds a Document from a Succeeded state. ok is false for any
// other phase.
func FromState(st lifecycle.State) (doc Document, ok bool) {
	if st.Phase != lifecycle.Succeeded {
		return Document{}, false
	}
	created := st.FinishedAt
	if created.IsZero() {
		created = time.Now()
	}
	return Document{
		Query:     st.Query,
		Answer:    st.Answer,
		Notice:    st.Notice,
		Sources:   st.Sources,
		CreatedAt: created,
	}, true
}

// Markdown renders doc. Source links use the normalized host and path as
// link text and the original reference as the target.
func Markdown(doc Document) string {
	var b strings.Builder

	title := strings.TrimSpace(doc.Query)
	if title == "" {
		title = "Research brief"
	}
	b.WriteString("# ")
	b.WriteString(title)
	b.WriteString("\n\n")

	if !doc.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n\n", doc.CreatedAt.Format("2006-01-02 15:04 MST"))
	}

	if notice := strings.TrimSpace(doc.Notice); notice != "" {
		fmt.Fprintf(&b, "> **Note:** %s\n\n", notice)
	}

	b.WriteString(strings.TrimSpace(doc.Answer))
	b.WriteString("\n")

	views := sources.NormalizeAll(doc.Sources)
	if len(views) > 0 {
		b.WriteString("\n## Sources\n\n")
		for i, v := range views {
			fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, escapeLinkText(v.Label()), linkTarget(v.Original))
		}
	}
	return b.String()
}

// FileName returns the export file name for doc.
func FileName(doc Document) string {
	at := doc.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	return "research-" + at.Format("20060102-150405") + ".md"
}

// Save writes doc into dir and returns the file path.
func Save(dir string, doc Document) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(doc))
	if err := WriteFile(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile writes doc as markdown to path, replacing any existing file.
func WriteFile(path string, doc Document) error {
	if err := os.WriteFile(path, []byte(Markdown(doc)), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

var linkTextEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)

func escapeLinkText(s string) string {
	return linkTextEscaper.Replace(s)
}

func linkTarget(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " ()<>") {
		return "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(s) + ">"
	}
	return s
}
