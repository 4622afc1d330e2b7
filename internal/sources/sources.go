// Package sources turns opaque source references returned by the analysis
// service into values that are always safe to render.
package sources

import (
	"fmt"
	"net/url"
	"strings"
)

// fallbackHost labels references that are not absolute URLs.
const fallbackHost = "link"

// View is the display form of a source reference.
type View struct {
	Host     string
	Path     string
	Original string // click target and tooltip, regardless of parse outcome
}

// Label returns "host path" for list rendering.
func (v View) Label() string {
	return v.Host + " " + v.Path
}

// Normalize converts any value into a View. It never panics and always
// returns a non-empty Host and Path.
func Normalize(v any) View {
	raw := stringify(v)
	view := View{Host: fallbackHost, Path: raw, Original: raw}

	if host, path, ok := split(raw); ok {
		view.Host = host
		view.Path = path
	}
	if strings.TrimSpace(view.Path) == "" {
		view.Path = "/"
	}
	return view
}

// NormalizeAll normalizes every reference in order.
func NormalizeAll(refs []string) []View {
	if len(refs) == 0 {
		return nil
	}
	views := make([]View, 0, len(refs))
	for _, ref := range refs {
		views = append(views, Normalize(ref))
	}
	return views
}

func split(raw string) (host, path string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return "", "", false
	}

	host = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return "", "", false
	}

	path = u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		path = "/"
	}
	return host, path, true
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		// fmt recovers from panicking String and Error methods.
		return fmt.Sprint(val)
	}
}
