// SPDX-License-Identifier: MPL-2.0

// Package console writes dockhand's user-facing progress output: section
// banners, argument listings and the streamed build log.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette shared by all CLI output, tuned for dark terminal backgrounds.
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

const bannerWidth = 60

var (
	// BannerStyle is for section banners ("Dockerfile", "Docker Build", ...).
	BannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary text.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for build progress prefixes and positive outcomes.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// KeyStyle is for keys in argument listings.
	KeyStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// ValueStyle is for values in argument listings.
	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)
)

type (
	// Printer writes styled progress output to an explicit sink.
	Printer struct {
		w io.Writer
	}

	// KeyValue is one entry of an argument listing.
	KeyValue struct {
		Key   string
		Value any
	}
)

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	if w == nil {
		w = io.Discard
	}
	return &Printer{w: w}
}

// Writer returns the sink.
func (p *Printer) Writer() io.Writer { return p.w }

// Banner writes a ruled section title.
func (p *Printer) Banner(title string) {
	rule := strings.Repeat("=", bannerWidth)
	fmt.Fprintf(p.w, "%s\n%s\n%s\n", BannerStyle.Render(rule), BannerStyle.Render(title), BannerStyle.Render(rule))
}

// Println writes s followed by a newline, unstyled.
func (p *Printer) Println(s string) {
	fmt.Fprintln(p.w, s)
}

// KeyValues writes a titled listing of key/value pairs, one per line.
func (p *Printer) KeyValues(title string, kvs []KeyValue) {
	fmt.Fprintln(p.w, SuccessStyle.Render(title))
	for _, kv := range kvs {
		fmt.Fprintf(p.w, "  %s: %s\n", KeyStyle.Render(kv.Key), ValueStyle.Render(fmt.Sprint(kv.Value)))
	}
	fmt.Fprintln(p.w)
}

// BuildLine writes one line of build output.
func (p *Printer) BuildLine(line string) {
	fmt.Fprintf(p.w, "%s%s\n", SuccessStyle.Render("building > "), line)
}

// Error writes an error message.
func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.w, ErrorStyle.Render(msg))
}

// Warning writes a warning message.
func (p *Printer) Warning(msg string) {
	fmt.Fprintln(p.w, WarningStyle.Render(msg))
}

// List writes a titled bullet list.
func (p *Printer) List(title string, items []string) {
	fmt.Fprintln(p.w, SuccessStyle.Render(title))
	for _, item := range items {
		fmt.Fprintf(p.w, "  • %s\n", item)
	}
	fmt.Fprintln(p.w)
}
