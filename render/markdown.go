// Package render draws transcript payloads for the terminal: markdown via
// glamour, tool blocks as status-styled containers, relations as a tag row.
package render

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/threadview/transcript"
)

// DefaultMaxDepth bounds recursive expansion of tool results that embed
// further blocks. Real transcripts nest one level at most.
const DefaultMaxDepth = 4

var (
	colorSuccess = lipgloss.Color("42")
	colorWarning = lipgloss.Color("220")
	colorError   = lipgloss.Color("196")
	colorDim     = lipgloss.Color("241")

	blockBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)

	errMsgStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	relationsStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	cardStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	classStyles = map[string]lipgloss.Style{
		"pending":   lipgloss.NewStyle().Foreground(colorDim),
		"running":   lipgloss.NewStyle().Foreground(colorWarning),
		"failed":    lipgloss.NewStyle().Foreground(colorError).Bold(true),
		"completed": lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
	}
)

// Renderer converts payloads into styled terminal output. It never returns
// an error from the rendering path: anything glamour rejects falls back to
// the raw text.
type Renderer struct {
	md       *glamour.TermRenderer
	ex       transcript.Extractor
	maxDepth int
}

// Option tweaks renderer construction.
type Option func(*Renderer)

// WithLogger routes extraction diagnostics to the given logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Renderer) { r.ex.Logger = logger }
}

// WithMaxDepth overrides the recursion cap for nested tool results.
func WithMaxDepth(depth int) Option {
	return func(r *Renderer) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// New builds a renderer wrapping a glamour term renderer at the given wrap
// width.
func New(width int, opts ...Option) (*Renderer, error) {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	r := &Renderer{md: md, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Payload renders one entry payload: template cards get their fixed summary
// line, text payloads run through the extraction pipeline.
func (r *Renderer) Payload(p transcript.Payload) string {
	if p.Card != nil {
		return cardStyle.Render(fmt.Sprintf("📋 Template %q: %s", p.Card.Name, p.Card.Introduce))
	}

	markdown, records, relations := r.ex.Extract(p.Text)
	out := r.body(markdown, records, 0)
	if len(relations) > 0 {
		out += "\n" + relationsStyle.Render("🔗 "+strings.Join(relations, " · "))
	}
	return out
}

// Text renders a raw text payload. Convenience for callers without a
// decoded Payload.
func (r *Renderer) Text(raw string) string {
	return r.Payload(transcript.Payload{Text: raw})
}

// body renders an extracted markdown body, expanding placeholder tokens
// against the record table.
func (r *Renderer) body(markdown string, records []transcript.Record, depth int) string {
	markdown = transcript.Normalize(markdown)

	var b strings.Builder
	for _, seg := range transcript.Segments(markdown) {
		if !seg.IsRef {
			b.WriteString(r.markdown(seg.Text))
			continue
		}
		if seg.Index < 0 || seg.Index >= len(records) {
			// Stale reference: keep the token interior as literal text.
			b.WriteString(seg.Text)
			continue
		}
		b.WriteString("\n")
		b.WriteString(r.record(records[seg.Index], depth))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// record draws one tool block: a status-styled header, then either the
// recursively rendered result markdown or the plain error message.
func (r *Renderer) record(rec transcript.Record, depth int) string {
	p := transcript.Present(rec.Status)

	header := rec.Name
	if p.Icon != "" {
		header = p.Icon + " " + rec.Name
	}
	if style, ok := classStyles[p.Class]; ok {
		header = style.Render(header)
	}

	content := header
	switch {
	case rec.Result != "" && depth+1 >= r.maxDepth:
		content += "\n" + rec.Result
	case rec.Result != "":
		inner, innerRecords, _ := r.ex.Extract(rec.Result)
		content += "\n" + r.body(inner, innerRecords, depth+1)
	case rec.ErrMsg != "":
		content += "\n" + errMsgStyle.Render(rec.ErrMsg)
	}
	return blockBoxStyle.Render(content)
}

// markdown runs glamour, falling back to the input on failure.
func (r *Renderer) markdown(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	out, err := r.md.Render(s)
	if err != nil {
		return s
	}
	return strings.Trim(out, "\n")
}
