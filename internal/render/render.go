// internal/render/render.go
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"

	"content-analyzer/internal/models"
)

const (
	IdleTitle       = "Ready to analyze"
	IdleHint        = "Paste content and click analyze to get started"
	ProcessingTitle = "Analyzing content..."
	ProcessingHint  = "Processing your input..."
)

// Renderer writes an analysis as a terminal breakdown.
type Renderer struct {
	w       io.Writer
	noColor bool
}

type Option func(*Renderer)

// WithoutColor forces plain output. Colour is also off whenever
// fatih/color detects a non-terminal.
func WithoutColor() Option {
	return func(r *Renderer) { r.noColor = true }
}

func New(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{w: w}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render picks the state to show: processing wins, a nil response is idle.
func (r *Renderer) Render(resp *models.StructuredResponse, processing bool) error {
	switch {
	case processing:
		return r.Processing()
	case resp == nil:
		return r.Idle()
	default:
		return r.Response(resp)
	}
}

func (r *Renderer) Idle() error {
	p := r.printer()
	p.line("%s", r.paint(IdleTitle, color.Bold))
	p.line("%s", r.paint(IdleHint, color.Faint))
	return p.err
}

func (r *Renderer) Processing() error {
	p := r.printer()
	p.line("%s", r.paint(ProcessingTitle, color.FgCyan, color.Bold))
	p.line("%s", r.paint(ProcessingHint, color.Faint))
	return p.err
}

func (r *Renderer) Response(resp *models.StructuredResponse) error {
	p := r.printer()

	p.line("%s", r.paint("Agent Analysis", color.Bold))
	p.blank()

	p.line("%s %s  %s", r.heading("Intent:"), resp.Intent, r.confidence(resp.EffectiveIntentConfidence()))
	p.line("%s %s  %s", r.heading("Routing:"), resp.Routing, r.confidence(resp.EffectiveRoutingConfidence()))
	p.line("%s %s", r.heading("Overall:"), r.confidence(resp.Confidence))

	p.blank()
	p.line("%s (%d)", r.heading("Extracted Items"), len(resp.Items))
	for _, item := range resp.Items {
		line := fmt.Sprintf("  - %s  %s  x%d  [%s]", item.SKU, item.Description, item.Quantity, item.Category)
		if item.Confidence != nil {
			line += "  " + r.confidence(*item.Confidence)
		}
		p.line("%s", line)
		if item.ExtractionSource != "" {
			p.line("      %s", r.paint("Source: "+item.ExtractionSource, color.Italic))
		}
	}

	p.blank()
	p.line("%s (%d)", r.heading("Knowledge Base Matches"), len(resp.KBMatches))
	for _, m := range resp.KBMatches {
		p.line("  - %s / %s  %s  %s", m.Title, m.Section, r.relevance(m), r.confidence(m.Confidence))
		if rows := m.RowRange(); rows != "" {
			p.line("      %s", rows)
		}
		if m.MatchReason != "" {
			p.line("      %s", r.paint("Match reason: "+m.MatchReason, color.Italic))
		}
	}

	p.blank()
	p.line("%s (%d)", r.heading("Knowledge Gaps"), len(resp.KnowledgeGaps))
	for _, g := range resp.KnowledgeGaps {
		line := "  - " + g.Description
		if g.Confidence != nil {
			line += "  " + r.confidence(*g.Confidence)
		}
		p.line("%s", line)
		if g.GapReason != "" {
			p.line("      %s", r.paint("Reason: "+g.GapReason, color.Italic))
		}
	}

	return p.err
}

// Percent rounds a 0..1 confidence to a whole percentage.
func Percent(confidence float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(confidence*100)))
}

func (r *Renderer) confidence(c float64) string {
	text := fmt.Sprintf("%s (%s)", Percent(c), models.ConfidenceTier(c))
	switch models.ConfidenceTier(c) {
	case models.TierHigh:
		return r.paint(text, color.FgGreen)
	case models.TierMedium:
		return r.paint(text, color.FgYellow)
	default:
		return r.paint(text, color.FgRed)
	}
}

func (r *Renderer) relevance(m models.KBMatch) string {
	label := strings.TrimSpace(m.Relevance)
	if label == "" {
		label = "Unknown"
	}
	switch m.RelevanceLevel() {
	case models.RelevanceHigh:
		return r.paint(label, color.FgGreen)
	case models.RelevanceMedium:
		return r.paint(label, color.FgYellow)
	default:
		return r.paint(label, color.FgWhite)
	}
}

func (r *Renderer) heading(s string) string {
	return r.paint(s, color.Bold, color.FgBlue)
}

func (r *Renderer) paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if r.noColor {
		c.DisableColor()
	}
	return c.Sprint(s)
}

type printer struct {
	w   io.Writer
	err error
}

func (r *Renderer) printer() *printer {
	return &printer{w: r.w}
}

func (p *printer) line(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) blank() {
	p.line("")
}
