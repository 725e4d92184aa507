package report

import (
	"fmt"
	"strconv"
	"strings"

	"diabetes-assistant/internal/assessment"
)

// Page geometry in millimetres on A4.
const (
	marginX   = 20.0
	topY      = 20.0
	maxY      = 260.0
	wrapWidth = 90
	// disclaimerWrapWidth is wider because the disclaimer is set smaller.
	disclaimerWrapWidth = 105
)

const (
	Title         = "Your Diabetes Risk Report"
	noStrategies  = "No specific prevention strategies available."
	Disclaimer    = "Disclaimer: This report is for informational purposes only and not a substitute for professional medical advice."
	factorsTitle  = "Your Risk Factors"
	strategyTitle = "Prevention Strategies"
)

type Style int

const (
	StyleBody Style = iota
	StyleTitle
	StyleDisclaimer
)

// Size returns the font size in points.
func (s Style) Size() float64 {
	switch s {
	case StyleTitle:
		return 16
	case StyleDisclaimer:
		return 10
	default:
		return 12
	}
}

func (s Style) Italic() bool {
	return s == StyleDisclaimer
}

type Line struct {
	Text  string
	X, Y  float64
	Style Style
}

type Page struct {
	Lines []Line
}

// Layout is the positioned text of a report, independent of any PDF
// library.
type Layout struct {
	Pages []Page
}

// Text returns every line in reading order joined by newlines.
func (l Layout) Text() string {
	var b strings.Builder
	for _, p := range l.Pages {
		for _, line := range p.Lines {
			b.WriteString(line.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

type cursor struct {
	pages []Page
	y     float64
}

func (c *cursor) place(text string, style Style, step float64) {
	if len(c.pages) == 0 || c.y > maxY {
		c.pages = append(c.pages, Page{})
		if len(c.pages) > 1 {
			c.y = topY
		}
	}
	p := &c.pages[len(c.pages)-1]
	p.Lines = append(p.Lines, Line{Text: text, X: marginX, Y: c.y, Style: style})
	c.y += step
}

// BuildLayout positions the report content. It is deterministic: equal
// inputs give equal layouts.
func BuildLayout(in assessment.ReportInput) Layout {
	c := &cursor{y: topY}

	c.place(Title, StyleTitle, 10)
	c.place("Risk Level: "+in.RiskLevel, StyleBody, 10)
	c.place(fmt.Sprintf("Probability: %.2f%%", in.Probability*100), StyleBody, 10)
	c.place(factorsTitle, StyleBody, 10)

	for _, f := range in.Factors {
		c.place(f.Key+": "+strconv.FormatFloat(f.Value, 'f', -1, 64), StyleBody, 10)
	}

	c.place(strategyTitle, StyleBody, 10)
	strategies := Strategies(in.Strategies)
	if len(strategies) == 0 {
		c.place(noStrategies, StyleBody, 10)
	}
	for _, s := range strategies {
		for _, line := range Wrap(s, wrapWidth) {
			c.place(line, StyleBody, 7)
		}
	}

	for _, line := range Wrap(Disclaimer, disclaimerWrapWidth) {
		c.place(line, StyleDisclaimer, 5)
	}
	return Layout{Pages: c.pages}
}

// Strategies splits narrative text into one entry per non-blank line with
// any leading "*" bullet removed.
func Strategies(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Wrap breaks text on spaces into lines of at most width runes. Words
// longer than width are split.
func Wrap(text string, width int) []string {
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = cur[:0]
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, w...)
		case len(cur)+1+len(w) <= width:
			cur = append(cur, ' ')
			cur = append(cur, w...)
		default:
			lines = append(lines, string(cur))
			cur = append(cur[:0], w...)
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
