// Package render prints analysis results for a terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/njchilds90/calctool/analysis"
)

var (
	Primary     = lipgloss.Color("#2196F3")
	Accent      = lipgloss.Color("#8BC34A")
	Muted       = lipgloss.Color("#8a94a6")
	Destructive = lipgloss.Color("#e53935")
	Warning     = lipgloss.Color("#FFC107")
)

// Styles holds one style per narration role plus the chrome around it.
type Styles struct {
	Title      lipgloss.Style
	Heading    lipgloss.Style
	Statement  lipgloss.Style
	Conclusion lipgloss.Style
	Label      lipgloss.Style
	Error      lipgloss.Style
	Box        lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Heading:    lipgloss.NewStyle().Bold(true).Underline(true),
		Statement:  lipgloss.NewStyle().PaddingLeft(2),
		Conclusion: lipgloss.NewStyle().PaddingLeft(2).Bold(true).Foreground(Accent),
		Label:      lipgloss.NewStyle().Foreground(Muted),
		Error:      lipgloss.NewStyle().Bold(true).Foreground(Destructive),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1),
	}
}

// PlainStyles keeps the layout but drops every color and border.
func PlainStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle(),
		Heading:    lipgloss.NewStyle(),
		Statement:  lipgloss.NewStyle().PaddingLeft(2),
		Conclusion: lipgloss.NewStyle().PaddingLeft(2),
		Label:      lipgloss.NewStyle(),
		Error:      lipgloss.NewStyle(),
		Box:        lipgloss.NewStyle(),
	}
}

func (s Styles) step(st analysis.Step) string {
	switch st.Role {
	case analysis.RoleHeading:
		return s.Heading.Render(st.Text)
	case analysis.RoleConclusion:
		return s.Conclusion.Render("⇒ " + st.Text)
	}
	return s.Statement.Render(st.Text)
}

// Result renders res: title, headline, derivation steps and a mode summary.
func Result(res *analysis.Result, s Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf("%s: f(x) = %s", res.Mode, res.FunctionText)))
	b.WriteByte('\n')

	if res.ErrorMessage != nil {
		b.WriteString(s.Error.Render("error: " + *res.ErrorMessage))
		b.WriteByte('\n')
		return b.String()
	}

	b.WriteString(s.Box.Render(res.SymbolicResultText))
	b.WriteByte('\n')
	for _, st := range res.Steps {
		b.WriteString(s.step(st))
		b.WriteByte('\n')
	}
	if summary := Summary(res.SampleData); summary != "" {
		b.WriteByte('\n')
		b.WriteString(s.Label.Render(summary))
		b.WriteByte('\n')
	}
	return b.String()
}

// Summary lists the numbers a plot would show.
func Summary(data analysis.SampleData) string {
	var lines []string
	add := func(label string, v any) { lines = append(lines, fmt.Sprintf("%-16s %v", label+":", v)) }

	switch d := data.(type) {
	case analysis.LimitData:
		add("left limit", d.Left)
		add("right limit", d.Right)
		add("f(p)", d.Value)
		add("classification", d.Classification)
		if d.Marker.Show {
			add("marker", fmt.Sprintf("%s at (%g, %v)", d.Marker.Style, d.Marker.X, d.Marker.Y))
		}
	case analysis.DerivativeData:
		add("tangent", d.TangentText)
		if d.Tangent != nil {
			seg := d.Tangent.Segment
			add("segment", fmt.Sprintf("(%g, %g) to (%g, %g)", seg[0].X, seg[0].Y, seg[1].X, seg[1].Y))
		}
	case analysis.CriticalPointsData:
		if len(d.Points) == 0 {
			add("critical points", "none")
		}
		for _, p := range d.Points {
			add("x = "+p.XText, fmt.Sprintf("%s, f = %g", p.Kind, p.Y))
		}
	case analysis.IntegralData:
		add("net", d.NetText)
		add("area", d.GeometricText)
		add("riemann net", fmt.Sprintf("%g (n = %d)", d.Riemann.Net, d.Riemann.N))
		add("riemann abs", d.Riemann.Absolute)
		if d.Riemann.Dropped > 0 {
			add("dropped", d.Riemann.Dropped)
		}
	}
	return strings.Join(lines, "\n")
}
