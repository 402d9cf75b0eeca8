package report

import (
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff9e64")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0caf5")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")).Padding(0, 1)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
)

// BarWidth is the width of a full histogram bar.
const BarWidth = 30

// Bar draws a horizontal bar for a fraction in [0, 1].
func Bar(frac float64, width int) string {
	frac = min(max(frac, 0), 1)
	full := int(math.Round(frac * float64(width)))
	if full == 0 && frac > 0 {
		return barStyle.Render("▏")
	}
	return barStyle.Render(strings.Repeat("█", full))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			default:
				return cellStyle
			}
		})
}

// Table renders the amplitudes with their probability and phase.
func (l AmplitudeList) Table() string {
	t := newTable("state", "re", "im", "|a|²", "phase")
	for _, a := range l {
		p := real(a.Value)*real(a.Value) + imag(a.Value)*imag(a.Value)
		t.Row(
			"|"+a.Label+"⟩",
			strconv.FormatFloat(real(a.Value), 'f', 6, 64),
			strconv.FormatFloat(imag(a.Value), 'f', 6, 64),
			strconv.FormatFloat(p, 'f', 6, 64),
			strconv.FormatFloat(cmplx.Phase(a.Value), 'f', 4, 64),
		)
	}
	return t.String()
}

// Table renders the probabilities as a histogram.
func (l ProbabilityList) Table() string {
	t := newTable("state", "probability", "")
	for _, p := range l {
		t.Row("|"+p.Label+"⟩", strconv.FormatFloat(p.Value, 'f', 6, 64), Bar(p.Value, BarWidth))
	}
	return t.String()
}

// Table renders the counts with observed frequencies as a histogram.
func (s *ShotCounts) Table() string {
	t := newTable("state", "count", "frequency", "")
	for _, label := range s.Labels() {
		n := s.Counts[label]
		freq := float64(n) / float64(s.Shots)
		t.Row("|"+label+"⟩", strconv.Itoa(n), strconv.FormatFloat(freq, 'f', 4, 64), Bar(freq, BarWidth))
	}
	return t.String()
}
