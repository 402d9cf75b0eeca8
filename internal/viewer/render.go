package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"qtermsim/report"
	"qtermsim/statevector"
)

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	editorWidth := m.width / 3
	leftWidth := m.width - editorWidth - 4
	controlsHeight := 4
	bodyHeight := max(m.height-controlsHeight-2, 12)
	resultsHeight := max(bodyHeight/2, 6)
	circuitHeight := max(bodyHeight-resultsHeight-2, 6)

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderCircuitPanel(leftWidth, circuitHeight),
		m.renderResultsPanel(leftWidth, resultsHeight),
	)
	top := lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderEditorPanel(editorWidth, bodyHeight))
	frame := lipgloss.JoinVertical(lipgloss.Left, top, m.renderControlsPanel(m.width-4, controlsHeight-2))

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam:
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	}
	return frame
}

func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	title := fmt.Sprintf("Circuit · %d qubits", m.qubits)
	if m.throughCursor {
		title += fmt.Sprintf(" · through step %d", m.cursorStep)
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	maxSteps := max((width-labelVisualW-4)/cellW, 1)
	startStep := 0
	if m.cursorStep >= maxSteps {
		startStep = m.cursorStep - maxSteps + 1
	}
	if startStep > 0 {
		fmt.Fprintf(&sb, "  ◀ steps %d–%d\n", startStep, startStep+maxSteps-1)
	}

	header := strings.Repeat(" ", labelVisualW)
	for step := startStep; step < startStep+maxSteps; step++ {
		header += dimStyle.Render(padCenter(fmt.Sprint(step), cellW))
	}
	sb.WriteString(header + "\n")

	for qubit := range m.qubits {
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", qubit))) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for step := startStep; step < startStep+maxSteps; step++ {
			hl := hlNone
			switch {
			case step == m.cursorStep && qubit == m.cursorQubit && m.focus != focusEditor:
				hl = hlCursor
			case step == m.cursorStep && qubit == m.targetQubit && m.focus == focusSelectTarget:
				hl = hlTargetSelect
			}
			top, mid, bot := renderCell(cellAt(m.doc, step, qubit), hl)
			topLine += top
			midLine += mid
			botLine += bot
		}
		sb.WriteString(topLine + "\n" + midLine + "\n" + botLine + "\n")
	}

	if m.focus == focusSelectTarget {
		fmt.Fprintf(&sb, "\n  %s  select qubit: %s", activeStyle.Render(m.pending.Name), targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  ⏎ Confirm  Esc Cancel"))
	} else {
		fmt.Fprintf(&sb, "\n  Step %d, Qubit %d", m.cursorStep, m.cursorQubit)
		if m.statusMsg != "" {
			fmt.Fprintf(&sb, "  │  %s", activeStyle.Render(m.statusMsg))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

func (m Model) renderEditorPanel(width, height int) string {
	var sb strings.Builder
	title := "Circuit JSON"
	if m.focus == focusEditor {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.editor.View())
	return editorStyle.Width(width).Height(height).Render(sb.String())
}

// renderResultsPanel shows the latest run as a histogram, an amplitude list
// or sampled counts, followed by the single-qubit marginals.
func (m Model) renderResultsPanel(width, height int) string {
	var sb strings.Builder

	for i, t := range []resultTab{tabProbabilities, tabStatevector, tabSamples} {
		if i > 0 {
			sb.WriteString(dimStyle.Render(" │ "))
		}
		if t == m.tab {
			sb.WriteString(titleStyle.Render(t.String()))
		} else {
			sb.WriteString(dimStyle.Render(t.String()))
		}
	}
	sb.WriteString(dimStyle.Render("   " + m.ordering.String()))
	sb.WriteString("\n")

	rows := max(height-4, 1)
	switch {
	case m.result.err != nil:
		sb.WriteString(errorStyle.Render(m.result.err.Error()))
	case m.tab == tabProbabilities:
		sb.WriteString(probabilityRows(m.result.probs, rows))
	case m.tab == tabStatevector:
		sb.WriteString(componentRows(m.result.components, m.ordering, m.result.width, rows))
	case m.result.counts != nil:
		sb.WriteString(countRows(m.result.counts, rows))
	}

	if m.result.err == nil && len(m.result.qubits) > 0 {
		sb.WriteString("\n")
		parts := make([]string, len(m.result.qubits))
		for q, p := range m.result.qubits {
			parts[q] = fmt.Sprintf("q%d:%.2f", q, p.Prob1)
		}
		sb.WriteString(dimStyle.Render("P(1) " + strings.Join(parts, " ")))
	}

	return resultsStyle.Width(width).Height(height).Render(sb.String())
}

// probabilityRows lists the states with non-zero probability.
func probabilityRows(probs report.ProbabilityList, rows int) string {
	var lines []string
	for _, p := range probs {
		if p.Value < 1e-12 {
			continue
		}
		lines = append(lines, fmt.Sprintf("|%s⟩ %6.2f%% %s", p.Label, 100*p.Value, report.Bar(p.Value, report.BarWidth)))
	}
	return clip(lines, rows)
}

// componentRows lists the weighted basis states in index order with their
// amplitude, phase and number of qubits in |1>.
func componentRows(comps []statevector.Component, ord report.Ordering, n, rows int) string {
	var lines []string
	for _, c := range comps {
		a := c.Amplitude
		lines = append(lines, fmt.Sprintf("|%s⟩ %+.4f%+.4fi  p=%.4f  φ=%+.3f  w=%d", ord.Label(c.Index, n), real(a), imag(a), c.Prob, c.Phase, c.Hamming))
	}
	return clip(lines, rows)
}

func countRows(counts *report.ShotCounts, rows int) string {
	var lines []string
	for _, label := range counts.Labels() {
		n := counts.Counts[label]
		frac := float64(n) / float64(counts.Shots)
		lines = append(lines, fmt.Sprintf("|%s⟩ %6d %s", label, n, report.Bar(frac, report.BarWidth)))
	}
	return clip(lines, rows)
}

func clip(lines []string, rows int) string {
	if len(lines) > rows {
		more := len(lines) - rows + 1
		lines = append(lines[:rows-1:rows-1], dimStyle.Render(fmt.Sprintf("… %d more", more)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Qubit  ←→/hl Step  +/- Qubits  Space Run to cursor  ")
	sb.WriteString(activeStyle.Render("a"))
	sb.WriteString(" Add gate\n")

	sb.WriteString(activeStyle.Render("Actions:  "))
	sb.WriteString("Tab Editor  x Delete  o Ordering  r Results  s Resample  ^R Reset  ^S Save  q Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// overlayAt draws overlay on top of bg with its top-left corner at column x, row y.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	for i, line := range strings.Split(overlay, "\n") {
		row := y + i
		if row < 0 || row >= len(bgLines) {
			continue
		}
		under := bgLines[row]
		left := ansi.Truncate(under, x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := ansi.TruncateLeft(under, x+ansi.StringWidth(line), "")
		bgLines[row] = left + line + right
	}
	return strings.Join(bgLines, "\n")
}
