package viewer

import (
	"strings"

	"qtermsim/circuit"
	"qtermsim/gates"
)

var symbols = map[string]string{
	"identity":            "I",
	"pauli-x":             "X",
	"pauli-y":             "Y",
	"pauli-z":             "Z",
	"hadamard":            "H",
	"t":                   "T",
	"t-dagger":            "T†",
	"s":                   "S",
	"s-dagger":            "S†",
	"sqrt-not":            "√X",
	"u1":                  "U1",
	"u2":                  "U2",
	"u3":                  "U3",
	"rx-theta":            "RX",
	"ry-theta":            "RY",
	"rz-theta":            "RZ",
	"pauli-x-root":        "X^r",
	"pauli-x-root-dagger": "X^-r",
	"pauli-y-root":        "Y^r",
	"pauli-y-root-dagger": "Y^-r",
	"pauli-z-root":        "Z^r",
	"pauli-z-root-dagger": "Z^-r",
	"iswap":               "iSW",
	"sqrt-swap":           "√SW",
	"swap-phi":            "SWφ",
	"xx":                  "XX",
	"yy":                  "YY",
	"zz":                  "ZZ",
	gates.Measure:         "M",
}

// symbol returns the short label drawn inside a gate box.
func symbol(name string) string {
	if s, ok := symbols[gates.BaseName(name)]; ok {
		return s
	}
	s := strings.ToUpper(gates.BaseName(name))
	if len(s) > gateNameW {
		s = s[:gateNameW]
	}
	return s
}

type role int

const (
	roleNone role = iota
	roleBox
	roleControl
	roleTarget // wire symbol rather than a box
)

// cell is what one (step, qubit) position of the diagram shows.
type cell struct {
	gate        *circuit.GateDocument
	role        role
	vertAbove   bool
	vertBelow   bool
	passThrough bool
}

func touched(g *circuit.GateDocument) []int {
	qs := []int{g.Target}
	if g.Target2 != nil {
		qs = append(qs, *g.Target2)
	}
	if g.Control != nil {
		qs = append(qs, *g.Control)
	}
	return qs
}

// gateAt returns the gate of step index touching qubit.
func gateAt(doc *circuit.Document, index, qubit int) *circuit.GateDocument {
	for si := range doc.Steps {
		if doc.Steps[si].Index != index {
			continue
		}
		for gi := range doc.Steps[si].Gates {
			g := &doc.Steps[si].Gates[gi]
			for _, q := range touched(g) {
				if q == qubit {
					return g
				}
			}
		}
	}
	return nil
}

// cellAt classifies the position (index, qubit) of the diagram.
func cellAt(doc *circuit.Document, index, qubit int) cell {
	var c cell
	for si := range doc.Steps {
		if doc.Steps[si].Index != index {
			continue
		}
		for gi := range doc.Steps[si].Gates {
			g := &doc.Steps[si].Gates[gi]
			qs := touched(g)
			lo, hi := qs[0], qs[0]
			hit := false
			for _, q := range qs {
				lo, hi = min(lo, q), max(hi, q)
				hit = hit || q == qubit
			}
			if !hit {
				if qubit > lo && qubit < hi {
					c.passThrough = true
				}
				continue
			}
			c.gate = g
			c.vertAbove = qubit > lo
			c.vertBelow = qubit < hi
			c.role = roleOf(g, qubit)
			return c
		}
	}
	return c
}

func roleOf(g *circuit.GateDocument, qubit int) role {
	if g.Control != nil && *g.Control == qubit {
		return roleControl
	}
	switch gates.BaseName(g.Name) {
	case "swap":
		return roleTarget
	case "pauli-x", "pauli-z":
		if g.Control != nil {
			return roleTarget
		}
	}
	return roleBox
}

// wireSymbol is drawn on the wire for controls and symbol-only targets.
func wireSymbol(c cell) string {
	if c.role == roleControl {
		return "●"
	}
	switch gates.BaseName(c.gate.Name) {
	case "swap":
		return "×"
	case "pauli-z":
		return "●"
	}
	return "⊕"
}

func padCenter(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return string([]rune(s)[:width])
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

type highlight int

const (
	hlNone highlight = iota
	hlCursor
	hlTargetSelect
)

// renderCell returns the three lines of one cell, each cellW columns wide.
func renderCell(c cell, hl highlight) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)

	if hl != hlNone {
		bdr := cursorBoxStyle
		if hl == hlTargetSelect {
			bdr = targetSelectStyle
		}
		innerW := cellW - 2
		dashL := (innerW - 1) / 2
		dashR := innerW - dashL - 1

		top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")
		switch {
		case c.gate != nil && c.role == roleBox:
			mid = bdr.Render("║") + "─┤" + gateStyle.Render(padCenter(symbol(c.gate.Name), gateNameW)) + "├─" + bdr.Render("║")
		case c.gate != nil:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gateStyle.Render(wireSymbol(c)) + strings.Repeat("─", dashR) + bdr.Render("║")
		case c.passThrough:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR) + bdr.Render("║")
		default:
			mid = bdr.Render("║") + strings.Repeat("─", innerW) + bdr.Render("║")
		}
		return
	}

	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1
	vert := func(on bool) string {
		if on {
			return vertRow
		}
		return emptyRow
	}

	switch {
	case c.gate != nil && c.role == roleBox:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+padCenter(symbol(c.gate.Name), gateNameW)+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
		if c.vertAbove {
			top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW/2)+"┴"+strings.Repeat("─", gateNameW-gateNameW/2-1)+"┐") + strings.Repeat(" ", rightMargin)
		}
		if c.vertBelow {
			bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW/2)+"┬"+strings.Repeat("─", gateNameW-gateNameW/2-1)+"┘") + strings.Repeat(" ", rightMargin)
		}
	case c.gate != nil:
		top = vert(c.vertAbove)
		mid = strings.Repeat("─", dashL) + gateStyle.Render(wireSymbol(c)) + strings.Repeat("─", dashR)
		bot = vert(c.vertBelow)
	case c.passThrough:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
		bot = vertRow
	default:
		top = emptyRow
		mid = strings.Repeat("─", cellW)
		bot = emptyRow
	}
	return
}
