package viewer

import (
	"fmt"
	"strings"

	"qtermsim/gates"
)

// menuCategory groups catalogue entries under a tab of the gate picker.
type menuCategory struct {
	name  string
	items []*gates.Definition
}

// buildMenu sorts the catalogue into picker tabs. Controlled two-target gates
// need two extra qubits and are only reachable from the editor.
func buildMenu() []menuCategory {
	cats := []menuCategory{{name: "Single"}, {name: "Two Qubit"}, {name: "Controlled"}, {name: "Measure"}}
	for _, def := range gates.Definitions() {
		switch {
		case def.Name == gates.Measure:
			cats[3].items = append(cats[3].items, def)
		case def.Controlled && def.Targets == 1:
			cats[2].items = append(cats[2].items, def)
		case def.Controlled:
		case def.Targets == 2:
			cats[1].items = append(cats[1].items, def)
		default:
			cats[0].items = append(cats[0].items, def)
		}
	}
	return cats
}

var gateMenu = buildMenu()

// needsSecondQubit reports whether placing def asks for another qubit after the cursor.
func needsSecondQubit(def *gates.Definition) bool {
	return def.Controlled || def.Targets == 2
}

func paramHint(def *gates.Definition) string {
	names := make([]string, len(def.Requires))
	for i, p := range def.Requires {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}

// renderMenu draws the floating gate picker.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Add Gate"))
	sb.WriteString("\n")
	for i, cat := range gateMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(gateMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 44)))
	sb.WriteString("\n")

	items := gateMenu[m.menuCat].items
	first := 0
	if m.menuItem >= menuRows {
		first = m.menuItem - menuRows + 1
	}
	for i := first; i < min(len(items), first+menuRows); i++ {
		def := items[i]
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-22s", def.Name)))
			sb.WriteString(gateStyle.Render(symbol(def.Name)))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-22s", def.Name)))
			sb.WriteString(dimStyle.Render(symbol(def.Name)))
		}
		if needsSecondQubit(def) {
			sb.WriteString(dimStyle.Render(" →qubit"))
		}
		if len(def.Requires) > 0 {
			sb.WriteString(dimStyle.Render(" (" + paramHint(def) + ")"))
		}
		sb.WriteString("\n")
	}
	if len(items) > menuRows {
		sb.WriteString(dimStyle.Render(fmt.Sprintf(" %d/%d\n", m.menuItem+1, len(items))))
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Tab  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}

// renderParamInput draws the parameter prompt.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Parameters for " + m.pending.Name))
	sb.WriteString("\n\n")
	sb.WriteString(m.paramInput.View())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Order: " + paramHint(m.pending)))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("Examples: pi/2, 3*pi/4, 1.57"))
	return menuBorderStyle.Render(sb.String())
}
