package viewer

import (
	"fmt"
	"slices"
	"strings"

	"qtermsim/circuit"
	"qtermsim/gates"
)

// placeGate adds a gate at the cursor. The cursor qubit is the target of
// plain gates, the control of controlled gates and the first target of
// two-target gates; second is the qubit picked after it (-1 when unused).
func (m *Model) placeGate(def *gates.Definition, second int, params gates.Params) error {
	gd := circuit.GateDocument{
		Name:   def.Name,
		Target: m.cursorQubit,
		Phi:    params.Phi,
		Theta:  params.Theta,
		Lambda: params.Lambda,
		Root:   params.Root,
	}
	switch {
	case def.Controlled:
		ctrl := m.cursorQubit
		gd.Control, gd.Target = &ctrl, second
	case def.Targets == 2:
		t2 := second
		gd.Target2 = &t2
	}

	for _, q := range touched(&gd) {
		if other := gateAt(m.doc, m.cursorStep, q); other != nil {
			return fmt.Errorf("q[%d] is busy in step %d (%s)", q, m.cursorStep, other.Name)
		}
	}

	i := slices.IndexFunc(m.doc.Steps, func(s circuit.StepDocument) bool { return s.Index == m.cursorStep })
	if i < 0 {
		m.doc.Steps = append(m.doc.Steps, circuit.StepDocument{Index: m.cursorStep})
		slices.SortFunc(m.doc.Steps, func(a, b circuit.StepDocument) int { return a.Index - b.Index })
		i = slices.IndexFunc(m.doc.Steps, func(s circuit.StepDocument) bool { return s.Index == m.cursorStep })
	}
	m.doc.Steps[i].Gates = append(m.doc.Steps[i].Gates, gd)
	return nil
}

// deleteGate removes the gate touching the cursor qubit in the cursor step,
// dropping the step when it becomes empty.
func (m *Model) deleteGate() bool {
	for si := range m.doc.Steps {
		step := &m.doc.Steps[si]
		if step.Index != m.cursorStep {
			continue
		}
		gi := slices.IndexFunc(step.Gates, func(g circuit.GateDocument) bool {
			return slices.Contains(touched(&g), m.cursorQubit)
		})
		if gi < 0 {
			return false
		}
		step.Gates = slices.Delete(step.Gates, gi, gi+1)
		if len(step.Gates) == 0 {
			m.doc.Steps = slices.Delete(m.doc.Steps, si, si+1)
		}
		return true
	}
	return false
}

// lastIndex is the largest step index in use, or -1 for an empty circuit.
func (m *Model) lastIndex() int {
	last := -1
	for _, s := range m.doc.Steps {
		last = max(last, s.Index)
	}
	return last
}

// parseParams reads comma separated values in the order def requires them.
func parseParams(def *gates.Definition, input string) (gates.Params, error) {
	var p gates.Params
	fields := strings.Split(input, ",")
	if len(fields) != len(def.Requires) {
		return p, fmt.Errorf("%s needs %d value(s): %s", def.Name, len(def.Requires), paramHint(def))
	}
	for i, param := range def.Requires {
		text := strings.TrimSpace(fields[i])
		if param == gates.Root {
			if _, err := gates.ParseRoot(text); err != nil {
				return p, err
			}
			p.Root = &text
			continue
		}
		v, err := circuit.ParseParamExpr(text)
		if err != nil {
			return p, fmt.Errorf("%s: %w", param, err)
		}
		switch param {
		case gates.Phi:
			p.Phi = &v
		case gates.Theta:
			p.Theta = &v
		case gates.Lambda:
			p.Lambda = &v
		}
	}
	return p, nil
}
