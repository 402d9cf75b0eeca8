// Package circuit turns the JSON circuit format into a validated, ordered list
// of gate applications ready for simulation.
package circuit

import (
	"errors"
	"fmt"
	"slices"

	"qtermsim/gates"
)

// Circuit is a validated circuit bound to a register size. It is immutable once
// built and may be shared between simulations.
type Circuit struct {
	QubitCount int
	Steps      []Step // ascending Index
}

// Step is a group of applications on pairwise disjoint qubits.
type Step struct {
	Index int
	Gates []Application
}

// Application is one gate placed on concrete qubits with its action resolved.
type Application struct {
	Gate    *gates.Definition
	Op      gates.Op
	Target  int
	Target2 int // -1 if the gate has one target
	Control int // -1 if the gate is not controlled
}

// Qubits returns every qubit the application touches.
func (a Application) Qubits() []int {
	qs := []int{a.Target}
	if a.Target2 >= 0 {
		qs = append(qs, a.Target2)
	}
	if a.Control >= 0 {
		qs = append(qs, a.Control)
	}
	return qs
}

// GateCount returns the number of applications over all steps.
func (c *Circuit) GateCount() int {
	n := 0
	for _, s := range c.Steps {
		n += len(s.Gates)
	}
	return n
}

// Parse decodes and validates a circuit document for a register of qubitCount qubits.
func Parse(data []byte, qubitCount int) (*Circuit, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return doc.Compile(qubitCount)
}

// Compile validates the document against the gate catalogue and the register
// size, and resolves every application.
func (d *Document) Compile(qubitCount int) (*Circuit, error) {
	if qubitCount < 1 {
		return nil, &MalformedCircuitError{Field: "qubitCount", Reason: fmt.Sprintf("must be positive, got %d", qubitCount)}
	}

	c := &Circuit{QubitCount: qubitCount, Steps: make([]Step, 0, len(d.Steps))}
	seen := make(map[int]int, len(d.Steps))
	for i, sd := range d.Steps {
		stepField := fmt.Sprintf("steps[%d]", i)
		if prev, dup := seen[sd.Index]; dup {
			return nil, &MalformedCircuitError{
				Field:  stepField + ".index",
				Reason: fmt.Sprintf("index %d already used by steps[%d]", sd.Index, prev),
			}
		}
		seen[sd.Index] = i

		step := Step{Index: sd.Index, Gates: make([]Application, 0, len(sd.Gates))}
		used := make(map[int]string)
		for j, gd := range sd.Gates {
			gateField := fmt.Sprintf("%s.gates[%d]", stepField, j)
			app, err := compileGate(gd, gateField, qubitCount)
			if err != nil {
				return nil, err
			}
			for _, slot := range app.slots(gateField) {
				if other, clash := used[slot.qubit]; clash {
					return nil, &InvalidQubitIndexError{
						Field:      slot.field,
						Qubit:      slot.qubit,
						QubitCount: qubitCount,
						Reason:     "already used in this step by " + other,
					}
				}
				used[slot.qubit] = slot.field
			}
			step.Gates = append(step.Gates, app)
		}
		c.Steps = append(c.Steps, step)
	}

	slices.SortStableFunc(c.Steps, func(a, b Step) int { return a.Index - b.Index })
	return c, nil
}

type slot struct {
	field string
	qubit int
}

func (a Application) slots(field string) []slot {
	s := []slot{{field + ".target", a.Target}}
	if a.Target2 >= 0 {
		s = append(s, slot{field + ".target2", a.Target2})
	}
	if a.Control >= 0 {
		s = append(s, slot{field + ".control", a.Control})
	}
	return s
}

func compileGate(gd GateDocument, field string, qubitCount int) (Application, error) {
	def, err := gates.Lookup(gd.Name)
	if err != nil {
		return Application{}, fmt.Errorf("%s.name: %w", field, err)
	}

	app := Application{Gate: def, Target: gd.Target, Target2: -1, Control: -1}

	switch {
	case def.Targets == 2 && gd.Target2 == nil:
		return Application{}, &MalformedCircuitError{Field: field + ".target2", Reason: "required by " + def.Name}
	case def.Targets == 1 && gd.Target2 != nil:
		return Application{}, &MalformedCircuitError{Field: field + ".target2", Reason: "not accepted by " + def.Name}
	case def.Targets == 2:
		app.Target2 = *gd.Target2
	}

	switch {
	case def.Controlled && gd.Control == nil:
		return Application{}, &MalformedCircuitError{Field: field + ".control", Reason: "required by " + def.Name}
	case !def.Controlled && gd.Control != nil:
		return Application{}, &MalformedCircuitError{Field: field + ".control", Reason: "not accepted by " + def.Name}
	case def.Controlled:
		app.Control = *gd.Control
	}

	seen := make(map[int]string, 3)
	for _, s := range app.slots(field) {
		if s.qubit < 0 || s.qubit >= qubitCount {
			return Application{}, &InvalidQubitIndexError{
				Field:      s.field,
				Qubit:      s.qubit,
				QubitCount: qubitCount,
				Reason:     "out of range",
			}
		}
		if other, dup := seen[s.qubit]; dup {
			return Application{}, &InvalidQubitIndexError{
				Field:      s.field,
				Qubit:      s.qubit,
				QubitCount: qubitCount,
				Reason:     "same qubit as " + other,
			}
		}
		seen[s.qubit] = s.field
	}

	op, err := def.Resolve(gates.Params{Phi: gd.Phi, Theta: gd.Theta, Lambda: gd.Lambda, Root: gd.Root})
	if err != nil {
		var perr *gates.ParamError
		if errors.As(err, &perr) {
			return Application{}, &MalformedCircuitError{Field: field + "." + string(perr.Param), Reason: perr.Reason, Err: err}
		}
		return Application{}, fmt.Errorf("%s: %w", field, err)
	}
	app.Op = op
	return app, nil
}
