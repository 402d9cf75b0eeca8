// Package gates holds the fixed catalogue of gates understood by the simulator.
//
// Every entry declares how many target slots it takes, whether it needs a
// control qubit, which real parameters it reads and how to build its unitary.
// The catalogue is assembled once at package initialisation and is read-only
// afterwards, so it can be shared between concurrent simulations.
package gates

import (
	"fmt"
	"slices"
	"strings"
)

// ControlPrefix turns any unitary gate of the catalogue into its controlled form.
const ControlPrefix = "ctrl-"

// Measure marks a qubit as measured. It leaves the state untouched.
const Measure = "measure-z"

// Param names a real (or root) parameter read from a gate application.
type Param string

const (
	Phi    Param = "phi"
	Theta  Param = "theta"
	Lambda Param = "lambda"
	Root   Param = "root"
)

// Params carries the optional parameters of one gate application.
// A nil field means the parameter was not supplied.
type Params struct {
	Phi    *float64
	Theta  *float64
	Lambda *float64
	Root   *string
}

func (p Params) has(param Param) bool {
	switch param {
	case Phi:
		return p.Phi != nil
	case Theta:
		return p.Theta != nil
	case Lambda:
		return p.Lambda != nil
	case Root:
		return p.Root != nil
	}
	return false
}

// Op is the resolved action of a gate application: Single, Double or Marker.
type Op interface {
	op()
}

// Single is a 2x2 unitary acting on one target qubit.
type Single struct {
	Matrix Matrix2
	Shape  Shape
}

// Double is a 4x4 unitary acting on the (target, target2) pair. Row and column
// k of the matrix address the sub-state 2*bit(target) + bit(target2).
type Double struct {
	Matrix Matrix4
}

// Marker is an operation with no effect on the amplitudes.
type Marker struct{}

func (Single) op() {}
func (Double) op() {}
func (Marker) op() {}

// Definition is one catalogue entry.
type Definition struct {
	Name       string
	Targets    int  // 1 or 2 target slots
	Controlled bool // requires the control slot
	Requires   []Param
	Summary    string

	build func(Params) (Op, error)
}

// Resolve checks that every required parameter is present and builds the action.
func (d *Definition) Resolve(p Params) (Op, error) {
	for _, param := range d.Requires {
		if !p.has(param) {
			return nil, &ParamError{Gate: d.Name, Param: param, Reason: "missing"}
		}
	}
	return d.build(p)
}

// Arity returns the total number of qubits the gate touches.
func (d *Definition) Arity() int {
	if d.Controlled {
		return d.Targets + 1
	}
	return d.Targets
}

var catalogue = map[string]*Definition{}

// Lookup returns the catalogue entry for name.
func Lookup(name string) (*Definition, error) {
	if def, ok := catalogue[name]; ok {
		return def, nil
	}
	return nil, &UnknownGateError{Name: name}
}

// Names returns every gate name of the catalogue in lexical order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Definitions returns every catalogue entry ordered by name.
func Definitions() []*Definition {
	names := Names()
	defs := make([]*Definition, len(names))
	for i, name := range names {
		defs[i] = catalogue[name]
	}
	return defs
}

func register(def *Definition) {
	if _, dup := catalogue[def.Name]; dup {
		panic(fmt.Sprintf("gates: %s registered twice", def.Name))
	}
	catalogue[def.Name] = def
}

func fixed1(name, summary string, m Matrix2) {
	op := Single{Matrix: m, Shape: classify(m)}
	register(&Definition{
		Name:    name,
		Targets: 1,
		Summary: summary,
		build:   func(Params) (Op, error) { return op, nil },
	})
}

func fixed2(name, summary string, m Matrix4) {
	op := Double{Matrix: m}
	register(&Definition{
		Name:    name,
		Targets: 2,
		Summary: summary,
		build:   func(Params) (Op, error) { return op, nil },
	})
}

func param1(name, summary string, requires []Param, fn func(Params) (Matrix2, error)) {
	register(&Definition{
		Name:     name,
		Targets:  1,
		Requires: requires,
		Summary:  summary,
		build: func(p Params) (Op, error) {
			m, err := fn(p)
			if err != nil {
				return nil, err
			}
			return Single{Matrix: m, Shape: classify(m)}, nil
		},
	})
}

func param2(name, summary string, requires []Param, fn func(Params) Matrix4) {
	register(&Definition{
		Name:     name,
		Targets:  2,
		Requires: requires,
		Summary:  summary,
		build:    func(p Params) (Op, error) { return Double{Matrix: fn(p)}, nil },
	})
}

func rootGate(name, summary string, rotation func(float64) Matrix2, sign float64) {
	param1(name, summary, []Param{Root}, func(p Params) (Matrix2, error) {
		value, err := ParseRoot(*p.Root)
		if err != nil {
			return Matrix2{}, &ParamError{Gate: name, Param: Root, Reason: err.Error()}
		}
		return rotation(sign * pi / value), nil
	})
}

func init() {
	fixed1("identity", "leaves the qubit unchanged", identity)
	fixed1("pauli-x", "bit flip", pauliX)
	fixed1("pauli-y", "bit and phase flip", pauliY)
	fixed1("pauli-z", "phase flip", pauliZ)
	fixed1("hadamard", "maps |0> to |+> and |1> to |->", hadamard)
	fixed1("t", "pi/4 phase", tGate)
	fixed1("t-dagger", "-pi/4 phase", tGate.Dagger())
	fixed1("s", "pi/2 phase", sGate)
	fixed1("s-dagger", "-pi/2 phase", sGate.Dagger())
	fixed1("sqrt-not", "square root of pauli-x", sqrtNot)

	param1("u1", "phase rotation by lambda", []Param{Lambda}, func(p Params) (Matrix2, error) {
		return u1(*p.Lambda), nil
	})
	param1("u2", "u3 with theta fixed to pi/2", []Param{Phi, Lambda}, func(p Params) (Matrix2, error) {
		return u3(pi/2, *p.Phi, *p.Lambda), nil
	})
	param1("u3", "generic single-qubit rotation", []Param{Theta, Phi, Lambda}, func(p Params) (Matrix2, error) {
		return u3(*p.Theta, *p.Phi, *p.Lambda), nil
	})
	param1("rx-theta", "rotation about X by theta", []Param{Theta}, func(p Params) (Matrix2, error) {
		return rx(*p.Theta), nil
	})
	param1("ry-theta", "rotation about Y by theta", []Param{Theta}, func(p Params) (Matrix2, error) {
		return ry(*p.Theta), nil
	})
	param1("rz-theta", "rotation about Z by theta", []Param{Theta}, func(p Params) (Matrix2, error) {
		return rz(*p.Theta), nil
	})

	rootGate("pauli-x-root", "root of pauli-x, angle pi/root", rx, 1)
	rootGate("pauli-x-root-dagger", "inverse root of pauli-x", rx, -1)
	rootGate("pauli-y-root", "root of pauli-y, angle pi/root", ry, 1)
	rootGate("pauli-y-root-dagger", "inverse root of pauli-y", ry, -1)
	rootGate("pauli-z-root", "root of pauli-z, angle pi/root", rz, 1)
	rootGate("pauli-z-root-dagger", "inverse root of pauli-z", rz, -1)

	fixed2("swap", "exchanges two qubits", swap)
	fixed2("iswap", "swap with i phase on the exchanged states", iswap)
	fixed2("sqrt-swap", "square root of swap", sqrtSwap)
	param2("swap-phi", "swap with phase phi on the exchanged states", []Param{Phi}, func(p Params) Matrix4 {
		return swapPhi(*p.Phi)
	})
	param2("xx", "Ising XX coupling", []Param{Theta}, func(p Params) Matrix4 { return xx(*p.Theta) })
	param2("yy", "Ising YY coupling", []Param{Theta}, func(p Params) Matrix4 { return yy(*p.Theta) })
	param2("zz", "Ising ZZ coupling", []Param{Theta}, func(p Params) Matrix4 { return zz(*p.Theta) })

	// Controlled forms share the parameters and matrix of their base gate.
	for _, base := range Definitions() {
		register(&Definition{
			Name:       ControlPrefix + base.Name,
			Targets:    base.Targets,
			Controlled: true,
			Requires:   base.Requires,
			Summary:    "controlled " + base.Name,
			build:      base.build,
		})
	}

	register(&Definition{
		Name:    Measure,
		Targets: 1,
		Summary: "measurement marker, no effect on the state",
		build:   func(Params) (Op, error) { return Marker{}, nil },
	})
}

// BaseName strips the control prefix from name.
func BaseName(name string) string {
	return strings.TrimPrefix(name, ControlPrefix)
}
