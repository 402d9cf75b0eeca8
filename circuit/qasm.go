package circuit

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"qtermsim/gates"
)

// Pre-compiled regexps for QASM parsing.
var (
	qregRegex    = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]\s*;?$`)
	cregRegex    = regexp.MustCompile(`^creg\s+(\w+)\s*\[\s*(\d+)\s*\]\s*;?$`)
	measureRegex = regexp.MustCompile(`^measure\s+(\w+\s*\[\s*\d+\s*\])\s*->\s*\w+\s*\[\s*\d+\s*\]\s*;?$`)
	barrierRegex = regexp.MustCompile(`^barrier\b`)
	gateRegex    = regexp.MustCompile(`^(\w+)\s*(?:\(([^)]*)\))?\s+([^;]+?)\s*;?$`)
	operandRegex = regexp.MustCompile(`^(\w+)\s*\[\s*(\d+)\s*\]$`)
)

// qasmGate maps an OpenQASM 2 gate onto the catalogue.
type qasmGate struct {
	name       string
	operands   int
	params     []gates.Param // QASM argument order
	controlled bool          // first operand is the control
}

var qasmGates = map[string]qasmGate{
	"id":   {name: "identity", operands: 1},
	"x":    {name: "pauli-x", operands: 1},
	"y":    {name: "pauli-y", operands: 1},
	"z":    {name: "pauli-z", operands: 1},
	"h":    {name: "hadamard", operands: 1},
	"s":    {name: "s", operands: 1},
	"sdg":  {name: "s-dagger", operands: 1},
	"t":    {name: "t", operands: 1},
	"tdg":  {name: "t-dagger", operands: 1},
	"sx":   {name: "sqrt-not", operands: 1},
	"rx":   {name: "rx-theta", operands: 1, params: []gates.Param{gates.Theta}},
	"ry":   {name: "ry-theta", operands: 1, params: []gates.Param{gates.Theta}},
	"rz":   {name: "rz-theta", operands: 1, params: []gates.Param{gates.Theta}},
	"p":    {name: "u1", operands: 1, params: []gates.Param{gates.Lambda}},
	"u1":   {name: "u1", operands: 1, params: []gates.Param{gates.Lambda}},
	"u2":   {name: "u2", operands: 1, params: []gates.Param{gates.Phi, gates.Lambda}},
	"u3":   {name: "u3", operands: 1, params: []gates.Param{gates.Theta, gates.Phi, gates.Lambda}},
	"cx":   {name: "ctrl-pauli-x", operands: 2, controlled: true},
	"cy":   {name: "ctrl-pauli-y", operands: 2, controlled: true},
	"cz":   {name: "ctrl-pauli-z", operands: 2, controlled: true},
	"ch":   {name: "ctrl-hadamard", operands: 2, controlled: true},
	"swap": {name: "swap", operands: 2},
	"crx":  {name: "ctrl-rx-theta", operands: 2, params: []gates.Param{gates.Theta}, controlled: true},
	"cry":  {name: "ctrl-ry-theta", operands: 2, params: []gates.Param{gates.Theta}, controlled: true},
	"crz":  {name: "ctrl-rz-theta", operands: 2, params: []gates.Param{gates.Theta}, controlled: true},
	"cu1":  {name: "ctrl-u1", operands: 2, params: []gates.Param{gates.Lambda}, controlled: true},
	"cp":   {name: "ctrl-u1", operands: 2, params: []gates.Param{gates.Lambda}, controlled: true},
}

// qasmExport is the QASM mnemonic written for each exportable catalogue gate.
var qasmExport = map[string]string{
	"identity":      "id",
	"pauli-x":       "x",
	"pauli-y":       "y",
	"pauli-z":       "z",
	"hadamard":      "h",
	"s":             "s",
	"s-dagger":      "sdg",
	"t":             "t",
	"t-dagger":      "tdg",
	"sqrt-not":      "sx",
	"rx-theta":      "rx",
	"ry-theta":      "ry",
	"rz-theta":      "rz",
	"u1":            "u1",
	"u2":            "u2",
	"u3":            "u3",
	"ctrl-pauli-x":  "cx",
	"ctrl-pauli-y":  "cy",
	"ctrl-pauli-z":  "cz",
	"ctrl-hadamard": "ch",
	"swap":          "swap",
	"ctrl-rx-theta": "crx",
	"ctrl-ry-theta": "cry",
	"ctrl-rz-theta": "crz",
	"ctrl-u1":       "cu1",
}

// FromQASM imports an OpenQASM 2 program. Gates are packed into steps until a
// qubit collides; a barrier closes the current step and controlled gates open
// a new one. It returns the document and the register width declared by qreg.
func FromQASM(src string) (*Document, int, error) {
	qregs := make(map[string]int)
	width := 0

	var steps []StepDocument
	current := StepDocument{Index: 0}
	stepQubits := make(map[int]bool)

	closeStep := func() {
		if len(current.Gates) == 0 {
			return
		}
		steps = append(steps, current)
		current = StepDocument{Index: current.Index + 1}
		stepQubits = make(map[int]bool)
	}

	resolve := func(lineNo int, operand string) (int, error) {
		m := operandRegex.FindStringSubmatch(strings.TrimSpace(operand))
		if m == nil {
			return 0, qasmError(lineNo, fmt.Sprintf("bad operand %q", operand))
		}
		offset, ok := qregs[m[1]]
		if !ok {
			return 0, qasmError(lineNo, fmt.Sprintf("undeclared register %q", m[1]))
		}
		idx, _ := strconv.Atoi(m[2])
		return offset + idx, nil
	}

	place := func(gd GateDocument, multi bool) {
		qubits := []int{gd.Target}
		if gd.Target2 != nil {
			qubits = append(qubits, *gd.Target2)
		}
		if gd.Control != nil {
			qubits = append(qubits, *gd.Control)
		}
		conflict := slices.ContainsFunc(qubits, func(q int) bool { return stepQubits[q] })
		if conflict || (multi && len(stepQubits) > 0) {
			closeStep()
		}
		for _, q := range qubits {
			stepQubits[q] = true
		}
		current.Gates = append(current.Gates, gd)
	}

	for i, raw := range strings.Split(src, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if cut, _, found := strings.Cut(line, "//"); found {
			line = strings.TrimSpace(cut)
		}
		if line == "" || strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}

		if m := qregRegex.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[2])
			qregs[m[1]] = width
			width += n
			continue
		}
		if cregRegex.MatchString(line) {
			continue
		}
		if barrierRegex.MatchString(line) {
			closeStep()
			continue
		}
		if m := measureRegex.FindStringSubmatch(line); m != nil {
			q, err := resolve(lineNo, m[1])
			if err != nil {
				return nil, 0, err
			}
			place(GateDocument{Name: gates.Measure, Target: q}, false)
			continue
		}

		m := gateRegex.FindStringSubmatch(line)
		if m == nil {
			return nil, 0, qasmError(lineNo, fmt.Sprintf("cannot parse %q", line))
		}
		entry, ok := qasmGates[strings.ToLower(m[1])]
		if !ok {
			return nil, 0, qasmError(lineNo, fmt.Sprintf("unsupported gate %q", m[1]))
		}

		var args []string
		if strings.TrimSpace(m[2]) != "" {
			args = strings.Split(m[2], ",")
		}
		if len(args) != len(entry.params) {
			return nil, 0, qasmError(lineNo, fmt.Sprintf("%s takes %d parameters, got %d", m[1], len(entry.params), len(args)))
		}
		operands := strings.Split(m[3], ",")
		if len(operands) != entry.operands {
			return nil, 0, qasmError(lineNo, fmt.Sprintf("%s takes %d qubits, got %d", m[1], entry.operands, len(operands)))
		}

		gd := GateDocument{Name: entry.name}
		for k, param := range entry.params {
			v, err := ParseParamExpr(args[k])
			if err != nil {
				return nil, 0, qasmError(lineNo, err.Error())
			}
			setParam(&gd, param, v)
		}

		qubits := make([]int, len(operands))
		for k, op := range operands {
			q, err := resolve(lineNo, op)
			if err != nil {
				return nil, 0, err
			}
			qubits[k] = q
		}
		switch {
		case entry.controlled:
			gd.Control = &qubits[0]
			gd.Target = qubits[1]
		case entry.operands == 2:
			gd.Target = qubits[0]
			gd.Target2 = &qubits[1]
		default:
			gd.Target = qubits[0]
		}
		place(gd, entry.operands > 1)
	}
	closeStep()

	if steps == nil {
		steps = []StepDocument{}
	}
	return &Document{Steps: steps}, width, nil
}

func setParam(gd *GateDocument, p gates.Param, v float64) {
	switch p {
	case gates.Phi:
		gd.Phi = &v
	case gates.Theta:
		gd.Theta = &v
	case gates.Lambda:
		gd.Lambda = &v
	}
}

func qasmError(line int, reason string) error {
	return &MalformedCircuitError{Field: fmt.Sprintf("line %d", line), Reason: reason}
}

// ToQASM exports the document as an OpenQASM 2 program on a register of width
// qubits. Steps are separated by barriers so a re-import keeps the layout.
func (d *Document) ToQASM(width int) (string, error) {
	width = max(width, d.Width(), 1)

	steps := slices.Clone(d.Steps)
	slices.SortStableFunc(steps, func(a, b StepDocument) int { return a.Index - b.Index })

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", width)
	fmt.Fprintf(&sb, "creg c[%d];\n\n", width)

	for i, step := range steps {
		if i > 0 {
			sb.WriteString("barrier q;\n")
		}
		for _, g := range step.Gates {
			if g.Name == gates.Measure {
				fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", g.Target, g.Target)
				continue
			}
			mnemonic, ok := qasmExport[g.Name]
			if !ok {
				return "", fmt.Errorf("gate %s has no OpenQASM 2 equivalent", g.Name)
			}
			sb.WriteString(mnemonic)
			if params := qasmParams(qasmGates[mnemonic].params, g); params != "" {
				fmt.Fprintf(&sb, "(%s)", params)
			}
			switch {
			case g.Control != nil:
				fmt.Fprintf(&sb, " q[%d], q[%d];\n", *g.Control, g.Target)
			case g.Target2 != nil:
				fmt.Fprintf(&sb, " q[%d], q[%d];\n", g.Target, *g.Target2)
			default:
				fmt.Fprintf(&sb, " q[%d];\n", g.Target)
			}
		}
	}
	return sb.String(), nil
}

func qasmParams(order []gates.Param, g GateDocument) string {
	parts := make([]string, 0, len(order))
	for _, p := range order {
		var v *float64
		switch p {
		case gates.Phi:
			v = g.Phi
		case gates.Theta:
			v = g.Theta
		case gates.Lambda:
			v = g.Lambda
		}
		if v == nil {
			parts = append(parts, "0")
			continue
		}
		parts = append(parts, FormatParam(*v))
	}
	return strings.Join(parts, ", ")
}
