// Package viewer is the interactive terminal front end: a circuit diagram
// that can be edited with the keyboard, the circuit document beside it, and
// the simulation results of the current circuit underneath.
package viewer

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"qtermsim/circuit"
	"qtermsim/gates"
	"qtermsim/report"
	"qtermsim/simulator"
	"qtermsim/statevector"
)

// focus is the panel or mode receiving key presses.
type focus int

const (
	focusCircuit focus = iota
	focusEditor
	focusMenu
	focusSelectTarget
	focusInputParam
)

// resultTab selects what the results panel shows.
type resultTab int

const (
	tabProbabilities resultTab = iota
	tabStatevector
	tabSamples
)

func (t resultTab) String() string {
	switch t {
	case tabStatevector:
		return "Statevector"
	case tabSamples:
		return "Samples"
	}
	return "Probabilities"
}

// Options configures a new Model.
type Options struct {
	Simulator *simulator.Simulator
	Document  *circuit.Document // nil starts empty
	Qubits    int               // grows to the document width; callers reject counts below 1
	Ordering  report.Ordering
	Shots     int
	Path      string // where ctrl+s writes the document
}

// Model is the bubbletea model of the viewer.
type Model struct {
	sim      *simulator.Simulator
	doc      *circuit.Document
	qubits   int
	ordering report.Ordering
	shots    int
	path     string

	editor   textarea.Model
	lastJSON string

	focus         focus
	cursorQubit   int
	cursorStep    int
	throughCursor bool // simulate only up to the cursor step
	tab           resultTab
	width         int
	height        int
	statusMsg     string

	// gate picker
	menuCat     int
	menuItem    int
	pending     *gates.Definition
	targetQubit int
	paramInput  textinput.Model

	// latest simulation; seq drops results of superseded runs
	seq    int
	result resultMsg
}

// componentEps hides basis states that only carry rounding noise.
const componentEps = 1e-12

type resultMsg struct {
	seq        int
	probs      report.ProbabilityList
	components []statevector.Component
	width      int
	qubits     []statevector.QubitProbability
	counts     *report.ShotCounts
	err        error
}

// New builds the initial model.
func New(opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = `{"steps":[]}`
	ta.ShowLineNumbers = true
	ta.SetWidth(40)
	ta.SetHeight(20)

	ti := textinput.New()
	ti.Placeholder = "pi/2"
	ti.Width = 30

	doc := opts.Document
	if doc == nil {
		doc = &circuit.Document{}
	}
	m := Model{
		sim:        opts.Simulator,
		doc:        doc,
		qubits:     max(opts.Qubits, doc.Width(), 1),
		ordering:   opts.Ordering,
		shots:      max(opts.Shots, 1),
		path:       opts.Path,
		editor:     ta,
		paramInput: ti,
	}
	if m.path == "" {
		m.path = "circuit.json"
	}
	m.syncFromDoc()
	return m
}

// syncFromDoc rewrites the editor from the document.
func (m *Model) syncFromDoc() {
	data, err := m.doc.EncodeIndent()
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	m.editor.SetValue(string(data))
	m.lastJSON = string(data)
}

// parseEditor adopts the editor text when it is a valid document.
func (m *Model) parseEditor() bool {
	text := m.editor.Value()
	if text == m.lastJSON {
		return false
	}
	m.lastJSON = text
	doc, err := circuit.Decode([]byte(text))
	if err != nil {
		m.statusMsg = err.Error()
		return false
	}
	m.doc = doc
	m.statusMsg = ""
	if w := doc.Width(); w > m.qubits {
		m.qubits = min(w, m.sim.Engine().Config().MaxQubits)
	}
	return true
}

// simulate starts a run that supersedes every earlier one.
func (m *Model) simulate() tea.Cmd {
	m.seq++
	return m.runCmd()
}

func (m Model) rerun() (tea.Model, tea.Cmd) {
	cmd := m.simulate()
	return m, cmd
}

// runCmd simulates the current circuit in the background.
func (m Model) runCmd() tea.Cmd {
	seq := m.seq
	data, err := m.doc.Encode()
	if err != nil {
		return func() tea.Msg { return resultMsg{seq: seq, err: err} }
	}
	req := simulator.Request{
		Circuit:    string(data),
		QubitCount: m.qubits,
		Ordering:   m.ordering.String(),
	}
	last := m.lastIndex()
	if m.throughCursor {
		last = m.cursorStep
	}
	sim, shots, ord := m.sim, m.shots, m.ordering

	return func() tea.Msg {
		sv, err := sim.State(context.Background(), req, last)
		if err != nil {
			return resultMsg{seq: seq, err: err}
		}
		counts, err := sim.Sample(sv, shots, ord)
		if err != nil {
			return resultMsg{seq: seq, err: err}
		}
		return resultMsg{
			seq:        seq,
			probs:      report.Probabilities(sv, ord),
			components: sv.Components(componentEps),
			width:      sv.NumQubits,
			qubits:     sv.QubitProbabilities(),
			counts:     counts,
		}
	}
}

func (m Model) Init() tea.Cmd {
	return m.runCmd()
}

func (m *Model) save() {
	data, err := m.doc.EncodeIndent()
	if err == nil {
		err = os.WriteFile(m.path, append(data, '\n'), 0o644)
	}
	if err != nil {
		m.statusMsg = "save failed: " + err.Error()
		return
	}
	m.statusMsg = "saved to " + m.path
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(max(msg.Width/3-6, 20))
		m.editor.SetHeight(max(msg.Height-12, 4))
		return m, nil

	case resultMsg:
		if msg.seq == m.seq {
			m.result = msg
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.focus {
		case focusCircuit:
			return m.updateCircuit(msg)
		case focusEditor:
			return m.updateEditor(msg)
		case focusMenu:
			return m.updateMenu(msg)
		case focusSelectTarget:
			return m.updateSelectTarget(msg)
		case focusInputParam:
			return m.updateParam(msg)
		}
	}
	return m, nil
}

func (m Model) updateCircuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	maxQubits := m.sim.Engine().Config().MaxQubits
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.focus = focusEditor
		m.editor.Focus()
		return m, nil
	case "up", "k":
		m.cursorQubit = max(m.cursorQubit-1, 0)
	case "down", "j":
		m.cursorQubit = min(m.cursorQubit+1, m.qubits-1)
	case "left", "h":
		m.cursorStep = max(m.cursorStep-1, 0)
	case "right", "l":
		m.cursorStep = min(m.cursorStep+1, m.lastIndex()+1)
	case "+", "=":
		if m.qubits >= maxQubits {
			m.statusMsg = fmt.Sprintf("at most %d qubits", maxQubits)
			return m, nil
		}
		m.qubits++
		return m.rerun()
	case "-":
		if m.qubits <= max(m.doc.Width(), 1) {
			m.statusMsg = "remove the gates on the last qubit first"
			return m, nil
		}
		m.qubits--
		m.cursorQubit = min(m.cursorQubit, m.qubits-1)
		return m.rerun()
	case "a":
		m.focus = focusMenu
		m.menuCat, m.menuItem = 0, 0
		return m, nil
	case "backspace", "delete", "x":
		if m.deleteGate() {
			m.syncFromDoc()
			return m.rerun()
		}
		return m, nil
	case "o":
		if m.ordering == report.LittleEndian {
			m.ordering = report.BigEndian
		} else {
			m.ordering = report.LittleEndian
		}
		return m.rerun()
	case "r":
		m.tab = (m.tab + 1) % 3
		return m, nil
	case "s":
		return m.rerun()
	case " ":
		m.throughCursor = !m.throughCursor
		return m.rerun()
	case "ctrl+s":
		m.save()
		return m, nil
	case "ctrl+r":
		m.doc = &circuit.Document{}
		m.cursorQubit, m.cursorStep = 0, 0
		m.syncFromDoc()
		return m.rerun()
	default:
		return m, nil
	}
	if m.throughCursor {
		return m.rerun()
	}
	return m, nil
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "esc":
		m.focus = focusCircuit
		m.editor.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if m.parseEditor() {
		sim := m.simulate()
		return m, tea.Batch(cmd, sim)
	}
	return m, cmd
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := gateMenu[m.menuCat].items
	switch msg.String() {
	case "esc", "q":
		m.focus = focusCircuit
	case "up", "k":
		m.menuItem = max(m.menuItem-1, 0)
	case "down", "j":
		m.menuItem = min(m.menuItem+1, len(items)-1)
	case "left", "h":
		m.menuCat = (m.menuCat + len(gateMenu) - 1) % len(gateMenu)
		m.menuItem = 0
	case "right", "l":
		m.menuCat = (m.menuCat + 1) % len(gateMenu)
		m.menuItem = 0
	case "enter":
		m.pending = items[m.menuItem]
		if needsSecondQubit(m.pending) {
			if m.qubits < 2 {
				m.statusMsg = m.pending.Name + " needs two qubits"
				m.focus = focusCircuit
				return m, nil
			}
			m.targetQubit = (m.cursorQubit + 1) % m.qubits
			m.focus = focusSelectTarget
			return m, nil
		}
		m.targetQubit = -1
		return m.afterTarget()
	}
	return m, nil
}

func (m Model) updateSelectTarget(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusCircuit
	case "up", "k":
		m.targetQubit = m.nextTarget(-1)
	case "down", "j":
		m.targetQubit = m.nextTarget(1)
	case "enter":
		return m.afterTarget()
	}
	return m, nil
}

// nextTarget moves the second-qubit selection, skipping the cursor qubit.
func (m Model) nextTarget(dir int) int {
	t := m.targetQubit
	for range m.qubits {
		t = (t + dir + m.qubits) % m.qubits
		if t != m.cursorQubit {
			return t
		}
	}
	return m.targetQubit
}

// afterTarget asks for parameters when the pending gate has any, otherwise places it.
func (m Model) afterTarget() (tea.Model, tea.Cmd) {
	if len(m.pending.Requires) > 0 {
		m.focus = focusInputParam
		m.paramInput.SetValue("")
		m.paramInput.Focus()
		return m, textinput.Blink
	}
	return m.commit(gates.Params{})
}

func (m Model) updateParam(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.paramInput.Blur()
		m.focus = focusCircuit
		return m, nil
	case "enter":
		params, err := parseParams(m.pending, m.paramInput.Value())
		if err != nil {
			m.statusMsg = err.Error()
			return m, nil
		}
		m.paramInput.Blur()
		return m.commit(params)
	}
	var cmd tea.Cmd
	m.paramInput, cmd = m.paramInput.Update(msg)
	return m, cmd
}

func (m Model) commit(params gates.Params) (tea.Model, tea.Cmd) {
	m.focus = focusCircuit
	if err := m.placeGate(m.pending, m.targetQubit, params); err != nil {
		m.statusMsg = err.Error()
		return m, nil
	}
	m.statusMsg = ""
	m.syncFromDoc()
	return m.rerun()
}
