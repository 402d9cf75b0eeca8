package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"qtermsim/circuit"
	"qtermsim/gates"
	"qtermsim/report"
	"qtermsim/simulator"
)

// Command flags are built fresh for every command.
func qasmFlag() cli.Flag {
	return &cli.BoolFlag{Name: "qasm", Usage: "read the input as OpenQASM 2"}
}

func qubitsFlag() cli.Flag {
	return &cli.IntFlag{Name: "qubits", Aliases: []string{"n"}, Usage: "register size, defaults to the circuit width"}
}

func orderingFlag() cli.Flag {
	return &cli.StringFlag{Name: "ordering", Usage: "littleendian or bigendian, defaults to the configured ordering"}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "json, text or table"}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write to a file instead of stdout"}
}

func cutoffFlag() cli.Flag {
	return &cli.Float64Flag{Name: "cutoff", Usage: "omit basis states with probability below this value"}
}

func shotsFlag() cli.Flag {
	return &cli.IntFlag{Name: "shots", Aliases: []string{"s"}, Usage: "number of measurements, defaults to the configured shots"}
}

// input is a circuit read from a file or stdin, already in the JSON format.
type input struct {
	name   string
	text   string
	doc    *circuit.Document
	qubits int
}

func (e *env) readInput(c *cli.Context, path string, qasm bool) (*input, error) {
	var (
		data []byte
		err  error
		name = path
	)
	if path == "" || path == "-" {
		name = "stdin"
		data, err = io.ReadAll(e.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading circuit: %w", err)
	}

	in := &input{name: name}
	if qasm {
		doc, width, err := circuit.FromQASM(string(data))
		if err != nil {
			return nil, err
		}
		encoded, err := doc.Encode()
		if err != nil {
			return nil, err
		}
		in.doc, in.text, in.qubits = doc, string(encoded), width
	} else {
		doc, err := circuit.Decode(data)
		if err != nil {
			return nil, err
		}
		in.doc, in.text, in.qubits = doc, string(data), doc.Width()
	}
	if c.IsSet("qubits") {
		in.qubits = c.Int("qubits")
	} else {
		in.qubits = max(in.qubits, 1)
	}
	e.logger.Debug("circuit read", "source", in.name, "qubits", in.qubits, "steps", len(in.doc.Steps))
	return in, nil
}

func (e *env) ordering(c *cli.Context) string {
	if c.IsSet("ordering") {
		return c.String("ordering")
	}
	return e.cfg.Simulator.Ordering
}

func (e *env) shots(c *cli.Context) int {
	if c.IsSet("shots") {
		return c.Int("shots")
	}
	return e.cfg.Simulator.Shots
}

func (e *env) request(c *cli.Context, in *input) simulator.Request {
	return simulator.Request{
		Circuit:    in.text,
		QubitCount: in.qubits,
		Ordering:   e.ordering(c),
		Shots:      e.shots(c),
		Cutoff:     c.Float64("cutoff"),
	}
}

// rendered is a report that can be printed in every output format.
type rendered interface {
	Text() string
	Table() string
}

func (e *env) write(c *cli.Context, v rendered) error {
	var out string
	switch format := c.String("format"); format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		out = string(data)
	case "text":
		out = v.Text()
	case "table":
		out = v.Table()
	default:
		return &ExitError{Code: exitInvalidInput, Message: fmt.Sprintf("unknown format %q: must be json, text or table", format)}
	}
	return e.emit(c, out)
}

func (e *env) emit(c *cli.Context, out string) error {
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if path := c.String("output"); path != "" {
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		e.logger.Info("wrote output", "path", path)
		return nil
	}
	_, err := io.WriteString(e.stdout, out)
	return err
}

func (e *env) sampleCommand() *cli.Command {
	return &cli.Command{
		Name:      "sample",
		Usage:     "measure the final state repeatedly and count the outcomes",
		ArgsUsage: "[circuit.json|-]",
		Flags:     []cli.Flag{qasmFlag(), qubitsFlag(), orderingFlag(), shotsFlag(), formatFlag(), outputFlag()},
		Action: func(c *cli.Context) error {
			in, err := e.readInput(c, c.Args().First(), c.Bool("qasm"))
			if err != nil {
				return err
			}
			counts, err := e.sim.Simulate(c.Context, e.request(c, in))
			if err != nil {
				return err
			}
			return e.write(c, counts)
		},
	}
}

func (e *env) probabilitiesCommand() *cli.Command {
	return &cli.Command{
		Name:      "probabilities",
		Aliases:   []string{"probs"},
		Usage:     "list the probability of every basis state",
		ArgsUsage: "[circuit.json|-]",
		Flags:     []cli.Flag{qasmFlag(), qubitsFlag(), orderingFlag(), cutoffFlag(), formatFlag(), outputFlag()},
		Action: func(c *cli.Context) error {
			in, err := e.readInput(c, c.Args().First(), c.Bool("qasm"))
			if err != nil {
				return err
			}
			probs, err := e.sim.Probabilities(c.Context, e.request(c, in))
			if err != nil {
				return err
			}
			return e.write(c, probs)
		},
	}
}

func (e *env) statevectorCommand() *cli.Command {
	return &cli.Command{
		Name:      "statevector",
		Aliases:   []string{"sv"},
		Usage:     "list the final amplitudes",
		ArgsUsage: "[circuit.json|-]",
		Flags:     []cli.Flag{qasmFlag(), qubitsFlag(), orderingFlag(), cutoffFlag(), formatFlag(), outputFlag()},
		Action: func(c *cli.Context) error {
			in, err := e.readInput(c, c.Args().First(), c.Bool("qasm"))
			if err != nil {
				return err
			}
			amps, err := e.sim.Statevector(c.Context, e.request(c, in))
			if err != nil {
				return err
			}
			return e.write(c, amps)
		},
	}
}

type batchEntry struct {
	File          string                 `json:"file"`
	Counts        *report.ShotCounts     `json:"counts,omitempty"`
	Amplitudes    report.AmplitudeList   `json:"amplitudes,omitempty"`
	Probabilities report.ProbabilityList `json:"probabilities,omitempty"`
}

func (e *env) batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "run several circuits concurrently and print one JSON array",
		ArgsUsage: "circuit.json...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: "probabilities", Usage: "sample, statevector or probabilities"},
			qasmFlag(), qubitsFlag(), orderingFlag(), shotsFlag(), cutoffFlag(), outputFlag(),
		},
		Action: func(c *cli.Context) error {
			kind, err := simulator.ParseKind(c.String("kind"))
			if err != nil {
				return &ExitError{Code: exitInvalidInput, Message: err.Error()}
			}
			if c.NArg() == 0 {
				return &ExitError{Code: exitInvalidInput, Message: "batch needs at least one circuit file"}
			}

			files := c.Args().Slice()
			reqs := make([]simulator.Request, len(files))
			for i, path := range files {
				in, err := e.readInput(c, path, c.Bool("qasm"))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				reqs[i] = e.request(c, in)
			}

			results, err := e.sim.Batch(c.Context, kind, reqs)
			if err != nil {
				return err
			}
			entries := make([]batchEntry, len(results))
			for i, r := range results {
				entries[i] = batchEntry{File: files[i], Counts: r.Counts, Amplitudes: r.Amplitudes, Probabilities: r.Probabilities}
			}
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			e.logger.Debug("batch done", "kind", kind, "circuits", len(files))
			return e.emit(c, string(data))
		},
	}
}

func (e *env) convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "translate between OpenQASM 2 and the circuit JSON format",
		ArgsUsage: "[file|-]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Value: "json", Usage: "json (from OpenQASM) or qasm (from JSON)"},
			qubitsFlag(), outputFlag(),
		},
		Action: func(c *cli.Context) error {
			to := c.String("to")
			if to != "json" && to != "qasm" {
				return &ExitError{Code: exitInvalidInput, Message: fmt.Sprintf("unknown target %q: must be json or qasm", to)}
			}
			in, err := e.readInput(c, c.Args().First(), to == "json")
			if err != nil {
				return err
			}
			if to == "qasm" {
				src, err := in.doc.ToQASM(in.qubits)
				if err != nil {
					return &ExitError{Code: exitInvalidInput, Message: err.Error()}
				}
				return e.emit(c, src)
			}
			data, err := in.doc.EncodeIndent()
			if err != nil {
				return err
			}
			return e.emit(c, string(data))
		},
	}
}

func (e *env) gatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "gates",
		Usage: "list the gate catalogue",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "table or text"},
			&cli.BoolFlag{Name: "controlled", Usage: "include the controlled variants"},
		},
		Action: func(c *cli.Context) error {
			var defs []*gates.Definition
			for _, def := range gates.Definitions() {
				if def.Controlled && !c.Bool("controlled") {
					continue
				}
				defs = append(defs, def)
			}

			switch c.String("format") {
			case "text":
				var sb strings.Builder
				for _, def := range defs {
					fmt.Fprintf(&sb, "%-22s %d  %-20s %s\n", def.Name, def.Arity(), params(def), def.Summary)
				}
				return e.emit(c, sb.String())
			case "table":
				t := table.New().
					Border(lipgloss.RoundedBorder()).
					BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))).
					Headers("gate", "qubits", "params", "summary").
					StyleFunc(func(row, col int) lipgloss.Style {
						if row == table.HeaderRow {
							return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff9e64")).Padding(0, 1)
						}
						return lipgloss.NewStyle().Padding(0, 1)
					})
				for _, def := range defs {
					t.Row(def.Name, strconv.Itoa(def.Arity()), params(def), def.Summary)
				}
				return e.emit(c, t.String())
			}
			return &ExitError{Code: exitInvalidInput, Message: fmt.Sprintf("unknown format %q: must be table or text", c.String("format"))}
		},
	}
}

func params(def *gates.Definition) string {
	if len(def.Requires) == 0 {
		return "-"
	}
	names := make([]string, len(def.Requires))
	for i, p := range def.Requires {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}
