package main

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"qtermsim/circuit"
	"qtermsim/internal/viewer"
	"qtermsim/report"
)

func (e *env) viewCommand() *cli.Command {
	return &cli.Command{
		Name:      "view",
		Usage:     "edit and simulate a circuit interactively",
		ArgsUsage: "[circuit.json]",
		Flags:     []cli.Flag{qubitsFlag(), orderingFlag(), shotsFlag()},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			var doc *circuit.Document
			if path != "" {
				data, err := os.ReadFile(path)
				switch {
				case errors.Is(err, os.ErrNotExist):
					// A new file is created on the first save.
				case err != nil:
					return err
				default:
					if doc, err = circuit.Decode(data); err != nil {
						return err
					}
				}
			}

			ord, err := report.ParseOrdering(e.ordering(c))
			if err != nil {
				return err
			}

			qubits := 2
			if c.IsSet("qubits") {
				qubits = c.Int("qubits")
				if err := e.sim.Engine().CheckQubitCount(qubits); err != nil {
					return err
				}
			}
			m := viewer.New(viewer.Options{
				Simulator: e.sim,
				Document:  doc,
				Qubits:    qubits,
				Ordering:  ord,
				Shots:     e.shots(c),
				Path:      path,
			})
			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithContext(c.Context),
				tea.WithInput(e.stdin),
				tea.WithOutput(e.stdout),
			)
			_, err = p.Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
}
