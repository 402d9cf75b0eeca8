package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"qtermsim/internal/config"
	"qtermsim/internal/logging"
	"qtermsim/simulator"
	"qtermsim/statevector"
)

// env is the state shared by every command once the global flags are applied.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	logger *log.Logger
	closer io.Closer
	sim    *simulator.Simulator
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	e := &env{stdin: stdin, stdout: stdout, stderr: stderr}
	return &cli.App{
		Name:            "qtermsim",
		Usage:           "simulate quantum circuits on a state vector",
		Reader:          stdin,
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		ExitErrHandler:  func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file", EnvVars: []string{"QTERMSIM_CONFIG"}},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "text, json or logfmt"},
			&cli.StringFlag{Name: "log-file", Usage: "write logs to a rotated file instead of stderr"},
			&cli.IntFlag{Name: "max-qubits", Usage: "largest register accepted"},
			&cli.IntFlag{Name: "workers", Usage: "goroutines per gate and per batch"},
			&cli.Uint64Flag{Name: "seed", Usage: "sampling seed, 0 for a random one"},
		},
		Before: e.setup,
		After:  e.teardown,
		Commands: []*cli.Command{
			e.sampleCommand(),
			e.probabilitiesCommand(),
			e.statevectorCommand(),
			e.batchCommand(),
			e.convertCommand(),
			e.gatesCommand(),
			e.viewCommand(),
		},
	}
}

// setup loads the configuration, applies the global flags over it and builds
// the logger and the simulator.
func (e *env) setup(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return &ExitError{Code: exitInvalidInput, Message: err.Error()}
		}
		cfg = loaded
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}
	if c.IsSet("max-qubits") {
		cfg.Simulator.MaxQubits = c.Int("max-qubits")
	}
	if c.IsSet("workers") {
		cfg.Simulator.Workers = c.Int("workers")
	}
	if c.IsSet("seed") {
		cfg.Simulator.Seed = c.Uint64("seed")
	}
	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: exitInvalidInput, Message: fmt.Sprintf("invalid configuration:\n%v", err)}
	}

	logger, closer, err := logging.New(cfg.Log, e.stderr)
	if err != nil {
		return &ExitError{Code: exitInvalidInput, Message: err.Error()}
	}

	s := cfg.Simulator
	sim, err := simulator.New(
		simulator.WithLogger(logger),
		simulator.WithEngineConfig(statevector.Config{
			MaxQubits:         s.MaxQubits,
			Workers:           s.Workers,
			ParallelThreshold: s.ParallelThreshold,
			NormTolerance:     s.NormTolerance,
		}),
		simulator.WithSeed(s.Seed),
		simulator.WithCacheSize(s.CacheSize),
	)
	if err != nil {
		closer.Close()
		return err
	}

	e.cfg, e.logger, e.closer, e.sim = cfg, logger, closer, sim
	logger.Debug("configured", "max_qubits", s.MaxQubits, "workers", s.Workers, "seed", s.Seed)
	return nil
}

func (e *env) teardown(*cli.Context) error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}
