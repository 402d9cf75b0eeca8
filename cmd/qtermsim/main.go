package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	_ "go.uber.org/automaxprocs"

	"qtermsim/circuit"
	"qtermsim/gates"
	"qtermsim/report"
	"qtermsim/statevector"
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes.
const (
	exitFailure      = 1
	exitInvalidInput = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(exitFailure)
	}
}

// run executes the command line in args and maps failures onto exit codes.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	app := newApp(stdin, stdout, stderr)
	if err := app.RunContext(ctx, args); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr
		}
		return &ExitError{Code: exitCode(err), Message: err.Error()}
	}
	return nil
}

// exitCode is 2 when the caller supplied something invalid and 1 otherwise.
func exitCode(err error) int {
	var (
		malformed *circuit.MalformedCircuitError
		qubit     *circuit.InvalidQubitIndexError
		gate      *gates.UnknownGateError
		param     *gates.ParamError
		ordering  *report.UnknownOrderingError
		shots     *report.InvalidShotCountError
		limit     *statevector.ResourceLimitError
	)
	switch {
	case errors.As(err, &malformed),
		errors.As(err, &qubit),
		errors.As(err, &gate),
		errors.As(err, &param),
		errors.As(err, &ordering),
		errors.As(err, &shots),
		errors.As(err, &limit):
		return exitInvalidInput
	}
	return exitFailure
}
