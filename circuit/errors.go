package circuit

import "fmt"

// MalformedCircuitError reports a document that does not follow the circuit schema.
// Field is the path of the offending value, for example "steps[1].gates[0].control".
type MalformedCircuitError struct {
	Field  string
	Reason string
	Err    error
}

func (e *MalformedCircuitError) Error() string {
	if e.Field == "" {
		return "malformed circuit: " + e.Reason
	}
	return fmt.Sprintf("malformed circuit: %s: %s", e.Field, e.Reason)
}

func (e *MalformedCircuitError) Unwrap() error { return e.Err }

// InvalidQubitIndexError reports a qubit reference outside the register, or a
// qubit used twice by one application or one step.
type InvalidQubitIndexError struct {
	Field      string
	Qubit      int
	QubitCount int
	Reason     string
}

func (e *InvalidQubitIndexError) Error() string {
	return fmt.Sprintf("invalid qubit %d at %s (register of %d): %s", e.Qubit, e.Field, e.QubitCount, e.Reason)
}
