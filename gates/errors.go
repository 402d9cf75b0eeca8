package gates

import "fmt"

// UnknownGateError is returned when a gate name is not part of the catalogue.
type UnknownGateError struct {
	Name string
}

func (e *UnknownGateError) Error() string {
	return fmt.Sprintf("unknown gate %q", e.Name)
}

// ParamError reports a missing or unusable gate parameter.
type ParamError struct {
	Gate   string
	Param  Param
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("gate %s: parameter %s %s", e.Gate, e.Param, e.Reason)
}
