package report

import "fmt"

// UnknownOrderingError is returned for an ordering token other than
// "littleendian", "bigendian" or the empty default.
type UnknownOrderingError struct {
	Token string
}

func (e *UnknownOrderingError) Error() string {
	return fmt.Sprintf("unknown ordering %q (want \"bigendian\" or \"littleendian\")", e.Token)
}

// InvalidShotCountError is returned when fewer than one shot is requested.
type InvalidShotCountError struct {
	Shots int
}

func (e *InvalidShotCountError) Error() string {
	return fmt.Sprintf("shot count must be positive, got %d", e.Shots)
}
