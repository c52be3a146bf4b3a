package multikey

import "fmt"

// DecodeError is returned when a Multikey string cannot be decoded.
type DecodeError struct {
	Input    string
	Reason   string
	Expected int
	Actual   int
	Err      error
}

func (e *DecodeError) Error() string {
	msg := "failed to decode multikey: " + e.Reason
	if e.Expected > 0 {
		msg += fmt.Sprintf(" (expected %d bytes, got %d)", e.Expected, e.Actual)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
