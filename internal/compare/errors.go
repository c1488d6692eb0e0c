package compare

import "fmt"

// InputTooLargeError is returned by Engine.Compare when one side exceeds the
// configured character limit
type InputTooLargeError struct {
	Side   string
	Length int
	Limit  int
}

func (e *InputTooLargeError) Error() string {
	return fmt.Sprintf("text %s is %d characters, limit is %d", e.Side, e.Length, e.Limit)
}

// UnknownModeError is returned when a diff mode name is not recognised
type UnknownModeError struct {
	Mode string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown diff mode %q (expected %q or %q)", e.Mode, ModeGreedy, ModeOptimal)
}
