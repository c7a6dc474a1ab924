package synth

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a setter rejects a value outside its legal range.
// Nothing is changed when it is returned.
var ErrOutOfBounds = errors.New("value out of bounds")

// ErrIndexOutOfRange is returned for an unknown modulation source index.
// Nothing is changed when it is returned.
var ErrIndexOutOfRange = errors.New("index out of range")

func outOfBounds(name string, value float64, min float64, max float64) error {
	return fmt.Errorf("%w: %s %v not in [%v, %v]", ErrOutOfBounds, name, value, min, max)
}

func indexOutOfRange(name string, index int, size int) error {
	return fmt.Errorf("%w: %s %d not in [0, %d)", ErrIndexOutOfRange, name, index, size)
}

func checkRange(name string, value float64, r Range) error {
	if !r.Contains(value) {
		return outOfBounds(name, value, r.Min, r.Max)
	}
	return nil
}
