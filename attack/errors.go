package attack

import (
	"errors"
	"fmt"
)

var (
	// ErrNonECB is returned when the oracle is shown not to use ECB mode.
	ErrNonECB = errors.New("attack: oracle is not using ECB mode")

	// ErrBlockSizeNotFound is returned when the ciphertext length never
	// changes within the configured probe limit.
	ErrBlockSizeNotFound = errors.New("attack: block size not found")

	// ErrIncomplete is matched by every IncompleteError.
	ErrIncomplete = errors.New("attack: recovery incomplete")

	// ErrPrefixAlignment is returned when no filler length aligns input
	// after a hidden prefix.
	ErrPrefixAlignment = errors.New("attack: cannot align past prefix")
)

// PhaseError is returned when a Breaker step is called out of order.
type PhaseError struct {
	Op   string
	Have Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("attack: %s called in phase %v", e.Op, e.Have)
}

// IncompleteError reports that recovery stopped before the expected number
// of bytes was found. The bytes that were found are still returned.
type IncompleteError struct {
	Recovered int
	Want      int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("attack: recovered %d of %d bytes", e.Recovered, e.Want)
}

// Is reports whether target is ErrIncomplete.
func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncomplete
}
