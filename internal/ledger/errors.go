package ledger

import (
	"errors"
	"fmt"
)

// ErrCorrectionDeclined is returned when the confirmation gate rejects
// a correction that would discard later rounds. The history pointer is
// moved back to the tip and the ledger is left untouched.
var ErrCorrectionDeclined = errors.New("correction declined")

// ValidationError rejects malformed or out-of-range round input. The
// ledger state is unchanged when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid round input: %s: %s", e.Field, e.Reason)
}
