package correction

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleIssue means the text under an issue span changed since analysis.
	ErrStaleIssue = errors.New("issue is stale")
	// ErrInvalidRange means a span does not fit the current text.
	ErrInvalidRange = errors.New("invalid range")
	// ErrOverlappingEdits means two edits in a batch share bytes.
	ErrOverlappingEdits = errors.New("overlapping edits")
)

// MismatchError describes a span whose current text differs from the snapshot
// taken at analysis time.
type MismatchError struct {
	Start    int
	End      int
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("text at [%d,%d) is %q, expected %q", e.Start, e.End, e.Actual, e.Expected)
}

// Is reports ErrStaleIssue as the sentinel for mismatches.
func (e *MismatchError) Is(target error) bool {
	return target == ErrStaleIssue
}

func rangeError(start, end, length int) error {
	return fmt.Errorf("%w: [%d,%d) in text of length %d", ErrInvalidRange, start, end, length)
}
