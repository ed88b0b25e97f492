package incremental

import (
	"errors"
	"fmt"
)

// CycleError is returned when a node, directly or transitively, reads
// itself while already computing. The node's cached value is reset so the
// next read re-attempts the calculation instead of reporting the same
// cycle forever (see the "Open question" in the spec this engine
// implements: reset to Unset on failure rather than treat it as
// permanently wedged).
type CycleError struct {
	Node string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("incremental: cycle detected: %s re-entered its own calculate()", e.Node)
}

// ChangedWhileCalculatingError is returned when a producer is mutated (via
// Set/Update/Mutate) while a consumer downstream of it is in the middle of
// its own calculate(). This is normally a sign that a compute function has
// a side effect it shouldn't: reading one node and writing another that
// feeds back into the first, within the same computation.
type ChangedWhileCalculatingError struct {
	Node string
}

func (e *ChangedWhileCalculatingError) Error() string {
	return fmt.Sprintf("incremental: %s received a change notification while still calculating", e.Node)
}

// IsCycle reports whether err is, or wraps, a *CycleError.
func IsCycle(err error) bool {
	var c *CycleError
	return errors.As(err, &c)
}

// IsChangedWhileCalculating reports whether err is, or wraps, a
// *ChangedWhileCalculatingError.
func IsChangedWhileCalculating(err error) bool {
	var c *ChangedWhileCalculatingError
	return errors.As(err, &c)
}
