package recur

import "errors"

// ErrIterationLimitExceeded is returned when a query would need more candidate
// evaluations than its budget allows, typically an unbounded query over a rule
// with neither COUNT nor UNTIL.
var ErrIterationLimitExceeded = errors.New("iteration limit exceeded")
