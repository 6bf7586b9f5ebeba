package rset

import (
	"errors"

	"github.com/cyp0633/librecur/recur"
)

var (
	// ErrInvalidArgumentType is returned when a rule or date passed to an Add
	// method does not satisfy the expected contract.
	ErrInvalidArgumentType = errors.New("invalid argument type")
	// ErrInvalidDateRange is returned by Between when a bound is not a valid
	// date-time value.
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrParse is returned when set text cannot be parsed.
	ErrParse = errors.New("invalid recurrence set text")
	// ErrIterationLimitExceeded is returned when a query needs more candidate
	// evaluations than Config.MaxIterations allows.
	ErrIterationLimitExceeded = recur.ErrIterationLimitExceeded
)
