package rset

import (
	"fmt"
	"time"

	"github.com/cyp0633/librecur/recur"
)

// Between returns the occurrences between after and before in ascending
// order, at most limit of them when limit > 0. With inc set, after and
// before are themselves returned if they are occurrences.
//
// For a trivial set (at most one RRULE, one RDATE and one EXRULE) results
// are memoized per argument tuple when the cache is enabled. The cache is
// never invalidated: a set must not be modified after it has been queried
// if cached answers are expected to reflect the change.
func (s *Set) Between(after, before time.Time, inc bool, limit int) ([]time.Time, error) {
	if after.IsZero() || before.IsZero() {
		return nil, fmt.Errorf("%w: between(%v, %v)", ErrInvalidDateRange, after, before)
	}
	q := recur.Between(after, before, inc).WithLimit(limit)

	if !s.trivial() {
		s.logger.Debug("query cache bypassed for composite set",
			"query", q.String(),
			"rrules", len(s.rrules),
			"rdates", len(s.rdates),
			"exrules", len(s.exrules))

		result, err := s.collect(recur.Between(after, before, inc))
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(result) > limit {
			result = result[:limit]
		}
		return result, nil
	}

	if s.cache == nil {
		return s.collect(q)
	}

	if cached, ok := s.cache.get(q); ok {
		s.logger.Debug("query cache hit", "query", q.String())
		return cached, nil
	}

	result, err := s.collect(q)
	if err != nil {
		return nil, err
	}
	s.cache.set(q, result)
	s.logger.Debug("query cache miss", "query", q.String(), "occurrences", len(result))
	return result, nil
}
