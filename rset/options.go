package rset

import (
	"log/slog"

	"github.com/cyp0633/librecur/recur"
)

// Option represents a configuration option for a Set
type Option func(*Set)

// WithConfig replaces the whole configuration.
func WithConfig(config Config) Option {
	return func(s *Set) {
		s.config = config
	}
}

// WithCache enables or disables memoization of Between queries.
func WithCache(enabled bool) Option {
	return func(s *Set) {
		s.config.CacheEnabled = enabled
	}
}

// WithMaxIterations bounds the candidate evaluations of a single query.
// A value <= 0 removes the bound.
func WithMaxIterations(n int) Option {
	return func(s *Set) {
		s.config.MaxIterations = n
	}
}

// WithParser sets the parser used to return independent rule copies.
func WithParser(parser recur.Parser) Option {
	return func(s *Set) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// WithLogger sets the logger for the set
func WithLogger(logger *slog.Logger) Option {
	return func(s *Set) {
		if logger != nil {
			s.logger = logger
		}
	}
}
