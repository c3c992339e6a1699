package filter

import (
	"context"

	"github.com/s0up4200/fredstat/fred"
)

// Filter decides whether a series matches
type Filter interface {
	// Evaluate checks if a series matches the filter criteria
	Evaluate(series fred.Series) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// Evaluator applies a filter to a list of series
type Evaluator interface {
	// Evaluate returns the matching series in their original order
	Evaluate(ctx context.Context, filter CompiledFilter, series []fred.Series) ([]fred.Series, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}
