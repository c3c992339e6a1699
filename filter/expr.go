package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/s0up4200/fredstat/fred"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	custom     map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
		maps.Copy(c.custom, funcs)
	}
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	custom      map[string]any
	cache       *lruCache
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
		custom:      make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(), // series fields are bound at run time
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		custom:     c.custom,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Compile compiles an expression with a fresh compiler
func Compile(expression string) (CompiledFilter, error) {
	return NewExprCompiler().Compile(expression)
}

// Evaluate evaluates the filter against a series.
// Expressions that fail at run time do not match.
func (f *exprFilter) Evaluate(series fred.Series) bool {
	env := createRuntimeEnvironment(series)
	maps.Copy(env, f.custom)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}

	// AsBool guarantees the type
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createHelperFunctions returns the compile-time environment. A zero series
// gives the checker the type of every field and helper.
func createHelperFunctions() map[string]any {
	return createRuntimeEnvironment(fred.Series{})
}

// addHelperFunctions adds the static helpers to env
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse(fred.DateLayout, dateStr)
		return t
	}
	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	env["now"] = time.Now
}

// createRuntimeEnvironment binds one series and its helpers
func createRuntimeEnvironment(s fred.Series) map[string]any {
	env := make(map[string]any, 40)
	addHelperFunctions(env)

	env["Series"] = s

	env["titleHas"] = func(substr string) bool {
		return strings.Contains(strings.ToLower(s.Title), strings.ToLower(substr))
	}
	env["isFrequency"] = func(freq string) bool {
		return strings.EqualFold(s.Frequency, freq) || strings.EqualFold(s.FrequencyShort, freq)
	}
	env["updatedWithin"] = func(days int) bool {
		return !s.LastUpdated.IsZero() && s.LastUpdated.After(time.Now().AddDate(0, 0, -days))
	}
	env["observedSince"] = func(t time.Time) bool {
		return !s.ObservationStart.IsZero() && !s.ObservationStart.After(t)
	}

	// Direct series properties
	env["ID"] = s.ID
	env["Title"] = s.Title
	env["Frequency"] = s.Frequency
	env["FrequencyShort"] = s.FrequencyShort
	env["Units"] = s.Units
	env["UnitsShort"] = s.UnitsShort
	env["SeasonalAdjustment"] = s.SeasonalAdjustment
	env["SeasonalAdjustmentShort"] = s.SeasonalAdjustmentShort
	env["Adjusted"] = s.IsSeasonallyAdjusted()
	env["Popularity"] = s.Popularity
	env["GroupPopularity"] = s.GroupPopularity
	env["Notes"] = s.Notes
	env["LastUpdated"] = s.LastUpdated.Time
	env["ObservationStart"] = s.ObservationStart.Time
	env["ObservationEnd"] = s.ObservationEnd.Time
	env["RealtimeStart"] = s.RealtimeStart.Time
	env["RealtimeEnd"] = s.RealtimeEnd.Time

	return env
}
