package filter

import (
	"context"
	"runtime"

	"github.com/s0up4200/fredstat/fred"
	"golang.org/x/sync/errgroup"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the smallest chunk handed to a worker
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator evaluates large series lists in parallel chunks
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   250,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate returns the series matching filter, keeping their order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, series []fred.Series) ([]fred.Series, error) {
	if len(series) == 0 {
		return []fred.Series{}, nil
	}

	// Small lists are not worth the goroutines
	if len(series) < e.batchSize || e.workerCount == 1 {
		return evaluateSequential(filter, series), nil
	}

	return e.evaluateConcurrent(ctx, filter, series)
}

func evaluateSequential(filter CompiledFilter, series []fred.Series) []fred.Series {
	matches := make([]fred.Series, 0, len(series)/4)
	for _, s := range series {
		if filter.Evaluate(s) {
			matches = append(matches, s)
		}
	}
	return matches
}

func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, series []fred.Series) ([]fred.Series, error) {
	chunkSize := max(len(series)/e.workerCount, e.batchSize)
	chunks := make([][]fred.Series, (len(series)+chunkSize-1)/chunkSize)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for i := range chunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(series))

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunks[i] = evaluateSequential(filter, series[start:end])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	matches := make([]fred.Series, 0, total)
	for _, c := range chunks {
		matches = append(matches, c...)
	}

	return matches, nil
}
