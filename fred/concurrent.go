package fred

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of releases fetched at once by LoadSeries
const DefaultConcurrency = 4

// ReleaseSeries pairs a release with its fetched series
type ReleaseSeries struct {
	Release *Release
	Series  []Series
}

// LoadSeries fetches the series of several releases concurrently.
// Results keep the order of releases. The first failure cancels the rest.
func LoadSeries(ctx context.Context, releases []*Release, concurrency int) ([]ReleaseSeries, error) {
	if len(releases) == 0 {
		return nil, nil
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]ReleaseSeries, len(releases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, release := range releases {
		// Each goroutine writes only its own slot
		g.Go(func() error {
			series, err := release.GetSeries(ctx)
			if err != nil {
				return fmt.Errorf("release %d: %w", release.ID, err)
			}
			results[i] = ReleaseSeries{Release: release, Series: series}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
