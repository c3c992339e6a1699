package fred

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// Release is a named, periodically published collection of economic data series.
//
// A Release is built by the code that loads it: NewRelease wires the gateway and
// the loader assigns the remaining fields. After that it is treated as read-only.
// A struct literal is also valid; without a gateway GetSeries fails with
// ErrInvalidConfig. A Release must not be copied after first use.
// See https://fred.stlouisfed.org/docs/api/fred/realtime_period.html for the
// meaning of the real-time period.
type Release struct {
	ID           int
	Name         string
	Link         string
	PressRelease bool
	Notes        string

	// RealtimeStart and RealtimeEnd bound the vintage queried for series.
	// The zero time means no bound.
	RealtimeStart time.Time
	RealtimeEnd   time.Time

	gateway SeriesGateway
	series  memo[[]Series]
}

// NewRelease creates an empty release that fetches its series through gateway
func NewRelease(gateway SeriesGateway) *Release {
	return &Release{gateway: gateway}
}

// GetSeries returns every series in the release in the order FRED returns them.
//
// The first call pages through the gateway; later calls return the same slice
// without another request. Callers must not modify the returned slice. Concurrent
// first calls share one fetch. If any page fails the error is returned and
// nothing is cached, so the next call starts again from the first page.
// Changing RealtimeStart or RealtimeEnd after a successful call has no effect.
func (r *Release) GetSeries(ctx context.Context) ([]Series, error) {
	return r.series.get(ctx, r.fetchSeries)
}

// All iterates over the release's series. It delegates to GetSeries; on failure
// it yields a single zero Series with the error.
func (r *Release) All(ctx context.Context) iter.Seq2[Series, error] {
	return func(yield func(Series, error) bool) {
		series, err := r.GetSeries(ctx)
		if err != nil {
			yield(Series{}, err)
			return
		}
		for _, s := range series {
			if !yield(s, nil) {
				return
			}
		}
	}
}

// SeriesLoaded reports whether the series have been fetched
func (r *Release) SeriesLoaded() bool {
	return r.series.loaded()
}

// String returns the release name and id
func (r *Release) String() string {
	return fmt.Sprintf("%s (%d)", r.Name, r.ID)
}

// fetchSeries reads pages until one comes back shorter than the call limit
func (r *Release) fetchSeries(ctx context.Context) ([]Series, error) {
	if r.gateway == nil {
		return nil, fmt.Errorf("release %d: %w: no gateway", r.ID, ErrInvalidConfig)
	}

	paging := DefaultPaging()
	if pc, ok := r.gateway.(PagingConfigurer); ok {
		paging = pc.Paging()
		if paging.Now == nil {
			paging.Now = time.Now
		}
	}
	limit := r.gateway.CallLimit()

	first, err := r.gateway.GetReleaseSeries(ctx, r.ID, r.RealtimeStart, r.RealtimeEnd, nil)
	if err != nil {
		return nil, err
	}

	// Copy so later appends never alias the gateway's slice
	series := append([]Series(nil), first...)
	count := len(first)

	for call := 1; limit > 0 && count == limit; call++ {
		if paging.MaxPages > 0 && call >= paging.MaxPages {
			return nil, &PageLimitError{ReleaseID: r.ID, Pages: call, Items: len(series)}
		}

		start, end := r.RealtimeStart, r.RealtimeEnd
		if paging.Bounds == BoundsToday {
			start = today(paging.Now())
			end = start
		}

		more, err := r.gateway.GetReleaseSeries(ctx, r.ID, start, end, &Page{Limit: limit, Offset: call * limit})
		if err != nil {
			return nil, err
		}
		series = append(series, more...)
		count = len(more)
	}

	return series, nil
}

// today truncates t to midnight in its own location
func today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
