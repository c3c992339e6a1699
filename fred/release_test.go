package fred

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seriesCall records the arguments of one GetReleaseSeries call
type seriesCall struct {
	releaseID int
	start     time.Time
	end       time.Time
	page      *Page
}

// stubGateway implements SeriesGateway for testing
type stubGateway struct {
	mu    sync.Mutex
	limit int
	pages [][]Series
	// errs maps a call index to the error returned for it
	errs  map[int]error
	calls []seriesCall
	// gate, if set, blocks every call until it is closed
	gate chan struct{}
}

func (s *stubGateway) GetReleaseSeries(ctx context.Context, releaseID int, start, end time.Time, page *Page) ([]Series, error) {
	if s.gate != nil {
		<-s.gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.calls)
	s.calls = append(s.calls, seriesCall{releaseID: releaseID, start: start, end: end, page: page})

	if err, ok := s.errs[idx]; ok {
		delete(s.errs, idx)
		return nil, err
	}

	// Pages are served by offset so a retried fetch starts over
	pageIdx := 0
	if page != nil && s.limit > 0 {
		pageIdx = page.Offset / s.limit
	}
	if pageIdx >= len(s.pages) {
		return nil, nil
	}
	return s.pages[pageIdx], nil
}

func (s *stubGateway) CallLimit() int {
	return s.limit
}

func (s *stubGateway) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// pagedGateway adds a fixed paging configuration to stubGateway
type pagedGateway struct {
	*stubGateway
	paging Paging
}

func (p *pagedGateway) Paging() Paging {
	return p.paging
}

func makeSeries(ids ...string) []Series {
	series := make([]Series, 0, len(ids))
	for _, id := range ids {
		series = append(series, Series{ID: id, Title: "Series " + id})
	}
	return series
}

func seriesIDs(series []Series) []string {
	ids := make([]string, 0, len(series))
	for _, s := range series {
		ids = append(ids, s.ID)
	}
	return ids
}

var fixedNow = time.Date(2024, time.March, 15, 13, 45, 0, 0, time.UTC)

func TestReleaseLaziness(t *testing.T) {
	gw := &stubGateway{limit: 100, pages: [][]Series{makeSeries("A")}}

	release := NewRelease(gw)
	release.ID = 53
	release.Name = "Gross Domestic Product"
	release.Link = "https://www.bea.gov/national/index.htm"
	release.PressRelease = true
	release.RealtimeStart = time.Date(2013, 8, 13, 0, 0, 0, 0, time.UTC)
	release.RealtimeEnd = time.Date(2013, 8, 13, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, gw.callCount())
	assert.False(t, release.SeriesLoaded())

	_, err := release.GetSeries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, gw.callCount())
	assert.True(t, release.SeriesLoaded())
}

func TestReleaseGetSeriesIdempotent(t *testing.T) {
	gw := &stubGateway{limit: 100, pages: [][]Series{makeSeries("A", "B")}}
	release := NewRelease(gw)
	release.ID = 10

	first, err := release.GetSeries(context.Background())
	require.NoError(t, err)
	second, err := release.GetSeries(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, gw.callCount())
	// Same backing array, not a second copy
	assert.Same(t, &first[0], &second[0])
}

func TestReleaseSinglePage(t *testing.T) {
	gw := &stubGateway{limit: 100, pages: [][]Series{makeSeries("A", "B", "C")}}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)

	release := NewRelease(gw)
	release.ID = 175
	release.RealtimeStart = start
	release.RealtimeEnd = end

	series, err := release.GetSeries(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, seriesIDs(series))
	require.Equal(t, 1, gw.callCount())

	call := gw.calls[0]
	assert.Equal(t, 175, call.releaseID)
	assert.Equal(t, start, call.start)
	assert.Equal(t, end, call.end)
	assert.Nil(t, call.page, "first call uses the gateway's default page size")
}

func TestReleaseMultiPage(t *testing.T) {
	gw := &pagedGateway{
		stubGateway: &stubGateway{
			limit: 2,
			pages: [][]Series{
				makeSeries("A", "B"),
				makeSeries("C", "D"),
				makeSeries("E"),
			},
		},
		paging: Paging{Bounds: BoundsToday, Now: func() time.Time { return fixedNow }},
	}
	start := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2019, 6, 30, 0, 0, 0, 0, time.UTC)

	release := NewRelease(gw)
	release.ID = 9
	release.RealtimeStart = start
	release.RealtimeEnd = end

	series, err := release.GetSeries(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, seriesIDs(series))
	require.Equal(t, 3, gw.callCount())

	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, start, gw.calls[0].start)
	assert.Equal(t, end, gw.calls[0].end)
	assert.Nil(t, gw.calls[0].page)

	assert.Equal(t, &Page{Limit: 2, Offset: 2}, gw.calls[1].page)
	assert.Equal(t, today, gw.calls[1].start)
	assert.Equal(t, today, gw.calls[1].end)

	assert.Equal(t, &Page{Limit: 2, Offset: 4}, gw.calls[2].page)
	assert.Equal(t, today, gw.calls[2].start)
	assert.Equal(t, today, gw.calls[2].end)
}

func TestReleaseFollowUpBoundsRelease(t *testing.T) {
	gw := &pagedGateway{
		stubGateway: &stubGateway{
			limit: 2,
			pages: [][]Series{makeSeries("A", "B"), {}},
		},
		paging: Paging{Bounds: BoundsRelease, Now: func() time.Time { return fixedNow }},
	}
	start := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)

	release := NewRelease(gw)
	release.ID = 9
	release.RealtimeStart = start

	series, err := release.GetSeries(context.Background())
	require.NoError(t, err)

	assert.Len(t, series, 2)
	require.Equal(t, 2, gw.callCount())
	assert.Equal(t, start, gw.calls[1].start)
	assert.True(t, gw.calls[1].end.IsZero())
}

func TestReleaseTodayUsesClockLocation(t *testing.T) {
	eastern := time.FixedZone("EST", -5*60*60)
	// Already March 16th in UTC
	lateEvening := time.Date(2024, time.March, 15, 23, 30, 0, 0, eastern)

	gw := &pagedGateway{
		stubGateway: &stubGateway{
			limit: 1,
			pages: [][]Series{makeSeries("A"), {}},
		},
		paging: Paging{Bounds: BoundsToday, Now: func() time.Time { return lateEvening }},
	}

	release := NewRelease(gw)
	release.ID = 50

	_, err := release.GetSeries(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, gw.callCount())

	want := time.Date(2024, time.March, 15, 0, 0, 0, 0, eastern)
	assert.Equal(t, want, gw.calls[1].start)
	assert.Equal(t, want, gw.calls[1].end)
	assert.Equal(t, "2024-03-15", gw.calls[1].start.Format(DateLayout))
}

func TestReleaseEmptyFinalPage(t *testing.T) {
	gw := &stubGateway{
		limit: 2,
		pages: [][]Series{makeSeries("A", "B"), makeSeries("C", "D")},
	}
	release := NewRelease(gw)

	series, err := release.GetSeries(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D"}, seriesIDs(series))
	assert.Equal(t, 3, gw.callCount())
}

func TestReleaseFailurePropagation(t *testing.T) {
	errTransport := errors.New("connection reset by peer")

	tests := []struct {
		name      string
		failOn    int
		wantCalls int
	}{
		{name: "first page fails", failOn: 0, wantCalls: 1},
		{name: "second page fails", failOn: 1, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{
				limit: 2,
				pages: [][]Series{makeSeries("A", "B"), makeSeries("C")},
				errs:  map[int]error{tt.failOn: errTransport},
			}
			release := NewRelease(gw)
			release.ID = 1

			series, err := release.GetSeries(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, errTransport)
			assert.Nil(t, series)
			assert.False(t, release.SeriesLoaded())
			assert.Equal(t, tt.wantCalls, gw.callCount())

			// The retry starts again from the first page
			series, err = release.GetSeries(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []string{"A", "B", "C"}, seriesIDs(series))
			assert.Equal(t, tt.wantCalls+2, gw.callCount())
			assert.Nil(t, gw.calls[tt.wantCalls].page)
		})
	}
}

func TestReleaseIterationMatchesGetSeries(t *testing.T) {
	gw := &stubGateway{
		limit: 2,
		pages: [][]Series{makeSeries("A", "B"), makeSeries("C")},
	}
	release := NewRelease(gw)
	ctx := context.Background()

	var iterated []Series
	for s, err := range release.All(ctx) {
		require.NoError(t, err)
		iterated = append(iterated, s)
	}

	series, err := release.GetSeries(ctx)
	require.NoError(t, err)
	assert.Equal(t, series, iterated)
	assert.Equal(t, 2, gw.callCount(), "iteration must not fetch again")
}

func TestReleaseIterationStopsEarly(t *testing.T) {
	gw := &stubGateway{limit: 100, pages: [][]Series{makeSeries("A", "B", "C")}}
	release := NewRelease(gw)

	var seen []string
	for s, err := range release.All(context.Background()) {
		require.NoError(t, err)
		seen = append(seen, s.ID)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"A", "B"}, seen)
}

func TestReleaseIterationYieldsError(t *testing.T) {
	errTransport := errors.New("timeout")
	gw := &stubGateway{limit: 100, errs: map[int]error{0: errTransport}}
	release := NewRelease(gw)

	var errs []error
	for _, err := range release.All(context.Background()) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], errTransport)
}

func TestReleaseConcurrentFirstAccess(t *testing.T) {
	gw := &stubGateway{
		limit: 2,
		pages: [][]Series{makeSeries("A", "B"), makeSeries("C")},
		gate:  make(chan struct{}),
	}
	release := NewRelease(gw)

	const callers = 16
	results := make([][]Series, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = release.GetSeries(context.Background())
		}()
	}

	close(gw.gate)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, []string{"A", "B", "C"}, seriesIDs(results[i]))
	}
	assert.Equal(t, 2, gw.callCount(), "only one pagination run")
}

func TestReleaseWaitingCallerCancelled(t *testing.T) {
	gw := &stubGateway{
		limit: 100,
		pages: [][]Series{makeSeries("A")},
		gate:  make(chan struct{}),
	}
	release := NewRelease(gw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = release.GetSeries(context.Background())
	}()

	// Wait until the first caller holds the fetch slot
	require.Eventually(t, func() bool { return len(release.series.sem) == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := release.GetSeries(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(gw.gate)
	<-done
	assert.True(t, release.SeriesLoaded())
}

func TestReleasePageLimit(t *testing.T) {
	// Every page is full, so only the cap stops the loop
	full := makeSeries("X", "Y")
	pages := make([][]Series, 50)
	for i := range pages {
		pages[i] = full
	}

	gw := &pagedGateway{
		stubGateway: &stubGateway{limit: 2, pages: pages},
		paging:      Paging{MaxPages: 5, Now: func() time.Time { return fixedNow }},
	}
	release := NewRelease(gw)
	release.ID = 77

	series, err := release.GetSeries(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPageLimit)
	assert.Nil(t, series)
	assert.Equal(t, 5, gw.callCount())
	assert.False(t, release.SeriesLoaded())

	var limitErr *PageLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 77, limitErr.ReleaseID)
	assert.Equal(t, 10, limitErr.Items)
}

func TestReleaseWithoutGateway(t *testing.T) {
	release := &Release{ID: 3, Name: "Employment Situation"}

	assert.False(t, release.SeriesLoaded())

	_, err := release.GetSeries(context.Background())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.False(t, release.SeriesLoaded())

	for _, err := range release.All(context.Background()) {
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}

	var zero Release
	_, err = zero.GetSeries(context.Background())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
