package fred

import (
	"context"
	"time"
)

// SeriesGateway is the part of the FRED API a Release pages through
type SeriesGateway interface {
	// GetReleaseSeries fetches one page of series for a release. A nil page
	// uses the gateway's default page size.
	GetReleaseSeries(ctx context.Context, releaseID int, realtimeStart, realtimeEnd time.Time, page *Page) ([]Series, error)

	// CallLimit is the maximum number of items the gateway returns per call
	CallLimit() int
}

// PagingConfigurer is implemented by gateways that tune how a Release pages
type PagingConfigurer interface {
	Paging() Paging
}

// API defines the FRED release operations
type API interface {
	SeriesGateway

	// TestConnection verifies the client can reach FRED with its key
	TestConnection(ctx context.Context) error

	// GetRelease retrieves a single release
	GetRelease(ctx context.Context, releaseID int, realtimeStart, realtimeEnd time.Time) (*Release, error)

	// GetReleases retrieves one page of releases
	GetReleases(ctx context.Context, query ReleasesQuery) ([]*Release, error)

	// GetAllReleases retrieves every release matching the query
	GetAllReleases(ctx context.Context, query ReleasesQuery) ([]*Release, error)
}
