package fred

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public FRED API root
	DefaultBaseURL = "https://api.stlouisfed.org/fred"
	// DefaultCallLimit is the largest page fred/release/series will return
	DefaultCallLimit = 1000
	// DefaultMaxPages caps pagination for a single release
	DefaultMaxPages = 1000
	// DefaultTimeout is the HTTP client timeout
	DefaultTimeout = 30 * time.Second
)

// FollowUpBounds selects the real-time window sent with every page after the first
type FollowUpBounds int

const (
	// BoundsToday sends today's date as both bounds on follow-up pages.
	// The date is taken in the clock's location, so near midnight it can
	// differ from the date on FRED's servers.
	BoundsToday FollowUpBounds = iota
	// BoundsRelease re-sends the release's own real-time window
	BoundsRelease
)

// String returns the config value for the setting
func (b FollowUpBounds) String() string {
	if b == BoundsRelease {
		return "release"
	}
	return "today"
}

// ParseFollowUpBounds parses "today" or "release"
func ParseFollowUpBounds(s string) (FollowUpBounds, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return BoundsToday, nil
	case "release":
		return BoundsRelease, nil
	default:
		return BoundsToday, fmt.Errorf("invalid follow-up bounds: %s (must be 'today' or 'release')", s)
	}
}

// Paging controls how a Release walks through its series
type Paging struct {
	// MaxPages stops pagination after this many calls. Zero means no cap.
	MaxPages int
	Bounds   FollowUpBounds
	// Now supplies "today" for BoundsToday
	Now func() time.Time
}

// DefaultPaging returns the paging used when a gateway does not configure one
func DefaultPaging() Paging {
	return Paging{
		MaxPages: DefaultMaxPages,
		Bounds:   BoundsToday,
		Now:      time.Now,
	}
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different API root
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithCallLimit sets the page size used for release series
func WithCallLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.callLimit = limit
		}
	}
}

// WithMaxPages caps the number of pages fetched per release. Zero disables the cap.
func WithMaxPages(pages int) Option {
	return func(c *Client) {
		if pages >= 0 {
			c.paging.MaxPages = pages
		}
	}
}

// WithFollowUpBounds selects the real-time window for follow-up pages
func WithFollowUpBounds(bounds FollowUpBounds) Option {
	return func(c *Client) {
		c.paging.Bounds = bounds
	}
}

// WithClock replaces the clock used to compute today's date. The calendar
// date is read in the location of the returned time; return now.In(loc) to
// pin it to a zone.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.paging.Now = now
		}
	}
}

// WithoutConnectionTest skips the connection check in NewClient
func WithoutConnectionTest() Option {
	return func(c *Client) {
		c.skipConnTest = true
	}
}
