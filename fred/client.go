package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var apiKeyPattern = regexp.MustCompile(`^[a-z0-9]{32}$`)

var _ API = (*Client)(nil)

// Client is a FRED API client. It is the gateway every Release it loads pages through.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	logger       zerolog.Logger
	callLimit    int
	paging       Paging
	skipConnTest bool
}

// NewClient creates a new FRED client and checks the key against the API
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: fred API key is required", ErrInvalidConfig)
	}
	if !apiKeyPattern.MatchString(apiKey) {
		return nil, fmt.Errorf("%w: fred API key must be a 32 character lower-case alphanumeric string", ErrInvalidConfig)
	}

	client := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:    logger,
		callLimit: DefaultCallLimit,
		paging:    DefaultPaging(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.skipConnTest {
		return client, nil
	}

	if err := client.TestConnection(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to FRED: %w", err)
	}

	return client, nil
}

// CallLimit returns the page size used for release series
func (c *Client) CallLimit() int {
	return c.callLimit
}

// Paging returns the pagination settings releases loaded by this client use
func (c *Client) Paging() Paging {
	return c.paging
}

// doRequest performs a GET against endpoint and decodes the JSON body into out
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")

	requestURL := fmt.Sprintf("%s/%s?%s", c.baseURL, strings.TrimLeft(endpoint, "/"), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("query", redact(params)).
		Msg("Making FRED API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// newAPIError builds an APIError from a FRED error body
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Message:    http.StatusText(status),
		Body:       string(body),
	}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.ErrorMessage != "" {
		apiErr.Code = er.ErrorCode
		apiErr.Message = er.ErrorMessage
	}

	return apiErr
}

// TestConnection tests the connection and API key with a one-item release listing
func (c *Client) TestConnection(ctx context.Context) error {
	var resp releasesResponse
	params := url.Values{"limit": {"1"}}
	if err := c.doRequest(ctx, "releases", params, &resp); err != nil {
		return err
	}

	c.logger.Debug().Int("releases", resp.Count).Msg("Connected to FRED")
	return nil
}

// GetReleaseSeries fetches one page of series for a release.
// Zero realtime bounds are left out of the request.
func (c *Client) GetReleaseSeries(ctx context.Context, releaseID int, realtimeStart, realtimeEnd time.Time, page *Page) ([]Series, error) {
	params := url.Values{}
	params.Set("release_id", strconv.Itoa(releaseID))
	setRealtime(params, realtimeStart, realtimeEnd)
	if page != nil {
		params.Set("limit", strconv.Itoa(page.Limit))
		params.Set("offset", strconv.Itoa(page.Offset))
	} else {
		params.Set("limit", strconv.Itoa(c.callLimit))
	}

	var resp seriesResponse
	if err := c.doRequest(ctx, "release/series", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to get series for release %d: %w", releaseID, err)
	}

	c.logger.Debug().
		Int("release_id", releaseID).
		Int("page", pageNumber(resp.Offset, resp.Limit)).
		Int("offset", resp.Offset).
		Int("count", len(resp.Series)).
		Int("total", resp.Count).
		Msg("Retrieved release series from FRED")

	return resp.Series, nil
}

// GetRelease retrieves a single release
func (c *Client) GetRelease(ctx context.Context, releaseID int, realtimeStart, realtimeEnd time.Time) (*Release, error) {
	params := url.Values{}
	params.Set("release_id", strconv.Itoa(releaseID))
	setRealtime(params, realtimeStart, realtimeEnd)

	var resp releasesResponse
	if err := c.doRequest(ctx, "release", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to get release %d: %w", releaseID, err)
	}

	if len(resp.Releases) == 0 {
		return nil, fmt.Errorf("release %d: %w", releaseID, ErrNotFound)
	}

	return c.newRelease(resp.Releases[0]), nil
}

// ReleasesQuery holds the parameters for listing releases
type ReleasesQuery struct {
	RealtimeStart time.Time
	RealtimeEnd   time.Time
	OrderBy       OrderBy
	SortOrder     SortOrder
	// Limit of zero uses the API default of 1000
	Limit  int
	Offset int
}

func (q ReleasesQuery) params() url.Values {
	params := url.Values{}
	setRealtime(params, q.RealtimeStart, q.RealtimeEnd)
	params.Set("order_by", q.OrderBy.String())
	if q.SortOrder != "" {
		params.Set("sort_order", string(q.SortOrder))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	return params
}

// GetReleases retrieves one page of releases
func (c *Client) GetReleases(ctx context.Context, query ReleasesQuery) ([]*Release, error) {
	releases, _, err := c.getReleasesPage(ctx, query)
	return releases, err
}

func (c *Client) getReleasesPage(ctx context.Context, query ReleasesQuery) ([]*Release, int, error) {
	var resp releasesResponse
	if err := c.doRequest(ctx, "releases", query.params(), &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to get releases: %w", err)
	}

	releases := make([]*Release, 0, len(resp.Releases))
	for _, rec := range resp.Releases {
		releases = append(releases, c.newRelease(rec))
	}

	return releases, resp.Count, nil
}

// GetAllReleases retrieves every release matching the query, following the count field
func (c *Client) GetAllReleases(ctx context.Context, query ReleasesQuery) ([]*Release, error) {
	if query.Limit <= 0 {
		query.Limit = DefaultCallLimit
	}

	var all []*Release
	for page := 1; ; page++ {
		releases, total, err := c.getReleasesPage(ctx, query)
		if err != nil {
			return nil, err
		}
		all = append(all, releases...)

		c.logger.Debug().
			Int("page", page).
			Int("count", len(releases)).
			Int("total", total).
			Msg("Retrieved releases from FRED")

		if len(releases) == 0 || len(all) >= total {
			break
		}
		if c.paging.MaxPages > 0 && page >= c.paging.MaxPages {
			return nil, fmt.Errorf("releases: stopped after %d pages: %w", page, ErrPageLimit)
		}
		query.Offset += len(releases)
	}

	return all, nil
}

// newRelease builds a Release from its wire record with this client as gateway
func (c *Client) newRelease(rec releaseRecord) *Release {
	release := NewRelease(c)
	release.ID = rec.ID
	release.Name = rec.Name
	release.Link = rec.Link
	release.PressRelease = rec.PressRelease
	release.Notes = rec.Notes
	release.RealtimeStart = rec.RealtimeStart.Time
	release.RealtimeEnd = rec.RealtimeEnd.Time
	return release
}

// pageNumber returns the 1-based page an offset falls on
func pageNumber(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}

func setRealtime(params url.Values, start, end time.Time) {
	if !start.IsZero() {
		params.Set("realtime_start", start.Format(DateLayout))
	}
	if !end.IsZero() {
		params.Set("realtime_end", end.Format(DateLayout))
	}
}

// redact encodes params with the API key masked
func redact(params url.Values) string {
	masked := make(url.Values, len(params))
	for k, v := range params {
		masked[k] = v
	}
	if masked.Has("api_key") {
		masked.Set("api_key", "REDACTED")
	}
	return masked.Encode()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
