package fred

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the layout FRED uses for dates in requests and responses
	DateLayout = "2006-01-02"

	// lastUpdatedLayout is used for the last_updated field on series
	lastUpdatedLayout = "2006-01-02 15:04:05-07"
)

// Date is a calendar date as sent by FRED. The zero value means unset.
type Date struct {
	time.Time
}

// NewDate wraps t, dropping the time of day
func NewDate(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// String returns the date in FRED's layout, or an empty string if unset
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// UnmarshalJSON accepts "YYYY-MM-DD", an empty string or null
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON writes the date in FRED's layout
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// Timestamp is the last_updated value on a series
type Timestamp struct {
	time.Time
}

// UnmarshalJSON parses FRED's "2006-01-02 15:04:05-07" timestamps
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := time.Parse(lastUpdatedLayout, s)
	if err != nil {
		// Some endpoints send RFC3339
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
	}
	t.Time = parsed
	return nil
}

// Series represents a single economic data series belonging to a release
type Series struct {
	ID                      string    `json:"id"`
	RealtimeStart           Date      `json:"realtime_start"`
	RealtimeEnd             Date      `json:"realtime_end"`
	Title                   string    `json:"title"`
	ObservationStart        Date      `json:"observation_start"`
	ObservationEnd          Date      `json:"observation_end"`
	Frequency               string    `json:"frequency"`
	FrequencyShort          string    `json:"frequency_short"`
	Units                   string    `json:"units"`
	UnitsShort              string    `json:"units_short"`
	SeasonalAdjustment      string    `json:"seasonal_adjustment"`
	SeasonalAdjustmentShort string    `json:"seasonal_adjustment_short"`
	LastUpdated             Timestamp `json:"last_updated"`
	Popularity              int       `json:"popularity"`
	GroupPopularity         int       `json:"group_popularity,omitempty"`
	Notes                   string    `json:"notes,omitempty"`
}

// IsSeasonallyAdjusted reports whether the series carries a seasonal adjustment
func (s *Series) IsSeasonallyAdjusted() bool {
	return s.SeasonalAdjustmentShort != "" && s.SeasonalAdjustmentShort != "NSA"
}

// Page requests an explicit window of a paged endpoint
type Page struct {
	Limit  int
	Offset int
}

// pageInfo is embedded in every paged FRED response
type pageInfo struct {
	RealtimeStart string `json:"realtime_start"`
	RealtimeEnd   string `json:"realtime_end"`
	OrderBy       string `json:"order_by"`
	SortOrder     string `json:"sort_order"`
	Count         int    `json:"count"`
	Offset        int    `json:"offset"`
	Limit         int    `json:"limit"`
}

// seriesResponse is the body of fred/release/series
type seriesResponse struct {
	pageInfo
	Series []Series `json:"seriess"`
}

// releaseRecord is a release as it appears on the wire
type releaseRecord struct {
	ID            int    `json:"id"`
	RealtimeStart Date   `json:"realtime_start"`
	RealtimeEnd   Date   `json:"realtime_end"`
	Name          string `json:"name"`
	PressRelease  bool   `json:"press_release"`
	Link          string `json:"link,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// releasesResponse is the body of fred/releases and fred/release
type releasesResponse struct {
	pageInfo
	Releases []releaseRecord `json:"releases"`
}

// errorResponse is the body FRED sends with non-200 responses
type errorResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}
