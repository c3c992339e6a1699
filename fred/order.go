package fred

import (
	"fmt"
	"strings"
)

// OrderBy selects the attribute releases are ordered by when listing
type OrderBy int

const (
	// OrderByReleaseID orders by release id (the API default)
	OrderByReleaseID OrderBy = iota
	// OrderByName orders by release name
	OrderByName
	// OrderByPressRelease orders by the press release flag
	OrderByPressRelease
	// OrderByRealtimeStart orders by the start of the real-time period
	OrderByRealtimeStart
	// OrderByRealtimeEnd orders by the end of the real-time period
	OrderByRealtimeEnd
)

var orderByNames = [...]string{
	OrderByReleaseID:     "release_id",
	OrderByName:          "name",
	OrderByPressRelease:  "press_release",
	OrderByRealtimeStart: "realtime_start",
	OrderByRealtimeEnd:   "realtime_end",
}

// String returns the API value for the ordering
func (o OrderBy) String() string {
	if o < 0 || int(o) >= len(orderByNames) {
		return orderByNames[OrderByReleaseID]
	}
	return orderByNames[o]
}

// ParseOrderBy converts an API value (or its dashed form) to an OrderBy
func ParseOrderBy(s string) (OrderBy, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if key == "" || key == "id" {
		return OrderByReleaseID, nil
	}
	for i, name := range orderByNames {
		if name == key {
			return OrderBy(i), nil
		}
	}
	return OrderByReleaseID, fmt.Errorf("invalid order by: %s", s)
}

// SortOrder is the direction results are sorted in
type SortOrder string

const (
	// SortAscending sorts ascending (the API default)
	SortAscending SortOrder = "asc"
	// SortDescending sorts descending
	SortDescending SortOrder = "desc"
)

// ParseSortOrder validates a sort order string
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return SortAscending, nil
	case "desc":
		return SortDescending, nil
	default:
		return SortAscending, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", s)
	}
}
