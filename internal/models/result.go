package models

// Source identifies which strategy produced a result.
type Source string

const (
	SourceRemote        Source = "Remote"
	SourceLocalFallback Source = "LocalFallback"
)

// Bounds is the lat/lon bounding box of a result set.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// RankedResult is the outcome of a facility search.
// Facilities is never nil; Selected is the first facility or nil when there is none.
type RankedResult struct {
	Facilities     []*Facility `json:"facilities"`
	Selected       *Facility   `json:"selected"`
	Source         Source      `json:"source"`
	Query          Query       `json:"query"`
	CatalogVersion string      `json:"catalog_version,omitempty"`
	// Suggestions lists known crop names close to a crop that has no profile.
	Suggestions []string `json:"suggestions,omitempty"`
	Bounds      *Bounds  `json:"bounds,omitempty"`
	QueryTime   int64    `json:"query_time_ms"`
}

// NewRankedResult builds a result over facilities, selecting the first one.
func NewRankedResult(facilities []*Facility, source Source) *RankedResult {
	if facilities == nil {
		facilities = []*Facility{}
	}
	r := &RankedResult{Facilities: facilities, Source: source}
	if len(facilities) > 0 {
		r.Selected = facilities[0]
	}
	return r
}

// Empty reports whether the result holds no facilities.
func (r *RankedResult) Empty() bool {
	return len(r.Facilities) == 0
}
