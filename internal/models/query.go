package models

import "github.com/hyperjump/coldfinder/pkg/utils"

// Query is a facility search request. Quantity is recorded but never filters.
type Query struct {
	Crop     string `json:"crop"`
	Quantity string `json:"quantity,omitempty"`
	Location string `json:"location,omitempty"`
}

// NormalizedCrop returns the crop trimmed and lower-cased.
func (q *Query) NormalizedCrop() string {
	if q == nil {
		return ""
	}
	return utils.Normalize(q.Crop)
}

// NormalizedLocation returns the location text trimmed and lower-cased.
func (q *Query) NormalizedLocation() string {
	if q == nil {
		return ""
	}
	return utils.Normalize(q.Location)
}

// IsBlank reports whether the query has no usable crop.
func (q *Query) IsBlank() bool {
	return q.NormalizedCrop() == ""
}
