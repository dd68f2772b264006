// Package models defines core data structures for facilities, crops, queries, and search results.
package models

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/hyperjump/coldfinder/pkg/utils"
)

// Status is the availability state of a facility.
type Status string

const (
	StatusAvailable   Status = "Available"
	StatusUnavailable Status = "Unavailable"
)

// legacyUnavailable is the spelling of StatusUnavailable used by older data exports.
const legacyUnavailable = "Not Available"

// ParseStatus converts a wire value to a Status. Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	switch utils.Normalize(s) {
	case "available":
		return StatusAvailable, nil
	case "unavailable", strings.ToLower(legacyUnavailable):
		return StatusUnavailable, nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("unknown facility status %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON and YAML decoding.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// LocalizedName maps a locale code (e.g. "en", "ta") to a display string.
type LocalizedName map[string]string

// DefaultLocale is the locale every facility name must carry.
const DefaultLocale = "en"

// In returns the name for locale, or the English name when the locale is missing.
func (n LocalizedName) In(locale string) string {
	if v, ok := n[locale]; ok && v != "" {
		return v
	}
	return n[DefaultLocale]
}

// Location is a point plus the human-readable area name used for location matching.
type Location struct {
	Lat  float64 `json:"lat" yaml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon"`
	Name string  `json:"name" yaml:"name"`
}

// Point returns the location as an orb point (longitude first).
func (l Location) Point() orb.Point {
	return orb.Point{l.Lon, l.Lat}
}

// TempRange is the inclusive operating envelope of a facility in Celsius.
type TempRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether t lies within [Min, Max].
func (r TempRange) Contains(t float64) bool {
	return t >= r.Min && t <= r.Max
}

// Facility is a cold-storage site. Capacities are in tons; CostPerKg is the price per
// mass unit per storage period. Distance (km) is only set when computed upstream.
type Facility struct {
	ID                string        `json:"id" yaml:"id"`
	Name              LocalizedName `json:"name" yaml:"name"`
	Location          Location      `json:"location" yaml:"location"`
	SupportedCrops    []string      `json:"supportedCrops" yaml:"supportedCrops"`
	TempRange         TempRange     `json:"tempRange" yaml:"tempRange"`
	TotalCapacity     float64       `json:"totalCapacity" yaml:"totalCapacity"`
	AvailableCapacity float64       `json:"availableCapacity" yaml:"availableCapacity"`
	CostPerKg         float64       `json:"costPerKg" yaml:"costPerKg"`
	Contact           string        `json:"contact" yaml:"contact"`
	Status            Status        `json:"status" yaml:"status"`
	Distance          *float64      `json:"distance,omitempty" yaml:"distance,omitempty"`
}

// EffectiveStatus returns the status used for ranking. A facility with no available
// capacity is Unavailable regardless of its reported status.
func (f *Facility) EffectiveStatus() Status {
	if f.AvailableCapacity == 0 {
		return StatusUnavailable
	}
	if f.Status == "" {
		return StatusAvailable
	}
	return f.Status
}

// SupportsCrop reports whether any supported crop contains crop as a substring.
// crop must already be trimmed and lower-cased.
func (f *Facility) SupportsCrop(crop string) bool {
	for _, c := range f.SupportedCrops {
		if utils.ContainsFold(c, crop) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of f.
func (f *Facility) Clone() *Facility {
	c := *f
	if f.Name != nil {
		c.Name = make(LocalizedName, len(f.Name))
		for k, v := range f.Name {
			c.Name[k] = v
		}
	}
	c.SupportedCrops = append([]string(nil), f.SupportedCrops...)
	if f.Distance != nil {
		d := *f.Distance
		c.Distance = &d
	}
	return &c
}
