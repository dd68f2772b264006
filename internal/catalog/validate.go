package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hyperjump/coldfinder/internal/models"
)

// ErrInvalidCatalog is wrapped by every catalog integrity error.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Validate checks the catalog invariants. All problems are reported together.
func Validate(facilities []models.Facility, crops []models.CropProfile) error {
	var errs []error
	seen := make(map[string]bool, len(facilities))
	for i := range facilities {
		f := &facilities[i]
		id := strings.TrimSpace(f.ID)
		ref := id
		if ref == "" {
			ref = fmt.Sprintf("#%d", i+1)
			errs = append(errs, fmt.Errorf("facility %s: id is required", ref))
		} else if seen[id] {
			errs = append(errs, fmt.Errorf("facility %s: duplicate id", ref))
		}
		seen[id] = true
		for _, err := range validateFacility(f) {
			errs = append(errs, fmt.Errorf("facility %s: %w", ref, err))
		}
	}
	seenCrops := make(map[string]bool, len(crops))
	for i, c := range crops {
		key := cropKey(c.Name)
		switch {
		case key == "":
			errs = append(errs, fmt.Errorf("crop #%d: name is required", i+1))
		case seenCrops[key]:
			errs = append(errs, fmt.Errorf("crop %q: duplicate name", c.Name))
		}
		if !finite(c.IdealTemperature) {
			errs = append(errs, fmt.Errorf("crop %q: idealTemperature must be a finite number", c.Name))
		}
		seenCrops[key] = true
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
}

func validateFacility(f *models.Facility) []error {
	var errs []error
	if strings.TrimSpace(f.Name[models.DefaultLocale]) == "" {
		errs = append(errs, fmt.Errorf("name.%s is required", models.DefaultLocale))
	}
	for _, n := range []struct {
		field string
		v     float64
	}{
		{"tempRange.min", f.TempRange.Min},
		{"tempRange.max", f.TempRange.Max},
		{"totalCapacity", f.TotalCapacity},
		{"availableCapacity", f.AvailableCapacity},
		{"costPerKg", f.CostPerKg},
		{"location.lat", f.Location.Lat},
		{"location.lon", f.Location.Lon},
	} {
		if !finite(n.v) {
			errs = append(errs, fmt.Errorf("%s must be a finite number", n.field))
		}
	}
	if len(f.SupportedCrops) == 0 {
		errs = append(errs, errors.New("at least one supported crop is required"))
	}
	if f.TempRange.Min > f.TempRange.Max {
		errs = append(errs, fmt.Errorf("tempRange min %v exceeds max %v", f.TempRange.Min, f.TempRange.Max))
	}
	if f.TotalCapacity < 0 || f.AvailableCapacity < 0 {
		errs = append(errs, errors.New("capacities must be non-negative"))
	}
	if f.AvailableCapacity > f.TotalCapacity {
		errs = append(errs, fmt.Errorf("availableCapacity %v exceeds totalCapacity %v", f.AvailableCapacity, f.TotalCapacity))
	}
	if f.CostPerKg < 0 {
		errs = append(errs, fmt.Errorf("costPerKg %v is negative", f.CostPerKg))
	}
	if f.Status == models.StatusAvailable && f.AvailableCapacity == 0 {
		errs = append(errs, errors.New("status Available with no available capacity"))
	}
	if f.Location.Lat < -90 || f.Location.Lat > 90 || f.Location.Lon < -180 || f.Location.Lon > 180 {
		errs = append(errs, fmt.Errorf("location (%v, %v) out of range", f.Location.Lat, f.Location.Lon))
	}
	return errs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
