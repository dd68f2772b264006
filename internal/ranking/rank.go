// Package ranking orders candidate facilities for presentation.
package ranking

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/hyperjump/coldfinder/internal/models"
)

// Less reports whether a ranks before b. Facilities that are effectively Available come
// first; within the same status the cheaper facility comes first.
func Less(a, b *models.Facility) bool {
	aAvail := a.EffectiveStatus() == models.StatusAvailable
	bAvail := b.EffectiveStatus() == models.StatusAvailable
	if aAvail != bAvail {
		return aAvail
	}
	return a.CostPerKg < b.CostPerKg
}

// Rank sorts facilities in place. Ties on both keys keep their input order.
func Rank(facilities []*models.Facility) {
	sort.SliceStable(facilities, func(i, j int) bool {
		return Less(facilities[i], facilities[j])
	})
}

// Bounds returns the bounding box of the facilities' locations, or nil when none of
// them has coordinates. Locations at exactly (0, 0) are treated as missing.
func Bounds(facilities []*models.Facility) *models.Bounds {
	var points orb.MultiPoint
	for _, f := range facilities {
		if f.Location.Lat == 0 && f.Location.Lon == 0 {
			continue
		}
		points = append(points, f.Location.Point())
	}
	if len(points) == 0 {
		return nil
	}
	b := points.Bound()
	return &models.Bounds{
		MinLat: b.Bottom(),
		MinLon: b.Left(),
		MaxLat: b.Top(),
		MaxLon: b.Right(),
	}
}
