package search

import (
	"github.com/hyperjump/coldfinder/internal/catalog"
	"github.com/hyperjump/coldfinder/internal/models"
	"github.com/hyperjump/coldfinder/internal/ranking"
	"github.com/hyperjump/coldfinder/pkg/utils"
)

// LocalSearch filters the catalog for q and ranks the candidates. It is deterministic
// for a given catalog and query. A blank crop or a nil catalog yields an empty result.
func LocalSearch(kb *catalog.KnowledgeBase, q *models.Query) *models.RankedResult {
	crop := q.NormalizedCrop()
	if crop == "" || kb == nil {
		return models.NewRankedResult(nil, models.SourceLocalFallback)
	}
	location := q.NormalizedLocation()
	profile, _ := kb.LookupCropProfile(crop)

	candidates := make([]*models.Facility, 0)
	for _, f := range kb.Facilities() {
		if IsCandidate(f, crop, location, profile) {
			candidates = append(candidates, f)
		}
	}
	ranking.Rank(candidates)
	return models.NewRankedResult(candidates, models.SourceLocalFallback)
}

// IsCandidate reports whether f passes the crop-support, temperature and location tests.
// crop and location must be trimmed and lower-cased; a nil profile skips the
// temperature test and an empty location skips the location test.
func IsCandidate(f *models.Facility, crop, location string, profile *models.CropProfile) bool {
	if !f.SupportsCrop(crop) {
		return false
	}
	if profile != nil && !f.TempRange.Contains(profile.IdealTemperature) {
		return false
	}
	return location == "" || utils.ContainsFold(f.Location.Name, location)
}
