// Package catalog provides the read-only knowledge base of cold-storage facilities and
// crop storage temperatures.
package catalog

import (
	"strings"

	"github.com/hyperjump/coldfinder/internal/models"
	"github.com/hyperjump/coldfinder/pkg/utils"
)

// KnowledgeBase is an immutable, validated facility catalog plus crop-temperature table.
// It is safe for concurrent reads. Returned facilities and profiles must not be modified.
type KnowledgeBase struct {
	version    string
	facilities []*models.Facility
	byID       map[string]*models.Facility
	crops      []*models.CropProfile
	cropByKey  map[string]*models.CropProfile
}

// New validates facilities and crops and returns a knowledge base holding copies of them.
// Facilities without a status get one derived from their available capacity.
// Returns an error wrapping ErrInvalidCatalog listing every problem found.
func New(version string, facilities []models.Facility, crops []models.CropProfile) (*KnowledgeBase, error) {
	if err := Validate(facilities, crops); err != nil {
		return nil, err
	}
	kb := &KnowledgeBase{
		version:    version,
		facilities: make([]*models.Facility, 0, len(facilities)),
		byID:       make(map[string]*models.Facility, len(facilities)),
		crops:      make([]*models.CropProfile, 0, len(crops)),
		cropByKey:  make(map[string]*models.CropProfile, len(crops)),
	}
	for i := range facilities {
		f := facilities[i].Clone()
		f.ID = strings.TrimSpace(f.ID)
		if f.Status == "" {
			f.Status = deriveStatus(f)
		}
		kb.facilities = append(kb.facilities, f)
		kb.byID[f.ID] = f
	}
	for i := range crops {
		c := crops[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Labels != nil {
			labels := make(map[string]string, len(c.Labels))
			for k, v := range c.Labels {
				labels[k] = v
			}
			c.Labels = labels
		}
		kb.crops = append(kb.crops, &c)
		kb.cropByKey[cropKey(c.Name)] = &c
	}
	return kb, nil
}

func deriveStatus(f *models.Facility) models.Status {
	if f.AvailableCapacity > 0 {
		return models.StatusAvailable
	}
	return models.StatusUnavailable
}

func cropKey(name string) string {
	return utils.Normalize(name)
}

// Snapshot returns kb itself so a fixed knowledge base can stand in for a Store.
func (kb *KnowledgeBase) Snapshot() *KnowledgeBase {
	return kb
}

// Version returns the catalog version label.
func (kb *KnowledgeBase) Version() string {
	return kb.version
}

// LookupCropProfile returns the profile whose name equals cropName, ignoring case and
// surrounding whitespace. There is no partial or fuzzy matching.
func (kb *KnowledgeBase) LookupCropProfile(cropName string) (*models.CropProfile, bool) {
	c, ok := kb.cropByKey[cropKey(cropName)]
	return c, ok
}

// Facilities returns all facilities in catalog order.
func (kb *KnowledgeBase) Facilities() []*models.Facility {
	return append([]*models.Facility(nil), kb.facilities...)
}

// Facility returns the facility with the given id.
func (kb *KnowledgeBase) Facility(id string) (*models.Facility, bool) {
	f, ok := kb.byID[id]
	return f, ok
}

// Crops returns all crop profiles in catalog order.
func (kb *KnowledgeBase) Crops() []*models.CropProfile {
	return append([]*models.CropProfile(nil), kb.crops...)
}

// CropNames returns the crop profile names in catalog order.
func (kb *KnowledgeBase) CropNames() []string {
	names := make([]string, len(kb.crops))
	for i, c := range kb.crops {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of facilities.
func (kb *KnowledgeBase) Len() int {
	return len(kb.facilities)
}
