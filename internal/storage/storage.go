// Package storage defines persistence for the facility catalog.
package storage

import (
	"context"

	"github.com/hyperjump/coldfinder/internal/models"
)

// CatalogData is the raw, unvalidated content of a stored catalog.
type CatalogData struct {
	Version    string
	Facilities []models.Facility
	Crops      []models.CropProfile
}

// CatalogSource loads and replaces a stored catalog.
type CatalogSource interface {
	// Load returns the stored catalog with facilities and crops in their stored order.
	Load(ctx context.Context) (*CatalogData, error)
	// Import replaces the stored catalog with data in a single transaction.
	Import(ctx context.Context, data *CatalogData) error
	Close() error
}
