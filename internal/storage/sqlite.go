package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/coldfinder/internal/models"
)

// SQLiteCatalog implements CatalogSource using SQLite.
type SQLiteCatalog struct {
	db *sql.DB
}

var _ CatalogSource = (*SQLiteCatalog)(nil)

// NewSQLiteCatalog opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteCatalog{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalog_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS facilities (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		area TEXT NOT NULL,
		supported_crops TEXT NOT NULL,
		temp_min REAL NOT NULL,
		temp_max REAL NOT NULL,
		total_capacity REAL NOT NULL,
		available_capacity REAL NOT NULL,
		cost_per_kg REAL NOT NULL,
		contact TEXT,
		status TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_facilities_position ON facilities(position);

	CREATE TABLE IF NOT EXISTS crops (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		ideal_temperature REAL NOT NULL,
		labels TEXT
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Load returns the stored catalog.
func (s *SQLiteCatalog) Load(ctx context.Context) (*CatalogData, error) {
	data := &CatalogData{}
	err := s.db.QueryRowContext(ctx, `SELECT value FROM catalog_meta WHERE key = 'version'`).Scan(&data.Version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read catalog version: %w", err)
	}

	facilities, err := s.loadFacilities(ctx)
	if err != nil {
		return nil, err
	}
	data.Facilities = facilities

	crops, err := s.loadCrops(ctx)
	if err != nil {
		return nil, err
	}
	data.Crops = crops
	return data, nil
}

func (s *SQLiteCatalog) loadFacilities(ctx context.Context) ([]models.Facility, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, lat, lon, area, supported_crops, temp_min, temp_max,
		        total_capacity, available_capacity, cost_per_kg, contact, status
		 FROM facilities ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query facilities: %w", err)
	}
	defer rows.Close()

	var out []models.Facility
	for rows.Next() {
		var (
			f                  models.Facility
			nameJSON, cropJSON string
			contact, status    sql.NullString
		)
		if err := rows.Scan(&f.ID, &nameJSON, &f.Location.Lat, &f.Location.Lon, &f.Location.Name,
			&cropJSON, &f.TempRange.Min, &f.TempRange.Max, &f.TotalCapacity, &f.AvailableCapacity,
			&f.CostPerKg, &contact, &status); err != nil {
			return nil, fmt.Errorf("failed to scan facility: %w", err)
		}
		if err := json.Unmarshal([]byte(nameJSON), &f.Name); err != nil {
			return nil, fmt.Errorf("facility %s: failed to unmarshal name: %w", f.ID, err)
		}
		if err := json.Unmarshal([]byte(cropJSON), &f.SupportedCrops); err != nil {
			return nil, fmt.Errorf("facility %s: failed to unmarshal supported crops: %w", f.ID, err)
		}
		f.Contact = contact.String
		if f.Status, err = models.ParseStatus(status.String); err != nil {
			return nil, fmt.Errorf("facility %s: %w", f.ID, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteCatalog) loadCrops(ctx context.Context) ([]models.CropProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, ideal_temperature, labels FROM crops ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query crops: %w", err)
	}
	defer rows.Close()

	var out []models.CropProfile
	for rows.Next() {
		var (
			c      models.CropProfile
			labels sql.NullString
		)
		if err := rows.Scan(&c.Name, &c.IdealTemperature, &labels); err != nil {
			return nil, fmt.Errorf("failed to scan crop: %w", err)
		}
		if labels.Valid && labels.String != "" {
			if err := json.Unmarshal([]byte(labels.String), &c.Labels); err != nil {
				return nil, fmt.Errorf("crop %s: failed to unmarshal labels: %w", c.Name, err)
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Import replaces the stored catalog with data.
func (s *SQLiteCatalog) Import(ctx context.Context, data *CatalogData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM facilities`, `DELETE FROM crops`, `DELETE FROM catalog_meta`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalog_meta (key, value) VALUES ('version', ?)`, data.Version); err != nil {
		return fmt.Errorf("failed to store version: %w", err)
	}

	for i, f := range data.Facilities {
		nameJSON, err := json.Marshal(f.Name)
		if err != nil {
			return fmt.Errorf("facility %s: failed to marshal name: %w", f.ID, err)
		}
		cropJSON, err := json.Marshal(f.SupportedCrops)
		if err != nil {
			return fmt.Errorf("facility %s: failed to marshal supported crops: %w", f.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO facilities (id, position, name, lat, lon, area, supported_crops, temp_min, temp_max,
			                         total_capacity, available_capacity, cost_per_kg, contact, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, i, string(nameJSON), f.Location.Lat, f.Location.Lon, f.Location.Name, string(cropJSON),
			f.TempRange.Min, f.TempRange.Max, f.TotalCapacity, f.AvailableCapacity, f.CostPerKg,
			f.Contact, string(f.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to insert facility %s: %w", f.ID, err)
		}
	}

	for i, c := range data.Crops {
		var labels sql.NullString
		if len(c.Labels) > 0 {
			b, err := json.Marshal(c.Labels)
			if err != nil {
				return fmt.Errorf("crop %s: failed to marshal labels: %w", c.Name, err)
			}
			labels = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO crops (name, position, ideal_temperature, labels) VALUES (?, ?, ?, ?)`,
			c.Name, i, c.IdealTemperature, labels); err != nil {
			return fmt.Errorf("failed to insert crop %s: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

// CountFacilities returns the number of stored facilities.
func (s *SQLiteCatalog) CountFacilities(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM facilities`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteCatalog) Close() error {
	return s.db.Close()
}
