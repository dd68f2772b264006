package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/coldfinder/internal/models"
)

// Sheet names used by spreadsheet catalogs.
const (
	SheetFacilities = "Facilities"
	SheetCrops      = "Crops"
	SheetMeta       = "Meta"
)

// ReadXLSX reads a spreadsheet catalog. The Facilities and Crops sheets start with a
// header row; columns are matched by header name, case-insensitively. Facility names use
// name_<locale> columns and crop labels use label_<locale> columns. Supported crops are
// comma-separated. An optional Meta sheet holds "version" in A1 and its value in B1.
func ReadXLSX(path string) (*Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	doc := &Document{}
	if v, err := f.GetCellValue(SheetMeta, "B1"); err == nil {
		doc.Version = strings.TrimSpace(v)
	}

	rows, err := f.GetRows(SheetFacilities)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", SheetFacilities, err)
	}
	for i, rec := range records(rows) {
		fac, err := facilityFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetFacilities, i+2, err)
		}
		doc.Facilities = append(doc.Facilities, fac)
	}

	rows, err = f.GetRows(SheetCrops)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", SheetCrops, err)
	}
	for i, rec := range records(rows) {
		crop, err := cropFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetCrops, i+2, err)
		}
		doc.Crops = append(doc.Crops, crop)
	}
	return doc, nil
}

// records turns sheet rows into header-keyed maps, skipping blank rows.
func records(rows [][]string) []map[string]string {
	if len(rows) == 0 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	var out []map[string]string
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		blank := true
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				blank = false
			}
			rec[header[i]] = cell
		}
		if !blank {
			out = append(out, rec)
		}
	}
	return out
}

func facilityFromRecord(rec map[string]string) (models.Facility, error) {
	var (
		f   models.Facility
		err error
	)
	f.ID = rec["id"]
	f.Name = prefixed(rec, "name_")
	f.Location.Name = rec["area"]
	f.Contact = rec["contact"]
	for _, c := range strings.Split(rec["supported_crops"], ",") {
		if c = strings.TrimSpace(c); c != "" {
			f.SupportedCrops = append(f.SupportedCrops, c)
		}
	}
	numbers := []struct {
		col string
		dst *float64
	}{
		{"lat", &f.Location.Lat},
		{"lon", &f.Location.Lon},
		{"temp_min", &f.TempRange.Min},
		{"temp_max", &f.TempRange.Max},
		{"total_capacity", &f.TotalCapacity},
		{"available_capacity", &f.AvailableCapacity},
		{"cost_per_kg", &f.CostPerKg},
	}
	for _, n := range numbers {
		if *n.dst, err = parseNumber(rec, n.col); err != nil {
			return f, err
		}
	}
	if f.Status, err = models.ParseStatus(rec["status"]); err != nil {
		return f, err
	}
	return f, nil
}

func cropFromRecord(rec map[string]string) (models.CropProfile, error) {
	c := models.CropProfile{Name: rec["name"]}
	t, err := parseNumber(rec, "ideal_temperature")
	if err != nil {
		return c, err
	}
	c.IdealTemperature = t
	if labels := prefixed(rec, "label_"); len(labels) > 0 {
		c.Labels = labels
	}
	return c, nil
}

func parseNumber(rec map[string]string, col string) (float64, error) {
	v := rec[col]
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %q is not a number", col, v)
	}
	return n, nil
}

func prefixed(rec map[string]string, prefix string) map[string]string {
	out := make(map[string]string)
	for k, v := range rec {
		if locale, ok := strings.CutPrefix(k, prefix); ok && locale != "" && v != "" {
			out[locale] = v
		}
	}
	return out
}
