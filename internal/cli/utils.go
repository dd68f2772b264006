// Package cli renders search results and catalog listings for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/coldfinder/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteSearchResults writes result to w in the given format. Facility names are shown
// in locale when the catalog has them.
func WriteSearchResults(w io.Writer, result *models.RankedResult, format OutputFormat, locale string) error {
	if format == OutputJSON {
		return writeJSON(w, result)
	}
	writeSearchResultsText(w, result, locale)
	return nil
}

func writeSearchResultsText(w io.Writer, result *models.RankedResult, locale string) {
	q := result.Query
	header := fmt.Sprintf("Found %d facilities for %q", len(result.Facilities), q.Crop)
	if q.Location != "" {
		header += fmt.Sprintf(" near %q", q.Location)
	}
	fmt.Fprintln(w, titleStyle.Render(header))
	meta := fmt.Sprintf("source: %s", result.Source)
	if result.CatalogVersion != "" {
		meta += fmt.Sprintf(" | catalog: %s", result.CatalogVersion)
	}
	if q.Quantity != "" {
		meta += fmt.Sprintf(" | quantity: %s", q.Quantity)
	}
	meta += fmt.Sprintf(" | %dms", result.QueryTime)
	fmt.Fprintln(w, mutedStyle.Render(meta))
	fmt.Fprintln(w)

	if result.Empty() {
		fmt.Fprintln(w, "No facilities match this crop and location.")
		if len(result.Suggestions) > 0 {
			fmt.Fprintln(w, hintStyle.Render("Did you mean: "+strings.Join(result.Suggestions, ", ")+"?"))
		}
		return
	}
	fmt.Fprintln(w, selectedBox.Render(facilityCard(result.Selected, 1, locale)))
	for i, f := range result.Facilities[1:] {
		fmt.Fprintln(w, facilityCard(f, i+2, locale))
		fmt.Fprintln(w)
	}
	if len(result.Suggestions) > 0 {
		fmt.Fprintln(w, hintStyle.Render("Known crops like this: "+strings.Join(result.Suggestions, ", ")))
	}
}

func facilityCard(f *models.Facility, rank int, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s %s\n", rank, nameStyle.Render(f.Name.In(locale)), mutedStyle.Render("("+f.ID+")"))
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("Status", renderStatus(f.EffectiveStatus()))
	location := f.Location.Name
	if f.Distance != nil {
		location += fmt.Sprintf(" (%.1f km)", *f.Distance)
	}
	row("Location", location)
	row("Crops", strings.Join(f.SupportedCrops, ", "))
	row("Temp", fmt.Sprintf("%g to %g °C", f.TempRange.Min, f.TempRange.Max))
	row("Capacity", fmt.Sprintf("%g / %g t free", f.AvailableCapacity, f.TotalCapacity))
	row("Cost", fmt.Sprintf("₹%.2f/kg", f.CostPerKg))
	if f.Contact != "" {
		row("Contact", f.Contact)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderStatus(s models.Status) string {
	if s == models.StatusAvailable {
		return availableStyle.Render(string(s))
	}
	return unavailableStyle.Render(string(s))
}

// WriteCrops writes the crop-temperature table to w.
func WriteCrops(w io.Writer, crops []*models.CropProfile, format OutputFormat, locale string) error {
	if format == OutputJSON {
		if crops == nil {
			crops = []*models.CropProfile{}
		}
		return writeJSON(w, crops)
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d crops", len(crops))))
	for _, c := range crops {
		label := c.Label(locale)
		if label != c.Name {
			label = fmt.Sprintf("%s (%s)", c.Name, label)
		}
		fmt.Fprintf(w, "%s%g °C\n", labelStyle.Width(32).Render(label), c.IdealTemperature)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(OutputText):
		return OutputText, nil
	case string(OutputJSON):
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}
