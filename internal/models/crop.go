package models

// CropProfile holds the ideal storage temperature for a crop.
type CropProfile struct {
	Name             string            `json:"name" yaml:"name"`
	IdealTemperature float64           `json:"idealTemperature" yaml:"idealTemperature"`
	Labels           map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Label returns the localized crop name, or Name when no label exists for locale.
func (c *CropProfile) Label(locale string) string {
	if v, ok := c.Labels[locale]; ok && v != "" {
		return v
	}
	return c.Name
}
