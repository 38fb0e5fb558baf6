package domain

import (
	"fmt"
	"math"
)

// Placeholder is the glyph rendered for any missing value.
const Placeholder = "—"

// FormatTemp renders an absolute temperature rounded to the whole degree,
// e.g. "12°C".
func FormatTemp(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf("%d°C", int(math.Round(*v)))
}

// FormatTempDelta renders a signed temperature delta rounded to the whole
// degree, e.g. "+3°C". The sign prefix follows the rounded value.
func FormatTempDelta(d *float64) string {
	if d == nil {
		return Placeholder
	}
	r := int(math.Round(*d))
	if r > 0 {
		return fmt.Sprintf("+%d°C", r)
	}
	return fmt.Sprintf("%d°C", r)
}

// FormatWhole renders a value rounded to the nearest whole unit, used for
// absolute wind speeds.
func FormatWhole(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf("%d", int(math.Round(*v)))
}

// FormatOneDecimal renders a value with one decimal place, used for absolute
// precipitation amounts.
func FormatOneDecimal(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf("%.1f", *v)
}

// FormatSignedDelta renders a signed delta with one decimal place and a unit
// suffix, e.g. "+3.2 km/h".
func FormatSignedDelta(d *float64, suffix string) string {
	if d == nil {
		return Placeholder
	}
	if *d > 0 {
		return fmt.Sprintf("+%.1f%s", *d, suffix)
	}
	return fmt.Sprintf("%.1f%s", *d, suffix)
}
