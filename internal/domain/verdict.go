package domain

import "strings"

// TempVerdict is the qualitative temperature comparison for one hour.
type TempVerdict string

const (
	VerdictWarmer TempVerdict = "Warmer"
	VerdictColder TempVerdict = "Colder"
	VerdictSame   TempVerdict = "About the same"
	VerdictNone   TempVerdict = ""
)

// tempThreshold is the half-width of the "about the same" band in °C.
const tempThreshold = 0.5

// ClassifyTemp maps a temperature delta to its verdict. Boundaries are
// inclusive to Same: exactly ±0.5 still reads "About the same". A nil delta
// yields no verdict text.
func ClassifyTemp(delta *float64) TempVerdict {
	if delta == nil {
		return VerdictNone
	}
	switch {
	case *delta > tempThreshold:
		return VerdictWarmer
	case *delta < -tempThreshold:
		return VerdictColder
	default:
		return VerdictSame
	}
}

// ClassifyWind maps a wind-speed delta in km/h to one of seven ordered
// phrases. A nil delta yields the empty phrase.
func ClassifyWind(delta *float64) string {
	if delta == nil {
		return ""
	}
	d := *delta
	switch {
	case d <= -18:
		return "much less wind"
	case d <= -8:
		return "less wind"
	case d <= -2:
		return "slightly less wind"
	case d < 2:
		return "about the same wind"
	case d < 8:
		return "slightly more wind"
	case d < 18:
		return "more wind"
	default:
		return "much more wind"
	}
}

// RealFeel combines the temperature verdict and the wind phrase into one
// display sentence, e.g. "Warmer, more wind". Missing parts are omitted.
func RealFeel(deltaTemp, deltaWind *float64) string {
	parts := make([]string, 0, 2)
	if t := ClassifyTemp(deltaTemp); t != VerdictNone {
		parts = append(parts, string(t))
	}
	if w := ClassifyWind(deltaWind); w != "" {
		parts = append(parts, w)
	}
	return strings.Join(parts, ", ")
}

// TempTrend classifies the sign of a temperature delta for display styling:
// "hot" for non-negative deltas, "cold" for negative ones, "" when absent.
func TempTrend(delta *float64) string {
	if delta == nil {
		return ""
	}
	if *delta >= 0 {
		return "hot"
	}
	return "cold"
}

// SignClass classifies the sign of a generic delta: "pos", "neg", or "" for
// nil and exact zero.
func SignClass(delta *float64) string {
	if delta == nil || *delta == 0 {
		return ""
	}
	if *delta > 0 {
		return "pos"
	}
	return "neg"
}
