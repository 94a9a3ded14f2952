package prices

import (
	"github.com/angas/tibberwatch-go/hours"
)

// FilterBand returns the points whose clock time falls inside the
// daily band, in the original order.
func FilterBand(s Series, band hours.Band) Series {
	filtered := make(Series, 0, len(s))
	for _, p := range s {
		if band.Contains(hours.ClockOf(p.StartsAt)) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// CheapestInBand returns the n cheapest points inside the daily clock
// band, price ascending. A whole-day band, or a band that matches no
// point at all, falls back to the full series.
func CheapestInBand(s Series, band hours.Band, n int) Series {
	candidates := s
	if !band.IsWholeDay() {
		if filtered := FilterBand(s, band); len(filtered) > 0 {
			candidates = filtered
		}
	}
	return CheapestHours(candidates, n)
}
