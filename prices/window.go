package prices

import (
	"sort"
	"time"

	"github.com/angas/tibberwatch-go/hours"
)

// WindowHour is one hour inside a computed window.
type WindowHour struct {
	Start time.Time `json:"start"`
	Price float64   `json:"price"`
	Level Level     `json:"price_level"`
}

// Window is the cheapest contiguous block of a given duration.
// A zero Window (no hours) means no window could be computed.
type Window struct {
	Hours        []WindowHour `json:"hours"`
	Start        time.Time    `json:"window_start"`
	End          time.Time    `json:"window_end"`
	AveragePrice float64      `json:"average_price"`
}

func (w Window) IsZero() bool {
	return len(w.Hours) == 0
}

// Contains reports whether t falls inside [Start, End).
func (w Window) Contains(t time.Time) bool {
	if w.IsZero() {
		return false
	}
	return !t.Before(w.Start) && t.Before(w.End)
}

// BestWindow finds the contiguous run of durationHours points with the
// lowest average total price, scanning the series in chronological
// order. Candidates never wrap across the series boundary. Optional
// clock-time bounds exclude candidates starting before startAfter or
// ending at/after endBefore; when the bounds eliminate every candidate
// the first unconstrained window is used instead, so that some window
// always exists when price data does. Ties go to the earliest start.
func BestWindow(durationHours int, series Series, startAfter, endBefore *hours.Clock) Window {
	if len(series) == 0 || durationHours <= 0 || len(series) < durationHours {
		return Window{}
	}

	sorted := series.SortedByTime()

	bestIdx := -1
	bestAvg := 0.0
	for i := 0; i+durationHours <= len(sorted); i++ {
		candidate := sorted[i : i+durationHours]

		if startAfter != nil && hours.ClockOf(candidate[0].StartsAt) < *startAfter {
			continue
		}
		if endBefore != nil && hours.ClockOf(candidate[durationHours-1].StartsAt) >= *endBefore {
			continue
		}

		avg := Mean(Series(candidate), 0)
		if bestIdx < 0 || avg < bestAvg {
			bestIdx = i
			bestAvg = avg
		}
	}

	// Constraints are a preference, not a hard requirement.
	if bestIdx < 0 {
		bestIdx = 0
		bestAvg = Mean(sorted[:durationHours], 0)
	}

	window := sorted[bestIdx : bestIdx+durationHours]
	windowHours := make([]WindowHour, durationHours)
	for i, p := range window {
		windowHours[i] = WindowHour{Start: p.StartsAt, Price: p.Total, Level: p.Level.OrNormal()}
	}

	start := window[0].StartsAt
	return Window{
		Hours:        windowHours,
		Start:        start,
		End:          start.Add(time.Duration(durationHours) * time.Hour),
		AveragePrice: bestAvg,
	}
}

// NextWindow is the first upcoming hour whose price qualifies as cheap.
type NextWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Price float64   `json:"mean_price"`
	Level Level     `json:"price_level"`
}

// NextCheapWindow looks ahead over today+tomorrow for the first hour
// strictly after now whose price is at or below the 25th-percentile
// price of the combined series. Returns nil when today is empty or no
// future hour qualifies.
func NextCheapWindow(today, tomorrow Series, now time.Time) *NextWindow {
	if len(today) == 0 {
		return nil
	}

	combined := today.Concat(tomorrow)

	totals := combined.Totals()
	sort.Float64s(totals)
	thresholdIdx := len(totals) / 4
	if thresholdIdx < 1 {
		thresholdIdx = 1
	}
	cheapThreshold := totals[thresholdIdx-1]

	for _, p := range combined.SortedByTime() {
		if !p.StartsAt.After(now) {
			continue
		}
		if p.Total <= cheapThreshold {
			return &NextWindow{
				Start: p.StartsAt,
				End:   p.StartsAt.Add(time.Hour),
				Price: p.Total,
				Level: p.Level.OrNormal(),
			}
		}
	}

	return nil
}

// CheapestHours returns the n cheapest points sorted by price
// ascending, or fewer when the series is smaller.
func CheapestHours(s Series, n int) Series {
	if n < 0 {
		n = 0
	}
	sorted := s.SortedByPrice()
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// MostExpensiveHours returns the n most expensive points, kept in the
// same ascending price order (the first entry is the least extreme of
// the expensive set).
func MostExpensiveHours(s Series, n int) Series {
	if n < 0 {
		n = 0
	}
	sorted := s.SortedByPrice()
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}
