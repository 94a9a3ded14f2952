package prices

import (
	"sort"
	"time"
)

// Level is the upstream-supplied coarse price bucket for one hour.
type Level string

const (
	LevelVeryCheap     Level = "VERY_CHEAP"
	LevelCheap         Level = "CHEAP"
	LevelNormal        Level = "NORMAL"
	LevelExpensive     Level = "EXPENSIVE"
	LevelVeryExpensive Level = "VERY_EXPENSIVE"
)

// OrNormal maps an absent or unknown level to NORMAL.
func (l Level) OrNormal() Level {
	switch l {
	case LevelVeryCheap, LevelCheap, LevelNormal, LevelExpensive, LevelVeryExpensive:
		return l
	default:
		return LevelNormal
	}
}

// Point is one clock hour of price data. Immutable once fetched.
type Point struct {
	StartsAt time.Time `json:"startsAt"`
	Total    float64   `json:"total"`
	Energy   float64   `json:"energy"`
	Tax      float64   `json:"tax"`
	Level    Level     `json:"level"`
}

// Series is an ordered sequence of hourly points. Input order is not
// trusted; operations that depend on order sort a copy first.
type Series []Point

func (s Series) SortedByTime() Series {
	sorted := make(Series, len(s))
	copy(sorted, s)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartsAt.Before(sorted[j].StartsAt)
	})
	return sorted
}

func (s Series) SortedByPrice() Series {
	sorted := make(Series, len(s))
	copy(sorted, s)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total < sorted[j].Total
	})
	return sorted
}

func (s Series) Totals() []float64 {
	totals := make([]float64, len(s))
	for i, p := range s {
		totals[i] = p.Total
	}
	return totals
}

// Concat returns a new series with the points of both series, in order.
func (s Series) Concat(other Series) Series {
	combined := make(Series, 0, len(s)+len(other))
	combined = append(combined, s...)
	combined = append(combined, other...)
	return combined
}
