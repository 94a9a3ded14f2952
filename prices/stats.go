package prices

import "sort"

// Mean returns the arithmetic mean of all totals. An empty series
// reports the reference price so that a home without today-data still
// gets a sane average.
func Mean(s Series, reference float64) float64 {
	if len(s) == 0 {
		return reference
	}
	sum := 0.0
	for _, p := range s {
		sum += p.Total
	}
	return sum / float64(len(s))
}

func Min(s Series, reference float64) float64 {
	if len(s) == 0 {
		return reference
	}
	min := s[0].Total
	for _, p := range s[1:] {
		if p.Total < min {
			min = p.Total
		}
	}
	return min
}

func Max(s Series, reference float64) float64 {
	if len(s) == 0 {
		return reference
	}
	max := s[0].Total
	for _, p := range s[1:] {
		if p.Total > max {
			max = p.Total
		}
	}
	return max
}

// Rank returns the 1-based position of reference in the ascending sort
// of the series totals (1 = cheapest). When reference is not present
// exactly, the first position with a price >= reference is used, else
// the series length. An empty series ranks 1.
func Rank(reference float64, s Series) int {
	if len(s) == 0 {
		return 1
	}
	totals := s.Totals()
	sort.Float64s(totals)
	for i, price := range totals {
		if reference == price {
			return i + 1
		}
	}
	for i, price := range totals {
		if reference <= price {
			return i + 1
		}
	}
	return len(totals)
}

// Percentile converts a rank into 0-100 (lower = cheaper).
// A zero-length series reports the neutral 50.
func Percentile(rank, seriesLength int) float64 {
	if seriesLength == 0 {
		return 50
	}
	return float64(rank) / float64(seriesLength) * 100
}

// Deviation returns how far reference sits from mean, absolute and in
// percent of the mean. A non-positive mean reports percent 0.
func Deviation(reference, mean float64) (absolute, percent float64) {
	absolute = reference - mean
	if mean > 0 {
		percent = absolute / mean * 100
	}
	return absolute, percent
}
