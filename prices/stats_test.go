package prices

import (
	"math"
	"testing"
	"time"
)

func hourlySeries(day time.Time, totals ...float64) Series {
	s := make(Series, len(totals))
	for i, total := range totals {
		s[i] = Point{StartsAt: day.Add(time.Duration(i) * time.Hour), Total: total}
	}
	return s
}

var testDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func TestMeanEmptySeriesUsesReference(t *testing.T) {
	if m := Mean(Series{}, 0.42); !almostEqual(m, 0.42) {
		t.Errorf("got mean %f, wanted reference 0.42", m)
	}
}

func TestMinMeanMaxOrdering(t *testing.T) {
	series := []Series{
		hourlySeries(testDay, 1.0, 2.0, 3.0),
		hourlySeries(testDay, 0.5),
		hourlySeries(testDay, 3.0, 3.0, 3.0, 3.0),
		hourlySeries(testDay, -1.0, 0.0, 5.5, 2.2),
	}

	for _, s := range series {
		min, mean, max := Min(s, 0), Mean(s, 0), Max(s, 0)
		if min > mean || mean > max {
			t.Errorf("expected min <= mean <= max, got %f, %f, %f", min, mean, max)
		}
	}
}

func TestRank(t *testing.T) {
	s := hourlySeries(testDay, 0.30, 0.10, 0.20, 0.40)

	tests := []struct {
		name      string
		reference float64
		expected  int
	}{
		{name: "cheapest", reference: 0.10, expected: 1},
		{name: "most expensive", reference: 0.40, expected: 4},
		{name: "exact middle match", reference: 0.20, expected: 2},
		{name: "between points", reference: 0.25, expected: 3},
		{name: "below all", reference: 0.05, expected: 1},
		{name: "above all", reference: 0.50, expected: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := Rank(tt.reference, s); r != tt.expected {
				t.Errorf("Rank(%f) expected %d, got %d", tt.reference, tt.expected, r)
			}
		})
	}

	if r := Rank(0.2, Series{}); r != 1 {
		t.Errorf("empty series should rank 1, got %d", r)
	}
}

func TestRankMonotonicWhenCheaperPointAdded(t *testing.T) {
	base := hourlySeries(testDay, 0.30, 0.10, 0.20, 0.40)
	reference := 0.25

	before := Rank(reference, base)
	withCheaper := append(base.SortedByTime(), Point{
		StartsAt: testDay.Add(5 * time.Hour),
		Total:    0.01,
	})
	after := Rank(reference, withCheaper)

	if after < before {
		t.Errorf("rank decreased from %d to %d after adding a cheaper point", before, after)
	}
}

func TestPercentile(t *testing.T) {
	if p := Percentile(6, 24); !almostEqual(p, 25.0) {
		t.Errorf("got percentile %f, wanted 25", p)
	}
	if p := Percentile(0, 0); !almostEqual(p, 50.0) {
		t.Errorf("empty series should report 50, got %f", p)
	}
}

func TestDeviation(t *testing.T) {
	abs, pct := Deviation(0.25, 0.20)
	if !almostEqual(abs, 0.05) {
		t.Errorf("got absolute deviation %f, wanted 0.05", abs)
	}
	if !almostEqual(pct, 25.0) {
		t.Errorf("got percent deviation %f, wanted 25", pct)
	}

	_, pct = Deviation(0.25, 0)
	if !almostEqual(pct, 0) {
		t.Errorf("zero mean should report percent 0, got %f", pct)
	}
}

func TestStatisticsAreIdempotent(t *testing.T) {
	s := hourlySeries(testDay, 0.31, 0.15, 0.27, 0.44, 0.09)

	for i := 0; i < 2; i++ {
		if !almostEqual(Mean(s, 0), Mean(s, 0)) || Rank(0.27, s) != Rank(0.27, s) {
			t.Fatal("repeated calls with identical input gave different results")
		}
	}
}

func almostEqual(f1 float64, f2 float64) bool {
	return math.Abs(f1-f2) < 1e-9
}
