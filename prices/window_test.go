package prices

import (
	"math/rand"
	"testing"
	"time"

	"github.com/angas/tibberwatch-go/hours"
)

func TestBestWindowDegenerateInputs(t *testing.T) {
	s := hourlySeries(testDay, 1.0, 2.0)

	tests := []struct {
		name     string
		duration int
		series   Series
	}{
		{name: "empty series", duration: 3, series: Series{}},
		{name: "zero duration", duration: 0, series: s},
		{name: "negative duration", duration: -1, series: s},
		{name: "series shorter than duration", duration: 3, series: s},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := BestWindow(tt.duration, tt.series, nil, nil)
			if !w.IsZero() {
				t.Errorf("expected no window, got %+v", w)
			}
			if w.AveragePrice != 0 || len(w.Hours) != 0 {
				t.Errorf("no-window result should be empty, got %+v", w)
			}
		})
	}
}

func TestBestWindowNinePointSeries(t *testing.T) {
	s := hourlySeries(testDay, 1.0, 1.0, 1.0, 2.0, 2.0, 2.0, 0.5, 0.5, 0.5)

	w := BestWindow(3, s, nil, nil)
	if w.IsZero() {
		t.Fatal("expected a window")
	}
	if !w.Start.Equal(testDay.Add(6 * time.Hour)) {
		t.Errorf("got window start %v, wanted hour 6", w.Start)
	}
	if !w.End.Equal(testDay.Add(9 * time.Hour)) {
		t.Errorf("got window end %v, wanted hour 9", w.End)
	}
	if !almostEqual(w.AveragePrice, 0.5) {
		t.Errorf("got average %f, wanted 0.5", w.AveragePrice)
	}
	if len(w.Hours) != 3 {
		t.Errorf("got %d hours, wanted 3", len(w.Hours))
	}
}

func TestBestWindowBeatsBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	totals := make([]float64, 24)
	for i := range totals {
		totals[i] = 0.05 + rnd.Float64()
	}
	s := hourlySeries(testDay, totals...)

	for _, duration := range []int{1, 3, 5, 8} {
		w := BestWindow(duration, s, nil, nil)
		if w.IsZero() {
			t.Fatalf("expected a window for duration %d", duration)
		}
		for i := 0; i+duration <= len(s); i++ {
			avg := Mean(s[i:i+duration], 0)
			if avg < w.AveragePrice && !almostEqual(avg, w.AveragePrice) {
				t.Errorf("duration %d: window starting at %d has average %f, beats chosen %f",
					duration, i, avg, w.AveragePrice)
			}
		}
	}
}

func TestBestWindowTieBreaksEarliest(t *testing.T) {
	s := hourlySeries(testDay, 0.5, 0.5, 1.0, 0.5, 0.5)

	w := BestWindow(2, s, nil, nil)
	if !w.Start.Equal(testDay) {
		t.Errorf("tie should go to the earliest window, got start %v", w.Start)
	}
}

func TestBestWindowClockConstraints(t *testing.T) {
	// Cheapest hours lie at 02:00-04:00, but the window must start at
	// or after 12:00.
	totals := make([]float64, 24)
	for i := range totals {
		totals[i] = 1.0
	}
	totals[2], totals[3] = 0.1, 0.1
	totals[14], totals[15] = 0.4, 0.4
	s := hourlySeries(testDay, totals...)

	startAfter := hours.MustParseClock("12:00")
	w := BestWindow(2, s, &startAfter, nil)
	if !w.Start.Equal(testDay.Add(14 * time.Hour)) {
		t.Errorf("got window start %v, wanted hour 14", w.Start)
	}

	endBefore := hours.MustParseClock("10:00")
	w = BestWindow(2, s, nil, &endBefore)
	if !w.Start.Equal(testDay.Add(2 * time.Hour)) {
		t.Errorf("got window start %v, wanted hour 2", w.Start)
	}
}

func TestBestWindowConstraintsEliminateAllFallsBack(t *testing.T) {
	s := hourlySeries(testDay.Add(8*time.Hour), 0.3, 0.2, 0.1) // 08:00-10:00

	startAfter := hours.MustParseClock("22:00")
	w := BestWindow(2, s, &startAfter, nil)
	if w.IsZero() {
		t.Fatal("constraints are a preference, expected the fallback window")
	}
	if !w.Start.Equal(testDay.Add(8 * time.Hour)) {
		t.Errorf("fallback should be the first window, got start %v", w.Start)
	}
	if !almostEqual(w.AveragePrice, 0.25) {
		t.Errorf("got average %f, wanted 0.25", w.AveragePrice)
	}
}

func TestBestWindowSortsUnorderedInput(t *testing.T) {
	shuffled := Series{
		{StartsAt: testDay.Add(4 * time.Hour), Total: 0.1},
		{StartsAt: testDay.Add(0 * time.Hour), Total: 1.0},
		{StartsAt: testDay.Add(3 * time.Hour), Total: 0.1},
		{StartsAt: testDay.Add(1 * time.Hour), Total: 1.0},
		{StartsAt: testDay.Add(2 * time.Hour), Total: 1.0},
	}

	w := BestWindow(2, shuffled, nil, nil)
	if !w.Start.Equal(testDay.Add(3 * time.Hour)) {
		t.Errorf("got window start %v, wanted hour 3", w.Start)
	}
	if !almostEqual(w.AveragePrice, 0.1) {
		t.Errorf("got average %f, wanted 0.1", w.AveragePrice)
	}
}

func TestNextCheapWindow(t *testing.T) {
	today := hourlySeries(testDay, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.1, 0.5)
	tomorrow := hourlySeries(testDay.AddDate(0, 0, 1), 0.5, 0.05)

	// Threshold index is 10/4 = 2, so the threshold is the 2nd
	// cheapest price of the combined series (0.1).
	now := testDay.Add(3 * time.Hour)
	next := NextCheapWindow(today, tomorrow, now)
	if next == nil {
		t.Fatal("expected a next cheap window")
	}
	if !next.Start.Equal(testDay.Add(6 * time.Hour)) {
		t.Errorf("got start %v, wanted hour 6", next.Start)
	}
	if !next.End.Equal(testDay.Add(7 * time.Hour)) {
		t.Errorf("end should be start + 1h, got %v", next.End)
	}

	// Past the last cheap hour of today, the tomorrow one is next.
	now = testDay.Add(7 * time.Hour)
	next = NextCheapWindow(today, tomorrow, now)
	if next == nil || !next.Start.Equal(testDay.AddDate(0, 0, 1).Add(time.Hour)) {
		t.Errorf("expected tomorrow 01:00, got %+v", next)
	}
}

func TestNextCheapWindowNone(t *testing.T) {
	if next := NextCheapWindow(Series{}, Series{}, testDay); next != nil {
		t.Errorf("empty today should give no window, got %+v", next)
	}

	today := hourlySeries(testDay, 0.1, 0.5, 0.5, 0.5)
	// Only the 00:00 point qualifies and it is already in the past.
	if next := NextCheapWindow(today, nil, testDay.Add(12*time.Hour)); next != nil {
		t.Errorf("expected no future cheap hour, got %+v", next)
	}
}

func TestCheapestAndMostExpensiveHours(t *testing.T) {
	s := hourlySeries(testDay, 0.4, 0.1, 0.3, 0.2, 0.6, 0.5)

	cheapest := CheapestHours(s, 3)
	if len(cheapest) != 3 {
		t.Fatalf("got %d cheapest hours, wanted 3", len(cheapest))
	}
	for i, expected := range []float64{0.1, 0.2, 0.3} {
		if !almostEqual(cheapest[i].Total, expected) {
			t.Errorf("cheapest[%d] expected %f, got %f", i, expected, cheapest[i].Total)
		}
	}

	expensive := MostExpensiveHours(s, 3)
	if len(expensive) != 3 {
		t.Fatalf("got %d expensive hours, wanted 3", len(expensive))
	}
	// Ascending order sliced from the tail: the first entry is the
	// least extreme of the expensive set.
	for i, expected := range []float64{0.4, 0.5, 0.6} {
		if !almostEqual(expensive[i].Total, expected) {
			t.Errorf("expensive[%d] expected %f, got %f", i, expected, expensive[i].Total)
		}
	}

	// Disjoint when 2n <= series length.
	for _, c := range cheapest {
		for _, e := range expensive {
			if c.StartsAt.Equal(e.StartsAt) {
				t.Errorf("cheapest and most expensive sets overlap at %v", c.StartsAt)
			}
		}
	}

	if got := CheapestHours(s, 10); len(got) != len(s) {
		t.Errorf("n beyond series length should return the full series, got %d", len(got))
	}
}
