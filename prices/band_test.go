package prices

import (
	"testing"
	"time"

	"github.com/angas/tibberwatch-go/hours"
)

func mustBand(t *testing.T, start, end string) hours.Band {
	t.Helper()
	band, err := hours.ParseBand(start, end)
	if err != nil {
		t.Fatalf("ParseBand(%s, %s): %v", start, end, err)
	}
	return band
}

func TestFilterBandWrapsMidnight(t *testing.T) {
	totals := make([]float64, 24)
	s := hourlySeries(testDay, totals...)

	band := mustBand(t, "17:00", "07:00")
	filtered := FilterBand(s, band)

	inBand := make(map[int]bool)
	for _, p := range filtered {
		inBand[p.StartsAt.Hour()] = true
	}

	for _, h := range []int{23, 3, 17, 0, 6} {
		if !inBand[h] {
			t.Errorf("hour %02d:00 should be inside 17:00-07:00", h)
		}
	}
	for _, h := range []int{12, 7, 16} {
		if inBand[h] {
			t.Errorf("hour %02d:00 should be outside 17:00-07:00", h)
		}
	}
}

func TestCheapestInBand(t *testing.T) {
	totals := make([]float64, 24)
	for i := range totals {
		totals[i] = 1.0
	}
	totals[2] = 0.1  // 02:00, inside 17:00-07:00
	totals[12] = 0.2 // 12:00, outside
	totals[18] = 0.3 // 18:00, inside
	s := hourlySeries(testDay, totals...)

	got := CheapestInBand(s, mustBand(t, "17:00", "07:00"), 2)
	if len(got) != 2 {
		t.Fatalf("got %d points, wanted 2", len(got))
	}
	if !almostEqual(got[0].Total, 0.1) || !almostEqual(got[1].Total, 0.3) {
		t.Errorf("expected in-band prices 0.1 and 0.3, got %f and %f", got[0].Total, got[1].Total)
	}
}

func TestCheapestInBandFallsBackToFullSeries(t *testing.T) {
	// All points lie outside the band.
	s := hourlySeries(testDay.Add(10*time.Hour), 0.4, 0.1, 0.3) // 10:00-12:00

	band := mustBand(t, "20:00", "22:00")
	got := CheapestInBand(s, band, 2)
	want := CheapestHours(s, 2)

	if len(got) != len(want) {
		t.Fatalf("got %d points, wanted %d", len(got), len(want))
	}
	for i := range got {
		if !almostEqual(got[i].Total, want[i].Total) {
			t.Errorf("fallback result differs from unfiltered cheapest at %d", i)
		}
	}
}

func TestCheapestInBandWholeDayBandIsUnfiltered(t *testing.T) {
	s := hourlySeries(testDay, 0.4, 0.1, 0.3)

	got := CheapestInBand(s, mustBand(t, "00:00", "23:59"), 1)
	if len(got) != 1 || !almostEqual(got[0].Total, 0.1) {
		t.Errorf("whole-day band should use the full series, got %+v", got)
	}
}
