package coordinator

import (
	"errors"
	"time"

	"github.com/angas/tibberwatch-go/convert"
	"github.com/angas/tibberwatch-go/hours"
	"github.com/angas/tibberwatch-go/prices"
)

var (
	ErrNoData      = errors.New("no data available")
	ErrNoPriceData = errors.New("no price data available")
)

// BestWindowRequest parameterizes an ad-hoc best-window computation.
// An empty HomeID targets the account's first home.
type BestWindowRequest struct {
	HomeID          string
	DurationHours   int
	PowerKw         *float64
	StartAfter      *hours.Clock
	EndBefore       *hours.Clock
	IncludeTomorrow bool
}

type BestWindowResult struct {
	BestStartTime      time.Time           `json:"best_start_time"`
	BestEndTime        time.Time           `json:"best_end_time"`
	DurationHours      int                 `json:"duration_hours"`
	AveragePriceWindow float64             `json:"average_price_window"`
	TotalCost          *float64            `json:"total_cost,omitempty"`
	SavingsVsAverage   float64             `json:"savings_vs_average"`
	PriceBreakdown     []prices.WindowHour `json:"price_breakdown"`
}

// BestWindowFor computes the cheapest window for the given parameters
// over the published snapshot of one home.
func (c *Coordinator) BestWindowFor(req BestWindowRequest) (*BestWindowResult, error) {
	snapshot, err := c.snapshotFor(req.HomeID)
	if err != nil {
		return nil, err
	}

	series := snapshot.Today
	if req.IncludeTomorrow {
		series = series.Concat(snapshot.Tomorrow)
	}
	if len(series) == 0 {
		return nil, ErrNoPriceData
	}

	window := prices.BestWindow(req.DurationHours, series, req.StartAfter, req.EndBefore)
	if window.IsZero() {
		return nil, ErrNoPriceData
	}

	result := &BestWindowResult{
		BestStartTime:      window.Start,
		BestEndTime:        window.End,
		DurationHours:      req.DurationHours,
		AveragePriceWindow: convert.FourDecimals(window.AveragePrice),
		PriceBreakdown:     roundWindow(window).Hours,
	}

	if snapshot.AveragePrice > 0 {
		result.SavingsVsAverage = convert.FourDecimals(
			(snapshot.AveragePrice - window.AveragePrice) * float64(req.DurationHours))
	}
	if req.PowerKw != nil {
		cost := convert.FourDecimals(float64(req.DurationHours) * *req.PowerKw * window.AveragePrice)
		result.TotalCost = &cost
	}

	return result, nil
}

type ForecastEntry struct {
	Time             time.Time    `json:"time"`
	Price            float64      `json:"price"`
	Level            prices.Level `json:"level"`
	DeviationPercent float64      `json:"deviation_percent"`
	Energy           float64      `json:"energy"`
	Tax              float64      `json:"tax"`
}

type ForecastResult struct {
	AveragePriceToday float64         `json:"average_price_today"`
	Forecast          []ForecastEntry `json:"forecast"`
}

// Forecast lists the known upcoming hourly prices with their deviation
// from today's mean. hoursAhead <= 0 means everything available.
func (c *Coordinator) Forecast(homeID string, hoursAhead int) (*ForecastResult, error) {
	snapshot, err := c.snapshotFor(homeID)
	if err != nil {
		return nil, err
	}

	series := snapshot.Today.Concat(snapshot.Tomorrow)
	if len(series) == 0 {
		return nil, ErrNoPriceData
	}
	if hoursAhead > 0 && len(series) > hoursAhead {
		series = series[:hoursAhead]
	}

	mean := snapshot.AveragePrice
	entries := make([]ForecastEntry, len(series))
	for i, p := range series {
		_, pct := prices.Deviation(p.Total, mean)
		entries[i] = ForecastEntry{
			Time:             p.StartsAt,
			Price:            convert.FourDecimals(p.Total),
			Level:            p.Level.OrNormal(),
			DeviationPercent: convert.TwoDecimals(pct),
			Energy:           p.Energy,
			Tax:              p.Tax,
		}
	}

	return &ForecastResult{
		AveragePriceToday: convert.FourDecimals(mean),
		Forecast:          entries,
	}, nil
}

func (c *Coordinator) snapshotFor(homeID string) (Snapshot, error) {
	if homeID == "" {
		snapshot, ok := c.FirstHome()
		if !ok {
			return Snapshot{}, ErrNoData
		}
		return snapshot, nil
	}
	snapshot, ok := c.Home(homeID)
	if !ok {
		return Snapshot{}, ErrNoData
	}
	return snapshot, nil
}
