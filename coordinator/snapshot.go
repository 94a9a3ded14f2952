package coordinator

import (
	"time"

	"github.com/angas/tibberwatch-go/convert"
	"github.com/angas/tibberwatch-go/hours"
	"github.com/angas/tibberwatch-go/prices"
	"github.com/angas/tibberwatch-go/slice"
	"github.com/angas/tibberwatch-go/tibber"
)

// Params are the analytics knobs, immutable during one refresh cycle.
type Params struct {
	HoursDuration     int
	BatteryEfficiency float64
	Band              hours.Band
}

// Snapshot is the complete computed analytics result for one home. It
// is recomputed wholesale every refresh cycle, never partially
// mutated, and superseded atomically at publish time.
type Snapshot struct {
	HomeID   string        `json:"home_id"`
	HomeName string        `json:"home_name"`
	Current  prices.Point  `json:"current"`
	Today    prices.Series `json:"today"`
	Tomorrow prices.Series `json:"tomorrow"`

	AveragePrice float64 `json:"average_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`

	DeviationAbsolute float64 `json:"deviation_absolute"`
	DeviationPercent  float64 `json:"deviation_percent"`
	Rank              int     `json:"rank"`
	Percentile        float64 `json:"percentile"`

	CheapestHours      []prices.WindowHour `json:"cheapest_hours"`
	MostExpensiveHours []prices.WindowHour `json:"most_expensive_hours"`
	BestWindow         prices.Window       `json:"best_consecutive_hours"`
	NextCheapWindow    *prices.NextWindow  `json:"next_cheap_window"`
	CheapestInBand     []prices.WindowHour `json:"cheapest_hours_in_window"`

	BatteryEfficiency    float64 `json:"battery_efficiency"`
	BatteryBreakeven     float64 `json:"battery_breakeven_price"`
	BatteryIsEconomical  bool    `json:"battery_is_economical"`
	BatteryEffectiveCost float64 `json:"battery_effective_charging_cost"`

	FetchedAt time.Time `json:"fetched_at"`
}

// buildSnapshot runs the whole analytics suite for one home. Pure
// except for the supplied evaluation instant.
func buildSnapshot(home tibber.Home, p Params, now time.Time) Snapshot {
	currentPrice := home.Current.Total
	today := home.Today

	mean := prices.Mean(today, currentPrice)
	deviationAbs, deviationPct := prices.Deviation(currentPrice, mean)
	rank := prices.Rank(currentPrice, today)
	percentile := prices.Percentile(rank, len(today))

	n := p.HoursDuration
	cheapest := prices.CheapestHours(today, n)
	expensive := prices.MostExpensiveHours(today, n)

	combined := today.Concat(home.Tomorrow)
	breakeven := prices.Breakeven(mean, p.BatteryEfficiency)

	return Snapshot{
		HomeID:   home.ID,
		HomeName: home.Name,
		Current:  home.Current,
		Today:    today,
		Tomorrow: home.Tomorrow,

		AveragePrice: convert.FourDecimals(mean),
		MinPrice:     convert.FourDecimals(prices.Min(today, currentPrice)),
		MaxPrice:     convert.FourDecimals(prices.Max(today, currentPrice)),

		DeviationAbsolute: convert.FourDecimals(deviationAbs),
		DeviationPercent:  convert.TwoDecimals(deviationPct),
		Rank:              rank,
		Percentile:        convert.TwoDecimals(percentile),

		CheapestHours:      windowHours(cheapest),
		MostExpensiveHours: windowHours(expensive),
		BestWindow:         roundWindow(prices.BestWindow(n, today, nil, nil)),
		NextCheapWindow:    roundNextWindow(prices.NextCheapWindow(today, home.Tomorrow, now)),
		CheapestInBand:     windowHours(prices.CheapestInBand(combined, p.Band, n)),

		BatteryEfficiency:    p.BatteryEfficiency,
		BatteryBreakeven:     convert.FourDecimals(breakeven),
		BatteryIsEconomical:  prices.Economical(currentPrice, breakeven),
		BatteryEffectiveCost: convert.FourDecimals(prices.EffectiveCost(currentPrice, p.BatteryEfficiency)),

		FetchedAt: now,
	}
}

func windowHours(s prices.Series) []prices.WindowHour {
	return slice.Map(s, func(p prices.Point) prices.WindowHour {
		return prices.WindowHour{
			Start: p.StartsAt,
			Price: convert.FourDecimals(p.Total),
			Level: p.Level.OrNormal(),
		}
	})
}

func roundWindow(w prices.Window) prices.Window {
	w.AveragePrice = convert.FourDecimals(w.AveragePrice)
	for i := range w.Hours {
		w.Hours[i].Price = convert.FourDecimals(w.Hours[i].Price)
	}
	return w
}

func roundNextWindow(w *prices.NextWindow) *prices.NextWindow {
	if w == nil {
		return nil
	}
	rounded := *w
	rounded.Price = convert.FourDecimals(rounded.Price)
	return &rounded
}
