package tibber

import (
	"context"
	"fmt"
	"time"

	"github.com/angas/tibberwatch-go/prices"
)

const priceInfoQuery = `query {
	viewer {
		homes {
			id
			appNickname
			currentSubscription {
				priceInfo {
					current { total energy tax startsAt level }
					today { total energy tax startsAt level }
					tomorrow { total energy tax startsAt level }
				}
			}
		}
	}
}`

type pricePoint struct {
	Total    *float64 `json:"total"`
	Energy   *float64 `json:"energy"`
	Tax      *float64 `json:"tax"`
	StartsAt string   `json:"startsAt"`
	Level    string   `json:"level"`
}

type priceInfo struct {
	Current  *pricePoint  `json:"current"`
	Today    []pricePoint `json:"today"`
	Tomorrow []pricePoint `json:"tomorrow"`
}

type subscription struct {
	PriceInfo *priceInfo `json:"priceInfo"`
}

// RawHome is one home as the API returned it, before any validation.
type RawHome struct {
	Id                  string        `json:"id"`
	AppNickname         string        `json:"appNickname"`
	CurrentSubscription *subscription `json:"currentSubscription"`
}

type homesPayload struct {
	Homes []RawHome `json:"homes"`
}

// Home is a validated per-home price data set.
type Home struct {
	ID       string
	Name     string
	Current  prices.Point
	Today    prices.Series
	Tomorrow prices.Series
}

// FetchHomes runs the fixed price-info query for every home on the
// account. Validation of individual homes is left to the caller so a
// malformed record for one home never hides the others.
func (c *Client) FetchHomes(ctx context.Context) ([]RawHome, error) {
	body, err := doQuery[homesPayload](ctx, c, priceInfoQuery)
	if err != nil {
		return nil, err
	}
	return body.Data.Viewer.Homes, nil
}

// Home validates the raw record and converts it into domain types.
// The minimal required fields are the home id and a current price.
func (raw RawHome) Home() (Home, error) {
	if raw.Id == "" {
		return Home{}, fmt.Errorf("home without id")
	}
	if raw.CurrentSubscription == nil || raw.CurrentSubscription.PriceInfo == nil {
		return Home{}, fmt.Errorf("home %s has no current subscription", raw.Id)
	}

	info := raw.CurrentSubscription.PriceInfo
	if info.Current == nil || info.Current.Total == nil {
		return Home{}, fmt.Errorf("home %s has no current price", raw.Id)
	}

	current, err := info.Current.point()
	if err != nil {
		return Home{}, fmt.Errorf("home %s: %w", raw.Id, err)
	}

	today, err := series(info.Today)
	if err != nil {
		return Home{}, fmt.Errorf("home %s today: %w", raw.Id, err)
	}
	tomorrow, err := series(info.Tomorrow)
	if err != nil {
		return Home{}, fmt.Errorf("home %s tomorrow: %w", raw.Id, err)
	}

	name := raw.AppNickname
	if name == "" {
		name = "Tibber Home"
	}

	return Home{
		ID:       raw.Id,
		Name:     name,
		Current:  current,
		Today:    today,
		Tomorrow: tomorrow,
	}, nil
}

func (p pricePoint) point() (prices.Point, error) {
	if p.Total == nil {
		return prices.Point{}, fmt.Errorf("price point without total")
	}

	// Keep the offset from the feed so clock-time constraints work on
	// the home's local wall clock.
	startsAt, err := time.Parse(time.RFC3339, p.StartsAt)
	if err != nil {
		return prices.Point{}, fmt.Errorf("parsing startsAt %q: %w", p.StartsAt, err)
	}

	point := prices.Point{
		StartsAt: startsAt,
		Total:    *p.Total,
		Level:    prices.Level(p.Level).OrNormal(),
	}
	if p.Energy != nil {
		point.Energy = *p.Energy
	}
	if p.Tax != nil {
		point.Tax = *p.Tax
	}
	return point, nil
}

func series(points []pricePoint) (prices.Series, error) {
	s := make(prices.Series, 0, len(points))
	for _, p := range points {
		point, err := p.point()
		if err != nil {
			return nil, err
		}
		s = append(s, point)
	}
	return s, nil
}
