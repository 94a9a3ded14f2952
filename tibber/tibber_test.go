package tibber

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homesResponse = `{
	"data": {
		"viewer": {
			"homes": [
				{
					"id": "home-1",
					"appNickname": "Cabin",
					"currentSubscription": {
						"priceInfo": {
							"current": {"total": 0.25, "energy": 0.15, "tax": 0.10, "startsAt": "2025-03-10T14:00:00.000+01:00", "level": "NORMAL"},
							"today": [
								{"total": 0.20, "energy": 0.12, "tax": 0.08, "startsAt": "2025-03-10T00:00:00.000+01:00", "level": "CHEAP"},
								{"total": 0.30, "energy": 0.18, "tax": 0.12, "startsAt": "2025-03-10T01:00:00.000+01:00", "level": "EXPENSIVE"}
							],
							"tomorrow": []
						}
					}
				},
				{
					"id": "home-2",
					"currentSubscription": null
				}
			]
		}
	}
}`

func TestFetchHomes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(homesResponse))
	}))
	defer srv.Close()

	c := New("test-token")
	c.Url = srv.URL

	homes, err := c.FetchHomes(context.Background())
	require.NoError(t, err)
	require.Len(t, homes, 2)

	home, err := homes[0].Home()
	require.NoError(t, err)
	assert.Equal(t, "home-1", home.ID)
	assert.Equal(t, "Cabin", home.Name)
	assert.InDelta(t, 0.25, home.Current.Total, 1e-9)
	require.Len(t, home.Today, 2)
	assert.Equal(t, 14, home.Current.StartsAt.Hour())
	assert.Empty(t, home.Tomorrow)

	_, err = homes[1].Home()
	assert.Error(t, err, "home without subscription must fail validation")
}

func TestFetchHomesAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("bad-token")
	c.Url = srv.URL

	_, err := c.FetchHomes(context.Background())
	require.Error(t, err)
	var authErr *AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestFetchHomesGraphqlError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "something broke"}]}`))
	}))
	defer srv.Close()

	c := New("test-token")
	c.Url = srv.URL

	_, err := c.FetchHomes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "something broke")
}

func TestRawHomeValidation(t *testing.T) {
	total := 0.25

	tests := []struct {
		name string
		raw  RawHome
	}{
		{name: "missing id", raw: RawHome{}},
		{name: "missing subscription", raw: RawHome{Id: "h"}},
		{name: "missing price info", raw: RawHome{Id: "h", CurrentSubscription: &subscription{}}},
		{
			name: "missing current total",
			raw: RawHome{Id: "h", CurrentSubscription: &subscription{
				PriceInfo: &priceInfo{Current: &pricePoint{StartsAt: "2025-03-10T14:00:00Z"}},
			}},
		},
		{
			name: "bad timestamp",
			raw: RawHome{Id: "h", CurrentSubscription: &subscription{
				PriceInfo: &priceInfo{Current: &pricePoint{Total: &total, StartsAt: "yesterday"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.raw.Home()
			assert.Error(t, err)
		})
	}
}
