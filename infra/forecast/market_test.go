package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreforecast "github.com/kilianp07/emsga/core/forecast"
	"github.com/kilianp07/emsga/core/model"
)

func flat(v float64) []float64 {
	s := make([]float64, model.Horizon)
	for i := range s {
		s[i] = v
	}
	return s
}

func marketServer(t *testing.T, start time.Time, hours int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/prices", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("start_date") != start.Format(time.RFC3339) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		type value struct {
			StartDate string  `json:"start_date"`
			Price     float64 `json:"price"`
		}
		vals := make([]value, 0, hours+1)
		// one value before the horizon is ignored
		vals = append(vals, value{StartDate: start.Add(-time.Hour).Format(time.RFC3339), Price: 999})
		for h := 0; h < hours; h++ {
			vals = append(vals, value{StartDate: start.Add(time.Duration(h) * time.Hour).Format(time.RFC3339), Price: float64(50 + h)})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"france_power_exchanges": []map[string]any{{"values": vals}},
		})
	})
	return httptest.NewServer(mux)
}

func newTestMarket(srv *httptest.Server, now time.Time) *MarketProvider {
	base := coreforecast.StaticProvider{Data: model.Inputs{LoadKW: flat(10), PVKW: flat(1), WindKW: flat(2), Price: flat(0.2)}}
	p := NewMarketProvider(MarketConfig{
		URL:          srv.URL + "/prices",
		ClientID:     "id",
		ClientSecret: "secret",
		AuthURL:      srv.URL + "/token",
	}, base)
	p.now = func() time.Time { return now }
	return p
}

func TestMarketProvider_Inputs(t *testing.T) {
	start := time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC)
	srv := marketServer(t, start, model.Horizon)
	defer srv.Close()

	p := newTestMarket(srv, start.Add(25*time.Minute))
	in, err := p.Inputs(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.050, in.Price[0], 1e-12)
	assert.InDelta(t, 0.073, in.Price[23], 1e-12)
	assert.Equal(t, flat(10), in.LoadKW)
}

func TestMarketProvider_IncompletePrices(t *testing.T) {
	start := time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC)
	srv := marketServer(t, start, 12)
	defer srv.Close()

	_, err := newTestMarket(srv, start).Inputs(context.Background())
	assert.True(t, errors.Is(err, ErrIncompletePrices))
}

func TestMarketProvider_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	base := coreforecast.StaticProvider{Data: model.Inputs{LoadKW: flat(1), PVKW: flat(1), WindKW: flat(1), Price: flat(1)}}
	p := NewMarketProvider(MarketConfig{URL: srv.URL}, base)
	_, err := p.Inputs(context.Background())
	assert.Error(t, err)
}
