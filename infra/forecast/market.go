package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/kilianp07/emsga/core/factory"
	coreforecast "github.com/kilianp07/emsga/core/forecast"
	"github.com/kilianp07/emsga/core/model"
	"github.com/kilianp07/emsga/infra/logger"
)

// DefaultMarketURL is the RTE day-ahead wholesale price endpoint.
const DefaultMarketURL = "https://digital.iservices.rte-france.com/open_api/wholesale_market/v2/france_power_exchanges"

// ErrIncompletePrices is returned when the market does not cover every hour
// of the horizon.
var ErrIncompletePrices = errors.New("market prices do not cover the horizon")

// MarketConfig replaces the price series of a base provider with day-ahead
// wholesale prices. Credentials are optional; when ClientID is set requests
// carry an OAuth2 client-credentials token obtained from AuthURL.
type MarketConfig struct {
	Base         factory.ModuleConfig `json:"base"`
	URL          string               `json:"url"`
	ClientID     string               `json:"client_id"`
	ClientSecret string               `json:"client_secret"`
	AuthURL      string               `json:"auth_url"`
	// PriceScale converts the published price to the cost unit of the
	// planner. The default turns EUR/MWh into EUR/kWh.
	PriceScale float64       `json:"price_scale"`
	Timeout    time.Duration `json:"timeout"`
}

// SetDefaults applies sane defaults.
func (c *MarketConfig) SetDefaults() {
	if c.URL == "" {
		c.URL = DefaultMarketURL
	}
	if c.PriceScale == 0 {
		c.PriceScale = 0.001
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Base.Type == "" {
		c.Base.Type = "file"
	}
}

type marketResponse struct {
	FrancePowerExchanges []struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Values    []struct {
			StartDate string  `json:"start_date"`
			EndDate   string  `json:"end_date"`
			Value     float64 `json:"value"`
			Price     float64 `json:"price"`
		} `json:"values"`
	} `json:"france_power_exchanges"`
}

// MarketProvider overlays market prices on the forecasts of a base provider.
type MarketProvider struct {
	base   coreforecast.Provider
	cfg    MarketConfig
	client *http.Client
	log    logger.Logger
	now    func() time.Time
}

// NewMarketProvider wraps base. The horizon starts at the current hour.
func NewMarketProvider(cfg MarketConfig, base coreforecast.Provider) *MarketProvider {
	cfg.SetDefaults()
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.ClientID != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.AuthURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		client = cc.Client(ctx)
		client.Timeout = cfg.Timeout
	}
	return &MarketProvider{
		base:   base,
		cfg:    cfg,
		client: client,
		log:    logger.New("market_prices"),
		now:    time.Now,
	}
}

// Inputs returns the base forecasts with the price series taken from the market.
func (p *MarketProvider) Inputs(ctx context.Context) (model.Inputs, error) {
	in, err := p.base.Inputs(ctx)
	if err != nil {
		return model.Inputs{}, err
	}
	start := p.now().UTC().Truncate(time.Hour)
	prices, err := p.fetch(ctx, start, start.Add(model.Horizon*time.Hour))
	if err != nil {
		return model.Inputs{}, fmt.Errorf("market prices: %w", err)
	}
	in.Price = prices
	return in, nil
}

func (p *MarketProvider) fetch(ctx context.Context, start, end time.Time) ([]float64, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("start_date", start.Format(time.RFC3339))
	q.Set("end_date", end.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	var mr marketResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	prices := make([]float64, model.Horizon)
	seen := make([]bool, model.Horizon)
	for _, ex := range mr.FrancePowerExchanges {
		for _, v := range ex.Values {
			t, err := time.Parse(time.RFC3339, v.StartDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse time: %w", err)
			}
			idx := int(t.Sub(start) / time.Hour)
			if t.Before(start) || idx >= model.Horizon {
				continue
			}
			prices[idx] = v.Price * p.cfg.PriceScale
			seen[idx] = true
		}
	}
	for h, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("hour %d missing: %w", h, ErrIncompletePrices)
		}
	}
	p.log.Debugf("fetched %d market prices from %s", model.Horizon, start.Format(time.RFC3339))
	return prices, nil
}

func init() {
	_ = coreforecast.Register("market", func(conf map[string]any) (coreforecast.Provider, error) {
		var c MarketConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		c.SetDefaults()
		base, err := coreforecast.New(c.Base)
		if err != nil {
			return nil, fmt.Errorf("market base provider: %w", err)
		}
		return NewMarketProvider(c, base), nil
	})
}
