// Package weather implements the app.ForecastSource port against the SRF
// Meteo API, plus a local file source for development. The client performs
// the provider's client-credentials exchange (Basic auth against the OAuth
// token endpoint, then Bearer requests) per call; tokens are short-lived
// and the dashboard is fetched rarely, so no token cache is kept.
package weather

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/haukened/hearth/internal/app"
)

// Default SRF Meteo endpoints. Overridable for tests.
const (
	DefaultTokenURL    = "https://api.srgssr.ch/oauth/v1/accesstoken?grant_type=client_credentials"
	DefaultForecastURL = "https://api.srgssr.ch/srf-meteo/forecast/47.3868,8.4846"
)

// forecastResponse mirrors the subset of the provider payload we consume.
type forecastResponse struct {
	Forecast forecastBody `json:"forecast"`
}

type forecastBody struct {
	Day []dayEntry `json:"day"`
}

type dayEntry struct {
	LocalDateTime  string      `json:"local_date_time"`
	MaxTempC       json.Number `json:"TX_C"`
	MinTempC       json.Number `json:"TN_C"`
	SymbolCode     json.Number `json:"SYMBOL_CODE"`
	RainMM         json.Number `json:"RRR_MM"`
	ProbPcpPercent json.Number `json:"PROBPCP_PERCENT"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Client fetches and normalizes the forecast from the live API.
type Client struct {
	HTTP         *http.Client
	TokenURL     string
	ForecastURL  string
	ClientID     string
	ClientSecret string
	Days         int // number of leading day entries to keep
}

var _ app.ForecastSource = (*Client)(nil)

// NewClient returns a Client with default endpoints and a sane timeout.
func NewClient(clientID, clientSecret string, days int) *Client {
	return &Client{
		HTTP:         &http.Client{Timeout: 10 * time.Second},
		TokenURL:     DefaultTokenURL,
		ForecastURL:  DefaultForecastURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Days:         days,
	}
}

// Fetch exchanges credentials for a token, retrieves the forecast, and
// normalizes the first Days entries.
func (c *Client) Fetch(ctx context.Context) ([]app.ForecastDay, error) {
	token, err := c.fetchToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ForecastURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build forecast request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast endpoint returned %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	return normalize(body.Forecast, c.Days)
}

// fetchToken performs the Basic-auth client-credentials exchange.
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.TokenURL, nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	creds := base64.StdEncoding.EncodeToString([]byte(c.ClientID + ":" + c.ClientSecret))
	req.Header.Set("Authorization", "Basic "+creds)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}
	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}
	return tok.AccessToken, nil
}

// normalize converts provider day entries into dashboard rows.
func normalize(body forecastBody, days int) ([]app.ForecastDay, error) {
	if days <= 0 || days > len(body.Day) {
		days = len(body.Day)
	}
	out := make([]app.ForecastDay, 0, days)
	for _, entry := range body.Day[:days] {
		t, err := time.Parse(time.RFC3339, entry.LocalDateTime)
		if err != nil {
			// Some payloads omit the offset.
			t, err = time.Parse("2006-01-02T15:04:05", entry.LocalDateTime)
			if err != nil {
				return nil, fmt.Errorf("parse forecast date %q: %w", entry.LocalDateTime, err)
			}
		}
		out = append(out, app.ForecastDay{
			Day:             t.Format("Mon"),
			MaxTemp:         entry.MaxTempC.String(),
			MinTemp:         entry.MinTempC.String(),
			IconID:          entry.SymbolCode.String(),
			Rain:            entry.RainMM.String() + " mm",
			RainProbability: entry.ProbPcpPercent.String() + "%",
		})
	}
	return out, nil
}
