// Package milkbot is the HTTP client for the remote MilkBot Bayesian
// fitting service, the only network dependency of the core.
package milkbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"golact/domain/core"
	"golact/domain/lactation"
	"golact/ports"
)

const (
	// DefaultBaseURL serves USA-prior fits.
	DefaultBaseURL = "https://milkbot.com"
	// DefaultEUBaseURL serves EU-prior fits from a separate deployment.
	DefaultEUBaseURL = "https://europe-west1-numeric-analogy-337601.cloudfunctions.net/milkBot-fitter"
)

// Config holds client settings.
type Config struct {
	BaseURL   string
	EUBaseURL string
	Timeout   time.Duration
}

// Client implements ports.BayesianFitter against the MilkBot API.
type Client struct {
	baseURL   string
	euBaseURL string
	http      *http.Client
}

// NewClient creates a MilkBot API client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	euBaseURL := strings.TrimSpace(cfg.EUBaseURL)
	if euBaseURL == "" {
		euBaseURL = DefaultEUBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		euBaseURL: euBaseURL,
		http:      &http.Client{Timeout: timeout},
	}
}

type point struct {
	DIM  int     `json:"dim"`
	Milk float64 `json:"milk"`
}

type fitPayload struct {
	Lactation struct {
		LacKey string          `json:"lacKey"`
		Breed  lactation.Breed `json:"breed"`
		Parity int             `json:"parity"`
		Points []point         `json:"points"`
	} `json:"lactation"`
	Options struct {
		ReturnInputData         bool               `json:"returnInputData"`
		ReturnPath              bool               `json:"returnPath"`
		ReturnDiscriminatorPath bool               `json:"returnDiscriminatorPath"`
		PreferredMilkUnit       lactation.MilkUnit `json:"preferredMilkUnit"`
	} `json:"options"`
	Priors *lactation.MilkBotPriors `json:"priors,omitempty"`
}

type fittedParams struct {
	Scale  float64 `json:"scale"`
	Ramp   float64 `json:"ramp"`
	Decay  float64 `json:"decay"`
	Offset float64 `json:"offset"`
}

// The service answers with one of two wrapper keys depending on deployment;
// both carry the same payload and are normalized here, at the boundary.
type fitResponse struct {
	FittedParams *fittedParams `json:"fittedParams"`
	Params       *fittedParams `json:"params"`
}

// FitLactation posts one lactation to the fitting endpoint and returns the
// normalized parameter set.
func (c *Client) FitLactation(ctx context.Context, req ports.MilkBotFitRequest) (ports.MilkBotParams, error) {
	if req.APIKey == "" {
		return ports.MilkBotParams{}, core.ErrMissingAPIKey
	}

	payload := fitPayload{}
	payload.Lactation.LacKey = req.LactationKey
	if payload.Lactation.LacKey == "" {
		payload.Lactation.LacKey = uuid.NewString()
	}
	payload.Lactation.Breed = req.Breed
	payload.Lactation.Parity = req.Parity
	payload.Lactation.Points = buildPoints(req.Days, req.Yields)
	payload.Options.PreferredMilkUnit = req.MilkUnit
	payload.Priors = req.Priors

	raw, err := json.Marshal(payload)
	if err != nil {
		return ports.MilkBotParams{}, fmt.Errorf("marshal fit request: %w", err)
	}

	url := strings.TrimRight(c.endpointFor(req.Region), "/") + "/fitLactation"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return ports.MilkBotParams{}, fmt.Errorf("build fit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-KEY", req.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return ports.MilkBotParams{}, core.NewRemoteFitError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.MilkBotParams{}, core.NewRemoteFitError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.MilkBotParams{}, core.NewRemoteFitError(fmt.Errorf("http %d: %s", resp.StatusCode, string(body)))
	}

	var decoded fitResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ports.MilkBotParams{}, fmt.Errorf("%w: %v", core.ErrUnexpectedResponse, err)
	}
	fitted := decoded.FittedParams
	if fitted == nil {
		fitted = decoded.Params
	}
	if fitted == nil {
		return ports.MilkBotParams{}, fmt.Errorf("%w: %s", core.ErrUnexpectedResponse, string(body))
	}

	return ports.MilkBotParams{
		Scale:   fitted.Scale,
		Ramp:    fitted.Ramp,
		Offset:  fitted.Offset,
		Decay:   fitted.Decay,
		NPoints: len(payload.Lactation.Points),
	}, nil
}

// Version probes the service version endpoint.
func (c *Client) Version(ctx context.Context) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.baseURL, "/")+"/version", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", core.NewRemoteFitError(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", core.NewRemoteFitError(err)
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *Client) endpointFor(region lactation.Region) string {
	if region == lactation.RegionEU {
		return c.euBaseURL
	}
	return c.baseURL
}

func buildPoints(days, yields []float64) []point {
	points := make([]point, 0, len(days))
	for i := range days {
		points = append(points, point{DIM: int(days[i]), Milk: yields[i]})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].DIM < points[j].DIM })
	return points
}

// MockFitter is a canned BayesianFitter for tests and offline use.
type MockFitter struct {
	Params ports.MilkBotParams
	Err    error
}

// FitLactation returns the configured result.
func (m *MockFitter) FitLactation(_ context.Context, req ports.MilkBotFitRequest) (ports.MilkBotParams, error) {
	if m.Err != nil {
		return ports.MilkBotParams{}, m.Err
	}
	out := m.Params
	out.NPoints = len(req.Days)
	return out, nil
}
