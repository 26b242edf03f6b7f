package milkbot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golact/domain/core"
	"golact/domain/lactation"
	"golact/ports"
)

func fitRequest() ports.MilkBotFitRequest {
	return ports.MilkBotFitRequest{
		Days:     []float64{70, 10, 40},
		Yields:   []float64{28, 22, 30},
		Breed:    lactation.BreedHolstein,
		Parity:   2,
		Region:   lactation.RegionUSA,
		MilkUnit: lactation.UnitKg,
		APIKey:   "secret",
	}
}

func TestFitLactationPayload(t *testing.T) {
	var captured map[string]any
	var gotPath, gotKey, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-KEY")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"fittedParams": map[string]float64{"scale": 35, "ramp": 25, "offset": -5, "decay": 0.002},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	params, err := client.FitLactation(context.Background(), fitRequest())
	if err != nil {
		t.Fatalf("FitLactation failed: %v", err)
	}

	if gotPath != "/fitLactation" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("X-API-KEY = %q", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}

	lac := captured["lactation"].(map[string]any)
	if lac["lacKey"] == "" {
		t.Error("lacKey must be generated when empty")
	}
	if lac["breed"] != "H" {
		t.Errorf("breed = %v", lac["breed"])
	}
	points := lac["points"].([]any)
	if len(points) != 3 {
		t.Fatalf("points = %d", len(points))
	}
	// Points must be sorted by day in milk.
	first := points[0].(map[string]any)
	if first["dim"].(float64) != 10 {
		t.Errorf("first point dim = %v, want 10", first["dim"])
	}

	opts := captured["options"].(map[string]any)
	if opts["returnInputData"] != false || opts["returnPath"] != false {
		t.Errorf("options = %v", opts)
	}
	if opts["preferredMilkUnit"] != "kg" {
		t.Errorf("preferredMilkUnit = %v", opts["preferredMilkUnit"])
	}
	if _, present := captured["priors"]; present {
		t.Error("priors must be omitted when nil")
	}

	if params.Scale != 35 || params.Decay != 0.002 {
		t.Errorf("params = %+v", params)
	}
	if params.NPoints != 3 {
		t.Errorf("NPoints = %d", params.NPoints)
	}
}

func TestFitLactationAlternateWrapper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"params": map[string]float64{"scale": 40, "ramp": 20, "offset": 0, "decay": 0.003},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	params, err := client.FitLactation(context.Background(), fitRequest())
	if err != nil {
		t.Fatalf("FitLactation failed: %v", err)
	}
	if params.Scale != 40 || params.Ramp != 20 {
		t.Errorf("params = %+v", params)
	}
}

func TestFitLactationSendsPriors(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]any{
			"fittedParams": map[string]float64{"scale": 35, "ramp": 25, "offset": -5, "decay": 0.002},
		})
	}))
	defer server.Close()

	req := fitRequest()
	priors := lactation.ChenPriors(2)
	req.Priors = &priors

	client := NewClient(Config{BaseURL: server.URL})
	if _, err := client.FitLactation(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	sent, ok := captured["priors"].(map[string]any)
	if !ok {
		t.Fatal("priors missing from payload")
	}
	scale := sent["scale"].(map[string]any)
	if scale["mean"].(float64) != 44.26 {
		t.Errorf("prior scale mean = %v", scale["mean"])
	}
	if sent["seMilk"].(float64) != 4 {
		t.Errorf("seMilk = %v", sent["seMilk"])
	}
}

func TestFitLactationMissingKey(t *testing.T) {
	client := NewClient(Config{})
	req := fitRequest()
	req.APIKey = ""
	_, err := client.FitLactation(context.Background(), req)
	if !errors.Is(err, core.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestFitLactationHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.FitLactation(context.Background(), fitRequest())
	if !errors.Is(err, core.ErrRemoteFit) {
		t.Errorf("expected ErrRemoteFit, got %v", err)
	}
}

func TestFitLactationUnexpectedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.FitLactation(context.Background(), fitRequest())
	if !errors.Is(err, core.ErrUnexpectedResponse) {
		t.Errorf("expected ErrUnexpectedResponse, got %v", err)
	}
}

func TestRegionRouting(t *testing.T) {
	usHits, euHits := 0, 0
	us := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		usHits++
		json.NewEncoder(w).Encode(map[string]any{"fittedParams": map[string]float64{"scale": 1, "ramp": 1, "offset": 0, "decay": 0.01}})
	}))
	defer us.Close()
	eu := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		euHits++
		json.NewEncoder(w).Encode(map[string]any{"fittedParams": map[string]float64{"scale": 1, "ramp": 1, "offset": 0, "decay": 0.01}})
	}))
	defer eu.Close()

	client := NewClient(Config{BaseURL: us.URL, EUBaseURL: eu.URL})

	req := fitRequest()
	if _, err := client.FitLactation(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	req.Region = lactation.RegionEU
	if _, err := client.FitLactation(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	if usHits != 1 || euHits != 1 {
		t.Errorf("usHits=%d euHits=%d", usHits, euHits)
	}
}

func TestVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/version" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte("2.4\n"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	v, err := client.Version(context.Background())
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if v != "2.4" {
		t.Errorf("version = %q", v)
	}
}

func TestMockFitter(t *testing.T) {
	mock := &MockFitter{Params: ports.MilkBotParams{Scale: 35, Ramp: 25, Offset: -5, Decay: 0.002}}
	got, err := mock.FitLactation(context.Background(), fitRequest())
	if err != nil {
		t.Fatal(err)
	}
	if got.Scale != 35 || got.NPoints != 3 {
		t.Errorf("mock result = %+v", got)
	}
}
