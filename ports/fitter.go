package ports

import (
	"context"

	"golact/domain/lactation"
)

// MilkBotFitRequest is the input to the remote Bayesian fitting service.
type MilkBotFitRequest struct {
	Days   []float64
	Yields []float64

	// LactationKey labels the lactation in the request payload; a key is
	// generated when empty.
	LactationKey string

	Breed    lactation.Breed
	Parity   int
	Region   lactation.Region
	MilkUnit lactation.MilkUnit

	// Priors is attached to the payload when non-nil (caller-supplied or
	// literature priors selected upstream).
	Priors *lactation.MilkBotPriors

	APIKey string
}

// MilkBotParams is the normalized result of a remote fit. Scale, Ramp,
// Offset, Decay map 1:1 to the MilkBot model parameters (a, b, c, d).
type MilkBotParams struct {
	Scale   float64
	Ramp    float64
	Offset  float64
	Decay   float64
	NPoints int
}

// Tuple returns the parameters in the model's alphabetical order (a, b, c, d).
func (p MilkBotParams) Tuple() []float64 {
	return []float64{p.Scale, p.Ramp, p.Offset, p.Decay}
}

// BayesianFitter fits a single lactation against a remote probabilistic
// fitting service. Implementations perform one outbound HTTP call; callers
// bound it with the request context.
type BayesianFitter interface {
	FitLactation(ctx context.Context, req MilkBotFitRequest) (MilkBotParams, error)
}
