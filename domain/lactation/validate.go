package lactation

import (
	"math"
	"strconv"
	"strings"

	"golact/domain/core"
)

// RawInput carries unvalidated request data. Slices come straight from the
// caller; categorical fields are free-form strings and may be empty.
type RawInput struct {
	Days   []float64
	Yields []float64

	Model   string
	Fitting string
	Breed   string
	Parity  int
	Region  string

	// Priors is either empty, the literal token "CHEN", or ignored when
	// CustomPriors is set.
	Priors       string
	CustomPriors *MilkBotPriors

	PersistencyMethod string
	// LactationLength is a positive integer in string form or the literal
	// "max". Empty means not set.
	LactationLength string
	MilkUnit        string
}

// PrepareInputs validates, normalizes, and cleans raw request data into a
// PreparedInputs bundle. Pairs where either value is non-finite are dropped.
// Pure function of its inputs; the returned bundle owns fresh slices.
func PrepareInputs(raw RawInput) (*PreparedInputs, error) {
	if len(raw.Days) != len(raw.Yields) {
		return nil, core.ErrLengthMismatch
	}

	out := &PreparedInputs{
		Model:  strings.ToLower(strings.TrimSpace(raw.Model)),
		Parity: raw.Parity,
	}

	if raw.Fitting != "" {
		mode := FittingMode(strings.ToLower(raw.Fitting))
		if mode != FittingFrequentist && mode != FittingBayesian {
			return nil, core.NewValidationError(core.ErrInvalidFittingMode, "fitting", raw.Fitting)
		}
		out.Fitting = mode
	}

	if raw.Breed != "" {
		breed := Breed(strings.ToUpper(raw.Breed))
		if breed != BreedHolstein && breed != BreedJersey {
			return nil, core.NewValidationError(core.ErrInvalidBreed, "breed", raw.Breed)
		}
		out.Breed = breed
	}

	if raw.Region != "" {
		region := Region(strings.ToUpper(raw.Region))
		if region != RegionUSA && region != RegionEU {
			return nil, core.NewValidationError(core.ErrInvalidRegion, "region", raw.Region)
		}
		out.Region = region
	}

	switch {
	case raw.CustomPriors != nil:
		out.CustomPriors = raw.CustomPriors
	case raw.Priors != "":
		if strings.ToUpper(raw.Priors) != ChenPriorToken {
			return nil, core.NewValidationError(core.ErrInvalidPriors, "priors", raw.Priors)
		}
		out.PriorToken = ChenPriorToken
	}

	if raw.PersistencyMethod != "" {
		method := PersistencyMethod(strings.ToLower(raw.PersistencyMethod))
		if method != PersistencyDerived && method != PersistencyLiterature {
			return nil, core.NewValidationError(core.ErrInvalidPersistencyMethod, "persistency_method", raw.PersistencyMethod)
		}
		out.PersistencyMethod = method
	}

	if raw.LactationLength != "" {
		horizon, err := parseHorizon(raw.LactationLength)
		if err != nil {
			return nil, err
		}
		out.LactationLength = horizon
	}

	if raw.MilkUnit != "" {
		unit := MilkUnit(strings.ToLower(raw.MilkUnit))
		if unit != UnitKg && unit != UnitLb {
			return nil, core.NewValidationError(core.ErrInvalidMilkUnit, "milk_unit", raw.MilkUnit)
		}
		out.MilkUnit = unit
	}

	// Drop index-aligned pairs with missing or non-finite values.
	days := make([]float64, 0, len(raw.Days))
	yields := make([]float64, 0, len(raw.Yields))
	for i := range raw.Days {
		if !isFinite(raw.Days[i]) || !isFinite(raw.Yields[i]) {
			continue
		}
		days = append(days, raw.Days[i])
		yields = append(yields, raw.Yields[i])
	}
	if len(days) < 2 {
		return nil, core.ErrInsufficientData
	}
	out.Days = days
	out.Yields = yields

	return out, nil
}

func parseHorizon(s string) (Horizon, error) {
	if strings.EqualFold(s, "max") {
		return Horizon{UseMax: true}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return Horizon{}, core.NewValidationError(core.ErrInvalidLactationLength, "lactation_length", s)
	}
	return Horizon{Days: n}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
