package lactation

// FittingMode selects the estimation approach for a fit request.
type FittingMode string

const (
	FittingFrequentist FittingMode = "frequentist"
	FittingBayesian    FittingMode = "bayesian"
)

// Breed identifies the cow breed used to select Bayesian priors.
type Breed string

const (
	BreedHolstein Breed = "H"
	BreedJersey   Breed = "J"
)

// Region selects the regional prior set of the remote fitting service.
type Region string

const (
	RegionUSA Region = "USA"
	RegionEU  Region = "EU"
)

// PersistencyMethod selects how persistency is computed.
type PersistencyMethod string

const (
	// PersistencyDerived is the average slope of the curve after the peak.
	PersistencyDerived PersistencyMethod = "derived"
	// PersistencyLiterature uses closed-form formulas published for Wood and MilkBot.
	PersistencyLiterature PersistencyMethod = "literature"
)

// MilkUnit is the unit of the milk recordings.
type MilkUnit string

const (
	UnitKg MilkUnit = "kg"
	UnitLb MilkUnit = "lb"
)

// ChenPriorToken requests the Chen et al. literature priors by name.
const ChenPriorToken = "CHEN"

// Prior is a normal prior on one MilkBot parameter.
type Prior struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
}

// MilkBotPriors is a full prior set for the four MilkBot parameters,
// in the wire format of the fitting service.
type MilkBotPriors struct {
	Scale    Prior    `json:"scale"`
	Ramp     Prior    `json:"ramp"`
	Decay    Prior    `json:"decay"`
	Offset   Prior    `json:"offset"`
	SEMilk   float64  `json:"seMilk"`
	MilkUnit MilkUnit `json:"milkUnit,omitempty"`
}

// Horizon is a lactation length: a fixed day count or "use the maximum
// observed day". The zero value means "not set" and defaults to 305 days
// downstream.
type Horizon struct {
	Days   int
	UseMax bool
}

// DefaultHorizonDays is the standard lactation length in days.
const DefaultHorizonDays = 305

// Resolve returns the horizon in days for the given observation days.
func (h Horizon) Resolve(days []float64) int {
	if h.UseMax {
		maxDay := 0
		for _, d := range days {
			if int(d) > maxDay {
				maxDay = int(d)
			}
		}
		if maxDay > 0 {
			return maxDay
		}
		return DefaultHorizonDays
	}
	if h.Days > 0 {
		return h.Days
	}
	return DefaultHorizonDays
}

// IsSet reports whether the caller supplied a horizon.
func (h Horizon) IsSet() bool {
	return h.UseMax || h.Days > 0
}

// PreparedInputs is the canonical, validated bundle handed to the fitting
// and characteristic engines. Day/yield slices are finite, index-aligned,
// and at least two pairs long. Categorical fields are normalized and empty
// when omitted.
type PreparedInputs struct {
	Days   []float64
	Yields []float64

	Model             string
	Fitting           FittingMode
	Breed             Breed
	Parity            int
	Region            Region
	PriorToken        string
	CustomPriors      *MilkBotPriors
	PersistencyMethod PersistencyMethod
	LactationLength   Horizon
	MilkUnit          MilkUnit
}

// MaxDay returns the largest observed day in milk, rounded down.
func (p *PreparedInputs) MaxDay() int {
	maxDay := 0
	for _, d := range p.Days {
		if int(d) > maxDay {
			maxDay = int(d)
		}
	}
	return maxDay
}
