package lactation

// ChenPriors returns the Chen et al. literature priors in the fitting
// service's format. Parities of 3 and above share one prior group.
func ChenPriors(parity int) MilkBotPriors {
	switch parity {
	case 1:
		return MilkBotPriors{
			Scale:  Prior{Mean: 34.11, SD: 7},
			Ramp:   Prior{Mean: 29.96, SD: 3},
			Decay:  Prior{Mean: 0.001835, SD: 0.000738},
			Offset: Prior{Mean: -0.5, SD: 0.02},
			SEMilk: 4, MilkUnit: UnitKg,
		}
	case 2:
		return MilkBotPriors{
			Scale:  Prior{Mean: 44.26, SD: 9.57},
			Ramp:   Prior{Mean: 22.52, SD: 3},
			Decay:  Prior{Mean: 0.002745, SD: 0.000979},
			Offset: Prior{Mean: -0.78, SD: 0.07},
			SEMilk: 4, MilkUnit: UnitKg,
		}
	default:
		return MilkBotPriors{
			Scale:  Prior{Mean: 48.41, SD: 10.66},
			Ramp:   Prior{Mean: 22.54, SD: 8.724},
			Decay:  Prior{Mean: 0.002997, SD: 0.000972},
			Offset: Prior{Mean: 0.0, SD: 0.03},
			SEMilk: 4, MilkUnit: UnitKg,
		}
	}
}

// BuildPrior assembles a custom prior set in the service format.
func BuildPrior(scaleMean, scaleSD, rampMean, rampSD, decayMean, decaySD, offsetMean, offsetSD, seMilk float64) MilkBotPriors {
	return MilkBotPriors{
		Scale:  Prior{Mean: scaleMean, SD: scaleSD},
		Ramp:   Prior{Mean: rampMean, SD: rampSD},
		Decay:  Prior{Mean: decayMean, SD: decaySD},
		Offset: Prior{Mean: offsetMean, SD: offsetSD},
		SEMilk: seMilk,
	}
}
