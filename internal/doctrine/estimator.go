package doctrine

import (
	"math"

	"skyshield/internal/model"
	"skyshield/internal/spec"
)

// adverseWeather reports whether a weather label degrades weather-sensitive
// platforms to the point of near-inoperability.
func adverseWeather(weather string) bool {
	switch weather {
	case "Heavy clouds", "Rain", "Fog":
		return true
	}
	return false
}

// SuccessRate estimates the kill probability for one engagement of one
// threat by the given asset class at the given range. Deterministic and
// side-effect free; every pattern calculator uses it.
//
// An untabulated class yields spec.DefaultPk. Beyond optimal range the base
// probability degrades linearly with overshoot, floored at 0.6 of intrinsic
// capability; inside optimal range a modest closeness bonus applies, capped
// at 1.0 and never below 0.85. Weather-sensitive classes are multiplied by
// 0.3 under adverse weather.
func SuccessRate(table *spec.Table, class model.AssetClass, rangeKm float64, threatClass model.ThreatClass, weather string) float64 {
	entry, ok := table.Lookup(class)
	if !ok {
		return spec.DefaultPk
	}

	optimal := entry.OptimalRangeKm
	var rangeFactor float64
	if rangeKm > optimal {
		rangeFactor = math.Max(0.6, 1.0-(rangeKm-optimal)/(optimal*2))
	} else {
		rangeFactor = math.Min(1.0, 0.85+(optimal-rangeKm)/optimal*0.15)
	}

	weatherFactor := 1.0
	if entry.WeatherSensitive && adverseWeather(weather) {
		weatherFactor = 0.3
	}

	return entry.BasePk * rangeFactor * weatherFactor
}

// orCombine is the two-layer independent-event union: the first layer
// succeeds, or it fails and the second succeeds.
func orCombine(p1, p2 float64) float64 {
	return p1 + (1-p1)*p2
}

// unionCombine is the n-layer form 1 - prod(1 - p_i).
func unionCombine(ps ...float64) float64 {
	fail := 1.0
	for _, p := range ps {
		fail *= 1 - p
	}
	return 1 - fail
}
