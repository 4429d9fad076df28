package doctrine

import (
	"sort"

	"skyshield/internal/model"
)

// Tiers holds the cost thresholds that bucket roster entries. CheapMax is
// the layered-defense eligibility ceiling, distinct from the economical
// tier boundary.
type Tiers struct {
	PremiumMin  int
	ModerateMin int
	CheapMax    int
}

func DefaultTiers() Tiers {
	return Tiers{PremiumMin: 400_000, ModerateMin: 30_000, CheapMax: 50_000}
}

// Summary is the per-invocation aggregate view of the roster. It is
// computed once and handed unchanged to every pattern predicate and
// calculator.
type Summary struct {
	PremiumRounds    int
	ModerateRounds   int
	EconomicalRounds int
	TotalRounds      int
	CheapCount       int

	// Premium and Moderate are sorted costliest first; Economical is
	// sorted cheapest first, matching layer-selection order.
	Premium    []model.AssetStatus
	Moderate   []model.AssetStatus
	Economical []model.AssetStatus

	classes map[model.AssetClass]struct{}
}

func Summarize(roster []model.AssetStatus, tiers Tiers) Summary {
	s := Summary{classes: make(map[model.AssetClass]struct{}, len(roster))}
	for _, a := range roster {
		s.TotalRounds += a.RoundsAvailable
		s.classes[a.Class] = struct{}{}
		if a.CostPerShot < tiers.CheapMax {
			s.CheapCount++
		}
		switch {
		case a.CostPerShot >= tiers.PremiumMin:
			s.PremiumRounds += a.RoundsAvailable
			s.Premium = append(s.Premium, a)
		case a.CostPerShot >= tiers.ModerateMin:
			s.ModerateRounds += a.RoundsAvailable
			s.Moderate = append(s.Moderate, a)
		default:
			s.EconomicalRounds += a.RoundsAvailable
			s.Economical = append(s.Economical, a)
		}
	}
	sort.SliceStable(s.Premium, func(i, j int) bool {
		return s.Premium[i].CostPerShot > s.Premium[j].CostPerShot
	})
	sort.SliceStable(s.Moderate, func(i, j int) bool {
		return s.Moderate[i].CostPerShot > s.Moderate[j].CostPerShot
	})
	sort.SliceStable(s.Economical, func(i, j int) bool {
		return s.Economical[i].CostPerShot < s.Economical[j].CostPerShot
	})
	return s
}

func (s Summary) HasClass(class model.AssetClass) bool {
	_, ok := s.classes[class]
	return ok
}

func (s Summary) Classes() []model.AssetClass {
	out := make([]model.AssetClass, 0, len(s.classes))
	for class := range s.classes {
		out = append(out, class)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// economicalOf returns the economical-tier entries of one class, cheapest
// first.
func (s Summary) economicalOf(class model.AssetClass) []model.AssetStatus {
	var out []model.AssetStatus
	for _, a := range s.Economical {
		if a.Class == class {
			out = append(out, a)
		}
	}
	return out
}
