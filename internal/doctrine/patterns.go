package doctrine

import (
	"fmt"
	"math"

	"skyshield/internal/model"
	"skyshield/internal/spec"
)

// immediatePremium commits the best premium interceptor immediately.
// Critical targets tolerate no leak-through.
type immediatePremium struct {
	table *spec.Table
}

func (p *immediatePremium) ID() string    { return "immediate_premium" }
func (p *immediatePremium) Title() string { return "PRIORITY 1: Immediate critical-infrastructure defense" }

func (p *immediatePremium) Applies(t model.Threat, _ Summary, _ model.Constraints) bool {
	return t.Priority == model.PriorityCritical
}

func (p *immediatePremium) Compute(t model.Threat, s Summary, c model.Constraints) (Params, bool) {
	if len(s.Premium) == 0 {
		return nil, false
	}
	primary := s.Premium[0]
	allocated := minInt(t.Count, primary.RoundsAvailable)
	rate := SuccessRate(p.table, primary.Class, t.RangeKm, t.Class, c.Weather)

	return Params{
		"premium_system":      string(primary.Class),
		"missiles_allocated":  allocated,
		"threat_count":        t.Count,
		"threat_type":         string(t.Class),
		"current_range":       t.RangeKm,
		"time_to_launch":      2,
		"target_description":  t.TargetDescription,
		"reserve_description": fmt.Sprintf("%dx %s, all other systems", primary.RoundsAvailable-allocated, primary.Class),
		"cost":                primary.CostPerShot * allocated,
		"success_rate":        pct(rate),
		"systems_used":        []string{string(primary.Class)},
	}, true
}

func (p *immediatePremium) Template() string {
	return `OPTION: Immediate protection of critical infrastructure (PRIORITY 1)

DOCTRINE: critical target -> commit premium interceptors NOW

Commit {{.premium_system}} immediately:
- {{.missiles_allocated}}x {{.premium_system}} against {{.threat_count}}x {{.threat_type}}
- Range: {{.current_range}}km
- Time to launch: {{.time_to_launch}} minutes
- Reserve: {{.reserve_description}}

RATIONALE:
- Target "{{.target_description}}" is CRITICAL (munitions, power, command)
- Doctrine mandates immediate use of premium systems
- Leak-through risk is unacceptable

ADVANTAGES:
- {{.success_rate}}% kill probability
- Maximum confidence in the defense
- Conforms to PRIORITY 1 doctrine

COST: ${{money .cost}}
SUCCESS PROBABILITY: {{.success_rate}}%
PRIORITY LEVEL: CRITICAL`
}

// droneFirst stages cheap interceptor drones at an early intercept radius
// with a missile backup behind them.
type droneFirst struct {
	table *spec.Table
}

func (p *droneFirst) ID() string    { return "drone_first" }
func (p *droneFirst) Title() string { return "PRIORITY 2: Drones first, missiles in reserve" }

func (p *droneFirst) Applies(t model.Threat, s Summary, _ model.Constraints) bool {
	return t.Priority == model.PriorityHigh &&
		t.RangeKm > 15 &&
		s.HasClass(model.AssetInterceptorDrone)
}

func (p *droneFirst) Compute(t model.Threat, s Summary, c model.Constraints) (Params, bool) {
	drones := s.economicalOf(model.AssetInterceptorDrone)
	if len(drones) == 0 || len(s.Moderate) == 0 {
		return nil, false
	}
	droneSys := drones[0]
	missileSys := s.Moderate[0]

	droneCount := minInt(maxInt(2, t.Count), droneSys.RoundsAvailable)
	missileCount := minInt(maxInt(2, t.Count/2), missileSys.RoundsAvailable)

	// Drones launch at an earlier intercept geometry, the missile layer
	// engages leakers much closer in.
	droneSuccess := SuccessRate(p.table, droneSys.Class, t.RangeKm*0.7, t.Class, c.Weather)
	missileSuccess := SuccessRate(p.table, missileSys.Class, t.RangeKm*0.4, t.Class, c.Weather)
	combined := orCombine(droneSuccess, missileSuccess)

	droneCost := droneSys.CostPerShot * droneCount
	missileCost := missileSys.CostPerShot * missileCount

	return Params{
		"drone_count":           droneCount,
		"drone_launch_time":     3,
		"drone_cost":            droneCost,
		"drone_success_rate":    pct(droneSuccess),
		"missile_count":         missileCount,
		"missile_system":        string(missileSys.Class),
		"missile_range":         int(t.RangeKm * 0.4),
		"missile_cost":          missileCost,
		"total_cost":            droneCost + missileCost,
		"combined_success_rate": pct(combined),
		"threat_count":          t.Count,
		"threat_type":           string(t.Class),
		// Worst case: both layers fire. The cheaper best case is shown
		// in the scenario block, not in the headline cost.
		"cost":         droneCost + missileCost,
		"success_rate": pct(combined),
		"systems_used": []string{string(droneSys.Class), string(missileSys.Class)},
	}, true
}

func (p *droneFirst) Template() string {
	return `OPTION: Interceptor drones with missile reserve (PRIORITY 2)

DOCTRINE: high priority + >15km -> try drones first

STAGE 1 (interceptor drones):
- {{.drone_count}}x interceptor drones against {{.threat_count}}x {{.threat_type}}
- Launch: {{.drone_launch_time}} minutes
- Cost: ${{money .drone_cost}}
- Probability: {{.drone_success_rate}}%

STAGE 2 (if leak-through):
- {{.missile_count}}x {{.missile_system}} in reserve
- Engagement radius: {{.missile_range}}km
- Additional cost: ${{money .missile_cost}}

SCENARIOS:
- Drones succeed: save ${{money .missile_cost}} (only ${{money .drone_cost}} spent)
- Drones fail: commit {{.missile_system}} (${{money .total_cost}} total)

ADVANTAGES:
- Expensive missiles preserved when drones succeed
- Two defensive layers
- Conforms to PRIORITY 2 doctrine

COST: ${{money .cost}}
SUCCESS PROBABILITY: {{.combined_success_rate}}% (cumulative)`
}

// threeTierLayered builds up to three layers, cheapest outermost, each at a
// progressively shorter simulated intercept range.
type threeTierLayered struct {
	table *spec.Table
}

func (p *threeTierLayered) ID() string    { return "three_tier_layered" }
func (p *threeTierLayered) Title() string { return "PRIORITY 3: Layered economical defense" }

func (p *threeTierLayered) Applies(t model.Threat, s Summary, _ model.Constraints) bool {
	if t.Priority != model.PriorityMedium && t.Priority != model.PriorityHigh {
		return false
	}
	return s.CheapCount >= 2
}

func (p *threeTierLayered) Compute(t model.Threat, s Summary, c model.Constraints) (Params, bool) {
	var layers []model.AssetStatus
	if len(s.Economical) > 0 {
		layers = append(layers, s.Economical[0])
	}
	if len(s.Moderate) > 0 {
		layers = append(layers, s.Moderate[0])
	}
	if len(s.Premium) > 0 {
		layers = append(layers, s.Premium[0])
	}
	if len(layers) < 2 {
		return nil, false
	}
	for len(layers) < 3 {
		layers = append(layers, layers[len(layers)-1])
	}
	l1, l2, l3 := layers[0], layers[1], layers[2]

	r1 := t.RangeKm * 0.5
	r2 := t.RangeKm * 0.35
	r3 := t.RangeKm * 0.2

	n1 := minInt(maxInt(2, t.Count), l1.RoundsAvailable)
	n2 := minInt(maxInt(1, t.Count/2), l2.RoundsAvailable)
	n3 := minInt(maxInt(1, t.Count/3), l3.RoundsAvailable)

	p1 := SuccessRate(p.table, l1.Class, r1, t.Class, c.Weather)
	p2 := SuccessRate(p.table, l2.Class, r2, t.Class, c.Weather)
	p3 := SuccessRate(p.table, l3.Class, r3, t.Class, c.Weather)
	cumulative := unionCombine(p1, p2, p3)

	c1 := l1.CostPerShot * n1
	c2 := l2.CostPerShot * n2
	c3 := l3.CostPerShot * n3

	return Params{
		"range_1":            int(r1),
		"layer_1_system":     string(l1.Class),
		"layer_1_count":      n1,
		"layer_1_cost":       c1,
		"layer_1_success":    pct(p1),
		"range_2":            int(r2),
		"layer_2_system":     string(l2.Class),
		"layer_2_count":      n2,
		"layer_2_cost":       c2,
		"layer_2_success":    pct(p2),
		"range_3":            int(r3),
		"layer_3_system":     string(l3.Class),
		"layer_3_count":      n3,
		"layer_3_cost":       c3,
		"layer_3_success":    pct(p3),
		"min_cost":           c1,
		"max_cost":           c1 + c2 + c3,
		"cumulative_success": pct(cumulative),
		// Typical case: the first two layers fire.
		"cost":         c1 + c2,
		"success_rate": pct(cumulative),
		"systems_used": []string{string(l1.Class), string(l2.Class), string(l3.Class)},
	}, true
}

func (p *threeTierLayered) Template() string {
	return `OPTION: Layered defense with economical systems (PRIORITY 3)

DOCTRINE: medium priority -> spend cheap systems, preserve missiles

LAYER 1 ({{.range_1}}km): {{.layer_1_system}}
- {{.layer_1_count}}x {{.layer_1_system}}
- Cost: ${{money .layer_1_cost}}
- Probability: {{.layer_1_success}}%

LAYER 2 ({{.range_2}}km): {{.layer_2_system}}
- {{.layer_2_count}}x {{.layer_2_system}} (on leak-through)
- Cost: ${{money .layer_2_cost}}
- Probability: {{.layer_2_success}}%

LAYER 3 ({{.range_3}}km): {{.layer_3_system}}
- {{.layer_3_count}}x {{.layer_3_system}} (last reserve)
- Cost: ${{money .layer_3_cost}}
- Probability: {{.layer_3_success}}%

ECONOMICS:
- Minimum cost: ${{money .min_cost}} (layer 1 only)
- Typical cost: ${{money .cost}} (layers 1-2)
- Maximum cost: ${{money .max_cost}} (all layers)
- Missiles preserved for follow-on waves

ADVANTAGES:
- Multiple intercept chances
- Minimal spend when layer 1 succeeds
- {{.cumulative_success}}% cumulative probability

COST: ${{money .cost}}
PROBABILITY: {{.cumulative_success}}%`
}

// minimalEconomical accepts calculated risk on low-priority targets: only
// mobile gun groups and interceptor drones, never a missile.
type minimalEconomical struct {
	table *spec.Table
}

func (p *minimalEconomical) ID() string    { return "minimal_economical" }
func (p *minimalEconomical) Title() string { return "PRIORITY 4: Minimal defense (accepted risk)" }

func (p *minimalEconomical) Applies(t model.Threat, _ Summary, _ model.Constraints) bool {
	return t.Priority == model.PriorityLow
}

func (p *minimalEconomical) Compute(t model.Threat, s Summary, c model.Constraints) (Params, bool) {
	mobile := s.economicalOf(model.AssetMobileGroup)
	drones := s.economicalOf(model.AssetInterceptorDrone)
	helicopters := s.economicalOf(model.AssetHelicopter)
	if len(mobile) == 0 && len(drones) == 0 {
		return nil, false
	}

	totalCost := 0
	combined := 0.0
	var used []string

	if len(mobile) > 0 {
		sys := mobile[0]
		n := minInt(t.Count, sys.RoundsAvailable)
		totalCost += sys.CostPerShot * n
		// Gun groups engage at their fixed short radius regardless of
		// current threat range.
		combined = SuccessRate(p.table, sys.Class, 2.0, t.Class, c.Weather)
		used = append(used, string(sys.Class))
	}
	if len(drones) > 0 {
		sys := drones[0]
		n := minInt(t.Count, sys.RoundsAvailable)
		totalCost += sys.CostPerShot * n
		droneSuccess := SuccessRate(p.table, sys.Class, t.RangeKm*0.6, t.Class, c.Weather)
		combined = orCombine(combined, droneSuccess)
		used = append(used, string(sys.Class))
	}

	heliCount := 0
	if c.Weather == "Nominal" && len(helicopters) > 0 {
		heliCount = helicopters[0].Units
		used = append(used, string(helicopters[0].Class))
	}
	if len(used) > 3 {
		used = used[:3]
	}

	acceptableLosses := maxInt(1, int(math.Round(float64(t.Count)*(1-combined))))

	mobileUnits := 0
	if len(mobile) > 0 {
		mobileUnits = mobile[0].Units
	}
	droneUnits := 0
	if len(drones) > 0 {
		droneUnits = drones[0].Units
	}

	return Params{
		"mobile_count":       mobileUnits,
		"drone_count":        droneUnits,
		"helicopter_count":   heliCount,
		"target_description": t.TargetDescription,
		"follow_on_waves":    c.ExpectedFollowOnWaves,
		"threat_count":       t.Count,
		"acceptable_losses":  acceptableLosses,
		"cost":               totalCost,
		"success_rate":       pct(combined),
		"systems_used":       used,
	}, true
}

func (p *minimalEconomical) Template() string {
	return `OPTION: Minimal defense - accept calculated risk (PRIORITY 4)

DOCTRINE: low priority -> gun groups only, do NOT spend missiles

Use ONLY economical systems:
- {{.mobile_count}}x mobile gun groups
- {{.drone_count}}x interceptor drones (if available)
- {{.helicopter_count}}x helicopters (weather permitting)

PRESERVE ALL MISSILES for higher-priority targets

RATIONALE:
- Target "{{.target_description}}" is low value
- Doctrine tolerates some leak-through on low-priority targets
- {{.follow_on_waves}} follow-on waves expected - preserve capacity

ACCEPTED RISK:
- {{.acceptable_losses}} of {{.threat_count}} threats may leak through
- Minimal damage on a low-priority target
- 100% of missiles preserved for critical threats

COST: ${{money .cost}} (MINIMAL)
PROBABILITY: {{.success_rate}}%
MISSILES PRESERVED: 100%`
}

// ewKinetic pairs the reusable jammer with a kinetic backup. Only threats
// that navigate on satellite links are worth jamming.
type ewKinetic struct {
	table *spec.Table
}

// ewSuccessRate is the fixed modeled probability that jamming defeats a
// countermeasure-vulnerable threat. The jammer is reusable, so the EW layer
// carries no marginal cost.
const ewSuccessRate = 0.75

func (p *ewKinetic) ID() string    { return "ew_kinetic" }
func (p *ewKinetic) Title() string { return "EW plus kinetic engagement (FPV/Lancet)" }

func (p *ewKinetic) Applies(t model.Threat, s Summary, _ model.Constraints) bool {
	if t.Class != model.ThreatFPV && t.Class != model.ThreatLancet {
		return false
	}
	return s.HasClass(model.AssetBukovelEW)
}

func (p *ewKinetic) Compute(t model.Threat, s Summary, c model.Constraints) (Params, bool) {
	var kinetic model.AssetStatus
	switch {
	case len(s.Moderate) > 0:
		kinetic = s.Moderate[0]
	case len(s.Economical) > 0:
		kinetic = s.Economical[0]
	default:
		return nil, false
	}

	kineticCount := maxInt(2, t.Count/2)
	kineticSuccess := SuccessRate(p.table, kinetic.Class, t.RangeKm*0.5, t.Class, c.Weather)
	combined := orCombine(ewSuccessRate, kineticSuccess)

	backup := kinetic
	if len(s.Economical) > 0 {
		backup = s.Economical[0]
	}

	kineticCost := kinetic.CostPerShot * kineticCount

	return Params{
		"threat_type":          string(t.Class),
		"ew_success_rate":      pct(ewSuccessRate),
		"kinetic_count":        kineticCount,
		"kinetic_system":       string(kinetic.Class),
		"kinetic_cost":         kineticCost,
		"kinetic_success_rate": pct(kineticSuccess),
		"backup_system":        string(backup.Class),
		"combined_success":     pct(combined),
		// The EW layer is free and reusable; only the kinetic layer costs.
		"cost":         kineticCost,
		"success_rate": pct(combined),
		"systems_used": []string{string(model.AssetBukovelEW), string(kinetic.Class)},
	}, true
}

func (p *ewKinetic) Template() string {
	return `OPTION: Electronic countermeasures plus kinetic engagement

Combined approach for {{.threat_type}}:

STAGE 1: Bukovel EW
- Attempt to break drone navigation
- ZERO cost (reusable)
- {{.ew_success_rate}}% probability

STAGE 2: Kinetic systems (if EW fails)
- {{.kinetic_count}}x {{.kinetic_system}}
- Cost: ${{money .kinetic_cost}}
- {{.kinetic_success_rate}}% probability

STAGE 3: Reserve
- {{.backup_system}} standing by

{{.threat_type}} SPECIFICS:
- Highly vulnerable to electronic countermeasures
- EW is effective against satellite navigation
- Missiles saved by leading with EW

ADVANTAGES:
- EW is free (reusable)
- Two defensive layers
- {{.combined_success}}% combined probability

COST: ${{money .cost}}
PROBABILITY: {{.combined_success}}%`
}

// coordination fires on a resource-insufficiency or sustainment signal, not
// on threat priority: it models a request for external support.
type coordination struct{}

func (p *coordination) ID() string    { return "coordination" }
func (p *coordination) Title() string { return "Request brigade coordination" }

func (p *coordination) Applies(t model.Threat, s Summary, c model.Constraints) bool {
	return s.TotalRounds < t.Count*2 || c.ExpectedFollowOnWaves > 1
}

func (p *coordination) Compute(t model.Threat, s Summary, c model.Constraints) (Params, bool) {
	var minimal model.AssetStatus
	switch {
	case len(s.Economical) > 0:
		minimal = s.Economical[0]
	case len(s.Moderate) > 0:
		minimal = s.Moderate[0]
	case len(s.Premium) > 0:
		minimal = s.Premium[0]
	default:
		return nil, false
	}

	return Params{
		"my_allocation":    fmt.Sprintf("1x %s", minimal.Class),
		"reserve_percent":  90,
		"support_sources":  "Neighboring batteries, brigade reserve, EW support",
		"response_time":    3,
		"expected_support": "Coordinated resource allocation across the region",
		"follow_on_waves":  c.ExpectedFollowOnWaves,
		"total_missiles":   s.TotalRounds,
		"threat_range":     t.RangeKm,
		"cost":             minimal.CostPerShot,
		"success_rate":     70,
		"systems_used":     []string{"Coordination"},
	}, true
}

func (p *coordination) Template() string {
	return `OPTION: Request coordination with brigade

Coordinate to optimize allocation across the whole night:

MY CONTRIBUTION:
- Minimal commitment: {{.my_allocation}}
- Holding {{.reserve_percent}}% in reserve

SUPPORT REQUEST:
- Sources: {{.support_sources}}
- Response time: {{.response_time}} minutes
- Expected: {{.expected_support}}

RATIONALE:
- {{.follow_on_waves}} follow-on waves expected
- My resources are limited ({{.total_missiles}} rounds)
- Brigade-level optimization is more efficient

ADVANTAGES:
- My resources preserved for later waves
- Avoids duplicated effort
- Better regional coordination

RISKS:
- Coordination takes {{.response_time}} minutes
- Threat currently at {{.threat_range}}km
- Support may arrive too late

COST: ${{money .cost}} (minimal)
PROBABILITY: {{.success_rate}}% (coordination dependent)`
}
