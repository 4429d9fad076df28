package doctrine

import (
	"strings"
	"testing"

	"skyshield/internal/model"
	"skyshield/internal/spec"
)

func fullRoster() []model.AssetStatus {
	return []model.AssetStatus{
		{Class: model.AssetIRIST, Units: 2, RoundsAvailable: 6, CostPerShot: 500_000, EffectiveRangeKm: 40, SuccessRate: 0.93, ReloadMinutes: 720},
		{Class: model.AssetBukM1, Units: 1, RoundsAvailable: 3, CostPerShot: 100_000, EffectiveRangeKm: 35, SuccessRate: 0.85, ReloadMinutes: 480},
		{Class: model.AssetStinger, Units: 4, RoundsAvailable: 8, CostPerShot: 40_000, EffectiveRangeKm: 5, SuccessRate: 0.70, ReloadMinutes: 120},
		{Class: model.AssetInterceptorDrone, Units: 4, RoundsAvailable: 4, CostPerShot: 5_000, EffectiveRangeKm: 20, SuccessRate: 0.60, ReloadMinutes: 30},
		{Class: model.AssetMobileGroup, Units: 2, RoundsAvailable: 2, CostPerShot: 500, EffectiveRangeKm: 2.5, SuccessRate: 0.35, ReloadMinutes: 15},
		{Class: model.AssetHelicopter, Units: 1, RoundsAvailable: 1, CostPerShot: 2_000, EffectiveRangeKm: 10, SuccessRate: 0.50, ReloadMinutes: 90, WeatherDependent: true},
	}
}

func testThreat(t *testing.T, count int, rangeKm float64, priority model.Priority) model.Threat {
	t.Helper()
	th, err := model.NewThreat(model.ThreatShahed136, count, rangeKm, 45, 1200, 185, "Port and power plant", priority, nil)
	if err != nil {
		t.Fatalf("building threat: %v", err)
	}
	return th
}

func findOption(opts []model.GeneratedOption, patternID string) (model.GeneratedOption, bool) {
	for _, o := range opts {
		if o.PatternID == patternID {
			return o, true
		}
	}
	return model.GeneratedOption{}, false
}

func TestSummarizeTiers(t *testing.T) {
	s := Summarize(fullRoster(), DefaultTiers())
	if s.TotalRounds != 24 {
		t.Fatalf("total rounds: got %d, want 24", s.TotalRounds)
	}
	if s.PremiumRounds != 6 || s.ModerateRounds != 11 || s.EconomicalRounds != 7 {
		t.Fatalf("tier rounds: got %d/%d/%d", s.PremiumRounds, s.ModerateRounds, s.EconomicalRounds)
	}
	// Stinger at $40k sits below the layered-eligibility ceiling even
	// though it is moderate-tier.
	if s.CheapCount != 4 {
		t.Fatalf("cheap count: got %d, want 4", s.CheapCount)
	}
	if s.Premium[0].Class != model.AssetIRIST {
		t.Fatalf("premium[0]: got %s", s.Premium[0].Class)
	}
	if s.Moderate[0].Class != model.AssetBukM1 || s.Moderate[1].Class != model.AssetStinger {
		t.Fatalf("moderate order wrong: %s, %s", s.Moderate[0].Class, s.Moderate[1].Class)
	}
	if s.Economical[0].Class != model.AssetMobileGroup {
		t.Fatalf("economical should be cheapest first, got %s", s.Economical[0].Class)
	}
	if !s.HasClass(model.AssetHelicopter) || s.HasClass(model.AssetPatriot) {
		t.Fatalf("class set wrong: %v", s.Classes())
	}
}

func TestImmediatePremiumAllocation(t *testing.T) {
	e := newTestEngine(t, &stubRanker{})
	threat := testThreat(t, 5, 25, model.PriorityCritical)

	opts := e.GenerateOptions(threat, fullRoster(), model.Constraints{Weather: "Nominal"})
	opt, ok := findOption(opts, "immediate_premium")
	if !ok {
		t.Fatalf("expected immediate_premium for a critical target, got %d options", len(opts))
	}
	if got := opt.Parameters["missiles_allocated"]; got != 5 {
		t.Fatalf("allocated: got %v, want 5", got)
	}
	if opt.EstimatedCost != 2_500_000 {
		t.Fatalf("cost: got %d, want 2500000", opt.EstimatedCost)
	}
	if len(opt.AssetsUsed) != 1 || opt.AssetsUsed[0] != string(model.AssetIRIST) {
		t.Fatalf("assets used: %v", opt.AssetsUsed)
	}
}

func TestImmediatePremiumCapsAtAvailableRounds(t *testing.T) {
	e := newTestEngine(t, &stubRanker{})
	threat := testThreat(t, 10, 25, model.PriorityCritical)

	opts := e.GenerateOptions(threat, fullRoster(), model.Constraints{Weather: "Nominal"})
	opt, ok := findOption(opts, "immediate_premium")
	if !ok {
		t.Fatal("expected immediate_premium option")
	}
	if got := opt.Parameters["missiles_allocated"]; got != 6 {
		t.Fatalf("allocated: got %v, want 6 (all available rounds)", got)
	}
	if opt.EstimatedCost != 3_000_000 {
		t.Fatalf("cost: got %d, want 3000000", opt.EstimatedCost)
	}
}

func TestImmediatePremiumDeclinesWithoutPremiumTier(t *testing.T) {
	e := newTestEngine(t, &stubRanker{})
	threat := testThreat(t, 5, 25, model.PriorityCritical)
	roster := []model.AssetStatus{
		{Class: model.AssetBukM1, Units: 1, RoundsAvailable: 20, CostPerShot: 100_000, EffectiveRangeKm: 35, SuccessRate: 0.85},
	}

	opts := e.GenerateOptions(threat, roster, model.Constraints{Weather: "Nominal"})
	if _, ok := findOption(opts, "immediate_premium"); ok {
		t.Fatal("immediate_premium should decline with no premium-tier asset")
	}
}

func TestDroneFirstTwoLayerMath(t *testing.T) {
	e := newTestEngine(t, &stubRanker{})
	threat := testThreat(t, 5, 25, model.PriorityHigh)
	c := model.Constraints{Weather: "Nominal"}

	opts := e.GenerateOptions(threat, fullRoster(), c)
	opt, ok := findOption(opts, "drone_first")
	if !ok {
		t.Fatal("expected drone_first for a high-priority threat beyond 15km")
	}

	table := spec.Default()
	droneP := SuccessRate(table, model.AssetInterceptorDrone, 25*0.7, threat.Class, c.Weather)
	missileP := SuccessRate(table, model.AssetBukM1, 25*0.4, threat.Class, c.Weather)
	want := pct(orCombine(droneP, missileP))
	if opt.SuccessPercent != want {
		t.Fatalf("combined success: got %d, want %d", opt.SuccessPercent, want)
	}
	// 4 drones (rounds cap) at $5k plus 2 Buk-M1 at $100k.
	if opt.EstimatedCost != 4*5_000+2*100_000 {
		t.Fatalf("cost: got %d", opt.EstimatedCost)
	}
}

func TestDroneFirstNeedsDronesInRoster(t *testing.T) {
	e := newTestEngine(t, &stubRanker{})
	threat := testThreat(t, 5, 25, model.PriorityHigh)
	roster := []model.AssetStatus{
		{Class: model.AssetBukM1, Units: 1, RoundsAvailable: 3, CostPerShot: 100_000},
		{Class: model.AssetMobileGroup, Units: 2, RoundsAvailable: 2, CostPerShot: 500},
	}

	opts := e.GenerateOptions(threat, roster, model.Constraints{Weather: "Nominal"})
	if _, ok := findOption(opts, "drone_first"); ok {
		t.Fatal("drone_first should not fire without interceptor drones")
	}
}

func TestThreeTierPadsMissingLayer(t *testing.T) {
	e := newTestEngine(t, &stubRanker{})
	threat := testThreat(t, 6, 30, model.PriorityMedium)
	// Two tiers only: the top layer must repeat the moderate system.
	roster := []model.AssetStatus{
		{Class: model.AssetBukM1, Units: 1, RoundsAvailable: 6, CostPerShot: 100_000, EffectiveRangeKm: 35},
		{Class: model.AssetMobileGroup, Units: 2, RoundsAvailable: 4, CostPerShot: 500, EffectiveRangeKm: 2.5},
		{Class: model.AssetInterceptorDrone, Units: 3, RoundsAvailable: 3, CostPerShot: 5_000, EffectiveRangeKm: 20},
	}

	opts := e.GenerateOptions(threat, roster, model.Constraints{Weather: "Nominal"})
	opt, ok := findOption(opts, "three_tier_layered")
	if !ok {
		t.Fatal("expected three_tier_layered option")
	}
	if opt.Parameters["layer_1_system"] != string(model.AssetMobileGroup) {
		t.Fatalf("layer 1: got %v", opt.Parameters["layer_1_system"])
	}
	if opt.Parameters["layer_3_system"] != opt.Parameters["layer_2_system"] {
		t.Fatalf("layer 3 should repeat layer 2: %v vs %v",
			opt.Parameters["layer_3_system"], opt.Parameters["layer_2_system"])
	}
}

func TestMinimalEconomicalPreservesMissiles(t *testing.T) {
	e := newTestEngine(t, &stubRanker{})
	threat := testThreat(t, 5, 12, model.PriorityLow)
	c := model.Constraints{Weather: "Nominal", ExpectedFollowOnWaves: 2}

	opts := e.GenerateOptions(threat, fullRoster(), c)
	opt, ok := findOption(opts, "minimal_economical")
	if !ok {
		t.Fatal("expected minimal_economical for a low-priority threat")
	}
	for _, sys := range opt.AssetsUsed {
		switch sys {
		case string(model.AssetIRIST), string(model.AssetBukM1), string(model.AssetStinger):
			t.Fatalf("minimal defense committed a missile system: %s", sys)
		}
	}
	// 2x gun-group engagements plus 4 drones.
	if opt.EstimatedCost != 2*500+4*5_000 {
		t.Fatalf("cost: got %d", opt.EstimatedCost)
	}
	losses, _ := opt.Parameters["acceptable_losses"].(int)
	if losses < 1 || losses > threat.Count {
		t.Fatalf("acceptable losses out of range: %d", losses)
	}
	if opt.Parameters["helicopter_count"] != 1 {
		t.Fatalf("helicopter should fly in nominal weather, got %v", opt.Parameters["helicopter_count"])
	}
}

func TestMinimalEconomicalGroundsHelicopterOffNominal(t *testing.T) {
	e := newTestEngine(t, &stubRanker{})
	threat := testThreat(t, 5, 12, model.PriorityLow)

	opts := e.GenerateOptions(threat, fullRoster(), model.Constraints{Weather: "Marginal"})
	opt, ok := findOption(opts, "minimal_economical")
	if !ok {
		t.Fatal("expected minimal_economical option")
	}
	if opt.Parameters["helicopter_count"] != 0 {
		t.Fatalf("helicopter should stay grounded, got %v", opt.Parameters["helicopter_count"])
	}
}

func TestEWKineticForCountermeasureVulnerableThreats(t *testing.T) {
	e := newTestEngine(t, &stubRanker{})
	c := model.Constraints{Weather: "Nominal"}
	roster := append(fullRoster(), model.AssetStatus{
		Class: model.AssetBukovelEW, Units: 1, RoundsAvailable: 1, CostPerShot: 0, EffectiveRangeKm: 15,
	})

	threat, err := model.NewThreat(model.ThreatLancet, 4, 10, 90, 800, 120, "Artillery position", model.PriorityHigh, nil)
	if err != nil {
		t.Fatalf("building threat: %v", err)
	}

	opts := e.GenerateOptions(threat, roster, c)
	opt, ok := findOption(opts, "ew_kinetic")
	if !ok {
		t.Fatal("expected ew_kinetic for a Lancet with the jammer on hand")
	}
	// Jamming is free; only the kinetic layer is costed: 2x Buk-M1.
	if opt.EstimatedCost != 2*100_000 {
		t.Fatalf("cost: got %d", opt.EstimatedCost)
	}
	table := spec.Default()
	kineticP := SuccessRate(table, model.AssetBukM1, 10*0.5, threat.Class, c.Weather)
	if want := pct(orCombine(ewSuccessRate, kineticP)); opt.SuccessPercent != want {
		t.Fatalf("combined success: got %d, want %d", opt.SuccessPercent, want)
	}

	shahed := testThreat(t, 4, 10, model.PriorityHigh)
	opts = e.GenerateOptions(shahed, roster, c)
	if _, ok := findOption(opts, "ew_kinetic"); ok {
		t.Fatal("ew_kinetic should not fire against inertially guided threats")
	}
}

func TestCoordinationTrigger(t *testing.T) {
	e := newTestEngine(t, &stubRanker{})
	roster := []model.AssetStatus{
		{Class: model.AssetBukM1, Units: 1, RoundsAvailable: 10, CostPerShot: 100_000},
	}
	threat := testThreat(t, 5, 25, model.PriorityMedium)

	// 10 rounds against 5 threats sits exactly at the 2x sufficiency
	// boundary: no trigger.
	opts := e.GenerateOptions(threat, roster, model.Constraints{Weather: "Nominal", ExpectedFollowOnWaves: 1})
	if _, ok := findOption(opts, "coordination"); ok {
		t.Fatal("coordination should not fire at exactly 2x rounds")
	}

	roster[0].RoundsAvailable = 9
	opts = e.GenerateOptions(threat, roster, model.Constraints{Weather: "Nominal", ExpectedFollowOnWaves: 1})
	if _, ok := findOption(opts, "coordination"); !ok {
		t.Fatal("coordination should fire below 2x rounds")
	}

	roster[0].RoundsAvailable = 10
	opts = e.GenerateOptions(threat, roster, model.Constraints{Weather: "Nominal", ExpectedFollowOnWaves: 2})
	if _, ok := findOption(opts, "coordination"); !ok {
		t.Fatal("coordination should fire when more than one wave is expected")
	}
}

func TestGenerateOptionsDeterministic(t *testing.T) {
	e := newTestEngine(t, &stubRanker{})
	threat := testThreat(t, 5, 25, model.PriorityCritical)
	c := model.Constraints{Weather: "Marginal", ExpectedFollowOnWaves: 2}

	first := e.GenerateOptions(threat, fullRoster(), c)
	second := e.GenerateOptions(threat, fullRoster(), c)
	if len(first) == 0 || len(first) != len(second) {
		t.Fatalf("option counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Narrative != second[i].Narrative {
			t.Fatalf("narrative %d differs between identical invocations", i)
		}
		if first[i].EstimatedCost != second[i].EstimatedCost || first[i].SuccessPercent != second[i].SuccessPercent {
			t.Fatalf("numbers differ for %s", first[i].PatternID)
		}
	}
}

func TestNarrativesRenderMoneyFormatting(t *testing.T) {
	e := newTestEngine(t, &stubRanker{})
	threat := testThreat(t, 5, 25, model.PriorityCritical)

	opts := e.GenerateOptions(threat, fullRoster(), model.Constraints{Weather: "Nominal"})
	opt, ok := findOption(opts, "immediate_premium")
	if !ok {
		t.Fatal("expected immediate_premium option")
	}
	if !strings.Contains(opt.Narrative, "$2,500,000") {
		t.Fatalf("narrative missing formatted cost:\n%s", opt.Narrative)
	}
}
