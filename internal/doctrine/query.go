package doctrine

import (
	"fmt"
	"strings"

	"skyshield/internal/model"
)

// BuildQuery renders the natural-language situation description submitted
// to the coherence ranker alongside the candidate narratives.
func BuildQuery(t model.Threat, roster []model.AssetStatus, c model.Constraints, commanderContext string) string {
	if commanderContext == "" {
		commanderContext = "2 years defending against strike-drone raids"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I command an air-defense battery near %s.\n", t.TargetDescription)
	fmt.Fprintf(&b, "My experience: %s\n\n", commanderContext)

	b.WriteString("CURRENT THREAT:\n")
	fmt.Fprintf(&b, "- Type: %dx %s\n", t.Count, t.Class)
	fmt.Fprintf(&b, "- Range: %gkm and closing\n", t.RangeKm)
	fmt.Fprintf(&b, "- Speed: %gkm/h\n", t.SpeedKmh)
	fmt.Fprintf(&b, "- Altitude: %dm\n", t.AltitudeM)
	fmt.Fprintf(&b, "- Bearing: %d deg -> %s\n", t.BearingDeg, t.TargetDescription)
	fmt.Fprintf(&b, "- Time to impact: %.1f minutes\n", t.TimeToImpactMin)
	fmt.Fprintf(&b, "- TARGET PRIORITY: %s\n", t.Priority)

	b.WriteString("\nMY AVAILABLE SYSTEMS:\n")
	for _, a := range roster {
		fmt.Fprintf(&b, "- %s: %d rounds available\n", a.Class, a.RoundsAvailable)
		fmt.Fprintf(&b, "  - Cost: $%d per shot\n", a.CostPerShot)
		fmt.Fprintf(&b, "  - Range: %gkm\n", a.EffectiveRangeKm)
		fmt.Fprintf(&b, "  - Effectiveness: %d%%\n", int(a.SuccessRate*100))
		if a.Status != "" {
			fmt.Fprintf(&b, "  - Status: %s\n", a.Status)
		}
	}

	b.WriteString("\nCONSTRAINTS:\n")
	if c.LimitedAmmunition {
		fmt.Fprintf(&b, "- LIMITED AMMUNITION - resupply in %d hours\n", c.ResupplyHours)
	}
	if c.ExpectedFollowOnWaves > 0 {
		fmt.Fprintf(&b, "- %d follow-on attack waves expected tonight\n", c.ExpectedFollowOnWaves)
	}
	if c.CivilianAreasNearby {
		b.WriteString("- Civilian areas nearby\n")
	}
	if c.FriendlyForcesNearby {
		b.WriteString("- Friendly forces nearby\n")
	}

	fmt.Fprintf(&b, "\nWeather: %s\n", c.Weather)
	b.WriteString("\nI need a TACTICAL RECOMMENDATION per the layered defense doctrine.\n")

	return strings.TrimSpace(b.String())
}
