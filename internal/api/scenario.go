package api

import (
	"net/http"

	"skyshield/internal/model"
)

// Recorded outcome of the Odesa raid of October 19, 2024: what the battery
// actually spent and killed, used as the baseline for the replay endpoint.
const (
	odesaActualCostUSD     = 2_730_000
	odesaActualKills       = 9
	odesaActualTotal       = 12
	odesaActualSuccessRate = 75
)

func odesaRequest() assessRequest {
	return assessRequest{
		Threat: threatInput{
			ThreatType:        "Shahed-136",
			Count:             5, // 2 on the port, 3 on the power plant
			RangeKm:           25.0,
			Bearing:           45,
			AltitudeM:         1200,
			SpeedKmh:          185,
			TargetDescription: "Port and power plant (CRITICAL)",
			TargetPriority:    "critical",
		},
		Systems: []systemInput{
			{
				SystemType:        string(model.AssetIRIST),
				Count:             2,
				MissilesAvailable: 6,
				CostPerShot:       500_000,
				EffectiveRangeKm:  40,
				SuccessRate:       0.93,
				ReloadTimeMinutes: 720,
			},
			{
				SystemType:        string(model.AssetBukM1),
				Count:             1,
				MissilesAvailable: 3,
				CostPerShot:       100_000,
				EffectiveRangeKm:  35,
				SuccessRate:       0.85,
				ReloadTimeMinutes: 480,
			},
			{
				SystemType:        string(model.AssetStinger),
				Count:             4,
				MissilesAvailable: 8,
				CostPerShot:       40_000,
				EffectiveRangeKm:  5,
				SuccessRate:       0.70,
				ReloadTimeMinutes: 120,
			},
			{
				SystemType:        string(model.AssetInterceptorDrone),
				Count:             4,
				MissilesAvailable: 4,
				CostPerShot:       5_000,
				EffectiveRangeKm:  20,
				SuccessRate:       0.60,
				ReloadTimeMinutes: 30,
			},
			{
				SystemType:        string(model.AssetMobileGroup),
				Count:             2,
				MissilesAvailable: 2,
				CostPerShot:       500,
				EffectiveRangeKm:  2.5,
				SuccessRate:       0.35,
				ReloadTimeMinutes: 15,
				SetupTimeMinutes:  15,
			},
			{
				SystemType:        string(model.AssetHelicopter),
				Count:             1,
				MissilesAvailable: 1,
				CostPerShot:       2_000,
				EffectiveRangeKm:  10,
				SuccessRate:       0.50,
				ReloadTimeMinutes: 90,
				WeatherDependent:  true,
			},
		},
		Constraints: constraintsInput{
			LimitedAmmunition:     true,
			WeatherConditions:     "Marginal",
			ExpectedFollowOnWaves: 2,
			ResupplyTimeHours:     24,
		},
		CommanderContext: "Odesa sector, October 19, 2024 validation",
	}
}

// handleOdesaScenario replays the recorded October 19, 2024 Odesa raid and
// compares the top recommendation against the actual execution.
func (s *Server) handleOdesaScenario(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	req := odesaRequest()
	threat, roster, constraints, err := convertRequest(req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	a := s.engine.Process(r.Context(), threat, roster, constraints, req.CommanderContext)
	if !a.Success {
		writeJSON(w, http.StatusBadGateway, a)
		return
	}

	resp := map[string]any{
		"assessment": a,
	}
	if len(a.Ranked) > 0 {
		top := a.Ranked[0]
		savings := odesaActualCostUSD - top.EstimatedCost
		savingsPercent := 0.0
		if savings > 0 {
			savingsPercent = float64(savings) / float64(odesaActualCostUSD) * 100
		}
		resp["validation"] = map[string]any{
			"recommended": map[string]any{
				"cost":              top.EstimatedCost,
				"predicted_success": top.SuccessPercent,
				"systems":           top.AssetsUsed,
			},
			"actual_execution": map[string]any{
				"cost_usd":     odesaActualCostUSD,
				"kills":        odesaActualKills,
				"total":        odesaActualTotal,
				"success_rate": odesaActualSuccessRate,
			},
			"cost_difference_usd":  savings,
			"cost_savings_percent": savingsPercent,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
