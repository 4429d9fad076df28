package model

import (
	"errors"
	"time"
)

type ThreatClass string

const (
	ThreatShahed136 ThreatClass = "Shahed-136"
	ThreatShahed131 ThreatClass = "Shahed-131"
	ThreatGeran2    ThreatClass = "Geran-2"
	ThreatLancet    ThreatClass = "Lancet"
	ThreatFPV       ThreatClass = "FPV"
	ThreatOrlan10   ThreatClass = "Orlan-10"
	ThreatUnknown   ThreatClass = "Unknown"
)

type AssetClass string

const (
	AssetPatriot          AssetClass = "Patriot"
	AssetIRIST            AssetClass = "IRIS-T"
	AssetBukM1            AssetClass = "Buk-M1"
	AssetStinger          AssetClass = "Stinger"
	AssetIgla             AssetClass = "Igla"
	AssetInterceptorDrone AssetClass = "Interceptor Drone"
	AssetMobileGroup      AssetClass = "Mobile Gun Group"
	AssetHelicopter       AssetClass = "Mi-8 Helicopter"
	AssetZU23             AssetClass = "ZU-23"
	AssetBukovelEW        AssetClass = "Bukovel EW"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// ErrInvalidKinematics is returned when time-to-impact must be derived but
// the closing speed is not positive.
var ErrInvalidKinematics = errors.New("invalid threat kinematics: speed must be > 0 to derive time to impact")

// Threat describes one incoming attack wave. Construct with NewThreat so
// TimeToImpactMin is derived exactly once.
type Threat struct {
	Class             ThreatClass `json:"threat_class"`
	Count             int         `json:"count"`
	RangeKm           float64     `json:"range_km"`
	BearingDeg        int         `json:"bearing_deg"`
	AltitudeM         int         `json:"altitude_m"`
	SpeedKmh          float64     `json:"speed_kmh"`
	TargetDescription string      `json:"target_description"`
	Priority          Priority    `json:"target_priority"`
	TimeToImpactMin   float64     `json:"time_to_impact_min"`
}

// NewThreat builds a Threat, deriving time-to-impact from range and speed
// when it is not supplied.
func NewThreat(class ThreatClass, count int, rangeKm float64, bearingDeg, altitudeM int, speedKmh float64, target string, priority Priority, timeToImpactMin *float64) (Threat, error) {
	t := Threat{
		Class:             class,
		Count:             count,
		RangeKm:           rangeKm,
		BearingDeg:        bearingDeg,
		AltitudeM:         altitudeM,
		SpeedKmh:          speedKmh,
		TargetDescription: target,
		Priority:          priority,
	}
	if timeToImpactMin != nil {
		t.TimeToImpactMin = *timeToImpactMin
		return t, nil
	}
	if speedKmh <= 0 {
		return Threat{}, ErrInvalidKinematics
	}
	t.TimeToImpactMin = rangeKm / speedKmh * 60
	return t, nil
}

// AssetStatus is one roster entry: an asset class currently on hand.
type AssetStatus struct {
	Class            AssetClass `json:"asset_class"`
	Units            int        `json:"units"`
	RoundsAvailable  int        `json:"rounds_available"`
	CostPerShot      int        `json:"cost_per_shot"`
	EffectiveRangeKm float64    `json:"effective_range_km"`
	SuccessRate      float64    `json:"success_rate"`
	ReloadMinutes    int        `json:"reload_minutes"`
	Status           string     `json:"status,omitempty"`
	SetupMinutes     int        `json:"setup_minutes,omitempty"`
	WeatherDependent bool       `json:"weather_dependent,omitempty"`
	RequiresVisual   bool       `json:"requires_visual,omitempty"`
}

type Constraints struct {
	LimitedAmmunition     bool   `json:"limited_ammunition"`
	FriendlyForcesNearby  bool   `json:"friendly_forces_nearby"`
	CivilianAreasNearby   bool   `json:"civilian_areas_nearby"`
	Weather               string `json:"weather_conditions"`
	ExpectedFollowOnWaves int    `json:"expected_follow_on_waves"`
	ResupplyHours         int    `json:"resupply_hours"`
}

// GeneratedOption is one fully computed candidate response plan. Created
// once per qualifying pattern per invocation, never mutated afterward.
type GeneratedOption struct {
	ID             string         `json:"option_id"`
	Title          string         `json:"title"`
	Narrative      string         `json:"description"`
	PatternID      string         `json:"pattern_id"`
	Parameters     map[string]any `json:"parameters"`
	EstimatedCost  int            `json:"estimated_cost"`
	SuccessPercent int            `json:"estimated_success_percent"`
	AssetsUsed     []string       `json:"assets_used"`
}

// RankedRecommendation is a GeneratedOption merged with the ranker's
// coherence score and a derived recommendation level.
type RankedRecommendation struct {
	Rank           int      `json:"rank"`
	Coherence      float64  `json:"coherence"`
	Title          string   `json:"title"`
	Narrative      string   `json:"description"`
	PatternID      string   `json:"pattern_id"`
	EstimatedCost  int      `json:"estimated_cost"`
	SuccessPercent int      `json:"estimated_success_percent"`
	AssetsUsed     []string `json:"assets_used"`
	Level          string   `json:"recommendation_level"`
}

type ThreatSummary struct {
	Class           ThreatClass `json:"threat_class"`
	Count           int         `json:"count"`
	RangeKm         float64     `json:"range_km"`
	Priority        Priority    `json:"target_priority"`
	TimeToImpactMin float64     `json:"time_to_impact_min"`
}

// Assessment is the full result of one invocation.
type Assessment struct {
	ID               string                 `json:"assessment_id"`
	Timestamp        time.Time              `json:"timestamp"`
	Success          bool                   `json:"success"`
	Error            string                 `json:"error,omitempty"`
	GenerationMs     float64                `json:"generation_time_ms"`
	RankerMs         float64                `json:"ranker_latency_ms"`
	TotalMs          float64                `json:"total_time_ms"`
	OptionsGenerated int                    `json:"options_generated"`
	Options          []GeneratedOption      `json:"generated_options,omitempty"`
	Ranked           []RankedRecommendation `json:"ranked_recommendations,omitempty"`
	Query            string                 `json:"query,omitempty"`
	Threat           ThreatSummary          `json:"threat_summary"`
}
