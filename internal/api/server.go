package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"skyshield/internal/config"
	"skyshield/internal/doctrine"
	"skyshield/internal/history"
	"skyshield/internal/model"
)

type Server struct {
	cfg     *config.Manager
	engine  *doctrine.Engine
	history *history.Store
	logger  *slog.Logger
	version string
}

type threatInput struct {
	ThreatType          string   `json:"threat_type"`
	Count               int      `json:"count"`
	RangeKm             float64  `json:"range_km"`
	Bearing             int      `json:"bearing"`
	AltitudeM           int      `json:"altitude_m"`
	SpeedKmh            float64  `json:"speed_kmh"`
	TargetDescription   string   `json:"target_description"`
	TargetPriority      string   `json:"target_priority"`
	TimeToImpactMinutes *float64 `json:"time_to_impact_minutes,omitempty"`
}

type systemInput struct {
	SystemType        string  `json:"system_type"`
	Count             int     `json:"count"`
	MissilesAvailable int     `json:"missiles_available"`
	CostPerShot       int     `json:"cost_per_shot"`
	EffectiveRangeKm  float64 `json:"effective_range_km"`
	SuccessRate       float64 `json:"success_rate"`
	ReloadTimeMinutes int     `json:"reload_time_minutes"`
	Status            string  `json:"status,omitempty"`
	SetupTimeMinutes  int     `json:"setup_time_minutes,omitempty"`
	WeatherDependent  bool    `json:"weather_dependent,omitempty"`
	RequiresVisual    bool    `json:"requires_visual,omitempty"`
}

type constraintsInput struct {
	LimitedAmmunition     bool   `json:"limited_ammunition"`
	FriendlyForcesNearby  bool   `json:"friendly_forces_nearby"`
	CivilianAreasNearby   bool   `json:"civilian_areas_nearby"`
	WeatherConditions     string `json:"weather_conditions"`
	ExpectedFollowOnWaves int    `json:"expected_follow_on_waves"`
	ResupplyTimeHours     int    `json:"resupply_time_hours"`
}

type assessRequest struct {
	Threat           threatInput      `json:"threat"`
	Systems          []systemInput    `json:"systems"`
	Constraints      constraintsInput `json:"constraints"`
	CommanderContext string           `json:"commander_context,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func Start(ctx context.Context, cfg *config.Manager, engine *doctrine.Engine, historyStore *history.Store, logger *slog.Logger, version string) *http.Server {
	if cfg == nil {
		return nil
	}
	current := cfg.Get().API
	if !current.Enabled {
		if logger != nil {
			logger.Info("api disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("api enabled", "addr", current.Addr)
	}
	server := &Server{
		cfg:     cfg,
		engine:  engine,
		history: historyStore,
		logger:  logger,
		version: version,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/assess", server.handleAssess)
	mux.HandleFunc("/api/patterns", server.handlePatterns)
	mux.HandleFunc("/api/specs", server.handleSpecs)
	mux.HandleFunc("/api/scenarios/odesa", server.handleOdesaScenario)
	mux.HandleFunc("/assessments", server.handleAssessments)
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/health", server.handleHealth)

	var handler http.Handler = mux
	if current.AllowCORS {
		handler = withCORS(mux)
	}

	httpServer := &http.Server{Addr: current.Addr, Handler: handler}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("api server error", "err", err)
			}
		}
	}()
	return httpServer
}

// withCORS allows the web demo to call the service cross-origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 2<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body too large or unreadable"})
		return
	}
	var req assessRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON: " + err.Error()})
		return
	}
	threat, roster, constraints, err := convertRequest(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	a := s.engine.Process(r.Context(), threat, roster, constraints, req.CommanderContext)
	if !a.Success {
		writeJSON(w, http.StatusBadGateway, a)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	patterns := s.engine.CatalogInfo()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(patterns),
		"patterns": patterns,
	})
}

func (s *Server) handleSpecs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Table().Export())
}

func (s *Server) handleAssessments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	sinceStr := r.URL.Query().Get("since")
	var list []model.Assessment
	if sinceStr != "" {
		ts, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		list = s.history.Since(ts)
	} else {
		list = s.history.List(limit)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"assessments": list,
		"count":       len(list),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cfg := s.cfg.Get()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"time":        time.Now().UTC().Format(time.RFC3339Nano),
		"version":     s.version,
		"config_path": s.cfg.Path(),
		"ranker_url":  cfg.Ranker.URL,
		"patterns":    len(s.engine.CatalogInfo()),
		"storage":     map[string]any{"enabled": cfg.Storage.Enabled, "driver": cfg.Storage.Driver},
		"publish":     map[string]any{"enabled": cfg.Publish.Enabled, "topic": cfg.Publish.Topic},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
}

func convertRequest(req assessRequest) (model.Threat, []model.AssetStatus, model.Constraints, error) {
	threat, err := model.NewThreat(
		parseThreatClass(req.Threat.ThreatType),
		req.Threat.Count,
		req.Threat.RangeKm,
		req.Threat.Bearing,
		req.Threat.AltitudeM,
		req.Threat.SpeedKmh,
		req.Threat.TargetDescription,
		parsePriority(req.Threat.TargetPriority),
		req.Threat.TimeToImpactMinutes,
	)
	if err != nil {
		return model.Threat{}, nil, model.Constraints{}, err
	}

	roster := make([]model.AssetStatus, 0, len(req.Systems))
	for _, sys := range req.Systems {
		roster = append(roster, model.AssetStatus{
			Class:            model.AssetClass(strings.TrimSpace(sys.SystemType)),
			Units:            sys.Count,
			RoundsAvailable:  sys.MissilesAvailable,
			CostPerShot:      sys.CostPerShot,
			EffectiveRangeKm: sys.EffectiveRangeKm,
			SuccessRate:      sys.SuccessRate,
			ReloadMinutes:    sys.ReloadTimeMinutes,
			Status:           sys.Status,
			SetupMinutes:     sys.SetupTimeMinutes,
			WeatherDependent: sys.WeatherDependent,
			RequiresVisual:   sys.RequiresVisual,
		})
	}

	constraints := model.Constraints{
		LimitedAmmunition:     req.Constraints.LimitedAmmunition,
		FriendlyForcesNearby:  req.Constraints.FriendlyForcesNearby,
		CivilianAreasNearby:   req.Constraints.CivilianAreasNearby,
		Weather:               req.Constraints.WeatherConditions,
		ExpectedFollowOnWaves: req.Constraints.ExpectedFollowOnWaves,
		ResupplyHours:         req.Constraints.ResupplyTimeHours,
	}
	return threat, roster, constraints, nil
}

func parseThreatClass(value string) model.ThreatClass {
	switch strings.TrimSpace(value) {
	case "Shahed-136":
		return model.ThreatShahed136
	case "Shahed-131":
		return model.ThreatShahed131
	case "Geran-2":
		return model.ThreatGeran2
	case "Lancet":
		return model.ThreatLancet
	case "FPV":
		return model.ThreatFPV
	case "Orlan-10":
		return model.ThreatOrlan10
	}
	return model.ThreatUnknown
}

func parsePriority(value string) model.Priority {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "critical":
		return model.PriorityCritical
	case "high":
		return model.PriorityHigh
	case "medium":
		return model.PriorityMedium
	case "low":
		return model.PriorityLow
	}
	return model.PriorityMedium
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
