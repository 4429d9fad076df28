package doctrine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"skyshield/internal/config"
	"skyshield/internal/history"
	"skyshield/internal/model"
	"skyshield/internal/ranker"
	"skyshield/internal/spec"
	"skyshield/internal/storage"
)

// Publisher pushes completed assessments to downstream consumers. Satisfied
// by publish.Publisher; nil-safe.
type Publisher interface {
	Publish(ctx context.Context, a model.Assessment) error
}

// Engine runs the full pipeline for one threat situation: summarize the
// roster, evaluate every pattern, assemble options, rank them through the
// external ranker, and merge the results. It holds no state across
// invocations beyond the injected read-only specification table.
type Engine struct {
	logger    *slog.Logger
	table     *spec.Table
	catalog   []Pattern
	ranker    ranker.Client
	history   *history.Store
	store     storage.Store
	publisher Publisher
	cfg       atomic.Value
}

func NewEngine(cfg *config.Config, table *spec.Table, client ranker.Client, logger *slog.Logger, historyStore *history.Store, store storage.Store, publisher Publisher) *Engine {
	e := &Engine{
		logger:    logger,
		table:     table,
		catalog:   Catalog(table),
		ranker:    client,
		history:   historyStore,
		store:     store,
		publisher: publisher,
	}
	e.cfg.Store(cfg)
	return e
}

func (e *Engine) UpdateConfig(cfg *config.Config) {
	e.cfg.Store(cfg)
}

func (e *Engine) config() *config.Config {
	if v := e.cfg.Load(); v != nil {
		return v.(*config.Config)
	}
	return config.DefaultConfig()
}

func (e *Engine) Table() *spec.Table {
	return e.table
}

// CatalogInfo lists the registered patterns for the reference endpoint.
func (e *Engine) CatalogInfo() []map[string]string {
	out := make([]map[string]string, 0, len(e.catalog))
	for _, p := range e.catalog {
		out = append(out, map[string]string{"id": p.ID(), "title": p.Title()})
	}
	return out
}

func (e *Engine) tiers() Tiers {
	t := e.config().Tiers
	return Tiers{PremiumMin: t.PremiumMin, ModerateMin: t.ModerateMin, CheapMax: t.CheapMax}
}

// GenerateOptions evaluates the whole catalog against one situation. The
// summary is computed once and shared; every qualifying pattern emits an
// option, and a render failure drops only that option.
func (e *Engine) GenerateOptions(t model.Threat, roster []model.AssetStatus, c model.Constraints) []model.GeneratedOption {
	summary := Summarize(roster, e.tiers())
	now := time.Now().UTC()

	options := make([]model.GeneratedOption, 0, len(e.catalog))
	for _, p := range e.catalog {
		if !p.Applies(t, summary, c) {
			continue
		}
		params, ok := p.Compute(t, summary, c)
		if !ok {
			continue
		}
		opt, err := AssembleOption(p, params, now)
		if err != nil {
			if e.logger != nil {
				e.logger.Warn("option assembly failed", "pattern", p.ID(), "err", err)
			}
			continue
		}
		options = append(options, opt)
	}
	return options
}

// Process runs one complete invocation. The returned assessment always
// carries the generated options; Success is false only when the ranker was
// needed and unreachable.
func (e *Engine) Process(ctx context.Context, t model.Threat, roster []model.AssetStatus, c model.Constraints, commanderContext string) model.Assessment {
	start := time.Now()

	options := e.GenerateOptions(t, roster, c)
	genDur := time.Since(start)
	if e.logger != nil {
		e.logger.Info("options generated", "count", len(options), "elapsed_ms", genDur.Milliseconds())
	}

	query := BuildQuery(t, roster, c, commanderContext)
	a := model.Assessment{
		ID:               uuid.NewString(),
		Timestamp:        start.UTC(),
		GenerationMs:     msec(genDur),
		OptionsGenerated: len(options),
		Options:          options,
		Query:            query,
		Threat: model.ThreatSummary{
			Class:           t.Class,
			Count:           t.Count,
			RangeKm:         t.RangeKm,
			Priority:        t.Priority,
			TimeToImpactMin: t.TimeToImpactMin,
		},
	}

	if len(options) == 0 {
		a.Success = true
		a.TotalMs = msec(time.Since(start))
		e.record(ctx, a)
		return a
	}

	candidates := make([]string, 0, len(options))
	for _, opt := range options {
		candidates = append(candidates, opt.Narrative)
	}

	resp, latency, err := e.ranker.Rank(ctx, query, candidates)
	a.RankerMs = msec(latency)
	if err != nil {
		// The caller still receives the generated (unranked) options;
		// the failure marker keeps this from looking like an empty
		// success.
		a.Success = false
		a.Error = fmt.Sprintf("ranker unavailable: %v", err)
		if e.logger != nil {
			e.logger.Error("ranker call failed", "err", err, "options", len(options))
		}
		a.TotalMs = msec(time.Since(start))
		e.record(ctx, a)
		return a
	}

	a.Success = true
	a.Ranked = e.mergeRanked(options, resp)
	a.TotalMs = msec(time.Since(start))
	e.record(ctx, a)
	return a
}

// mergeRanked joins ranker scores back onto the generated options by exact
// narrative match. An unmatched ranker row is emitted with placeholder
// metadata rather than dropped; the mismatch is logged as a data-integrity
// signal.
func (e *Engine) mergeRanked(options []model.GeneratedOption, resp *ranker.Response) []model.RankedRecommendation {
	ranked := make([]model.RankedRecommendation, 0, len(resp.Top))
	for i, row := range resp.Top {
		rec := model.RankedRecommendation{
			Rank:      i + 1,
			Coherence: row.Score,
			Narrative: row.Text,
			Level:     recommendationLevel(row.Score),
		}
		var matched *model.GeneratedOption
		for j := range options {
			if options[j].Narrative == row.Text {
				matched = &options[j]
				break
			}
		}
		if matched != nil {
			rec.Title = matched.Title
			rec.PatternID = matched.PatternID
			rec.EstimatedCost = matched.EstimatedCost
			rec.SuccessPercent = matched.SuccessPercent
			rec.AssetsUsed = matched.AssetsUsed
		} else {
			rec.Title = fmt.Sprintf("Option %d", i+1)
			rec.PatternID = "unknown"
			if e.logger != nil {
				e.logger.Warn("ranker text matched no generated option", "rank", i+1, "prefix", textPrefix(row.Text))
			}
		}
		ranked = append(ranked, rec)
	}
	return ranked
}

func recommendationLevel(score float64) string {
	switch {
	case score > 0.80:
		return "HIGH"
	case score > 0.70:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// record applies the observation side effects: history ring, optional SQL
// audit trail, optional Kafka publish. None of them feed back into option
// generation.
func (e *Engine) record(ctx context.Context, a model.Assessment) {
	if e.history != nil {
		e.history.Add(a)
	}
	if e.store != nil {
		if err := e.store.SaveAssessment(ctx, a); err != nil && e.logger != nil {
			e.logger.Warn("assessment persist failed", "assessment_id", a.ID, "err", err)
		}
	}
	if e.publisher != nil {
		_ = e.publisher.Publish(ctx, a)
	}
}

func msec(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func textPrefix(s string) string {
	const n = 60
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
