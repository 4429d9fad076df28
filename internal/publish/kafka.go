package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"skyshield/internal/config"
	"skyshield/internal/model"
)

// assessmentEvent is the wire form pushed to the topic: the summary without
// the full narratives, which downstream consumers fetch over the API when
// they need them.
type assessmentEvent struct {
	AssessmentID     string              `json:"assessment_id"`
	Timestamp        time.Time           `json:"timestamp"`
	Success          bool                `json:"success"`
	Error            string              `json:"error,omitempty"`
	Threat           model.ThreatSummary `json:"threat_summary"`
	OptionsGenerated int                 `json:"options_generated"`
	TopPattern       string              `json:"top_pattern,omitempty"`
	TopCoherence     float64             `json:"top_coherence,omitempty"`
	TotalMs          float64             `json:"total_time_ms"`
}

// Publisher pushes completed assessment summaries to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewPublisher(cfg config.PublishConfig, logger *slog.Logger) *Publisher {
	if !cfg.Enabled {
		if logger != nil {
			logger.Info("kafka publish disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("kafka publish enabled", "brokers", cfg.Brokers, "topic", cfg.Topic)
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		logger: logger,
	}
}

func (p *Publisher) Publish(ctx context.Context, a model.Assessment) error {
	if p == nil || p.writer == nil {
		return nil
	}
	ev := assessmentEvent{
		AssessmentID:     a.ID,
		Timestamp:        a.Timestamp,
		Success:          a.Success,
		Error:            a.Error,
		Threat:           a.Threat,
		OptionsGenerated: a.OptionsGenerated,
		TotalMs:          a.TotalMs,
	}
	if len(a.Ranked) > 0 {
		ev.TopPattern = a.Ranked[0].PatternID
		ev.TopCoherence = a.Ranked[0].Coherence
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(a.ID),
		Value: value,
	})
	if err != nil && p.logger != nil {
		p.logger.Warn("kafka publish error", "assessment_id", a.ID, "err", err)
	}
	return err
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
