package model

import (
	"errors"
	"math"
	"testing"
)

func TestNewThreatDerivesTimeToImpact(t *testing.T) {
	th, err := NewThreat(ThreatShahed136, 5, 25, 45, 1200, 185, "Port", PriorityCritical, nil)
	if err != nil {
		t.Fatalf("new threat: %v", err)
	}
	want := 25.0 / 185 * 60
	if math.Abs(th.TimeToImpactMin-want) > 1e-9 {
		t.Fatalf("time to impact: got %v, want %v", th.TimeToImpactMin, want)
	}
}

func TestNewThreatKeepsSuppliedTimeToImpact(t *testing.T) {
	tti := 3.5
	th, err := NewThreat(ThreatLancet, 1, 8, 90, 300, 0, "Artillery", PriorityHigh, &tti)
	if err != nil {
		t.Fatalf("new threat: %v", err)
	}
	if th.TimeToImpactMin != 3.5 {
		t.Fatalf("time to impact: got %v, want 3.5", th.TimeToImpactMin)
	}
}

func TestNewThreatRejectsZeroSpeed(t *testing.T) {
	_, err := NewThreat(ThreatShahed136, 5, 25, 45, 1200, 0, "Port", PriorityCritical, nil)
	if !errors.Is(err, ErrInvalidKinematics) {
		t.Fatalf("expected ErrInvalidKinematics, got %v", err)
	}
}
