package metrics

import (
	"io"
	"log"
	"testing"
)

func newTestService(cfg Config) *Service {
	return NewService(cfg, log.New(io.Discard, "", 0))
}

func TestThresholdStartsAtDefault(t *testing.T) {
	s := newTestService(DefaultConfig())
	if got := s.Threshold(); got != 12 {
		t.Errorf("Threshold() = %d, want 12", got)
	}
}

func TestDefaultIsClampedIntoBand(t *testing.T) {
	s := newTestService(Config{Default: 20, Min: 10, Max: 14, HistorySize: 50, MinSamples: 10})
	if got := s.Threshold(); got != 14 {
		t.Errorf("Threshold() = %d, want 14", got)
	}
}

func TestNoRecomputeBelowMinSamples(t *testing.T) {
	s := newTestService(DefaultConfig())

	for i := 0; i < 9; i++ {
		s.Record(0, false)
	}

	if got := s.Threshold(); got != 12 {
		t.Errorf("Threshold() = %d after 9 samples, want untouched default 12", got)
	}
}

func TestRecomputeClampsToBand(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		satisfied bool
		want      int
	}{
		// high scores, unhappy users: mean 20 + 1, clamped to ceiling
		{name: "ceiling", score: 20, satisfied: false, want: 14},
		// low scores, happy users: mean 2 - 1, clamped to floor
		{name: "floor", score: 2, satisfied: true, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(DefaultConfig())
			for i := 0; i < 10; i++ {
				s.Record(tt.score, tt.satisfied)
			}
			if got := s.Threshold(); got != tt.want {
				t.Errorf("Threshold() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSatisfactionNudgesThreshold(t *testing.T) {
	// mean score 12; satisfaction decides the direction of the nudge
	build := func(satisfiedCount int) *Service {
		s := newTestService(DefaultConfig())
		for i := 0; i < 10; i++ {
			s.Record(12, i < satisfiedCount)
		}
		return s
	}

	if got := build(9).Threshold(); got != 11 {
		t.Errorf("high satisfaction: Threshold() = %d, want 11", got)
	}
	if got := build(6).Threshold(); got != 12 {
		t.Errorf("middling satisfaction: Threshold() = %d, want 12", got)
	}
	if got := build(2).Threshold(); got != 13 {
		t.Errorf("low satisfaction: Threshold() = %d, want 13", got)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	s := newTestService(Config{Default: 12, Min: 0, Max: 20, HistorySize: 10, MinSamples: 10})

	// old unhappy low scores should age out entirely
	for i := 0; i < 50; i++ {
		s.Record(2, false)
	}
	for i := 0; i < 10; i++ {
		s.Record(18, false)
	}

	// mean of the surviving window is 18, +1 for low satisfaction
	if got := s.Threshold(); got != 19 {
		t.Errorf("Threshold() = %d, want 19 from the recent window only", got)
	}
}
