package metrics

import (
	"log"
	"sync"
)

// Sample is one observed (evaluation score, user satisfaction) pair
type Sample struct {
	Score     int
	Satisfied bool
}

// Config bounds the adaptive threshold
type Config struct {
	Default     int // starting threshold before enough history exists
	Min         int // safety band floor
	Max         int // safety band ceiling
	HistorySize int // how many recent samples the recomputation sees
	MinSamples  int // recomputation starts once this many samples exist
}

// DefaultConfig returns the production threshold configuration
func DefaultConfig() Config {
	return Config{
		Default:     12,
		Min:         10,
		Max:         14,
		HistorySize: 50,
		MinSamples:  10,
	}
}

// Service owns the acceptance threshold used by the quality judge. It is
// shared across concurrent turns, so every read-modify-write is serialized
// behind the mutex.
type Service struct {
	mu        sync.Mutex
	samples   []Sample
	threshold int
	cfg       Config
	logger    *log.Logger
}

// NewService creates a new quality metrics service
func NewService(cfg Config, logger *log.Logger) *Service {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 50
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = 10
	}
	return &Service{
		threshold: clamp(cfg.Default, cfg.Min, cfg.Max),
		cfg:       cfg,
		logger:    logger,
	}
}

// Threshold returns the current acceptance threshold
func (s *Service) Threshold() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threshold
}

// Record appends a sample and recomputes the threshold once enough history
// exists. The result always stays inside the configured safety band.
func (s *Service) Record(score int, satisfied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = append(s.samples, Sample{Score: score, Satisfied: satisfied})
	if len(s.samples) > s.cfg.HistorySize {
		s.samples = s.samples[len(s.samples)-s.cfg.HistorySize:]
	}

	if len(s.samples) < s.cfg.MinSamples {
		return
	}

	s.threshold = clamp(s.recompute(), s.cfg.Min, s.cfg.Max)
	if s.logger != nil {
		s.logger.Printf("[METRICS] Threshold recomputed: %d (%d samples)", s.threshold, len(s.samples))
	}
}

// recompute derives the threshold from the recent history: the base is the
// mean score, nudged down when users are broadly satisfied (fewer rewrites
// needed) and up when they are not.
func (s *Service) recompute() int {
	var total, satisfied int
	for _, sample := range s.samples {
		total += sample.Score
		if sample.Satisfied {
			satisfied++
		}
	}

	mean := float64(total) / float64(len(s.samples))
	rate := float64(satisfied) / float64(len(s.samples))

	threshold := int(mean + 0.5)
	switch {
	case rate >= 0.8:
		threshold--
	case rate < 0.5:
		threshold++
	}
	return threshold
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
