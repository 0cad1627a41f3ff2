// Package coach analyzes speaking delivery: pace, filler words, and volume.
// It runs entirely locally so feedback arrives with no collaborator latency.
package coach

import (
	"strings"

	"github.com/intervu-ai/intervu/internal/domain"
)

// Config holds the delivery thresholds.
type Config struct {
	WPMFast         float64 // words/minute above which "slow down" triggers
	WPMSlow         float64 // words/minute below which "pick up the pace" triggers
	VolumeThreshold float64 // RMS level below which "speak up" triggers
	FillerWarnRatio float64 // filler words per spoken word above which "watch the fillers" triggers
}

// DefaultConfig returns the standard coaching thresholds.
func DefaultConfig() Config {
	return Config{
		WPMFast:         160,
		WPMSlow:         100,
		VolumeThreshold: 0.02,
		FillerWarnRatio: 0.08,
	}
}

// Coach computes delivery metrics for finished answers.
type Coach struct {
	cfg Config
}

// New creates a Coach with the given thresholds.
func New(cfg Config) *Coach {
	if cfg.WPMFast == 0 {
		cfg.WPMFast = DefaultConfig().WPMFast
	}
	if cfg.WPMSlow == 0 {
		cfg.WPMSlow = DefaultConfig().WPMSlow
	}
	if cfg.VolumeThreshold == 0 {
		cfg.VolumeThreshold = DefaultConfig().VolumeThreshold
	}
	if cfg.FillerWarnRatio == 0 {
		cfg.FillerWarnRatio = DefaultConfig().FillerWarnRatio
	}
	return &Coach{cfg: cfg}
}

// Analyze scores a transcript-only answer. The volume dimension is not
// computed and the WPM is flagged as estimated, since no audio signal
// backs the reported duration.
func (c *Coach) Analyze(transcript string, durationSeconds float64) domain.CoachingResult {
	m := c.measure(transcript, durationSeconds)
	m.wpmEstimated = true
	return c.classify(m)
}

// AnalyzeAudio scores an answer captured as audio. Samples are normalized
// mono PCM in [-1, 1]; their mean RMS becomes the measured volume level.
func (c *Coach) AnalyzeAudio(transcript string, durationSeconds float64, samples []float64) domain.CoachingResult {
	m := c.measure(transcript, durationSeconds)
	if len(samples) > 0 {
		m.volume = RMS(samples)
		m.volumeMeasured = true
	}
	return c.classify(m)
}

type metrics struct {
	wordCount      int
	wpm            float64
	wpmEstimated   bool
	fillerCount    int
	volume         float64
	volumeMeasured bool
}

func (c *Coach) measure(transcript string, durationSeconds float64) metrics {
	words := strings.Fields(transcript)
	m := metrics{
		wordCount:   len(words),
		fillerCount: CountFillers(transcript),
	}
	if m.wordCount == 0 {
		return m
	}
	// Floor the duration at one second so a near-instant submission
	// cannot produce an absurd rate.
	if durationSeconds < 1 {
		durationSeconds = 1
	}
	m.wpm = float64(m.wordCount) / (durationSeconds / 60)
	return m
}

func (c *Coach) classify(m metrics) domain.CoachingResult {
	result := domain.CoachingResult{
		WordsPerMinute: m.wpm,
		WPMEstimated:   m.wpmEstimated,
		FillerCount:    m.fillerCount,
		VolumeLevel:    m.volume,
		VolumeMeasured: m.volumeMeasured,
		AlertLevel:     domain.AlertOK,
	}

	if m.wordCount == 0 {
		result.PrimaryAlert = AlertNoSpeech
		return result
	}

	if msg, ok := c.firstAlert(m); ok {
		result.AlertLevel = domain.AlertWarning
		result.PrimaryAlert = msg
	}
	return result
}
