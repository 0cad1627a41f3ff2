package domain

// AlertLevel is the severity of a coaching result.
type AlertLevel string

const (
	// AlertOK means delivery was within all configured thresholds.
	AlertOK AlertLevel = "ok"
	// AlertWarning means at least one delivery threshold was crossed.
	AlertWarning AlertLevel = "warning"
)

// CoachingResult is the delivery analysis of one answer.
// Immutable once attached to a Turn; a resubmission replaces the whole value.
type CoachingResult struct {
	WordsPerMinute float64    `json:"words_per_minute"`
	WPMEstimated   bool       `json:"wpm_estimated"` // true when no audio signal backed the duration
	FillerCount    int        `json:"filler_count"`
	VolumeLevel    float64    `json:"volume_level"` // mean RMS, 0 when not measured
	VolumeMeasured bool       `json:"volume_measured"`
	AlertLevel     AlertLevel `json:"alert_level"`
	PrimaryAlert   string     `json:"primary_alert"` // empty when nothing triggered
}

// StreamingCoachingEvent is emitted during live audio capture.
// Transient: relayed to the caller, never stored on the session.
type StreamingCoachingEvent struct {
	VolumeLevel float64 `json:"volume_level"`
	IsSpeaking  bool    `json:"is_speaking"`
	Alert       string  `json:"alert,omitempty"`
}
