package domain

// SessionSummary is the final report for an ended session.
// Derived and read-only; recomputing it on the same ended session
// yields identical values.
type SessionSummary struct {
	SessionID        string  `json:"session_id"`
	DurationMinutes  float64 `json:"duration_minutes"`
	QuestionsAsked   int     `json:"questions_asked"` // answered turns only
	AverageScore     float64 `json:"average_score"`
	AverageWPM       float64 `json:"average_wpm"`
	TotalFillerWords int     `json:"total_filler_words"`
	Report           string  `json:"report,omitempty"` // narrative assessment, best-effort
}
