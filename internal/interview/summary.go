package interview

import (
	"math"
	"time"

	"github.com/intervu-ai/intervu/internal/domain"
)

// buildSummary derives the session report from the running accumulator.
// For an ended session the frozen end time makes the report stable; for a
// live session asOf stands in as the end. A session with no answered
// turns reports zeros.
func buildSummary(s *domain.Session, acc *Accumulator, asOf time.Time) *domain.SessionSummary {
	end := s.EndedAt
	if end.IsZero() {
		end = asOf
	}
	return &domain.SessionSummary{
		SessionID:        s.ID,
		DurationMinutes:  round1(end.Sub(s.StartedAt).Minutes()),
		QuestionsAsked:   acc.CompletedTurns(),
		AverageScore:     round1(acc.AverageScore()),
		AverageWPM:       round1(acc.AverageWPM()),
		TotalFillerWords: acc.TotalFillers(),
		Report:           s.Report,
	}
}

// answeredScorecards collects the scorecards of answered turns in order,
// aligned with Session.History.
func answeredScorecards(s *domain.Session) []domain.Scorecard {
	var cards []domain.Scorecard
	for _, t := range s.Turns {
		if t.Answered() {
			cards = append(cards, *t.Scorecard)
		}
	}
	return cards
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
