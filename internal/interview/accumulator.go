package interview

import (
	"github.com/intervu-ai/intervu/internal/domain"
)

// Accumulator keeps running totals over completed turns. It holds no
// state a Turn does not imply: replaying Add over the turn sequence
// reconstructs it exactly, and a corrective resubmission removes the
// stale contribution before the replacement is added.
type Accumulator struct {
	wpmSum    float64
	fillerSum int
	scoreSum  float64
	turns     int
}

// Add folds one completed turn's results into the totals.
func (a *Accumulator) Add(coaching *domain.CoachingResult, scorecard *domain.Scorecard) {
	if coaching == nil || scorecard == nil {
		return
	}
	a.wpmSum += coaching.WordsPerMinute
	a.fillerSum += coaching.FillerCount
	a.scoreSum += scorecard.AverageScore()
	a.turns++
}

// Remove subtracts a previously added contribution, used when a turn's
// results are replaced.
func (a *Accumulator) Remove(coaching *domain.CoachingResult, scorecard *domain.Scorecard) {
	if coaching == nil || scorecard == nil {
		return
	}
	a.wpmSum -= coaching.WordsPerMinute
	a.fillerSum -= coaching.FillerCount
	a.scoreSum -= scorecard.AverageScore()
	a.turns--
}

// CompletedTurns returns the number of turns currently counted.
func (a *Accumulator) CompletedTurns() int {
	return a.turns
}

// AverageWPM returns the mean words-per-minute, 0 with no turns.
func (a *Accumulator) AverageWPM() float64 {
	if a.turns == 0 {
		return 0
	}
	return a.wpmSum / float64(a.turns)
}

// AverageScore returns the mean content score, 0 with no turns.
func (a *Accumulator) AverageScore() float64 {
	if a.turns == 0 {
		return 0
	}
	return a.scoreSum / float64(a.turns)
}

// TotalFillers returns the summed filler-word count.
func (a *Accumulator) TotalFillers() int {
	return a.fillerSum
}
