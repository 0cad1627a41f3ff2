package interview

import (
	"context"

	"github.com/intervu-ai/intervu/internal/domain"
)

// ContentService is the external LLM collaborator that generates questions
// and scores answer content. Its latency is unbounded; callers apply their
// own timeouts through ctx.
type ContentService interface {
	// GenerateQuestion produces the next question from the candidate
	// context and the completed Q/A history.
	GenerateQuestion(ctx context.Context, history []domain.QA, resumeText, jobDescription string) (string, error)

	// EvaluateAnswer scores the content of one answer.
	EvaluateAnswer(ctx context.Context, question, transcript string) (domain.Scorecard, error)

	// GenerateReport writes the narrative closing assessment from the
	// full question/answer transcript and its per-answer scorecards.
	GenerateReport(ctx context.Context, history []domain.QA, scorecards []domain.Scorecard) (string, error)
}

// Transcriber is the external speech-to-text collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
