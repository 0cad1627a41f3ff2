// Package interview owns the session lifecycle: turn sequencing, delivery
// and content scoring, metric aggregation, and the final report.
package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/intervu-ai/intervu/internal/coach"
	"github.com/intervu-ai/intervu/internal/domain"
	"github.com/intervu-ai/intervu/internal/speech"
	"github.com/intervu-ai/intervu/internal/store"
)

// Orchestrator drives interview sessions through the state machine.
// Transitions for one session serialize on its registry entry lock;
// external collaborator calls are never retried here.
type Orchestrator struct {
	content      ContentService
	transcriber  Transcriber
	coach        *coach.Coach
	repo         store.Repository // optional write-behind log, may be nil
	registry     *Registry
	maxQuestions int
	now          func() time.Time
}

// NewOrchestrator wires the orchestrator with its collaborators.
// repo may be nil when persistence is disabled.
func NewOrchestrator(content ContentService, transcriber Transcriber, c *coach.Coach, repo store.Repository, registry *Registry) *Orchestrator {
	return &Orchestrator{
		content:     content,
		transcriber: transcriber,
		coach:       c,
		repo:        repo,
		registry:    registry,
		now:         time.Now,
	}
}

// SetQuestionLimit caps the number of questions issued per session.
// Zero means unlimited.
func (o *Orchestrator) SetQuestionLimit(n int) {
	o.maxQuestions = n
}

// AnswerResult carries everything produced by one answer submission.
type AnswerResult struct {
	SessionID  string
	TurnIndex  int
	Transcript string
	Coaching   domain.CoachingResult
	Scorecard  domain.Scorecard
}

// StartSession creates a session and sources the opening question from
// the content service. On content-service failure no session is created.
func (o *Orchestrator) StartSession(ctx context.Context, resumeText, jobDescription string) (sessionID, openingQuestion string, err error) {
	resumeText = strings.TrimSpace(resumeText)
	jobDescription = strings.TrimSpace(jobDescription)
	if resumeText == "" || jobDescription == "" {
		return "", "", ErrMissingContext
	}

	question, err := o.content.GenerateQuestion(ctx, nil, resumeText, jobDescription)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrContentServiceUnavailable, err)
	}

	now := o.now()
	session := &domain.Session{
		ID:             uuid.NewString()[:8],
		State:          domain.StateSetup,
		ResumeText:     resumeText,
		JobDescription: jobDescription,
		StartedAt:      now,
	}
	session.Turns = append(session.Turns, &domain.Turn{
		Index:    1,
		Question: question,
		AskedAt:  now,
	})
	session.State = domain.StateAsking

	o.registry.put(session.ID, &entry{session: session, lastActive: now})
	o.persistSession(ctx, session)

	slog.Info("Interview session started", "session_id", session.ID)
	return session.ID, question, nil
}

// NextQuestion sources the next question from the accumulated context and
// issues it as a new turn. Valid only from the asking state; on
// content-service failure the session is left untouched so the call can
// be retried.
func (o *Orchestrator) NextQuestion(ctx context.Context, sessionID string) (question string, questionNumber int, err error) {
	e, ok := o.registry.get(sessionID)
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	session := e.session

	if session.State != domain.StateAsking {
		return "", 0, invalidState("issue next question", session.State)
	}
	if o.maxQuestions > 0 && session.QuestionsIssued() >= o.maxQuestions {
		return "", 0, fmt.Errorf("%w: question limit of %d reached", ErrInvalidState, o.maxQuestions)
	}

	question, err = o.content.GenerateQuestion(ctx, session.History(), session.ResumeText, session.JobDescription)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrContentServiceUnavailable, err)
	}

	now := o.now()
	turn := &domain.Turn{
		Index:    len(session.Turns) + 1,
		Question: question,
		AskedAt:  now,
	}
	session.Turns = append(session.Turns, turn)
	session.State = domain.StateAwaitingAnswer
	e.lastActive = now

	slog.Info("Question issued", "session_id", sessionID, "question_number", turn.Index)
	return question, turn.Index, nil
}

// SubmitAnswer scores a text answer against the current turn. The first
// submission is valid only while awaiting an answer; a resubmission for
// the same turn replaces the previous results instead of accumulating.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, sessionID, transcript string, durationSeconds float64) (*AnswerResult, error) {
	return o.submit(ctx, sessionID, transcript, durationSeconds, nil)
}

// SubmitAudioAnswer transcribes captured audio, derives the real duration
// from the WAV data, and scores the answer with measured volume.
func (o *Orchestrator) SubmitAudioAnswer(ctx context.Context, sessionID string, audio []byte) (*AnswerResult, error) {
	if _, ok := o.registry.get(sessionID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	transcript, err := o.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	duration, err := speech.Duration(audio)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	samples, err := speech.Samples(audio)
	if err != nil {
		// Duration parsed but samples did not: score without volume.
		slog.Warn("Could not extract samples for volume analysis", "session_id", sessionID, "error", err)
		samples = nil
	}

	return o.submit(ctx, sessionID, transcript, duration, samples)
}

func (o *Orchestrator) submit(ctx context.Context, sessionID, transcript string, durationSeconds float64, samples []float64) (*AnswerResult, error) {
	e, ok := o.registry.get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	session := e.session

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, ErrEmptyAnswer
	}

	turn := session.CurrentTurn()
	switch session.State {
	case domain.StateAwaitingAnswer:
		// First submission for the outstanding question.
	case domain.StateAsking:
		// Only a corrective resubmission of the already-answered current
		// turn is accepted here.
		if turn == nil || !turn.Answered() {
			return nil, invalidState("submit answer", session.State)
		}
	default:
		return nil, invalidState("submit answer", session.State)
	}

	var coaching domain.CoachingResult
	if samples != nil {
		coaching = o.coach.AnalyzeAudio(transcript, durationSeconds, samples)
	} else {
		coaching = o.coach.Analyze(transcript, durationSeconds)
	}

	preCallState := session.State
	session.State = domain.StateEvaluating

	scorecard, err := o.content.EvaluateAnswer(ctx, turn.Question, transcript)
	if err != nil {
		session.State = preCallState
		return nil, fmt.Errorf("%w: %v", ErrContentServiceUnavailable, err)
	}

	// Replace, not accumulate: a resubmission subtracts the stale
	// contribution before the new one is added.
	if turn.Answered() {
		e.acc.Remove(turn.Coaching, turn.Scorecard)
	}

	now := o.now()
	turn.Transcript = transcript
	turn.DurationSeconds = durationSeconds
	turn.Coaching = &coaching
	turn.Scorecard = &scorecard
	turn.AnsweredAt = now
	e.acc.Add(turn.Coaching, turn.Scorecard)

	session.State = domain.StateAsking
	e.lastActive = now

	o.persistTurn(ctx, session.ID, turn)

	slog.Info("Answer processed",
		"session_id", session.ID,
		"question_number", turn.Index,
		"wpm", coaching.WordsPerMinute,
		"fillers", coaching.FillerCount,
		"score", scorecard.AverageScore(),
	)

	return &AnswerResult{
		SessionID:  session.ID,
		TurnIndex:  turn.Index,
		Transcript: transcript,
		Coaching:   coaching,
		Scorecard:  scorecard,
	}, nil
}

// EndSession freezes the session and returns its final summary. A second
// call fails: ended is terminal.
func (o *Orchestrator) EndSession(ctx context.Context, sessionID string) (*domain.SessionSummary, error) {
	e, ok := o.registry.get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	session := e.session

	if session.State != domain.StateAsking && session.State != domain.StateAwaitingAnswer {
		return nil, invalidState("end session", session.State)
	}

	now := o.now()
	session.EndedAt = now
	session.State = domain.StateEnded
	e.lastActive = now

	// Closing narrative is best-effort: the numeric summary stands on
	// its own when the content service cannot deliver one.
	if history := session.History(); len(history) > 0 {
		report, err := o.content.GenerateReport(ctx, history, answeredScorecards(session))
		if err != nil {
			slog.Warn("Failed to generate closing report", "session_id", session.ID, "error", err)
		} else {
			session.Report = report
		}
	}

	summary := buildSummary(session, &e.acc, now)
	o.persistSession(ctx, session)
	o.persistSummary(ctx, summary)

	slog.Info("Interview complete",
		"session_id", session.ID,
		"questions_asked", summary.QuestionsAsked,
		"average_score", summary.AverageScore,
		"average_wpm", summary.AverageWPM,
	)
	return summary, nil
}

// Stats returns a live summary snapshot for a session in any state.
// For an ended session repeated calls yield identical values.
func (o *Orchestrator) Stats(sessionID string) (*domain.SessionSummary, error) {
	e, ok := o.registry.get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return buildSummary(e.session, &e.acc, o.now()), nil
}

// State reports the current state of a session.
func (o *Orchestrator) State(sessionID string) (domain.State, error) {
	e, ok := o.registry.get(sessionID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.State, nil
}

func (o *Orchestrator) persistSession(ctx context.Context, s *domain.Session) {
	if o.repo == nil {
		return
	}
	if err := o.repo.SaveSession(ctx, s); err != nil {
		slog.Warn("Failed to persist session", "session_id", s.ID, "error", err)
	}
}

func (o *Orchestrator) persistTurn(ctx context.Context, sessionID string, t *domain.Turn) {
	if o.repo == nil {
		return
	}
	if err := o.repo.SaveTurn(ctx, sessionID, t); err != nil {
		slog.Warn("Failed to persist turn", "session_id", sessionID, "turn", t.Index, "error", err)
	}
}

func (o *Orchestrator) persistSummary(ctx context.Context, sum *domain.SessionSummary) {
	if o.repo == nil {
		return
	}
	if err := o.repo.SaveSummary(ctx, sum); err != nil {
		slog.Warn("Failed to persist summary", "session_id", sum.SessionID, "error", err)
	}
}
