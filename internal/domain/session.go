// Package domain defines the core data structures for interview sessions.
package domain

import (
	"time"
)

// State represents a stage in the interview session state machine.
type State string

const (
	// StateIdle is the state before a session exists.
	StateIdle State = "idle"
	// StateSetup is the transient state while a session is being created.
	StateSetup State = "setup"
	// StateAsking means a question has been sourced and the session is
	// ready to issue the next one.
	StateAsking State = "asking"
	// StateAwaitingAnswer means a question is outstanding and the session
	// is waiting for the candidate's answer.
	StateAwaitingAnswer State = "awaiting_answer"
	// StateEvaluating is the transient state while an answer is scored.
	StateEvaluating State = "evaluating"
	// StateEnded is terminal; no further transitions are accepted.
	StateEnded State = "ended"
)

// Turn is a single question/answer cycle within a session.
type Turn struct {
	Index           int    // 1-based, strictly increasing
	Question        string
	Transcript      string
	DurationSeconds float64
	Coaching        *CoachingResult
	Scorecard       *Scorecard
	AskedAt         time.Time
	AnsweredAt      time.Time
}

// Answered reports whether both delivery and content results are attached.
func (t *Turn) Answered() bool {
	return t.Coaching != nil && t.Scorecard != nil
}

// QA is one completed question/answer pair, used as generation context.
type QA struct {
	Question string
	Answer   string
}

// Session holds the full state of one interview.
type Session struct {
	ID             string
	State          State
	ResumeText     string
	JobDescription string
	Turns          []*Turn
	Report         string // set once at session end
	StartedAt      time.Time
	EndedAt        time.Time
}

// CurrentTurn returns the most recently issued turn, or nil.
func (s *Session) CurrentTurn() *Turn {
	if len(s.Turns) == 0 {
		return nil
	}
	return s.Turns[len(s.Turns)-1]
}

// History returns the question/answer pairs of all answered turns in order.
func (s *Session) History() []QA {
	var history []QA
	for _, t := range s.Turns {
		if t.Answered() {
			history = append(history, QA{Question: t.Question, Answer: t.Transcript})
		}
	}
	return history
}

// QuestionsIssued returns the number of questions asked so far,
// answered or not.
func (s *Session) QuestionsIssued() int {
	return len(s.Turns)
}
