package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/intervu-ai/intervu/internal/interview"
	"github.com/intervu-ai/intervu/internal/resume"
	"github.com/intervu-ai/intervu/internal/store"
)

const (
	minResumeChars = 50
	minJobChars    = 20

	// maxUploadBytes caps resume and audio uploads.
	maxUploadBytes = 20 << 20
)

// InterviewHandler handles the interview session endpoints.
type InterviewHandler struct {
	orc  *interview.Orchestrator
	repo store.Repository // optional, enables the history endpoint
}

// NewInterviewHandler creates a new interview handler. repo may be nil
// when persistence is disabled.
func NewInterviewHandler(orc *interview.Orchestrator, repo store.Repository) *InterviewHandler {
	return &InterviewHandler{orc: orc, repo: repo}
}

// RegisterRoutes registers the interview session routes.
func (h *InterviewHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/session/start", h.Start)
		r.Post("/session/{sessionID}/question", h.NextQuestion)
		r.Post("/session/{sessionID}/answer", h.SubmitAnswer)
		r.Post("/session/{sessionID}/answer/audio", h.SubmitAudioAnswer)
		r.Post("/session/{sessionID}/end", h.End)
		r.Get("/session/{sessionID}/stats", h.Stats)
		r.Post("/upload/resume", h.UploadResume)
		r.Get("/sessions", h.History)
	})
}

type startRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

// Start creates a session and returns the opening question.
func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(strings.TrimSpace(req.ResumeText)) < minResumeChars {
		Error(w, http.StatusBadRequest, "resume_text must be at least 50 characters")
		return
	}
	if len(strings.TrimSpace(req.JobDescription)) < minJobChars {
		Error(w, http.StatusBadRequest, "job_description must be at least 20 characters")
		return
	}

	sessionID, question, err := h.orc.StartSession(r.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		slog.Error("Failed to start session", "error", err)
		Error(w, statusFor(err), err.Error())
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"session_id":      sessionID,
		"question":        question,
		"question_number": 1,
	})
}

// NextQuestion issues the next question for a session.
func (h *InterviewHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	question, number, err := h.orc.NextQuestion(r.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to issue question", "error", err, "session_id", sessionID)
		Error(w, statusFor(err), err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"question":        question,
		"question_number": number,
	})
}

type answerRequest struct {
	Transcript      string  `json:"transcript"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// SubmitAnswer scores a text answer against the outstanding question.
func (h *InterviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.orc.SubmitAnswer(r.Context(), sessionID, req.Transcript, req.DurationSeconds)
	if err != nil {
		slog.Error("Failed to process answer", "error", err, "session_id", sessionID)
		Error(w, statusFor(err), err.Error())
		return
	}

	writeAnswer(w, result)
}

// SubmitAudioAnswer transcribes uploaded WAV audio and scores it.
func (h *InterviewHandler) SubmitAudioAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	audio, err := readUpload(r, "audio")
	if err != nil {
		Error(w, http.StatusBadRequest, "could not read audio upload")
		return
	}
	if len(audio) == 0 {
		Error(w, http.StatusBadRequest, "empty audio upload")
		return
	}

	result, err := h.orc.SubmitAudioAnswer(r.Context(), sessionID, audio)
	if err != nil {
		slog.Error("Failed to process audio answer", "error", err, "session_id", sessionID)
		Error(w, statusFor(err), err.Error())
		return
	}

	writeAnswer(w, result)
}

func writeAnswer(w http.ResponseWriter, result *interview.AnswerResult) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"session_id":      result.SessionID,
		"question_number": result.TurnIndex,
		"transcript":      result.Transcript,
		"coaching":        result.Coaching,
		"scorecard":       result.Scorecard,
		"average_score":   result.Scorecard.AverageScore(),
	})
}

// End freezes the session and returns the final report.
func (h *InterviewHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	summary, err := h.orc.EndSession(r.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to end session", "error", err, "session_id", sessionID)
		Error(w, statusFor(err), err.Error())
		return
	}

	JSON(w, http.StatusOK, summary)
}

// Stats returns a live metric snapshot for a session.
func (h *InterviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	summary, err := h.orc.Stats(sessionID)
	if err != nil {
		Error(w, statusFor(err), err.Error())
		return
	}

	JSON(w, http.StatusOK, summary)
}

// UploadResume extracts text from an uploaded resume file.
func (h *InterviewHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		Error(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		Error(w, http.StatusBadRequest, "could not read file upload")
		return
	}

	text, err := resume.FromUpload(header.Filename, data)
	if err != nil {
		slog.Warn("Resume extraction failed", "error", err, "filename", header.Filename)
		Error(w, statusFor(err), err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"resume_text": text,
		"chars":       len(text),
	})
}

// History lists recent session reports from the database.
func (h *InterviewHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		Error(w, http.StatusNotImplemented, "persistence is disabled")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	summaries, err := h.repo.ListSummaries(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list session history", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"sessions": summaries})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	return dec.Decode(v)
}

// readUpload accepts either a multipart form field or a raw request body.
func readUpload(r *http.Request, field string) ([]byte, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile(field)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxUploadBytes))
	}
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
}
