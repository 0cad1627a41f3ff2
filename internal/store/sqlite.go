package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/intervu-ai/intervu/internal/domain"
	"github.com/intervu-ai/intervu/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		resume_text TEXT NOT NULL,
		job_description TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

	CREATE TABLE IF NOT EXISTS turns (
		session_id TEXT NOT NULL,
		turn_index INTEGER NOT NULL,
		question TEXT NOT NULL,
		transcript TEXT,
		duration_seconds REAL NOT NULL DEFAULT 0,
		coaching_json TEXT,
		scorecard_json TEXT,
		asked_at INTEGER NOT NULL,
		answered_at INTEGER,
		PRIMARY KEY (session_id, turn_index)
	);

	CREATE TABLE IF NOT EXISTS summaries (
		session_id TEXT PRIMARY KEY,
		duration_minutes REAL NOT NULL,
		questions_asked INTEGER NOT NULL,
		average_score REAL NOT NULL,
		average_wpm REAL NOT NULL,
		total_filler_words INTEGER NOT NULL,
		report TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_created ON summaries(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveSession creates or updates a session record.
func (s *SQLiteStore) SaveSession(ctx context.Context, session *domain.Session) error {
	query := `
	INSERT INTO sessions (session_id, state, resume_text, job_description, started_at, ended_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		state = excluded.state,
		ended_at = excluded.ended_at,
		updated_at = excluded.updated_at`

	var endedAt interface{}
	if !session.EndedAt.IsZero() {
		endedAt = session.EndedAt.Unix()
	}

	_, err := s.db.ExecContext(ctx, query,
		session.ID, string(session.State),
		session.ResumeText, session.JobDescription,
		session.StartedAt.Unix(), endedAt, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// SaveTurn creates or updates a single turn of a session.
// Implements retry logic with exponential backoff to handle SQLITE_BUSY
// errors, since turns are written on the request hot path.
func (s *SQLiteStore) SaveTurn(ctx context.Context, sessionID string, turn *domain.Turn) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := s.saveTurnOnce(ctx, sessionID, turn)
		if err == nil {
			return nil
		}

		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // exponential backoff: 100ms, 200ms, 400ms
			slog.Debug("SaveTurn hit a busy database, retrying",
				"session_id", sessionID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}

		return fmt.Errorf("save turn %d for %s: %w", turn.Index, sessionID, err)
	}

	return nil
}

func (s *SQLiteStore) saveTurnOnce(ctx context.Context, sessionID string, turn *domain.Turn) error {
	query := `
	INSERT INTO turns (
		session_id, turn_index, question, transcript, duration_seconds,
		coaching_json, scorecard_json, asked_at, answered_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id, turn_index) DO UPDATE SET
		transcript = excluded.transcript,
		duration_seconds = excluded.duration_seconds,
		coaching_json = excluded.coaching_json,
		scorecard_json = excluded.scorecard_json,
		answered_at = excluded.answered_at`

	coachingJSON, err := marshalNullable(turn.Coaching)
	if err != nil {
		return fmt.Errorf("marshal coaching: %w", err)
	}
	scorecardJSON, err := marshalNullable(turn.Scorecard)
	if err != nil {
		return fmt.Errorf("marshal scorecard: %w", err)
	}

	var answeredAt interface{}
	if !turn.AnsweredAt.IsZero() {
		answeredAt = turn.AnsweredAt.Unix()
	}

	_, err = s.db.ExecContext(ctx, query,
		sessionID, turn.Index, turn.Question, turn.Transcript, turn.DurationSeconds,
		coachingJSON, scorecardJSON, turn.AskedAt.Unix(), answeredAt,
	)
	if err != nil {
		return fmt.Errorf("upsert turn: %w", err)
	}
	return nil
}

// SaveSummary records the final report for an ended session.
func (s *SQLiteStore) SaveSummary(ctx context.Context, summary *domain.SessionSummary) error {
	query := `
	INSERT INTO summaries (
		session_id, duration_minutes, questions_asked,
		average_score, average_wpm, total_filler_words, report, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		duration_minutes = excluded.duration_minutes,
		questions_asked = excluded.questions_asked,
		average_score = excluded.average_score,
		average_wpm = excluded.average_wpm,
		total_filler_words = excluded.total_filler_words,
		report = excluded.report`

	_, err := s.db.ExecContext(ctx, query,
		summary.SessionID, summary.DurationMinutes, summary.QuestionsAsked,
		summary.AverageScore, summary.AverageWPM, summary.TotalFillerWords,
		summary.Report, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

// GetSession retrieves a session with its turns.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id, state, resume_text, job_description, started_at, ended_at
		FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	var session domain.Session
	var state string
	var startedAt int64
	var endedAt sql.NullInt64

	err := row.Scan(
		&session.ID, &state, &session.ResumeText, &session.JobDescription,
		&startedAt, &endedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	session.State = domain.State(state)
	session.StartedAt = time.Unix(startedAt, 0)
	if endedAt.Valid {
		session.EndedAt = time.Unix(endedAt.Int64, 0)
	}

	turns, err := s.getTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Turns = turns

	return &session, nil
}

func (s *SQLiteStore) getTurns(ctx context.Context, sessionID string) ([]*domain.Turn, error) {
	query := `
		SELECT turn_index, question, transcript, duration_seconds,
		       coaching_json, scorecard_json, asked_at, answered_at
		FROM turns WHERE session_id = ? ORDER BY turn_index`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close turns rows", "error", closeErr)
		}
	}()

	var turns []*domain.Turn
	for rows.Next() {
		var turn domain.Turn
		var transcript, coachingJSON, scorecardJSON sql.NullString
		var askedAt int64
		var answeredAt sql.NullInt64

		if err := rows.Scan(
			&turn.Index, &turn.Question, &transcript, &turn.DurationSeconds,
			&coachingJSON, &scorecardJSON, &askedAt, &answeredAt,
		); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}

		turn.Transcript = transcript.String
		turn.AskedAt = time.Unix(askedAt, 0)
		if answeredAt.Valid {
			turn.AnsweredAt = time.Unix(answeredAt.Int64, 0)
		}

		if coachingJSON.Valid {
			var coaching domain.CoachingResult
			if err := json.Unmarshal([]byte(coachingJSON.String), &coaching); err != nil {
				return nil, fmt.Errorf("unmarshal coaching for turn %d: %w", turn.Index, err)
			}
			turn.Coaching = &coaching
		}
		if scorecardJSON.Valid {
			var scorecard domain.Scorecard
			if err := json.Unmarshal([]byte(scorecardJSON.String), &scorecard); err != nil {
				return nil, fmt.Errorf("unmarshal scorecard for turn %d: %w", turn.Index, err)
			}
			turn.Scorecard = &scorecard
		}

		turns = append(turns, &turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	return turns, nil
}

// GetSummary retrieves the final report for a session.
func (s *SQLiteStore) GetSummary(ctx context.Context, sessionID string) (*domain.SessionSummary, error) {
	query := `
		SELECT session_id, duration_minutes, questions_asked,
		       average_score, average_wpm, total_filler_words, report
		FROM summaries WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	var summary domain.SessionSummary
	err := row.Scan(
		&summary.SessionID, &summary.DurationMinutes, &summary.QuestionsAsked,
		&summary.AverageScore, &summary.AverageWPM, &summary.TotalFillerWords,
		&summary.Report,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan summary row: %w", err)
	}

	return &summary, nil
}

// ListSummaries returns the most recent session reports, newest first.
func (s *SQLiteStore) ListSummaries(ctx context.Context, limit int) ([]*domain.SessionSummary, error) {
	query := `
		SELECT session_id, duration_minutes, questions_asked,
		       average_score, average_wpm, total_filler_words, report
		FROM summaries ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close summaries rows", "error", closeErr)
		}
	}()

	var summaries []*domain.SessionSummary
	for rows.Next() {
		var summary domain.SessionSummary
		if err := rows.Scan(
			&summary.SessionID, &summary.DurationMinutes, &summary.QuestionsAsked,
			&summary.AverageScore, &summary.AverageWPM, &summary.TotalFillerWords,
			&summary.Report,
		); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		summaries = append(summaries, &summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}

	return summaries, nil
}

// DeleteExpired removes abandoned sessions last updated before cutoff,
// along with their turns. Ended sessions and summaries are kept.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin cleanup: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stale := `state != ? AND updated_at < ?`

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM turns WHERE session_id IN (SELECT session_id FROM sessions WHERE `+stale+`)`,
		string(domain.StateEnded), cutoff.Unix(),
	); err != nil {
		return 0, fmt.Errorf("delete expired turns: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM sessions WHERE `+stale,
		string(domain.StateEnded), cutoff.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit cleanup: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted sessions: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// marshalNullable maps a nil pointer to SQL NULL instead of the JSON
// string "null".
func marshalNullable[T any](v *T) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
