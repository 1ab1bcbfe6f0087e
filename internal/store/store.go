package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/mailendar/mailendar/internal/classify"
	"github.com/mailendar/mailendar/internal/rules"
)

// Store persists emails, classification decisions, and links to created
// Google objects in a DuckDB database file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

type Email struct {
	ID        string
	ThreadID  string
	Sender    string
	Subject   string
	Date      string
	Snippet   string
	Body      string
	CreatedAt string
}

type ReviewItem struct {
	Email          Email
	Classification classify.Classification
}

type GoogleLink struct {
	EmailID         string
	CalendarEventID string
	TaskID          string
	UpdatedAt       string
}

func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS emails (
			id TEXT PRIMARY KEY,
			thread_id TEXT,
			sender TEXT,
			subject TEXT,
			date TEXT,
			snippet TEXT,
			body TEXT,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS classifications (
			email_id TEXT PRIMARY KEY,
			category TEXT,
			urgency INTEGER,
			rule_scores_json TEXT,
			llm_raw TEXT,
			confidence DOUBLE,
			needs_review BOOLEAN,
			review_reason TEXT,
			extracted_json TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS google_links (
			email_id TEXT PRIMARY KEY,
			calendar_event_id TEXT,
			task_id TEXT,
			updated_at TEXT
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

func (s *Store) UpsertEmail(ctx context.Context, e Email) error {
	if e.CreatedAt == "" {
		e.CreatedAt = time.Now().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emails (id, thread_id, sender, subject, date, snippet, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			thread_id = excluded.thread_id,
			sender = excluded.sender,
			subject = excluded.subject,
			date = excluded.date,
			snippet = excluded.snippet,
			body = excluded.body`,
		e.ID, e.ThreadID, e.Sender, e.Subject, e.Date, e.Snippet, e.Body, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert email %s: %w", e.ID, err)
	}
	return nil
}

func (s *Store) GetEmail(ctx context.Context, id string) (*Email, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, thread_id, sender, subject, date, snippet, body, created_at
		FROM emails WHERE id = ?`, id)

	var e Email
	if err := row.Scan(&e.ID, &e.ThreadID, &e.Sender, &e.Subject, &e.Date, &e.Snippet, &e.Body, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get email %s: %w", id, err)
	}
	return &e, nil
}

func (s *Store) ListRecentEmails(ctx context.Context, limit int) ([]Email, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, thread_id, sender, subject, date, snippet, body, created_at
		FROM emails ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	defer rows.Close()

	var emails []Email
	for rows.Next() {
		var e Email
		if err := rows.Scan(&e.ID, &e.ThreadID, &e.Sender, &e.Subject, &e.Date, &e.Snippet, &e.Body, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan email row: %w", err)
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

// UnclassifiedIDs returns IDs of stored emails that have no classification yet.
func (s *Store) UnclassifiedIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id FROM emails e
		LEFT JOIN classifications c ON e.id = c.email_id
		WHERE c.email_id IS NULL
		ORDER BY e.date DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unclassified emails: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan email id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) SaveClassification(ctx context.Context, emailID string, c classify.Classification, llmRaw string) error {
	scoresJSON, err := json.Marshal(c.RuleScores)
	if err != nil {
		return fmt.Errorf("failed to marshal rule scores: %w", err)
	}
	extractedJSON, err := json.Marshal(c.Extracted)
	if err != nil {
		return fmt.Errorf("failed to marshal extracted fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO classifications (
			email_id, category, urgency, rule_scores_json, llm_raw,
			confidence, needs_review, review_reason, extracted_json, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (email_id) DO UPDATE SET
			category = excluded.category,
			urgency = excluded.urgency,
			rule_scores_json = excluded.rule_scores_json,
			llm_raw = excluded.llm_raw,
			confidence = excluded.confidence,
			needs_review = excluded.needs_review,
			review_reason = excluded.review_reason,
			extracted_json = excluded.extracted_json,
			updated_at = excluded.updated_at`,
		emailID, string(c.Category), c.Urgency, string(scoresJSON), llmRaw,
		c.Confidence, c.NeedsReview, c.ReviewReason, string(extractedJSON),
		time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save classification for %s: %w", emailID, err)
	}
	return nil
}

func (s *Store) GetClassification(ctx context.Context, emailID string) (*classify.Classification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT category, urgency, rule_scores_json, confidence, needs_review, review_reason, extracted_json
		FROM classifications WHERE email_id = ?`, emailID)

	c, err := scanClassification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get classification for %s: %w", emailID, err)
	}
	return c, nil
}

// ListNeedsReview returns emails flagged for manual review, most urgent first.
func (s *Store) ListNeedsReview(ctx context.Context, limit int) ([]ReviewItem, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.thread_id, e.sender, e.subject, e.date, e.snippet, e.body, e.created_at,
		       c.category, c.urgency, c.rule_scores_json, c.confidence, c.needs_review, c.review_reason, c.extracted_json
		FROM emails e JOIN classifications c ON e.id = c.email_id
		WHERE c.needs_review
		ORDER BY c.urgency DESC, e.date DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list review queue: %w", err)
	}
	defer rows.Close()

	return scanReviewItems(rows)
}

// ListUrgentTasks returns confirmed TASK emails at or above the urgency threshold.
func (s *Store) ListUrgentTasks(ctx context.Context, threshold, limit int) ([]ReviewItem, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.thread_id, e.sender, e.subject, e.date, e.snippet, e.body, e.created_at,
		       c.category, c.urgency, c.rule_scores_json, c.confidence, c.needs_review, c.review_reason, c.extracted_json
		FROM emails e JOIN classifications c ON e.id = c.email_id
		WHERE c.category = 'TASK' AND c.urgency >= ? AND NOT c.needs_review
		ORDER BY c.urgency DESC, e.date DESC
		LIMIT ?`, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list urgent tasks: %w", err)
	}
	defer rows.Close()

	return scanReviewItems(rows)
}

// SetNeedsReview updates the review flag and extracted fields after user confirmation.
func (s *Store) SetNeedsReview(ctx context.Context, emailID string, needsReview bool, extracted classify.Extracted) error {
	extractedJSON, err := json.Marshal(extracted)
	if err != nil {
		return fmt.Errorf("failed to marshal extracted fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE classifications
		SET needs_review = ?, extracted_json = ?, updated_at = ?
		WHERE email_id = ?`,
		needsReview, string(extractedJSON), time.Now().Format(time.RFC3339), emailID)
	if err != nil {
		return fmt.Errorf("failed to update review flag for %s: %w", emailID, err)
	}
	return nil
}

func (s *Store) SetGoogleLink(ctx context.Context, emailID, calendarEventID, taskID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO google_links (email_id, calendar_event_id, task_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (email_id) DO UPDATE SET
			calendar_event_id = excluded.calendar_event_id,
			task_id = excluded.task_id,
			updated_at = excluded.updated_at`,
		emailID, calendarEventID, taskID, time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save google link for %s: %w", emailID, err)
	}
	return nil
}

func (s *Store) GetGoogleLink(ctx context.Context, emailID string) (*GoogleLink, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT email_id, calendar_event_id, task_id, updated_at
		FROM google_links WHERE email_id = ?`, emailID)

	var l GoogleLink
	if err := row.Scan(&l.EmailID, &l.CalendarEventID, &l.TaskID, &l.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get google link for %s: %w", emailID, err)
	}
	return &l, nil
}

func scanClassification(scan func(dest ...any) error) (*classify.Classification, error) {
	var (
		c             classify.Classification
		category      string
		scoresJSON    string
		extractedJSON string
	)
	if err := scan(&category, &c.Urgency, &scoresJSON, &c.Confidence, &c.NeedsReview, &c.ReviewReason, &extractedJSON); err != nil {
		return nil, err
	}

	c.Category = rules.Category(category)
	if scoresJSON != "" {
		if err := json.Unmarshal([]byte(scoresJSON), &c.RuleScores); err != nil {
			return nil, fmt.Errorf("failed to decode rule scores: %w", err)
		}
	}
	if extractedJSON != "" {
		if err := json.Unmarshal([]byte(extractedJSON), &c.Extracted); err != nil {
			return nil, fmt.Errorf("failed to decode extracted fields: %w", err)
		}
	}
	return &c, nil
}

func scanReviewItems(rows *sql.Rows) ([]ReviewItem, error) {
	var items []ReviewItem
	for rows.Next() {
		var (
			item          ReviewItem
			category      string
			scoresJSON    string
			extractedJSON string
		)
		e := &item.Email
		c := &item.Classification
		if err := rows.Scan(&e.ID, &e.ThreadID, &e.Sender, &e.Subject, &e.Date, &e.Snippet, &e.Body, &e.CreatedAt,
			&category, &c.Urgency, &scoresJSON, &c.Confidence, &c.NeedsReview, &c.ReviewReason, &extractedJSON); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		c.Category = rules.Category(category)
		if scoresJSON != "" {
			if err := json.Unmarshal([]byte(scoresJSON), &c.RuleScores); err != nil {
				return nil, fmt.Errorf("failed to decode rule scores: %w", err)
			}
		}
		if extractedJSON != "" {
			if err := json.Unmarshal([]byte(extractedJSON), &c.Extracted); err != nil {
				return nil, fmt.Errorf("failed to decode extracted fields: %w", err)
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
