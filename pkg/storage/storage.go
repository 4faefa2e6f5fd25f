package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/indicesp/indicesp/pkg/archival"
)

var (
	ErrNotFound       = errors.New("submission not found")
	ErrAlreadyDecided = errors.New("submission has already been moderated")
)

// DB is the submission queue. It lives in memory only: the SQLite database is
// private to the process and disappears on Close.
type DB struct {
	sql *sql.DB
}

var memSeq atomic.Int64

// OpenMemory creates an empty queue.
func OpenMemory() (*DB, error) {
	// Each DB gets its own named in-memory database so tests don't share state.
	dsn := fmt.Sprintf("file:indicesp-%d?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", memSeq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// The database vanishes when its last connection closes; keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS submissions (
  id               TEXT PRIMARY KEY,
  supermarket      TEXT NOT NULL,
  product          TEXT NOT NULL,
  price            TEXT NOT NULL,
  unit             TEXT,
  location         TEXT,
  brand            TEXT,
  observations     TEXT,
  image_ref        TEXT,
  archival_url     TEXT,
  capture_date     TEXT,
  submitted_by     TEXT,
  submitted_at     TEXT NOT NULL,
  status           TEXT NOT NULL CHECK (status IN ('pending','approved','rejected')),
  decided_by       TEXT,
  decided_at       TEXT,
  rejection_reason TEXT
);
CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status, submitted_at);
CREATE INDEX IF NOT EXISTS idx_submissions_market ON submissions(supermarket);
CREATE TABLE IF NOT EXISTS submission_events (
  id            INTEGER PRIMARY KEY,
  occurred_at   TEXT NOT NULL,
  submission_id TEXT NOT NULL REFERENCES submissions(id),
  supermarket   TEXT NOT NULL,
  product       TEXT NOT NULL,
  actor         TEXT,
  event_type    TEXT NOT NULL CHECK (event_type IN ('submitted','approved','rejected')),
  reason        TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_time ON submission_events(occurred_at);
    `); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// InsertSubmission stores s as given and records a "submitted" event.
func (d *DB) InsertSubmission(ctx context.Context, s *Submission) (err error) {
	if s.ID == "" {
		return errors.New("submission has no id")
	}
	if !s.Status.Valid() {
		return fmt.Errorf("invalid status %q", s.Status)
	}

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var capture interface{}
	if s.CaptureDate != nil {
		capture = s.CaptureDate.String()
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO submissions(id, supermarket, product, price, unit, location, brand, observations, image_ref, archival_url, capture_date, submitted_by, submitted_at, status, decided_by, decided_at, rejection_reason) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.ID, s.Supermarket, s.Product, s.Price.String(),
		nullIfEmpty(s.Unit), nullIfEmpty(s.Location), nullIfEmpty(s.Brand), nullIfEmpty(s.Observations),
		nullIfEmpty(s.ImageRef), nullIfEmpty(s.ArchivalURL), capture, nullIfEmpty(s.SubmittedBy),
		formatTime(s.SubmittedAt), string(s.Status),
		nullIfEmpty(s.DecidedBy), nullTime(s.DecidedAt), nullIfEmpty(s.RejectionReason))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO submission_events(occurred_at, submission_id, supermarket, product, actor, event_type) VALUES(?,?,?,?,?,'submitted')`,
		formatTime(s.SubmittedAt), s.ID, s.Supermarket, s.Product, nullIfEmpty(s.SubmittedBy))
	if err != nil {
		return err
	}

	return tx.Commit()
}

const submissionColumns = "id, supermarket, product, price, unit, location, brand, observations, image_ref, archival_url, capture_date, submitted_by, submitted_at, status, decided_by, decided_at, rejection_reason"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(r rowScanner) (*Submission, error) {
	var (
		s                                  Submission
		price, submittedAt, status         string
		unit, location, brand, obs         sql.NullString
		image, archURL, capture, by        sql.NullString
		decidedBy, decidedAt, rejectReason sql.NullString
	)
	if err := r.Scan(&s.ID, &s.Supermarket, &s.Product, &price, &unit, &location, &brand, &obs, &image, &archURL, &capture, &by, &submittedAt, &status, &decidedBy, &decidedAt, &rejectReason); err != nil {
		return nil, err
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("submission %s: bad stored price %q: %w", s.ID, price, err)
	}
	s.Price = p
	s.Unit = unit.String
	s.Location = location.String
	s.Brand = brand.String
	s.Observations = obs.String
	s.ImageRef = image.String
	s.ArchivalURL = archURL.String
	s.SubmittedBy = by.String
	s.Status = Status(status)
	s.DecidedBy = decidedBy.String
	s.RejectionReason = rejectReason.String
	s.SubmittedAt = parseTime(submittedAt)
	if decidedAt.Valid {
		s.DecidedAt = parseTime(decidedAt.String)
	}
	if capture.Valid {
		cd, err := archival.ParseDate(capture.String)
		if err != nil {
			return nil, fmt.Errorf("submission %s: bad stored capture date: %w", s.ID, err)
		}
		s.CaptureDate = &cd
	}
	return &s, nil
}

// GetSubmission returns ErrNotFound for unknown ids.
func (d *DB) GetSubmission(ctx context.Context, id string) (*Submission, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+submissionColumns+" FROM submissions WHERE id = ?", id)
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// ListOptions controls selection when listing submissions.
type ListOptions struct {
	Status      Status
	Supermarket string
	Since       time.Time
	Limit       int
}

// ListSubmissions returns matching submissions, oldest first.
func (d *DB) ListSubmissions(ctx context.Context, opts ListOptions) ([]Submission, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if opts.Status != "" {
		where += " AND status = ?"
		args = append(args, string(opts.Status))
	}
	if opts.Supermarket != "" && opts.Supermarket != "all" {
		where += " AND supermarket = ?"
		args = append(args, opts.Supermarket)
	}
	if !opts.Since.IsZero() {
		where += " AND submitted_at >= ?"
		args = append(args, formatTime(opts.Since))
	}

	q := "SELECT " + submissionColumns + " FROM submissions " + where + " ORDER BY submitted_at, id"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecideSubmission moves a pending submission to approved or rejected and
// logs the decision. Decided submissions are left untouched and
// ErrAlreadyDecided is returned.
func (d *DB) DecideSubmission(ctx context.Context, id string, next Status, actor, reason string, at time.Time) (_ *Submission, err error) {
	if !next.Terminal() {
		return nil, fmt.Errorf("cannot move a submission to %q", next)
	}

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current string
	err = tx.QueryRowContext(ctx, "SELECT status FROM submissions WHERE id = ?", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if !Status(current).CanTransition(next) {
		err = ErrAlreadyDecided
		return nil, err
	}

	if next == StatusApproved {
		reason = ""
	}
	_, err = tx.ExecContext(ctx, `UPDATE submissions SET status = ?, decided_by = ?, decided_at = ?, rejection_reason = ? WHERE id = ? AND status = 'pending'`,
		string(next), nullIfEmpty(actor), formatTime(at), nullIfEmpty(reason), id)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO submission_events(occurred_at, submission_id, supermarket, product, actor, event_type, reason) SELECT ?, id, supermarket, product, ?, ?, ? FROM submissions WHERE id = ?`,
		formatTime(at), nullIfEmpty(actor), string(next), nullIfEmpty(reason), id)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx, "SELECT "+submissionColumns+" FROM submissions WHERE id = ?", id)
	s, err := scanSubmission(row)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return s, nil
}
