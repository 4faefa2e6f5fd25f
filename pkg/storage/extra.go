package storage

import (
	"context"
	"database/sql"
)

// ListRecentEvents returns the most recent N moderation events, newest first.
func (d *DB) ListRecentEvents(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.QueryContext(ctx, "SELECT occurred_at, submission_id, supermarket, product, actor, event_type, reason FROM submission_events ORDER BY occurred_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			e             Event
			occurredAt    string
			actor, reason sql.NullString
		)
		if err := rows.Scan(&occurredAt, &e.SubmissionID, &e.Supermarket, &e.Product, &actor, &e.EventType, &reason); err != nil {
			return nil, err
		}
		e.OccurredAt = parseTime(occurredAt)
		e.Actor = actor.String
		e.Reason = reason.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// QueueStats counts submissions per supermarket.
func (d *DB) QueueStats(ctx context.Context) ([]QueueStats, error) {
	query := `
		SELECT
			supermarket,
			SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END),
			COUNT(DISTINCT location)
		FROM
			submissions
		GROUP BY
			supermarket
		ORDER BY
			supermarket;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []QueueStats
	for rows.Next() {
		var s QueueStats
		if err := rows.Scan(&s.Supermarket, &s.Pending, &s.Approved, &s.Rejected, &s.Locations); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// CountByStatus returns how many submissions sit in each status.
func (d *DB) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT status, COUNT(*) FROM submissions GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[Status]int{StatusPending: 0, StatusApproved: 0, StatusRejected: 0}
	for rows.Next() {
		var (
			st string
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[Status(st)] = n
	}
	return out, rows.Err()
}
