package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/indicesp/indicesp/pkg/archival"
)

// Status is where a submission sits in moderation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether a moderator may move a submission from s to next.
// Only pending -> approved and pending -> rejected exist.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && next.Terminal()
}

// Submission is one observed price sent by a contributor.
type Submission struct {
	ID           string          `json:"id"`
	Supermarket  string          `json:"supermarket"`
	Product      string          `json:"product"`
	Price        decimal.Decimal `json:"price"`
	Unit         string          `json:"unit,omitempty"`
	Location     string          `json:"location,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Observations string          `json:"observations,omitempty"`
	ImageRef     string          `json:"image_ref,omitempty"`
	ArchivalURL  string          `json:"archival_url,omitempty"`
	// CaptureDate is set only when ArchivalURL passed validation.
	CaptureDate *archival.Date `json:"capture_date,omitempty"`
	SubmittedBy string         `json:"submitted_by,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`

	Status          Status    `json:"status"`
	DecidedBy       string    `json:"decided_by,omitempty"`
	DecidedAt       time.Time `json:"decided_at,omitzero"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
}

// HasImage mirrors the "Com foto" badge of the queue.
func (s Submission) HasImage() bool { return s.ImageRef != "" }

// Event is a moderation audit record.
type Event struct {
	OccurredAt   time.Time `json:"occurred_at"`
	SubmissionID string    `json:"submission_id"`
	Supermarket  string    `json:"supermarket"`
	Product      string    `json:"product"`
	Actor        string    `json:"actor,omitempty"`
	EventType    string    `json:"event_type"` // submitted | approved | rejected
	Reason       string    `json:"reason,omitempty"`
}

// QueueStats counts submissions per supermarket and status.
type QueueStats struct {
	Supermarket string `json:"supermarket"`
	Pending     int    `json:"pending"`
	Approved    int    `json:"approved"`
	Rejected    int    `json:"rejected"`
	Locations   int    `json:"locations"`
}

func (q QueueStats) Total() int { return q.Pending + q.Approved + q.Rejected }
