// Package submission takes price contributions in and moves them through
// moderation. A submission starts pending and ends approved or rejected;
// neither decision can be undone.
package submission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/indicesp/indicesp/pkg/archival"
	"github.com/indicesp/indicesp/pkg/catalog"
	"github.com/indicesp/indicesp/pkg/storage"
)

// Logger abstracts logging so callers can use logrus or anything with the
// same methods.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Store is the part of storage.DB the service needs.
type Store interface {
	InsertSubmission(ctx context.Context, s *storage.Submission) error
	GetSubmission(ctx context.Context, id string) (*storage.Submission, error)
	ListSubmissions(ctx context.Context, opts storage.ListOptions) ([]storage.Submission, error)
	DecideSubmission(ctx context.Context, id string, next storage.Status, actor, reason string, at time.Time) (*storage.Submission, error)
}

// CaptureValidator checks archival evidence. *archival.Validator satisfies it.
type CaptureValidator interface {
	Validate(url, brand string) (archival.Date, error)
}

// Config wires a Service. Store is required; the rest falls back to defaults.
type Config struct {
	Store     Store
	Catalog   *catalog.Catalog // defaults to catalog.Default()
	Validator CaptureValidator // defaults to one built from Catalog's brands
	Log       Logger           // optional; nil = no logging
	Now       func() time.Time

	// OnSubmitted and OnDecided run after the store accepted the change.
	OnSubmitted func(s storage.Submission)
	OnDecided   func(s storage.Submission)
}

type Service struct {
	store     Store
	catalog   *catalog.Catalog
	validator CaptureValidator
	log       Logger
	now       func() time.Time

	onSubmitted func(storage.Submission)
	onDecided   func(storage.Submission)
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("submission: store is required")
	}
	s := &Service{
		store:       cfg.Store,
		catalog:     cfg.Catalog,
		validator:   cfg.Validator,
		log:         cfg.Log,
		now:         cfg.Now,
		onSubmitted: cfg.OnSubmitted,
		onDecided:   cfg.OnDecided,
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.validator == nil {
		s.validator = archival.NewValidator(s.catalog.Brands())
	}
	if s.log == nil {
		s.log = nopLogger{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Catalog returns the catalog intake checks against.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Check runs every intake rule on f without storing anything. It returns
// the record that Submit would create, minus id, timestamps and status.
func (s *Service) Check(f Form) (*storage.Submission, error) {
	f = f.Normalize()

	if f.Supermarket == "" || f.Product == "" || f.Price == "" {
		return nil, &FieldError{Err: ErrMissingRequired}
	}
	price, err := ParsePrice(f.Price)
	if err != nil {
		return nil, &FieldError{Field: "price", Err: err}
	}
	if !s.catalog.SupermarketNames().Contains(f.Supermarket) {
		return nil, &FieldError{Field: "supermarket", Err: ErrUnknownSupermarket}
	}
	if !s.catalog.Products().Contains(f.Product) {
		return nil, &FieldError{Field: "product", Err: ErrUnknownProduct}
	}
	if f.Unit != "" && !s.catalog.Units().Contains(f.Unit) {
		return nil, &FieldError{Field: "unit", Err: ErrUnknownUnit}
	}

	sub := &storage.Submission{
		Supermarket:  f.Supermarket,
		Product:      f.Product,
		Price:        price,
		Unit:         f.Unit,
		Location:     f.Location,
		Brand:        f.Brand,
		Observations: f.Observations,
		ImageRef:     f.ImageRef,
		ArchivalURL:  f.ArchivalURL,
		SubmittedBy:  f.SubmittedBy,
	}
	if f.ArchivalURL != "" {
		d, err := s.validator.Validate(f.ArchivalURL, f.Brand)
		if err != nil {
			return nil, &FieldError{Field: "archival_url", Err: err}
		}
		sub.CaptureDate = &d
	}
	return sub, nil
}

// CheckCapture runs only the archival evidence rule, on the same trimmed
// values Check would see.
func (s *Service) CheckCapture(url, brand string) (archival.Date, error) {
	f := Form{ArchivalURL: url, Brand: brand}.Normalize()
	return s.validator.Validate(f.ArchivalURL, f.Brand)
}

// Submit checks f and queues it as a pending submission.
func (s *Service) Submit(ctx context.Context, f Form) (*storage.Submission, error) {
	return s.submitAt(ctx, f, s.now())
}

func (s *Service) submitAt(ctx context.Context, f Form, at time.Time) (*storage.Submission, error) {
	sub, err := s.Check(f)
	if err != nil {
		s.log.Debugf("Rejected contribution for %q: %v", f.Product, err)
		return nil, err
	}
	sub.ID = uuid.NewString()
	sub.SubmittedAt = at.UTC()
	sub.Status = storage.StatusPending

	if err := s.store.InsertSubmission(ctx, sub); err != nil {
		s.log.Errorf("Could not store submission %s: %v", sub.ID, err)
		return nil, err
	}
	s.log.Infof("Queued %s at %s for R$ %s (%s)", sub.Product, sub.Supermarket, sub.Price.StringFixed(2), sub.ID)
	if s.onSubmitted != nil {
		s.onSubmitted(*sub)
	}
	return sub, nil
}

// Approve marks a pending submission as validated. The archival capture, if
// any, was checked at intake and is not looked at again.
func (s *Service) Approve(ctx context.Context, id, moderator string) (*storage.Submission, error) {
	return s.decide(ctx, id, storage.StatusApproved, moderator, "")
}

// Reject marks a pending submission as refused.
func (s *Service) Reject(ctx context.Context, id, moderator, reason string) (*storage.Submission, error) {
	return s.decide(ctx, id, storage.StatusRejected, moderator, storage.SanitizeText(reason))
}

func (s *Service) decide(ctx context.Context, id string, next storage.Status, moderator, reason string) (*storage.Submission, error) {
	sub, err := s.store.DecideSubmission(ctx, id, next, storage.NormalizeText(moderator), reason, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrAlreadyDecided) || errors.Is(err, ErrNotFound) {
			s.log.Warnf("Cannot mark %s as %s: %v", id, next, err)
		} else {
			s.log.Errorf("Failed to mark %s as %s: %v", id, next, err)
		}
		return nil, err
	}
	s.log.Infof("Submission %s %s by %q", id, next, sub.DecidedBy)
	if s.onDecided != nil {
		s.onDecided(*sub)
	}
	return sub, nil
}

// Pending returns the moderation queue, oldest first.
func (s *Service) Pending(ctx context.Context) ([]storage.Submission, error) {
	return s.store.ListSubmissions(ctx, storage.ListOptions{Status: storage.StatusPending})
}

func (s *Service) Get(ctx context.Context, id string) (*storage.Submission, error) {
	return s.store.GetSubmission(ctx, id)
}

func (s *Service) List(ctx context.Context, opts storage.ListOptions) ([]storage.Submission, error) {
	return s.store.ListSubmissions(ctx, opts)
}
