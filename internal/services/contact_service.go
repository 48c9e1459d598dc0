// Package services – ContactService
//
// This file implements ContactService, the application-level component that
// owns the contact lifecycle: create, list newest-first, full-field update,
// and idempotent delete. It trims input, optionally re-applies the client
// form rules (strict mode), translates store errors into service errors, and
// replays creates that carry a previously seen Idempotency-Key.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include the contact identifier where applicable.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-contacts-backend/internal/domain"
	"github.com/tbourn/go-contacts-backend/internal/repo"
	"github.com/tbourn/go-contacts-backend/internal/validate"
)

// CreateScope namespaces idempotency keys for contact creation.
const CreateScope = "contacts:create"

// ContactRepo defines the store contract required by ContactService.
type ContactRepo interface {
	Insert(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	ListAll(ctx context.Context) ([]domain.Contact, error)
	FindByID(ctx context.Context, id string) (*domain.Contact, error)
	UpdateByID(ctx context.Context, id string, f domain.ContactFields) (*domain.Contact, error)
	DeleteByID(ctx context.Context, id string) error
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// IdempotencyRepo defines the replay-record contract. Optional.
type IdempotencyRepo interface {
	Get(ctx context.Context, scope, key string, now time.Time) (*domain.Idempotency, error)
	Create(ctx context.Context, scope, key, contactID string, status int, ttl time.Duration) (*domain.Idempotency, error)
	Rebind(ctx context.Context, scope, key, contactID string, ttl time.Duration) error
}

// ContactService provides contact operations over a ContactRepo.
type ContactService struct {
	// Repo is the contact store.
	Repo ContactRepo
	// Idem stores replay records; nil disables replay.
	Idem IdempotencyRepo
	// IdemTTL is how long a key replays its first result.
	IdemTTL time.Duration
	// Strict re-applies the client form rules (email/phone heuristics).
	Strict bool
}

// NewContactService constructs a ContactService with a 24h replay window.
func NewContactService(r ContactRepo, idem IdempotencyRepo) *ContactService {
	return &ContactService{
		Repo:    r,
		Idem:    idem,
		IdemTTL: 24 * time.Hour,
	}
}

func tracer() trace.Tracer { return otel.Tracer("services/ContactService") }

// Create trims and validates f, then inserts a new contact.
//
// When idemKey is non-empty and replay is enabled, a key seen within IdemTTL
// returns the contact created by the first request with replayed=true.
func (s *ContactService) Create(ctx context.Context, f domain.ContactFields, idemKey string) (c *domain.Contact, replayed bool, err error) {
	ctx, span := tracer().Start(ctx, "Create",
		trace.WithAttributes(attribute.Bool("idempotency.key_present", idemKey != "")))
	defer func() { endSpan(span, err) }()

	f = f.Trimmed()
	if err := s.check(f); err != nil {
		return nil, false, err
	}

	if s.Idem != nil && idemKey != "" {
		if rec, gerr := s.Idem.Get(ctx, CreateScope, idemKey, time.Now().UTC()); gerr == nil && rec != nil {
			prev, ferr := s.Repo.FindByID(ctx, rec.ContactID)
			if ferr == nil {
				span.SetAttributes(attribute.String("contact.id", prev.ID))
				return prev, true, nil
			}
			// The replayed contact was deleted since; create anew and rebind the key.
		}
	}

	c, err = s.Repo.Insert(ctx, &domain.Contact{
		Name:    f.Name,
		Email:   f.Email,
		Phone:   f.Phone,
		Message: f.Message,
	})
	if err != nil {
		return nil, false, translate(err)
	}
	span.SetAttributes(attribute.String("contact.id", c.ID))

	if s.Idem != nil && idemKey != "" {
		s.remember(ctx, idemKey, c.ID)
	}
	return c, false, nil
}

// remember records idemKey for contactID. A row left behind by an expired
// key or a deleted contact is rebound. Failures only lose replay for this key.
func (s *ContactService) remember(ctx context.Context, idemKey, contactID string) {
	_, err := s.Idem.Create(ctx, CreateScope, idemKey, contactID, http.StatusCreated, s.ttl())
	if errors.Is(err, repo.ErrDuplicate) {
		_ = s.Idem.Rebind(ctx, CreateScope, idemKey, contactID, s.ttl())
	}
}

// List returns every contact, newest first.
func (s *ContactService) List(ctx context.Context) (out []domain.Contact, err error) {
	ctx, span := tracer().Start(ctx, "List")
	defer func() { endSpan(span, err) }()

	out, err = s.Repo.ListAll(ctx)
	if err != nil {
		return nil, translate(err)
	}
	span.SetAttributes(attribute.Int("contacts.count", len(out)))
	return out, nil
}

// Stats returns the list fingerprint inputs (count, newest UpdatedAt).
func (s *ContactService) Stats(ctx context.Context) (int64, *time.Time, error) {
	n, ts, err := s.Repo.Stats(ctx)
	if err != nil {
		return 0, nil, translate(err)
	}
	return n, ts, nil
}

// Update replaces every mutable field of contact id with f.
func (s *ContactService) Update(ctx context.Context, id string, f domain.ContactFields) (c *domain.Contact, err error) {
	ctx, span := tracer().Start(ctx, "Update",
		trace.WithAttributes(attribute.String("contact.id", id)))
	defer func() { endSpan(span, err) }()

	f = f.Trimmed()
	if err := s.check(f); err != nil {
		return nil, err
	}
	c, err = s.Repo.UpdateByID(ctx, id, f)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// Delete removes contact id. Deleting a missing contact succeeds.
func (s *ContactService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer().Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("contact.id", id)))
	defer func() { endSpan(span, err) }()

	if err = s.Repo.DeleteByID(ctx, id); err != nil {
		return translate(err)
	}
	return nil
}

// check enforces required fields and, in strict mode, the form heuristics.
func (s *ContactService) check(f domain.ContactFields) error {
	if !s.Strict {
		return f.CheckRequired()
	}
	res := validate.Check(validate.Form{Name: f.Name, Email: f.Email, Phone: f.Phone, Message: f.Message})
	if res.OK() {
		return nil
	}
	verr := &domain.ValidationError{}
	for k, v := range res.Fields() {
		verr.Add(k, v)
	}
	var rerr *domain.ValidationError
	if errors.As(f.CheckRequired(), &rerr) {
		for k, v := range rerr.Fields {
			verr.Add(k, v)
		}
	}
	return verr
}

func (s *ContactService) ttl() time.Duration {
	if s.IdemTTL > 0 {
		return s.IdemTTL
	}
	return 24 * time.Hour
}

// translate maps store errors to service errors. Validation errors pass
// through unchanged.
func translate(err error) error {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verr):
		return verr
	case errors.Is(err, repo.ErrNotFound):
		return ErrContactNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

// endSpan records err on span (expected outcomes are not errors) and ends it.
func endSpan(span trace.Span, err error) {
	var verr *domain.ValidationError
	if err != nil && !errors.Is(err, ErrContactNotFound) && !errors.As(err, &verr) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
