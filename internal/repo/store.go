// Package repo implements the data persistence layer for domain entities.
// This file selects a storage backend from a connection string and exposes
// the store contracts consumed by the service layer.
//
// Backends:
//
//   - "sqlite:<path>" or a bare file path: GORM + pure-Go SQLite.
//   - "postgres://..." / "postgresql://...": GORM + PostgreSQL (pgx).
//   - "mongodb://..." / "mongodb+srv://...": MongoDB document collection.
//
// Error semantics shared by every backend:
//   - Missing records surface as ErrNotFound.
//   - Missing required fields on insert/update surface as *domain.ValidationError.
//   - Other driver errors (connectivity, constraints) are propagated as-is.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-contacts-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so GORM lookups need no translation;
// the document backend returns the same value.
var ErrNotFound = gorm.ErrRecordNotFound

// ContactStore is the persistence contract for contacts.
type ContactStore interface {
	// Insert assigns an ID and timestamps, persists c and returns the stored record.
	Insert(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	// ListAll returns every contact ordered by creation time, newest first.
	ListAll(ctx context.Context) ([]domain.Contact, error)
	// FindByID fetches one contact or ErrNotFound.
	FindByID(ctx context.Context, id string) (*domain.Contact, error)
	// UpdateByID replaces the mutable fields of the contact or returns ErrNotFound.
	UpdateByID(ctx context.Context, id string, f domain.ContactFields) (*domain.Contact, error)
	// DeleteByID removes the contact. A missing id is not an error.
	DeleteByID(ctx context.Context, id string) error
	// Stats returns the row count and the newest UpdatedAt (nil when empty).
	Stats(ctx context.Context) (count int64, maxUpdatedAt *time.Time, err error)
	// Ping checks connectivity to the backend.
	Ping(ctx context.Context) error
}

// IdempotencyStore persists create-request replay records.
type IdempotencyStore interface {
	// Get returns a non-expired record for (scope, key) or ErrNotFound.
	Get(ctx context.Context, scope, key string, now time.Time) (*domain.Idempotency, error)
	// Create stores a record; ErrDuplicate when (scope, key) already exists.
	Create(ctx context.Context, scope, key, contactID string, status int, ttl time.Duration) (*domain.Idempotency, error)
	// Rebind moves an existing record to contactID with a fresh expiry.
	Rebind(ctx context.Context, scope, key, contactID string, ttl time.Duration) error
}

// Backend names reported by Store.Backend.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongodb"
)

// Options tunes Open.
type Options struct {
	// Tracing registers the OpenTelemetry GORM plugin on SQL backends.
	Tracing bool
	// ConnectTimeout bounds the initial connection and ping. Defaults to 10s.
	ConnectTimeout time.Duration
}

// Store bundles the handles produced by Open.
type Store struct {
	Backend  string
	Contacts ContactStore
	// Idempotency is nil for backends without replay support (MongoDB).
	Idempotency IdempotencyStore
	// DB is the underlying GORM handle for SQL backends, nil otherwise.
	DB *gorm.DB

	closeFn func(context.Context) error
}

// Close releases the underlying connections.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}

// Open connects to the backend named by uri, migrates its schema and
// returns the ready-to-use Store. Contact operations are instrumented with
// Prometheus counters.
func Open(ctx context.Context, uri string, opts Options) (*Store, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	backend, target, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	if backend == BackendMongo {
		cctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
		mc, err := OpenMongo(cctx, target)
		if err != nil {
			return nil, fmt.Errorf("open mongodb: %w", err)
		}
		return &Store{
			Backend:  backend,
			Contacts: Instrument(mc),
			closeFn:  mc.Close,
		}, nil
	}

	var db *gorm.DB
	switch backend {
	case BackendPostgres:
		db, err = OpenPostgres(target)
	default:
		db, err = OpenSQLite(target)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", backend, err)
	}
	if opts.Tracing {
		if err := EnableTracing(db); err != nil {
			return nil, fmt.Errorf("enable gorm tracing: %w", err)
		}
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{
		Backend:     backend,
		Contacts:    Instrument(NewGormContacts(db)),
		Idempotency: NewGormIdempotency(db),
		DB:          db,
		closeFn: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}

// ParseURI maps a store connection string to a backend name and the
// driver-specific target (file path, DSN or URI).
func ParseURI(uri string) (backend, target string, err error) {
	u := strings.TrimSpace(uri)
	lower := strings.ToLower(u)
	switch {
	case u == "":
		return "", "", errors.New("store uri must not be empty")
	case strings.HasPrefix(lower, "mongodb://"), strings.HasPrefix(lower, "mongodb+srv://"):
		return BackendMongo, u, nil
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return BackendPostgres, u, nil
	case strings.HasPrefix(lower, "sqlite://"):
		return BackendSQLite, u[len("sqlite://"):], nil
	case strings.HasPrefix(lower, "sqlite:"):
		return BackendSQLite, u[len("sqlite:"):], nil
	case strings.Contains(u, "://"):
		return "", "", fmt.Errorf("unsupported store scheme in %q", u)
	default:
		return BackendSQLite, u, nil
	}
}
