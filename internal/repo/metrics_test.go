package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tbourn/go-contacts-backend/internal/domain"
)

// stubStore returns canned errors for every operation.
type stubStore struct{ err error }

func (s stubStore) Insert(context.Context, *domain.Contact) (*domain.Contact, error) {
	return nil, s.err
}
func (s stubStore) ListAll(context.Context) ([]domain.Contact, error) { return nil, s.err }
func (s stubStore) FindByID(context.Context, string) (*domain.Contact, error) {
	return nil, s.err
}
func (s stubStore) UpdateByID(context.Context, string, domain.ContactFields) (*domain.Contact, error) {
	return nil, s.err
}
func (s stubStore) DeleteByID(context.Context, string) error         { return s.err }
func (s stubStore) Stats(context.Context) (int64, *time.Time, error) { return 0, nil, s.err }
func (s stubStore) Ping(context.Context) error                       { return s.err }

func TestResultLabel(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{ErrNotFound, "not_found"},
		{&domain.ValidationError{Fields: map[string]string{"name": "x"}}, "invalid"},
		{errors.New("db down"), "error"},
	}
	for _, tc := range cases {
		if got := resultLabel(tc.err); got != tc.want {
			t.Errorf("resultLabel(%v) = %q; want %q", tc.err, got, tc.want)
		}
	}
}

func TestInstrument_CountsByOpAndResult(t *testing.T) {
	ctx := context.Background()
	okBefore := testutil.ToFloat64(storeOps.WithLabelValues("delete", "ok"))
	nfBefore := testutil.ToFloat64(storeOps.WithLabelValues("update", "not_found"))
	errBefore := testutil.ToFloat64(storeOps.WithLabelValues("list", "error"))

	_ = Instrument(stubStore{}).DeleteByID(ctx, "x")
	_, _ = Instrument(stubStore{err: ErrNotFound}).UpdateByID(ctx, "x", domain.ContactFields{})
	_, _ = Instrument(stubStore{err: errors.New("boom")}).ListAll(ctx)

	if got := testutil.ToFloat64(storeOps.WithLabelValues("delete", "ok")); got != okBefore+1 {
		t.Fatalf("delete ok = %v; want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(storeOps.WithLabelValues("update", "not_found")); got != nfBefore+1 {
		t.Fatalf("update not_found = %v; want %v", got, nfBefore+1)
	}
	if got := testutil.ToFloat64(storeOps.WithLabelValues("list", "error")); got != errBefore+1 {
		t.Fatalf("list error = %v; want %v", got, errBefore+1)
	}
}

func TestInstrument_PassesThrough(t *testing.T) {
	ctx := context.Background()
	s := Instrument(NewGormContacts(newTestDB(t, &domain.Contact{})))
	if again := Instrument(s); again != s {
		t.Fatal("Instrument should not double wrap")
	}

	c, err := s.Insert(ctx, ann())
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := s.FindByID(ctx, c.ID); err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if n, _, err := s.Stats(ctx); err != nil || n != 1 {
		t.Fatalf("Stats: %d %v", n, err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
