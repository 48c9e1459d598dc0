package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-contacts-backend/internal/domain"
)

func newContactsRepo(t *testing.T) (*GormContacts, func(id string, created time.Time)) {
	t.Helper()
	db := newTestDB(t, &domain.Contact{})
	backdate := func(id string, created time.Time) {
		if err := db.Model(&domain.Contact{}).Where("id = ?", id).Update("created_at", created).Error; err != nil {
			t.Fatalf("backdate: %v", err)
		}
	}
	return NewGormContacts(db), backdate
}

func ann() *domain.Contact {
	return &domain.Contact{Name: "Ann", Email: "a@b.com", Phone: "1234567890", Message: "hi"}
}

func TestGormContacts_InsertAssignsIDAndTimestamps(t *testing.T) {
	r, _ := newContactsRepo(t)
	in := ann()
	in.ID = "caller-id"

	got, err := r.Insert(context.Background(), in)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got.ID == "" || got.ID == "caller-id" {
		t.Fatalf("expected store-assigned id, got %q", got.ID)
	}
	if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Fatalf("timestamps: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
	if in.ID != "caller-id" {
		t.Fatal("Insert must not modify the caller's value")
	}

	back, err := r.FindByID(context.Background(), got.ID)
	if err != nil || back.Name != "Ann" || back.Message != "hi" {
		t.Fatalf("FindByID: %+v %v", back, err)
	}
}

func TestGormContacts_InsertRequiresFields(t *testing.T) {
	r, _ := newContactsRepo(t)
	_, err := r.Insert(context.Background(), &domain.Contact{Name: "  ", Phone: "1"})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["name"]; !ok {
		t.Fatalf("missing name violation: %v", verr.Fields)
	}
	if _, ok := verr.Fields["email"]; !ok {
		t.Fatalf("missing email violation: %v", verr.Fields)
	}
	if _, ok := verr.Fields["phone"]; ok {
		t.Fatalf("phone was present: %v", verr.Fields)
	}

	all, _ := r.ListAll(context.Background())
	if len(all) != 0 {
		t.Fatalf("invalid insert persisted %d rows", len(all))
	}
}

func TestGormContacts_ListAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	r, backdate := newContactsRepo(t)

	empty, err := r.ListAll(ctx)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty list: %v %v", empty, err)
	}

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i, name := range []string{"first", "second", "third"} {
		c := ann()
		c.Name = name
		got, err := r.Insert(ctx, c)
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		backdate(got.ID, base.Add(time.Duration(i)*time.Hour))
		ids = append(ids, got.ID)
	}

	all, err := r.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 || all[0].Name != "third" || all[1].Name != "second" || all[2].Name != "first" {
		t.Fatalf("order = %v", all)
	}
}

func TestGormContacts_ListAllTieBreaksByID(t *testing.T) {
	ctx := context.Background()
	r, backdate := newContactsRepo(t)

	same := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a, _ := r.Insert(ctx, ann())
	b, _ := r.Insert(ctx, ann())
	backdate(a.ID, same)
	backdate(b.ID, same)

	all, err := r.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if all[0].ID < all[1].ID {
		t.Fatalf("expected id descending on ties, got %s before %s", all[0].ID, all[1].ID)
	}
}

func TestGormContacts_UpdateByID(t *testing.T) {
	ctx := context.Background()
	r, _ := newContactsRepo(t)
	orig, _ := r.Insert(ctx, ann())
	time.Sleep(2 * time.Millisecond)

	got, err := r.UpdateByID(ctx, orig.ID, domain.ContactFields{Name: "Annie", Email: "x@y.org", Phone: "0987654321"})
	if err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}
	if got.Name != "Annie" || got.Email != "x@y.org" || got.Message != "" {
		t.Fatalf("fields not replaced: %+v", got)
	}
	if got.ID != orig.ID || !got.UpdatedAt.After(orig.UpdatedAt) {
		t.Fatalf("id/updatedAt: %+v vs %+v", got, orig)
	}
	if !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Fatalf("createdAt changed: %v -> %v", orig.CreatedAt, got.CreatedAt)
	}
}

func TestGormContacts_UpdateByIDErrors(t *testing.T) {
	ctx := context.Background()
	r, _ := newContactsRepo(t)

	_, err := r.UpdateByID(ctx, "missing", ann().Fields())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	c, _ := r.Insert(ctx, ann())
	_, err = r.UpdateByID(ctx, c.ID, domain.ContactFields{Name: "Ann"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	back, _ := r.FindByID(ctx, c.ID)
	if back.Email != "a@b.com" {
		t.Fatalf("invalid update was applied: %+v", back)
	}
}

func TestGormContacts_DeleteByIDIdempotent(t *testing.T) {
	ctx := context.Background()
	r, _ := newContactsRepo(t)
	c, _ := r.Insert(ctx, ann())

	for i := 0; i < 2; i++ {
		if err := r.DeleteByID(ctx, c.ID); err != nil {
			t.Fatalf("DeleteByID #%d: %v", i+1, err)
		}
	}
	if _, err := r.FindByID(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := r.DeleteByID(ctx, "never-existed"); err != nil {
		t.Fatalf("delete of unknown id: %v", err)
	}
}

func TestGormContacts_Ping(t *testing.T) {
	r, _ := newContactsRepo(t)
	if err := r.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestGormContacts_ErrorsWithoutTable(t *testing.T) {
	r := NewGormContacts(newTestDB(t))
	if _, err := r.Insert(context.Background(), ann()); err == nil {
		t.Fatal("expected insert error without table")
	}
	if _, err := r.ListAll(context.Background()); err == nil {
		t.Fatal("expected list error without table")
	}
}
