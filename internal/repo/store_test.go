package repo

import (
	"context"
	"path/filepath"
	"testing"
)

func TestParseURI(t *testing.T) {
	cases := []struct {
		in, backend, target string
	}{
		{"contacts.db", BackendSQLite, "contacts.db"},
		{"sqlite:data/contacts.db", BackendSQLite, "data/contacts.db"},
		{"sqlite://contacts.db", BackendSQLite, "contacts.db"},
		{"file:x?mode=memory", BackendSQLite, "file:x?mode=memory"},
		{"postgres://u:p@h/db", BackendPostgres, "postgres://u:p@h/db"},
		{"POSTGRESQL://u@h/db", BackendPostgres, "POSTGRESQL://u@h/db"},
		{"mongodb://localhost:27017/contact_db", BackendMongo, "mongodb://localhost:27017/contact_db"},
		{"mongodb+srv://cluster.example.net", BackendMongo, "mongodb+srv://cluster.example.net"},
		{"  contacts.db  ", BackendSQLite, "contacts.db"},
	}
	for _, tc := range cases {
		backend, target, err := ParseURI(tc.in)
		if err != nil {
			t.Fatalf("ParseURI(%q): %v", tc.in, err)
		}
		if backend != tc.backend || target != tc.target {
			t.Errorf("ParseURI(%q) = (%q, %q); want (%q, %q)", tc.in, backend, target, tc.backend, tc.target)
		}
	}

	for _, bad := range []string{"", "   ", "mysql://u@h/db"} {
		if _, _, err := ParseURI(bad); err == nil {
			t.Errorf("ParseURI(%q) should fail", bad)
		}
	}
}

func TestOpen_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "contacts.db")

	st, err := Open(ctx, "sqlite:"+path, Options{Tracing: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if st.Backend != BackendSQLite || st.DB == nil || st.Idempotency == nil {
		t.Fatalf("unexpected store: %+v", st)
	}
	if err := st.Contacts.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	c, err := st.Contacts.Insert(ctx, ann())
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := st.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := st.Contacts.Ping(ctx); err == nil {
		t.Fatal("Ping after Close should fail")
	}

	st2, err := Open(ctx, path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = st2.Close(ctx) })
	got, err := st2.Contacts.FindByID(ctx, c.ID)
	if err != nil || got.Name != "Ann" {
		t.Fatalf("persisted contact: %+v %v", got, err)
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, "ftp://nope", Options{}); err == nil {
		t.Fatal("expected unsupported scheme error")
	}
	bad := filepath.Join(t.TempDir(), "missing", "contacts.db")
	if _, err := Open(ctx, bad, Options{}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestStore_CloseNil(t *testing.T) {
	var st *Store
	if err := st.Close(context.Background()); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
	if err := (&Store{}).Close(context.Background()); err != nil {
		t.Fatalf("empty Close: %v", err)
	}
}
