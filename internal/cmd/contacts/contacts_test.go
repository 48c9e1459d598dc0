package contacts

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-contacts-backend/internal/config"
	httpapi "github.com/tbourn/go-contacts-backend/internal/http"
	"github.com/tbourn/go-contacts-backend/internal/repo"
)

var dbSeq atomic.Int64

func startServer(t *testing.T) (string, *repo.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uri := fmt.Sprintf("file:clidb%d?mode=memory&cache=shared", dbSeq.Add(1))
	st, err := repo.Open(context.Background(), uri, repo.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	r := gin.New()
	httpapi.RegisterRoutes(r, st, config.Config{
		APIBasePath:    "/api",
		RateRPS:        1000,
		RateBurst:      1000,
		IdempotencyTTL: time.Hour,
		OTEL:           config.OTELConfig{ServiceName: "cli-test"},
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL + "/api/contacts", st
}

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestParseConfig(t *testing.T) {
	t.Setenv("CONTACTS_API_URL", "")
	t.Setenv("CONTACTS_TIMEOUT", "")
	cfg, err := ParseConfig(flag.NewFlagSet("t", flag.ContinueOnError), nil)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000/api/contacts", cfg.BaseURL)
	require.Equal(t, 10*time.Second, cfg.Timeout)

	t.Setenv("CONTACTS_API_URL", "http://env/api/contacts")
	t.Setenv("CONTACTS_TIMEOUT", "3s")
	cfg, err = ParseConfig(flag.NewFlagSet("t", flag.ContinueOnError), []string{"-timeout", "5s"})
	require.NoError(t, err)
	require.Equal(t, "http://env/api/contacts", cfg.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Timeout)

	_, err = ParseConfig(flag.NewFlagSet("t", flag.ContinueOnError), []string{"-timeout", "0s"})
	require.Error(t, err)
}

func TestRun_FullSession(t *testing.T) {
	base, st := startServer(t)
	ctx := context.Background()

	var out bytes.Buffer
	err := Run(ctx, Config{BaseURL: base, Timeout: 5 * time.Second}, script(
		"name Ann Lee",
		"email ann@example.com",
		"phone 5550001111",
		"message hello there",
		"submit",
		"edit 1",
		"name Changed",
		"cancel",
		"search ann",
		"search nobody",
		"clear",
		"quit",
	), &out)
	require.NoError(t, err)

	items, err := st.Contacts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Ann Lee", items[0].Name)
	require.Equal(t, "hello there", items[0].Message)

	screen := out.String()
	require.Contains(t, screen, "No contacts found.")
	require.Contains(t, screen, "[ Update Contact ]")
	require.Contains(t, screen, `No contacts match "nobody".`)
}

func TestRun_EditUpdatesAndDeleteConfirms(t *testing.T) {
	base, st := startServer(t)
	ctx := context.Background()

	var out bytes.Buffer
	err := Run(ctx, Config{BaseURL: base, Timeout: 5 * time.Second}, script(
		"name Ann",
		"email a@b.com",
		"phone 1234567890",
		"submit",
		"edit 1",
		"name Annie",
		"submit",
		"delete 1",
		"n",
		"quit",
	), &out)
	require.NoError(t, err)

	items, err := st.Contacts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Annie", items[0].Name)

	out.Reset()
	err = Run(ctx, Config{BaseURL: base, Timeout: 5 * time.Second}, script("delete 1", "y"), &out)
	require.NoError(t, err)
	items, err = st.Contacts.ListAll(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
	require.Contains(t, out.String(), "Are you sure you want to delete this contact?")
}

func TestRun_GateAndBadInput(t *testing.T) {
	base, st := startServer(t)
	ctx := context.Background()

	var out bytes.Buffer
	err := Run(ctx, Config{BaseURL: base, Timeout: 5 * time.Second}, script(
		"name Ann",
		"phone 12ab",
		"submit",
		"edit x",
		"delete 7",
		"frobnicate",
		"help",
	), &out)
	require.NoError(t, err)

	items, err := st.Contacts.ListAll(ctx)
	require.NoError(t, err)
	require.Empty(t, items)

	screen := out.String()
	require.Contains(t, screen, "Please enter numbers only")
	require.Contains(t, screen, "Fix the form before submitting.")
	require.Contains(t, screen, `no row "x"`)
	require.Contains(t, screen, `no row "7"`)
	require.Contains(t, screen, `unknown command "frobnicate"`)
	require.Contains(t, screen, "Commands:")
}

func TestRun_ServerDown(t *testing.T) {
	srv := httptest.NewServer(nil)
	base := srv.URL + "/api/contacts"
	srv.Close()

	var out bytes.Buffer
	err := Run(context.Background(), Config{BaseURL: base, Timeout: time.Second}, script(
		"name Ann",
		"email a@b.com",
		"phone 1234567890",
		"submit",
		"quit",
	), &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "could not load contacts")
	require.Contains(t, out.String(), "!! Error saving contact")
}

func TestRun_BadBaseURL(t *testing.T) {
	err := Run(context.Background(), Config{BaseURL: "nope", Timeout: time.Second}, strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
}
