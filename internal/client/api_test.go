package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-contacts-backend/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewHTTPClient(srv.URL+"/api/contacts/", WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient(t *testing.T) {
	c, err := NewHTTPClient("")
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, c.BaseURL())

	_, err = NewHTTPClient("not a url")
	require.Error(t, err)

	hc := &http.Client{}
	c, err = NewHTTPClient("http://x/api/contacts", WithHTTPClient(hc))
	require.NoError(t, err)
	require.Same(t, hc, c.httpClient)
}

func TestHTTPClient_List(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/contacts", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"2","name":"Bob"},{"id":"1","name":"Ann"}]`))
	})
	got, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "2", got[0].ID)
}

func TestHTTPClient_ListNullIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	got, err := c.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestHTTPClient_CreateAndUpdate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		out := domain.Contact{Name: in["name"], Email: in["email"], Phone: in["phone"], Message: in["message"]}
		switch r.Method {
		case http.MethodPost:
			require.Equal(t, "/api/contacts", r.URL.Path)
			out.ID = "new"
			w.WriteHeader(http.StatusCreated)
		case http.MethodPut:
			require.Equal(t, "/api/contacts/abc", r.URL.Path)
			out.ID = "abc"
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
		_ = json.NewEncoder(w).Encode(out)
	})

	created, err := c.Create(context.Background(), filled())
	require.NoError(t, err)
	require.Equal(t, "new", created.ID)
	require.Equal(t, "Ann", created.Name)

	updated, err := c.Update(context.Background(), "abc", filled())
	require.NoError(t, err)
	require.Equal(t, "abc", updated.ID)
	require.Equal(t, "hi", updated.Message)
}

func TestHTTPClient_Delete(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"message":"Contact deleted successfully"}`))
	})
	require.NoError(t, c.Delete(context.Background(), "abc"))
	require.Equal(t, "/api/contacts/abc", path)
}

func TestHTTPClient_ErrorEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"request_id":"r","code":"not_found","message":"contact not found"}`))
	})
	_, err := c.Update(context.Background(), "missing", filled())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "not_found", apiErr.Code)
	require.Equal(t, "contact not found", apiErr.Message)
	require.Contains(t, err.Error(), "404")
}

func TestHTTPClient_PlainErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	err := c.Delete(context.Background(), "x")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "boom", apiErr.Message)
}

func TestHTTPClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(url)
	require.NoError(t, err)
	_, err = c.List(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}
