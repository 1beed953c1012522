package culler

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/marks/internal/model"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/get-only", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckURLs(t *testing.T) {
	srv := newTestServer(t)

	bookmarks := []model.Bookmark{
		{ID: "ok", URL: srv.URL + "/ok"},
		{ID: "gone", URL: srv.URL + "/gone"},
		{ID: "missing", URL: srv.URL + "/missing"},
		{ID: "broken", URL: srv.URL + "/broken"},
		{ID: "get-only", URL: srv.URL + "/get-only"},
		{ID: "redirect", URL: srv.URL + "/redirect"},
		{ID: "not-web", URL: "mailto:someone@example.com"},
	}

	var calls atomic.Int32
	results := CheckURLs(context.Background(), bookmarks, Options{
		Concurrency: 3,
		Timeout:     5 * time.Second,
		OnProgress: func(completed, total int) {
			calls.Add(1)
			assert.Check(t, completed <= total)
		},
	})

	assert.Assert(t, is.Len(results, len(bookmarks)))
	assert.Equal(t, int(calls.Load()), len(bookmarks))

	want := map[string]Status{
		"ok":       Healthy,
		"gone":     Dead,
		"missing":  Dead,
		"broken":   Unreachable,
		"get-only": Healthy,
		"redirect": Healthy,
		"not-web":  Unreachable,
	}
	for i, r := range results {
		assert.Equal(t, r.Bookmark.ID, bookmarks[i].ID, "results keep input order")
		assert.Equal(t, r.Status, want[r.Bookmark.ID], r.Bookmark.ID)
	}
	assert.Equal(t, results[3].Error, "Internal Server Error")
	assert.Equal(t, results[6].Error, "Not a web URL")

	assert.DeepEqual(t, Summarize(results), Summary{Healthy: 3, Dead: 2, Unreachable: 2})
	assert.DeepEqual(t, DeadIDs(results), []string{"gone", "missing"})
}

func TestCheckURLs_Empty(t *testing.T) {
	assert.Check(t, is.Nil(CheckURLs(context.Background(), nil, Options{})))
}

func TestCheckURLs_Cancelled(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := CheckURLs(ctx, []model.Bookmark{{ID: "ok", URL: srv.URL + "/ok"}}, Options{})
	assert.Equal(t, results[0].Status, Unreachable)
	assert.Equal(t, results[0].Error, "Cancelled")
}

func TestIsExcludedDomain(t *testing.T) {
	exclude := map[string]bool{"github.com": true}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://github.com/private/repo", true},
		{"https://api.github.com/x", true},
		{"https://GitHub.com:443/x", true},
		{"https://notgithub.com", false},
		{"https://gitlab.com", false},
		{"::not a url", false},
	}

	for _, tt := range tests {
		assert.Equal(t, isExcludedDomain(tt.url, exclude), tt.want, tt.url)
	}
}

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dial tcp: lookup nowhere.invalid: no such host", "DNS failure"},
		{"Get \"x\": context deadline exceeded (Client.Timeout exceeded)", "Timeout"},
		{"dial tcp 127.0.0.1:1: connect: connection refused", "Connection refused"},
		{"x509: certificate signed by unknown authority", "TLS/certificate error"},
		{"something else", "something else"},
	}

	for _, tt := range tests {
		assert.Equal(t, normalizeError(tt.in), tt.want)
	}
}

func TestCheckURLs_LeavesGlobalLoggerAlone(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Print("handled " + r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	results := CheckURLs(context.Background(), []model.Bookmark{{ID: "1", URL: srv.URL}}, Options{})
	assert.Equal(t, results[0].Status, Healthy)
	assert.Check(t, is.Contains(buf.String(), "handled HEAD"))
}
