package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/marks/internal/logger"
)

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"localhost:7420", "localhost:7420", true},
		{"LOCALHOST:7420", "localhost:7420", true},
		{"evil.com", "localhost:7420", false},
		{"api.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
	}

	for _, tt := range tests {
		assert.Equal(t, matchHost(tt.host, tt.pattern), tt.want, "%s vs %s", tt.host, tt.pattern)
	}
}

func TestEnforceHost(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := EnforceHost([]string{"localhost:7420"}, logger.NewNop())(ok)

	req := httptest.NewRequest(http.MethodGet, "http://localhost:7420/api/bookmarks", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, rec.Code, http.StatusTeapot)

	req = httptest.NewRequest(http.MethodGet, "http://attacker.example/api/bookmarks", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, rec.Code, http.StatusForbidden)

	// No hosts configured: everything passes
	rec = httptest.NewRecorder()
	EnforceHost(nil, logger.NewNop())(ok).ServeHTTP(rec, req)
	assert.Equal(t, rec.Code, http.StatusTeapot)
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Log(logger.Wrap(zap.New(core)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.FilterMessage("http_request").All()
	assert.Assert(t, is.Len(entries, 1))
	fields := entries[0].ContextMap()
	assert.Equal(t, fields["path"], "/healthz")
	assert.Equal(t, fields["status"], int64(200))
	assert.Equal(t, fields["bytes"], int64(5))
}
