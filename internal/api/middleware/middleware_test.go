package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	domainerrors "github.com/rohits-web03/notevault/internal/errors"
	"github.com/rohits-web03/notevault/internal/services"
)

type fakeAuth map[string]*services.Principal

func (f fakeAuth) Authenticate(_ context.Context, token string) (*services.Principal, error) {
	if token == "broken" {
		return nil, errors.New("redis down")
	}
	if p, ok := f[token]; ok {
		return p, nil
	}
	return nil, domainerrors.Unauthorized("invalid session token")
}

func whoami(w http.ResponseWriter, r *http.Request) {
	if p, ok := PrincipalFrom(r.Context()); ok {
		_, _ = w.Write([]byte(p.Username))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
}

func TestSessions(t *testing.T) {
	auth := fakeAuth{"good": {UserID: uuid.New(), Username: "alice"}}
	h := Sessions(auth, zap.NewNop())(http.HandlerFunc(whoami))

	tests := []struct {
		name   string
		cookie string
		status int
		body   string
	}{
		{"no cookie", "", http.StatusOK, "anonymous"},
		{"valid", "good", http.StatusOK, "alice"},
		{"invalid", "forged", http.StatusOK, "anonymous"},
		{"backend error", "broken", http.StatusInternalServerError, "Internal Server Error\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(http.HandlerFunc(whoami))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes?page=2", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fnotes%3Fpage%3D2", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &services.Principal{Username: "alice"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestRequireAPIUser(t *testing.T) {
	h := RequireAPIUser(http.HandlerFunc(whoami))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, rec.Body.String())
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/notes/new", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/notes/new", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
}
