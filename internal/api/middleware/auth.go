package middleware

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/rohits-web03/notevault/internal/api/flash"
	domainerrors "github.com/rohits-web03/notevault/internal/errors"
	"github.com/rohits-web03/notevault/internal/services"
	"github.com/rohits-web03/notevault/internal/utils"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenCookie holds the signed session token.
const TokenCookie = "token"

// Authenticator resolves a session token to its principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Principal, error)
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *services.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(ctx context.Context) (*services.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*services.Principal)
	return p, ok && p != nil
}

// Sessions resolves the token cookie on every request. Requests without a
// valid session continue anonymously; a failing session backend is a 500.
func Sessions(auth Authenticator, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(TokenCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			p, err := auth.Authenticate(r.Context(), cookie.Value)
			switch {
			case err == nil:
				r = r.WithContext(WithPrincipal(r.Context(), p))
			case domainerrors.CodeOf(err) == domainerrors.CodeUnauthorized:
			default:
				log.Error("session lookup failed", zap.Error(err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser sends anonymous page requests to the login page.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFrom(r.Context()); !ok {
			flash.Add(w, r, flash.Info, "Please log in to access this page.")
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPIUser answers anonymous API requests with 401 JSON.
func RequireAPIUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := PrincipalFrom(r.Context()); !ok {
			utils.Fail(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
