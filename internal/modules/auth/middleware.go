package auth

import (
	"net/http"
	"strings"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/web"
)

// Authenticate attaches the caller when a bearer token is supplied. A
// malformed or invalid token is rejected; no token passes through anonymous.
func Authenticate(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				web.Error(w, r, apperr.Unauthorized("authorization header must use the Bearer scheme"))
				return
			}
			caller, err := svc.Resolve(r.Context(), strings.TrimSpace(token))
			if err != nil {
				web.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// RequireCaller rejects anonymous requests with 401.
func RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CallerFrom(r.Context()) == nil {
			web.Error(w, r, apperr.Unauthorized("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := CallerFrom(r.Context())
		if c == nil {
			web.Error(w, r, apperr.Unauthorized("authentication required"))
			return
		}
		if !c.IsAdmin() {
			web.Error(w, r, apperr.Forbidden("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
