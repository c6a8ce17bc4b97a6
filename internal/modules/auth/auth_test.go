package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/user"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

type fakeUsers map[uuid.UUID]*user.User

func (f fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user not found")
}

func (f fakeUsers) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, sub string, exp time.Time) string {
	t.Helper()
	return signClaims(t, method, key, jwt.StandardClaims{Subject: sub, ExpiresAt: exp.Unix(), Audience: tokenAudience})
}

func signClaims(t *testing.T, method jwt.SigningMethod, key interface{}, std jwt.StandardClaims) string {
	t.Helper()
	claims := &supabaseClaims{Email: "token@example.com", StandardClaims: std}
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestResolveTakesRoleFromStore(t *testing.T) {
	id := uuid.New()
	svc := NewService(fakeUsers{id: {ID: id, Email: "admin@example.com", Role: user.RoleAdmin}}, secret)

	c, err := svc.Resolve(context.Background(), sign(t, jwt.SigningMethodHS256, secret, id.String(), time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, "admin@example.com", c.Email)
	assert.Equal(t, user.RoleAdmin, c.Role)
	assert.True(t, c.IsAdmin())
}

func TestResolveRejects(t *testing.T) {
	id := uuid.New()
	svc := NewService(fakeUsers{id: {ID: id, Role: user.RoleCustomer}}, secret)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"expired", sign(t, jwt.SigningMethodHS256, secret, id.String(), time.Now().Add(-time.Minute))},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), id.String(), future)},
		{"none alg", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, id.String(), future)},
		{"bad subject", sign(t, jwt.SigningMethodHS256, secret, "user-1", future)},
		{"unknown user", sign(t, jwt.SigningMethodHS256, secret, uuid.NewString(), future)},
		{"no expiry", signClaims(t, jwt.SigningMethodHS256, secret, jwt.StandardClaims{Subject: id.String(), Audience: tokenAudience})},
		{"no audience", signClaims(t, jwt.SigningMethodHS256, secret, jwt.StandardClaims{Subject: id.String(), ExpiresAt: future.Unix()})},
		{"wrong audience", signClaims(t, jwt.SigningMethodHS256, secret, jwt.StandardClaims{Subject: id.String(), ExpiresAt: future.Unix(), Audience: "anon"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Resolve(context.Background(), tt.token)
			assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
		})
	}
}

func TestMiddleware(t *testing.T) {
	adminID, customerID := uuid.New(), uuid.New()
	svc := NewService(fakeUsers{
		adminID:    {ID: adminID, Role: user.RoleSuperAdmin},
		customerID: {ID: customerID, Role: user.RoleCustomer},
	}, secret)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	adminOnly := Authenticate(svc)(RequireAdmin(ok))
	anyCaller := Authenticate(svc)(RequireCaller(ok))
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		handler http.Handler
		header  string
		want    int
	}{
		{"anonymous admin route", adminOnly, "", http.StatusUnauthorized},
		{"customer admin route", adminOnly, "Bearer " + sign(t, jwt.SigningMethodHS256, secret, customerID.String(), future), http.StatusForbidden},
		{"super admin", adminOnly, "Bearer " + sign(t, jwt.SigningMethodHS256, secret, adminID.String(), future), http.StatusNoContent},
		{"basic scheme", anyCaller, "Basic abc", http.StatusUnauthorized},
		{"customer", anyCaller, "Bearer " + sign(t, jwt.SigningMethodHS256, secret, customerID.String(), future), http.StatusNoContent},
		{"anonymous", anyCaller, "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
