package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type memUsers map[uuid.UUID]*User

func (m memUsers) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user not found")
}

func (m memUsers) GetUserByEmail(context.Context, string) (*User, error) {
	return nil, apperr.NotFound("user not found")
}

func TestGetUserHandler(t *testing.T) {
	ada := &User{ID: uuid.New(), Email: "ada@example.com", FirstName: "Ada", Role: RoleCustomer}
	r := chi.NewRouter()
	NewHandler(NewService(memUsers{ada.ID: ada})).RegisterRoutes(r)

	tests := []struct {
		name string
		path string
		want int
		body string
	}{
		{"found", "/api/v1/users/" + ada.ID.String(), http.StatusOK, ""},
		{"malformed id", "/api/v1/users/42", http.StatusBadRequest, `{"error":"invalid user id"}`},
		{"unknown", "/api/v1/users/" + uuid.NewString(), http.StatusNotFound, `{"error":"user not found"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"email":"ada@example.com"`)
				assert.Contains(t, rec.Body.String(), `"role":"CUSTOMER"`)
			}
		})
	}
}
