package zone

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, svc Service, caller *auth.Caller, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if caller != nil {
				req = req.WithContext(auth.WithCaller(req.Context(), caller))
			}
			next.ServeHTTP(w, req)
		})
	})
	NewHandler(svc).RegisterRoutes(r)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, reader))

	var out map[string]interface{}
	if strings.HasPrefix(rec.Body.String(), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

const createBody = `{"name":"North Side","zip_codes":["60640"],"delivery_days":["Tuesday"],"delivery_fee_cents":500,"minimum_order_cents":1500}`

func TestZoneHandlersCreateQuoteSuspend(t *testing.T) {
	svc := NewService(newMemRepo())

	code, out := serve(t, svc, producer, http.MethodPost, "/api/v1/zones", createBody)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, producer.ID.String(), out["producer_id"])
	assert.Equal(t, true, out["is_active"])
	id := out["id"].(string)

	code, out = serve(t, svc, nil, http.MethodPost, "/api/v1/zones/"+id+"/quote", `{"address":{"zip_code":"60640"},"subtotal_cents":1000}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["in_zone"])
	assert.Equal(t, false, out["meets_minimum"])
	assert.EqualValues(t, 500, out["delivery_fee_cents"])

	code, out = serve(t, svc, admin, http.MethodPost, "/api/v1/zones/"+id+"/suspend", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, out["error"])

	code, out = serve(t, svc, admin, http.MethodPost, "/api/v1/zones/"+id+"/suspend", `{"reason":"complaints"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["is_suspended"])
	assert.Equal(t, "complaints", out["suspension_reason"])

	code, _ = serve(t, svc, nil, http.MethodPost, "/api/v1/zones/"+id+"/quote", `{"address":{"zip_code":"60640"},"subtotal_cents":1000}`)
	assert.Equal(t, http.StatusConflict, code)

	code, out = serve(t, svc, producer, http.MethodDelete, "/api/v1/zones/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
}

func TestZoneRoutesRejectBadRequests(t *testing.T) {
	svc := NewService(newMemRepo())
	_, out := serve(t, svc, producer, http.MethodPost, "/api/v1/zones", createBody)
	id := out["id"].(string)

	tests := []struct {
		name   string
		caller *auth.Caller
		method string
		path   string
		body   string
		want   int
	}{
		{"anonymous create", nil, http.MethodPost, "/api/v1/zones", createBody, http.StatusUnauthorized},
		{"customer create", customer, http.MethodPost, "/api/v1/zones", createBody, http.StatusForbidden},
		{"bad weekday", producer, http.MethodPost, "/api/v1/zones", `{"name":"x","zip_codes":["1"],"delivery_days":["Someday"]}`, http.StatusBadRequest},
		{"malformed id", nil, http.MethodGet, "/api/v1/zones/abc", "", http.StatusBadRequest},
		{"unknown zone", nil, http.MethodGet, "/api/v1/zones/" + uuid.NewString(), "", http.StatusNotFound},
		{"stranger update", stranger, http.MethodPatch, "/api/v1/zones/" + id, `{"name":"Mine now"}`, http.StatusForbidden},
		{"producer flags", producer, http.MethodPost, "/api/v1/zones/" + id + "/flag", `{"reason":"x"}`, http.StatusForbidden},
		{"negative subtotal", nil, http.MethodPost, "/api/v1/zones/" + id + "/quote", `{"subtotal_cents":-1}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := serve(t, svc, tt.caller, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, out["error"])
		})
	}
}
