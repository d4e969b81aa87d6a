package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"libraryapi/internal/access"
	"libraryapi/internal/httpx"
	"libraryapi/internal/platform/crypto"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret"

// Fixed callers, one per role.
var (
	Admin     = &access.Actor{UserID: "00000000-0000-0000-0000-00000000000a", Role: access.RoleAdmin}
	Librarian = &access.Actor{UserID: "00000000-0000-0000-0000-00000000000b", Role: access.RoleLibrarian}
	Member    = &access.Actor{UserID: "00000000-0000-0000-0000-00000000000c", Role: access.RoleMember}
	Member2   = &access.Actor{UserID: "00000000-0000-0000-0000-00000000000d", Role: access.RoleMember}
)

// GenerateTestToken generates a JWT token for testing
func GenerateTestToken(secret, userID string, role access.Role) string {
	token, _, _ := crypto.GenerateToken(secret, userID, string(role), time.Hour)
	return token
}

// GenerateExpiredToken generates an expired JWT token for testing
func GenerateExpiredToken(secret, userID string, role access.Role) string {
	c := crypto.Claims{
		Sub:  userID,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "libraryapi",
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token, _ := t.SignedString([]byte(secret))
	return token
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var r *http.Request
	if body != nil {
		var reader io.Reader
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, _ := json.Marshal(body)
			reader = bytes.NewReader(raw)
		}
		r = httptest.NewRequest(method, path, reader)
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithAuth creates a new HTTP request with JWT auth for testing
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// AsActor attaches an authenticated caller as the auth middleware would.
func AsActor(r *http.Request, a *access.Actor) *http.Request {
	if a == nil {
		return r
	}
	return r.WithContext(httpx.ContextWithActor(r.Context(), a))
}

// WithURLParams sets chi route parameters on r, for calling handlers
// without a router.
func WithURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// Data returns the "data" member of a success envelope.
func (r RecordResponse) Data() map[string]interface{} {
	d, _ := r.Body["data"].(map[string]interface{})
	return d
}

// List returns the "data" member of a success envelope holding a list.
func (r RecordResponse) List() []interface{} {
	d, _ := r.Body["data"].([]interface{})
	return d
}

// ErrorCode returns error.code of an error envelope.
func (r RecordResponse) ErrorCode() string {
	e, _ := r.Body["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

// ErrorFields returns error.fields of an error envelope.
func (r RecordResponse) ErrorFields() map[string]interface{} {
	e, _ := r.Body["error"].(map[string]interface{})
	f, _ := e["fields"].(map[string]interface{})
	return f
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}
