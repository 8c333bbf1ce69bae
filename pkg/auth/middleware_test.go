package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/models"
)

// mockJWKSClient returns canned claims or an error.
type mockJWKSClient struct {
	claims *Claims
	err    error
}

func (m *mockJWKSClient) ValidateToken(tokenString string) (*Claims, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.claims, nil
}

func (m *mockJWKSClient) Close() {}

func newTestMiddleware(jwks JWKSClientInterface) *Middleware {
	logger := zap.NewNop()
	return NewMiddleware(NewAuthService(jwks, logger), logger)
}

func claimsForOwner(ownerID uuid.UUID) *Claims {
	c := &Claims{}
	c.Subject = ownerID.String()
	return c
}

func TestRequireAuthMissingHeader(t *testing.T) {
	m := newTestMiddleware(&mockJWKSClient{})

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/commands", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_REQUIRED")
}

func TestRequireAuthInvalidSubject(t *testing.T) {
	claims := &Claims{}
	claims.Subject = "not-a-uuid"
	m := newTestMiddleware(&mockJWKSClient{claims: claims})

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/commands", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
}

func TestRequireAuthSetsProvenance(t *testing.T) {
	ownerID := uuid.New()
	m := newTestMiddleware(&mockJWKSClient{claims: claimsForOwner(ownerID)})

	var got models.ProvenanceContext
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		prov, ok := models.GetProvenance(r.Context())
		require.True(t, ok)
		got = prov
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/commands", nil)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set(SourceHeader, "chat")
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ownerID, got.OwnerID)
	assert.Equal(t, models.SourceChat, got.Source)
}

func TestRequireAuthUnknownSourceDefaultsToAPI(t *testing.T) {
	ownerID := uuid.New()
	m := newTestMiddleware(&mockJWKSClient{claims: claimsForOwner(ownerID)})

	var got models.ProvenanceContext
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		got, _ = models.GetProvenance(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/api/commands", nil)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set(SourceHeader, "carrier-pigeon")
	handler(httptest.NewRecorder(), req)

	assert.Equal(t, models.SourceAPI, got.Source)
}
