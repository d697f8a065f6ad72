package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draylen/graphchat/internal/auth"
	"github.com/draylen/graphchat/internal/users"
	"github.com/draylen/graphchat/web/handlers"
)

func newAuthHandlers(t *testing.T) *handlers.AuthHandlers {
	t.Helper()
	store, err := users.Open(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return handlers.NewAuthHandlers(store, auth.NewTokenIssuer("test-secret", 0))
}

func TestRegister_IssuesToken(t *testing.T) {
	h := newAuthHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"alice@example.com","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp handlers.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	h := newAuthHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"alice@example.com","password":"short"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	h := newAuthHandlers(t)

	body := `{"email":"alice@example.com","password":"correct horse"}`
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin_RoundTrip(t *testing.T) {
	h := newAuthHandlers(t)

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"alice@example.com","password":"correct horse"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"correct horse"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	h := newAuthHandlers(t)

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"alice@example.com","password":"correct horse"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPass := httptest.NewRecorder()
	h.Login(wrongPass, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"wrong horse"}`)))

	unknown := httptest.NewRecorder()
	h.Login(unknown, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"nobody@example.com","password":"correct horse"}`)))

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrongPass.Body.String(), unknown.Body.String())
}
