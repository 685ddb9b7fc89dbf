package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/trailback/backend/internal/notify"
	"github.com/trailback/backend/pkg/config"
)

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken == "bob-token" {
		return &auth.Token{UID: "bob"}, nil
	}
	return nil, errors.New("invalid token")
}

func newServer(authRequired bool) *echo.Echo {
	e := echo.New()
	SetupRoutes(e, Dependencies{
		Config:   &config.Config{AuthRequired: authRequired, PhotosBucket: "photos", AvatarsBucket: "avatars"},
		Verifier: stubVerifier{},
		Events:   notify.Nop{},
		Logger:   zerolog.Nop(),
	})
	return e
}

func serve(e *echo.Echo, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSetupRoutesRegistersEndpoints(t *testing.T) {
	e := newServer(false)

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /",
		"GET /health",
		"POST /auth/session",
		"GET /users",
		"GET /profile",
		"PUT /profile",
		"POST /profile/avatar",
		"GET /friends",
		"POST /friends/request",
		"POST /friends/accept",
		"DELETE /friends/remove",
		"GET /memories",
		"GET /memories/shared",
		"GET /memories/visible",
		"POST /memories",
		"PUT /memories/:id/edit",
		"DELETE /memories/:id",
		"GET /memories/:id/shares",
		"POST /memories/:id/share-user",
		"DELETE /memories/:id/share-user/:friendId",
		"POST /memories/:id/upload-photo",
		"GET /photos",
		"GET /photos/:id",
		"POST /photos",
		"POST /photos/:id/upload",
		"DELETE /photos/:id",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestAuthRequired(t *testing.T) {
	e := newServer(true)

	rec := serve(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodGet, "/memories?user_id=bob", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Authorization header is missing"}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/memories?user_id=bob", "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodGet, "/memories?user_id=alice", "bob-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"You can only act on your own behalf"}`, rec.Body.String())
}
