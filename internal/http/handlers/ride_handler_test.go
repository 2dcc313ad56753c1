// README: Integration tests for ride route authorization.
package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"gocab/internal/http/handlers"
	httpmiddleware "gocab/internal/http/middleware"
)

const testSecret = "handler-test-secret"

// buildTestRouter wires a minimal engine with the auth middleware and the
// driver-gated ride routes. Passing nil services is safe here because every
// request in these tests is rejected before a handler touches them.
func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewRideHandler(nil, nil, nil)
	r := gin.New()
	api := r.Group("/api", httpmiddleware.Auth(testSecret))
	api.POST("/rides", h.Create)
	driver := api.Group("/rides/:id", httpmiddleware.RequireRole(httpmiddleware.RoleDriver))
	driver.POST("/accept", h.Accept)
	driver.POST("/decline", h.Decline)
	driver.POST("/start", h.Start)
	driver.POST("/complete", h.Complete)
	return r
}

func signToken(t *testing.T, subject, role string) string {
	t.Helper()
	claims := httpmiddleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func doRequest(r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreate_Unauthenticated(t *testing.T) {
	r := buildTestRouter()
	w := doRequest(r, http.MethodPost, "/api/rides", map[string]any{
		"pickup":       map[string]float64{"lat": 17.0, "lng": 78.0},
		"dropoff":      map[string]float64{"lat": 17.1, "lng": 78.1},
		"vehicle_type": "auto",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAccept_RequiresDriverRole(t *testing.T) {
	r := buildTestRouter()
	token := signToken(t, "u1", httpmiddleware.RoleRider)
	w := doRequest(r, http.MethodPost, "/api/rides/r1/accept", nil, token)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestDecline_RequiresDriverRole(t *testing.T) {
	r := buildTestRouter()
	token := signToken(t, "u1", httpmiddleware.RoleRider)
	w := doRequest(r, http.MethodPost, "/api/rides/r1/decline", nil, token)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestStart_RequiresDriverRole(t *testing.T) {
	r := buildTestRouter()
	token := signToken(t, "u1", httpmiddleware.RoleRider)
	w := doRequest(r, http.MethodPost, "/api/rides/r1/start", map[string]any{"pin": "0000"}, token)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestComplete_BadToken(t *testing.T) {
	r := buildTestRouter()
	w := doRequest(r, http.MethodPost, "/api/rides/r1/complete", nil, "not-a-jwt")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
