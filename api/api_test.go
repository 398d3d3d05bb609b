package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/focusflow-app/focusflow/server"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	srv, err := server.New(&server.Config{
		Env:          "development",
		Host:         "127.0.0.1",
		DataDir:      dir,
		DatabasePath: filepath.Join(dir, "test.sqlite"),
		AuthMode:     "password",
	})
	if err != nil {
		t.Fatalf("failed to create test server: %v", err)
	}
	SetupRoutes(srv.Router(), NewHandlers(srv))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv
}

func doJSON(t *testing.T, srv *server.Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, srv *server.Server, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"supersecret1"}`, email)
	w := doJSON(t, srv, "POST", "/api/auth/register", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}

	var resp DataResponse[AuthResponse]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse register response: %v", err)
	}
	if resp.Data.AccessToken == "" {
		t.Fatal("register returned no access token")
	}
	return resp.Data.AccessToken
}

func TestRefreshWithDeadTokenClearsCookie(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "no-such-session"})
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	// The dead cookie must be expired so clients stop replaying it
	var cleared bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "refresh_token" && cookie.Value == "" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("401 refresh should clear the refresh_token cookie")
	}
}

func TestRefreshWithValidSession(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "refresh@example.com")

	// Capture the refresh cookie from a fresh login
	w := doJSON(t, srv, "POST", "/api/auth/login", "",
		`{"email":"refresh@example.com","password":"supersecret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d", w.Code)
	}
	var refreshCookie *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "refresh_token" && cookie.Value != "" {
			refreshCookie = cookie
		}
	}
	if refreshCookie == nil {
		t.Fatal("login set no refresh cookie")
	}

	req := httptest.NewRequest("POST", "/api/auth/refresh", nil)
	req.AddCookie(refreshCookie)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("refresh returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp DataResponse[AuthResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.AccessToken == "" {
		t.Error("refresh returned no access token")
	}
}

func TestAnalyticsDailyClampsDays(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "daily@example.com")

	cases := map[string]int{
		"200": 90,
		"0":   1,
		"-5":  1,
		"30":  30,
	}
	for raw, want := range cases {
		w := doJSON(t, srv, "GET", "/api/analytics/daily?days="+raw, token, "")
		if w.Code != http.StatusOK {
			t.Fatalf("days=%s returned %d, want 200", raw, w.Code)
		}
		var resp ListResponse[DailyPoint]
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if len(resp.Data) != want {
			t.Errorf("days=%s produced %d points, want %d", raw, len(resp.Data), want)
		}
	}

	// Non-numeric input is still rejected
	w := doJSON(t, srv, "GET", "/api/analytics/daily?days=soon", token, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("days=soon returned %d, want 400", w.Code)
	}
}

func TestAnalyticsSummaryRateAndStreak(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "summary@example.com")

	for _, title := range []string{"one", "two"} {
		w := doJSON(t, srv, "POST", "/api/tasks", token, fmt.Sprintf(`{"title":%q}`, title))
		if w.Code != http.StatusCreated {
			t.Fatalf("create task returned %d", w.Code)
		}
	}

	// Complete one of the two tasks
	w := doJSON(t, srv, "GET", "/api/tasks", token, "")
	var list ListResponse[map[string]any]
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	taskID := list.Data[0]["id"].(string)
	w = doJSON(t, srv, "PATCH", "/api/tasks/"+taskID, token, `{"status":"completed"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("complete task returned %d", w.Code)
	}

	w = doJSON(t, srv, "GET", "/api/analytics/summary", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("summary returned %d", w.Code)
	}
	var resp DataResponse[AnalyticsSummaryResponse]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if got := resp.Data.CompletionRate; got < 0.49 || got > 0.51 {
		t.Errorf("completion rate = %v, want 0.5", got)
	}
	if resp.Data.Streak.Current < 1 {
		t.Errorf("current streak = %d, want >= 1 after today's completion", resp.Data.Streak.Current)
	}
	if resp.Data.Streak.Longest < resp.Data.Streak.Current {
		t.Error("longest streak cannot be shorter than current")
	}
}

func TestResetSettingsRestoresDefaults(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "settings@example.com")

	w := doJSON(t, srv, "PATCH", "/api/settings", token, `{"focus_default_minutes":"50"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update settings returned %d", w.Code)
	}

	w = doJSON(t, srv, "DELETE", "/api/settings", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("reset settings returned %d", w.Code)
	}
	var resp DataResponse[map[string]string]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data["focus_default_minutes"] != "25" {
		t.Errorf("focus_default_minutes = %q after reset, want 25", resp.Data["focus_default_minutes"])
	}
}
