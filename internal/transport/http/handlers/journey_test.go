package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"timeclock/internal/app/server"
	"timeclock/internal/auth"
	domauth "timeclock/internal/domain/auth"
	"timeclock/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:         dbURL,
		JWTSecret:           "test-secret",
		FrontendDir:         "frontend/dist",
		Environment:         "test",
		SeedVenueName:       "Test Venue",
		SeedAdminEmail:      "admin@test.local",
		SeedAdminPassword:   "ChangeMe123!",
		EmailFrom:           "no-reply@test.local",
		RunMigrations:       true,
		RunSeed:             true,
		MaxBodyBytes:        1048576,
		RateLimitPerMinute:  1000,
		AccessTokenTTL:      time.Hour,
		StaleShiftThreshold: 16 * time.Hour,
	}
}

func TestClockInBreakClockOutPayrollJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	var venueID string
	if err := app.DB.QueryRow(context.Background(), "SELECT id FROM venues WHERE name = $1", cfg.SeedVenueName).Scan(&venueID); err != nil {
		t.Fatalf("failed to load seeded venue: %v", err)
	}

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	token, employeeID := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if employeeID == "" {
		t.Fatal("expected seeded admin to carry an employee record")
	}

	shiftID, status := clockIn(t, client, ts.URL, token, venueID)
	if status != "clocked_in" {
		t.Fatalf("expected status clocked_in after clock-in, got %s", status)
	}

	postJSONStatus(t, client, ts.URL+"/api/v1/timesheet/clock-in", token,
		map[string]any{"venueId": venueID}, http.StatusConflict)

	status = shiftAction(t, client, ts.URL, token, shiftID, "break/start")
	if status != "on_break" {
		t.Fatalf("expected status on_break after break start, got %s", status)
	}

	postJSONStatus(t, client, ts.URL+"/api/v1/timesheet/shifts/"+shiftID+"/clock-out", token,
		map[string]any{}, http.StatusConflict)

	status = shiftAction(t, client, ts.URL, token, shiftID, "break/end")
	if status != "clocked_in" {
		t.Fatalf("expected status clocked_in after break end, got %s", status)
	}

	completed := shiftActionPayload(t, client, ts.URL, token, shiftID, "clock-out")
	if completed["status"] != "completed" {
		t.Fatalf("expected status completed after clock-out, got %v", completed["status"])
	}
	if completed["totalHours"] == nil || completed["totalPaidHours"] == nil {
		t.Fatalf("expected totals on completed shift, got %v", completed)
	}

	today := time.Now().UTC().Format("2006-01-02")
	items := payrollReport(t, client, ts.URL, token, today, today)
	found := false
	for _, item := range items {
		if item["employeeId"] == employeeID {
			found = true
			if count, _ := item["entriesCount"].(float64); count < 1 {
				t.Fatalf("expected at least one entry for employee, got %v", item["entriesCount"])
			}
		}
	}
	if !found {
		t.Fatalf("expected payroll line item for employee %s", employeeID)
	}
}

func TestTeamMemberCannotManageShifts(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ctx := context.Background()
	var roleID string
	if err := app.DB.QueryRow(ctx, "SELECT id FROM roles WHERE name = $1", domauth.RoleTeamMember).Scan(&roleID); err != nil {
		t.Fatalf("failed to load team member role: %v", err)
	}

	memberEmail := fmt.Sprintf("member-%d@example.com", time.Now().UnixNano())
	memberPassword := "Member123!"
	hash, err := auth.HashPassword(memberPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	if err := app.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role_id)
    VALUES ($1,$2,$3)
    RETURNING id
  `, memberEmail, hash, roleID).Scan(&userID); err != nil {
		t.Fatalf("failed to create member user: %v", err)
	}
	if _, err := app.DB.Exec(ctx, `
    INSERT INTO team_members (user_id, first_name, last_name)
    VALUES ($1, 'Terry', 'Member')
  `, userID); err != nil {
		t.Fatalf("failed to create member record: %v", err)
	}

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	token, _ := login(t, ts.Client(), ts.URL, memberEmail, memberPassword)
	postJSONStatus(t, ts.Client(), ts.URL+"/api/v1/timesheet/shifts", token, map[string]any{
		"employeeId":   "00000000-0000-0000-0000-000000000000",
		"venueId":      "00000000-0000-0000-0000-000000000000",
		"clockInTime":  "2026-03-02T09:00:00Z",
		"clockOutTime": "2026-03-02T17:00:00Z",
	}, http.StatusForbidden)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) (string, string) {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	employeeID := ""
	if user, ok := payload["user"].(map[string]any); ok {
		employeeID, _ = user["employeeId"].(string)
	}
	return token, employeeID
}

func clockIn(t *testing.T, client *http.Client, baseURL, token, venueID string) (string, string) {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/timesheet/clock-in", token, map[string]any{
		"venueId": venueID,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode clock-in response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected shift id")
	}
	status, _ := payload["status"].(string)
	return id, status
}

func shiftAction(t *testing.T, client *http.Client, baseURL, token, shiftID, action string) string {
	t.Helper()
	payload := shiftActionPayload(t, client, baseURL, token, shiftID, action)
	status, _ := payload["status"].(string)
	return status
}

func shiftActionPayload(t *testing.T, client *http.Client, baseURL, token, shiftID, action string) map[string]any {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/timesheet/shifts/"+shiftID+"/"+action, token, map[string]any{})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode %s response: %v", action, err)
	}
	return payload
}

func payrollReport(t *testing.T, client *http.Client, baseURL, token, from, to string) []map[string]any {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/payroll/report?from="+from+"&to="+to, token)
	var payload struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode payroll report response: %v", err)
	}
	return payload.Items
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(raw))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}
