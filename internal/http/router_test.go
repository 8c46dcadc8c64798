package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	intconfig "github.com/ZiyadBin/rain-system/internal/config"
	h "github.com/ZiyadBin/rain-system/internal/http/handlers"
	"github.com/ZiyadBin/rain-system/internal/services"
	"github.com/ZiyadBin/rain-system/internal/store"
	"github.com/ZiyadBin/rain-system/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	auth, err := services.NewAuthService(services.DefaultRoster(), "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	hd := h.New(fs, services.Matcher{}, auth, t.TempDir())
	return testServer{t: t, engine: NewRouter(intconfig.Env{}, hd, nil)}
}

func (s testServer) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func ticketBody(mobile, name string) map[string]any {
	return map[string]any{
		"from_station": "CSTM",
		"to_station":   "KYN",
		"train_number": "12345",
		"class":        "SL",
		"journey_date": "2025-03-10",
		"passengers": []map[string]any{
			{"name": name, "age": 30, "gender": "Male", "mobile": mobile},
		},
	}
}

type createResp struct {
	Success          bool              `json:"success"`
	TicketID         string            `json:"ticketId"`
	IsDuplicate      bool              `json:"isDuplicate"`
	DuplicateDetails map[string]string `json:"duplicate_details"`
}

func TestTicketFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	najad := map[string]string{"User-Name": "Najad"}

	w := s.do(http.MethodPost, "/api/tickets", ticketBody("9999999999", "Ravi"), najad)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", w.Code, w.Body.String())
	}
	first := decode[createResp](t, w)
	if !first.Success || first.IsDuplicate || first.DuplicateDetails != nil {
		t.Fatalf("first create = %+v", first)
	}

	w = s.do(http.MethodPost, "/api/tickets", ticketBody("9999999999", "Other"), najad)
	second := decode[createResp](t, w)
	if !second.IsDuplicate || second.DuplicateDetails["matchId"] != first.TicketID ||
		second.DuplicateDetails["matchType"] != services.MatchMobileRoutePending {
		t.Fatalf("second create = %+v", second)
	}

	w = s.do(http.MethodGet, "/api/tickets?filter=MY", nil, najad)
	mine := decode[[]map[string]any](t, w)
	if len(mine) != 1 || mine[0]["id"] != first.TicketID {
		t.Fatalf("MY list = %v", mine)
	}
	w = s.do(http.MethodGet, "/api/tickets?filter=MY", nil, nil)
	if anon := decode[[]map[string]any](t, w); len(anon) != 0 {
		t.Fatalf("anonymous MY should be empty, got %d", len(anon))
	}
	w = s.do(http.MethodGet, "/api/tickets/duplicates", nil, nil)
	if dups := decode[[]map[string]any](t, w); len(dups) != 1 {
		t.Fatalf("duplicates = %d", len(dups))
	}

	w = s.do(http.MethodPut, "/api/tickets/"+second.TicketID, map[string]any{"duplicate_flag": true}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("setting flag status %d", w.Code)
	}
	w = s.do(http.MethodPut, "/api/tickets/"+second.TicketID, map[string]any{"duplicate_flag": false, "id": "HIJACK"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unflag status %d: %s", w.Code, w.Body.String())
	}
	w = s.do(http.MethodGet, "/api/tickets/"+second.TicketID, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ticket id must survive an edit carrying id, status %d", w.Code)
	}

	w = s.do(http.MethodPost, "/api/booked", map[string]any{"ticketId": first.TicketID, "pnr": "123"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short pnr status %d", w.Code)
	}
	w = s.do(http.MethodPost, "/api/booked", map[string]any{"ticketId": first.TicketID, "pnr": "1234567890"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("promote status %d: %s", w.Code, w.Body.String())
	}
	w = s.do(http.MethodPost, "/api/booked", map[string]any{"ticketId": first.TicketID, "pnr": "1234567890"}, nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Original ticket not found") {
		t.Fatalf("second promote: %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodGet, "/api/booked?period=TODAY", nil, nil)
	booked := decode[struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
	}](t, w)
	if len(booked.Data) != 1 || booked.Data[0]["from"] != "CSTM" {
		t.Fatalf("booked list = %+v", booked)
	}
	bookedID := booked.Data[0]["id"].(string)

	w = s.do(http.MethodGet, "/api/booked/"+bookedID+"/slip", nil, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("slip: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	w = s.do(http.MethodGet, "/api/booked/export", nil, nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "PNR,From,To") {
		t.Fatalf("export: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "booked_tickets_") {
		t.Fatalf("export disposition %q", w.Header().Get("Content-Disposition"))
	}

	w = s.do(http.MethodDelete, "/api/tickets/"+first.TicketID, nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete promoted ticket status %d", w.Code)
	}
}

func TestCreateTicketValidationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	body := ticketBody("9999999999", "Ravi")
	body["class"] = "4A"
	w := s.do(http.MethodPost, "/api/tickets", body, nil)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Class") {
		t.Fatalf("bad class: %d %s", w.Code, w.Body.String())
	}
	body = ticketBody("8888888888", "Ravi")
	delete(body, "train_number")
	if w := s.do(http.MethodPost, "/api/tickets", body, nil); w.Code != http.StatusCreated {
		t.Fatalf("train number is optional, got %d: %s", w.Code, w.Body.String())
	}
	body = ticketBody("9999999999", "Ravi")
	delete(body, "passengers")
	if w := s.do(http.MethodPost, "/api/tickets", body, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing passengers: %d", w.Code)
	}
}

func TestBulkBookRequiresSingleID(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/tickets/bulk/book", map[string]any{"ids": []string{"a", "b"}, "pnr": "1234567890"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
	w = s.do(http.MethodPost, "/api/tickets/bulk/delete", map[string]any{"ids": []string{"missing"}}, nil)
	res := decode[struct {
		Success bool                `json:"success"`
		Failed  []map[string]string `json:"failed"`
	}](t, w)
	if res.Success || len(res.Failed) != 1 || res.Failed[0]["id"] != "missing" {
		t.Fatalf("bulk delete = %+v", res)
	}
}

func TestAuthAndAdminRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "ziyad", "password": "nope"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status %d", w.Code)
	}
	w = s.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "ziyad", "password": "ziyad123"}, nil)
	login := decode[struct {
		Token string `json:"token"`
	}](t, w)
	if login.Token == "" {
		t.Fatalf("no token: %s", w.Body.String())
	}
	bearer := map[string]string{"Authorization": "Bearer " + login.Token}

	if w := s.do(http.MethodGet, "/api/auth/verify", nil, bearer); w.Code != http.StatusOK {
		t.Fatalf("verify status %d", w.Code)
	}
	if w := s.do(http.MethodPost, "/api/admin/snapshot", nil, map[string]string{"User-Name": "Ziyad"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("header identity must not reach admin routes, status %d", w.Code)
	}
	if w := s.do(http.MethodPost, "/api/admin/snapshot", nil, bearer); w.Code != http.StatusOK {
		t.Fatalf("snapshot status %d: %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodGet, "/api/auth/users", nil, nil)
	users := decode[struct {
		Data []map[string]any `json:"data"`
	}](t, w)
	if len(users.Data) != 3 {
		t.Fatalf("users = %+v", users)
	}
}

func TestSystemRoutes(t *testing.T) {
	s := newTestServer(t)
	for _, p := range []string{"/api", "/api/health", "/api/routes", "/metrics", "/api/reports/stats", "/api/reports/analytics"} {
		if w := s.do(http.MethodGet, p, nil, nil); w.Code != http.StatusOK {
			t.Fatalf("GET %s status %d", p, w.Code)
		}
	}
	if w := s.do(http.MethodGet, "/nope", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown route status %d", w.Code)
	}
}

func TestCreateTicketLogsOneEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	defer utils.ReplaceLogger(zap.New(core))()

	s := newTestServer(t)
	first := decode[createResp](t, s.do(http.MethodPost, "/api/tickets", ticketBody("9999999999", "Ravi"), nil))
	second := decode[createResp](t, s.do(http.MethodPost, "/api/tickets", ticketBody("9999999999", "Ravi"), nil))

	for _, tc := range []struct {
		id        string
		matchType string
	}{
		{first.TicketID, "none"},
		{second.TicketID, services.MatchMobileRoutePending},
	} {
		var events []observer.LoggedEntry
		for _, e := range logs.All() {
			if e.ContextMap()["ticket_id"] == tc.id {
				events = append(events, e)
			}
		}
		if len(events) != 1 {
			t.Fatalf("ticket %s logged %d times, want 1", tc.id, len(events))
		}
		if got := events[0].ContextMap()["match_type"]; got != tc.matchType {
			t.Fatalf("ticket %s match_type = %v, want %s", tc.id, got, tc.matchType)
		}
	}
}
