package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Resona/internal/domain/models"
	"Resona/internal/usecase"
	applogger "Resona/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubSource struct {
	records []models.MatchRecord
}

func (s *stubSource) GetAll(_ context.Context) ([]models.MatchRecord, error) {
	return s.records, nil
}

func (s *stubSource) GetMatches(_ context.Context, from, to time.Time, limit int) ([]models.MatchRecord, error) {
	out := make([]models.MatchRecord, 0, limit)
	for _, r := range s.records {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type stubStorage struct {
	stored []*models.MatchRecord
}

func (s *stubStorage) Init(_ context.Context) error { return nil }

func (s *stubStorage) Store(_ context.Context, m *models.MatchRecord) error {
	s.stored = append(s.stored, m)
	return nil
}

func (s *stubStorage) StoreBatch(_ context.Context, records []*models.MatchRecord) error {
	s.stored = append(s.stored, records...)
	return nil
}

func (s *stubStorage) Query(_ context.Context, _, _ time.Time, _ int) ([]models.MatchRecord, error) {
	return nil, nil
}

func (s *stubStorage) Health(_ context.Context) error { return nil }

func (s *stubStorage) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordMatch(string, int) {}

func (nopMetrics) RecordError(string) {}

func (nopMetrics) RecordRealmNumber(int) {}

func (nopMetrics) RecordLatency(string, float64) {}

func newTestHandler(t *testing.T, records []models.MatchRecord) (*InsightsEchoHandler, *echo.Echo, *stubStorage) {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	src := &stubSource{records: records}
	store := &stubStorage{}
	insights := usecase.NewInsightsUseCase(src, time.UTC)
	matches := usecase.NewMatchesUseCase(src)
	rec := usecase.NewMatchRecorder(nil, store, nopMetrics{}, "clickhouse", 0, 0)
	focus, err := usecase.NewFocusSource(7)
	if err != nil {
		t.Fatalf("focus: %v", err)
	}

	h := NewInsightsEchoHandler(l, insights, matches, rec, focus)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e, store
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rw := httptest.NewRecorder()
	e.ServeHTTP(rw, req)

	var env envelope
	if err := json.Unmarshal(rw.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rw.Body.String())
	}
	return rw, env
}

func TestSummaryEndpoint(t *testing.T) {
	records := []models.MatchRecord{
		{ChosenNumber: 5, MatchedNumber: 5, Timestamp: time.Now().Add(-1 * time.Hour)},
		{ChosenNumber: 5, MatchedNumber: 5, Timestamp: time.Now().Add(-2 * time.Hour)},
	}
	_, e, _ := newTestHandler(t, records)

	rw, env := doRequest(t, e, http.MethodGet, "/api/insights/summary", "")
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if env.Status != http.StatusOK {
		t.Fatalf("expected envelope 200, got %d", env.Status)
	}

	var s models.InsightSummary
	if err := json.Unmarshal(env.Data, &s); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if s.MostFrequentText != "Number 5 (2 times)" {
		t.Fatalf("unexpected most frequent %q", s.MostFrequentText)
	}
}

func TestSummaryEndpointEmpty(t *testing.T) {
	_, e, _ := newTestHandler(t, nil)

	_, env := doRequest(t, e, http.MethodGet, "/api/insights/summary", "")
	var s models.InsightSummary
	if err := json.Unmarshal(env.Data, &s); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if s.MostFrequentText != models.NoMatchesSentinel || s.PeakHour != models.NoMatchesSentinel {
		t.Fatalf("expected sentinels, got %q / %q", s.MostFrequentText, s.PeakHour)
	}
}

func TestHistogramEndpointWindows(t *testing.T) {
	_, e, _ := newTestHandler(t, nil)

	for _, w := range []string{"day", "week", "month"} {
		rw, env := doRequest(t, e, http.MethodGet, "/api/insights/histogram?window="+w, "")
		if rw.Code != http.StatusOK {
			t.Fatalf("window %s: expected 200, got %d", w, rw.Code)
		}
		var v models.HistogramView
		if err := json.Unmarshal(env.Data, &v); err != nil {
			t.Fatalf("decode view: %v", err)
		}
		if v.Window != w {
			t.Fatalf("expected window %q, got %q", w, v.Window)
		}
	}
}

func TestHistogramEndpointRejectsBadWindow(t *testing.T) {
	_, e, _ := newTestHandler(t, nil)

	rw, env := doRequest(t, e, http.MethodGet, "/api/insights/histogram?window=year", "")
	if rw.Code != http.StatusOK {
		t.Fatalf("unexpected http status %d", rw.Code)
	}
	if env.Status != http.StatusBadRequest {
		t.Fatalf("expected envelope 400, got %d", env.Status)
	}
}

func TestRecordMatchEndpoint(t *testing.T) {
	_, e, store := newTestHandler(t, nil)

	rw, env := doRequest(t, e, http.MethodPost, "/api/matches",
		`{"chosen_number":5,"matched_number":5}`)
	if rw.Code != http.StatusOK {
		t.Fatalf("unexpected http status %d", rw.Code)
	}
	if env.Status != http.StatusCreated {
		t.Fatalf("expected envelope 201, got %d", env.Status)
	}
	if len(store.stored) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(store.stored))
	}
	if store.stored[0].Timestamp.IsZero() {
		t.Fatalf("expected timestamp defaulted to now")
	}
}

func TestRecordMatchEndpointValidation(t *testing.T) {
	_, e, store := newTestHandler(t, nil)

	_, env := doRequest(t, e, http.MethodPost, "/api/matches",
		`{"chosen_number":12,"matched_number":5}`)
	if env.Status != http.StatusBadRequest {
		t.Fatalf("expected envelope 400, got %d", env.Status)
	}
	if len(store.stored) != 0 {
		t.Fatalf("invalid record must not be stored")
	}
}

func TestFocusEndpoints(t *testing.T) {
	_, e, _ := newTestHandler(t, nil)

	_, env := doRequest(t, e, http.MethodGet, "/api/focus", "")
	var got map[string]int
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode focus: %v", err)
	}
	if got["number"] != 7 {
		t.Fatalf("expected initial focus 7, got %d", got["number"])
	}

	_, env = doRequest(t, e, http.MethodPut, "/api/focus", `{"number":3}`)
	if env.Status != http.StatusOK {
		t.Fatalf("expected 200 envelope, got %d", env.Status)
	}

	_, env = doRequest(t, e, http.MethodGet, "/api/focus", "")
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode focus: %v", err)
	}
	if got["number"] != 3 {
		t.Fatalf("expected updated focus 3, got %d", got["number"])
	}

	_, env = doRequest(t, e, http.MethodPut, "/api/focus", `{"number":0}`)
	if env.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 envelope for focus 0, got %d", env.Status)
	}
}
