package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/user/catalog-image-sync/internal/entity"
	"github.com/user/catalog-image-sync/internal/usecase"
)

type waitingSyncer struct {
	release chan struct{}
}

func (s *waitingSyncer) Sync(ctx context.Context) (*entity.SyncReport, error) {
	<-s.release
	return &entity.SyncReport{RunID: "run-1"}, nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
}

func TestHandleHealthCheckDegradedBody(t *testing.T) {
	h := NewHandler(context.Background(), nil, nil, map[string]Pinger{
		"postgres": pingerFunc(func(ctx context.Context) error { return nil }),
		"redis":    pingerFunc(func(ctx context.Context) error { return errors.New("dial tcp: connection refused") }),
	}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeBody(t, rec, &body)
	if body.Status != "degraded" {
		t.Errorf("expected status degraded, got %q", body.Status)
	}
	want := map[string]string{"postgres": "ok", "redis": "dial tcp: connection refused"}
	if len(body.Checks) != len(want) {
		t.Fatalf("expected checks %v, got %v", want, body.Checks)
	}
	for name, status := range want {
		if body.Checks[name] != status {
			t.Errorf("check %s: expected %q, got %q", name, status, body.Checks[name])
		}
	}
}

func TestHandleHealthCheckOKOmitsChecksWithoutBackends(t *testing.T) {
	h := NewHandler(context.Background(), nil, nil, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	if _, ok := body["checks"]; ok {
		t.Errorf("expected no checks field, got %v", body["checks"])
	}
}

func TestHandleSubmitSyncConflictBody(t *testing.T) {
	syncer := &waitingSyncer{release: make(chan struct{})}
	runner := usecase.NewSyncRunner(syncer, zap.NewNop())
	h := NewHandler(context.Background(), runner, nil, nil, zap.NewNop())
	defer runner.Wait()
	defer close(syncer.release)

	first := httptest.NewRecorder()
	h.HandleSubmitSync(first, httptest.NewRequest(http.MethodPost, "/api/sync", nil))
	if first.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", first.Code)
	}
	var accepted map[string]string
	decodeBody(t, first, &accepted)
	if accepted["status"] != "accepted" {
		t.Errorf("expected status accepted, got %v", accepted)
	}

	second := httptest.NewRecorder()
	h.HandleSubmitSync(second, httptest.NewRequest(http.MethodPost, "/api/sync", nil))
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", second.Code)
	}
	var conflict map[string]string
	decodeBody(t, second, &conflict)
	if conflict["error"] != usecase.ErrSyncInProgress.Error() {
		t.Errorf("expected error %q, got %v", usecase.ErrSyncInProgress.Error(), conflict)
	}
}
