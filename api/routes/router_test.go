package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tillview/tillview-backend/pkg/logger"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type noopStore struct{}

func (noopStore) Get(context.Context, string) (string, error) { return "", goredis.Nil }

func (noopStore) SetNX(context.Context, string, any, time.Duration) (bool, error) {
	return true, nil
}

func (noopStore) IdempotencyKey(scope, id string) string { return "tv:idemp:" + scope + ":" + id }

func testRouter() http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Output: &strings.Builder{}})
	return NewRouter(Deps{
		Logger:           logg,
		DB:               stubPinger{},
		IdempotencyStore: noopStore{},
	})
}

func TestHealthLive(t *testing.T) {
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestSettleRouteRequiresIdempotencyKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/sessions/0b1f8f54-8f0e-4f93-8a6e-000000000001/settle", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
