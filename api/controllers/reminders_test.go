package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillview/tillview-backend/pkg/db/models"
	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
)

type stubReminderService struct {
	open        []models.Reminder
	completeErr error
	horizon     time.Time
}

func (s *stubReminderService) CreateReminder(context.Context, *models.Reminder) error { return nil }

func (s *stubReminderService) ListOpen(_ context.Context, horizon time.Time) ([]models.Reminder, error) {
	s.horizon = horizon
	return s.open, nil
}

func (s *stubReminderService) Complete(context.Context, uuid.UUID) error { return s.completeErr }

func TestListRemindersHorizon(t *testing.T) {
	saleID := uuid.New()
	svc := &stubReminderService{
		open: []models.Reminder{
			{
				ID:        uuid.New(),
				Title:     "Payment Due: Jamie Rivera",
				Body:      "Collect the remaining 12.00 EUR.",
				DueAt:     time.Now().Add(24 * time.Hour),
				SaleID:    &saleID,
				AmountDue: decimal.RequireFromString("12.00"),
			},
		},
	}
	handler := ListReminders(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reminders?days=3", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []reminderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected one reminder, got %d", len(envelope.Data))
	}
	if envelope.Data[0].AmountDue != "12.00" {
		t.Fatalf("expected amount 12.00, got %s", envelope.Data[0].AmountDue)
	}
	if envelope.Data[0].SaleID == nil {
		t.Fatal("expected linked sale id")
	}

	wantAround := time.Now().AddDate(0, 0, 3)
	if svc.horizon.Before(wantAround.Add(-time.Minute)) || svc.horizon.After(wantAround.Add(time.Minute)) {
		t.Fatalf("horizon not ~3 days out: %v", svc.horizon)
	}
}

func TestCompleteReminderNotFound(t *testing.T) {
	svc := &stubReminderService{completeErr: pkgerrors.New(pkgerrors.CodeNotFound, "reminder not found")}
	handler := CompleteReminder(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reminders/"+uuid.NewString()+"/complete", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("reminderID", uuid.NewString())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
