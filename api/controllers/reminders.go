package controllers

import (
	"net/http"
	"time"

	"github.com/tillview/tillview-backend/api/responses"
	"github.com/tillview/tillview-backend/api/validators"
	"github.com/tillview/tillview-backend/internal/reminders"
	"github.com/tillview/tillview-backend/pkg/logger"
)

// ListReminders returns open reminders due within the requested horizon.
func ListReminders(svc reminders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := validators.ParseQueryInt(r, "days", 7, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		horizon := time.Now().AddDate(0, 0, days)
		records, err := svc.ListOpen(r.Context(), horizon)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := make([]reminderDTO, 0, len(records))
		for _, reminder := range records {
			resp = append(resp, reminderFromModel(reminder))
		}
		responses.WriteSuccess(w, resp)
	}
}

// CompleteReminder marks one reminder as done.
func CompleteReminder(svc reminders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reminderID, err := pathUUID(r, "reminderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Complete(r.Context(), reminderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "completed"})
	}
}
