package sensor

import (
	"AgriHub/internal/lib/api/cont"
	"AgriHub/internal/lib/api/response"
	"AgriHub/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func Alerts(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.sensor"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		alerts, err := handler.SensorAlerts(id)
		if err != nil {
			logger.Warn("list alerts", slog.String("sensor", id), sl.Err(err))
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		render.JSON(w, r, response.Ok(alerts))
	}
}

func Acknowledge(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.sensor"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := cont.GetUser(r.Context())
		if user == nil {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Unauthorized"))
			return
		}

		sensorID := chi.URLParam(r, "id")
		alertID := chi.URLParam(r, "alertId")
		if err := handler.AcknowledgeAlert(*user, sensorID, alertID); err != nil {
			logger.Warn("acknowledge alert",
				slog.String("sensor", sensorID),
				slog.String("alert", alertID),
				sl.Err(err),
			)
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		render.JSON(w, r, response.Ok(nil))
	}
}
