package sensor

import (
	"AgriHub/entity"
	"AgriHub/internal/lib/api/cont"
	"AgriHub/internal/lib/api/response"
	"AgriHub/internal/lib/sl"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type ThresholdsRequest struct {
	Name       string                      `json:"name"`
	Thresholds map[string]entity.Threshold `json:"thresholds"`
}

// SetThresholds configures per-metric min/max bounds for a sensor owned by
// the calling farmer.
func SetThresholds(log *slog.Logger, handler Core) http.HandlerFunc {
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

		var req ThresholdsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if len(req.Thresholds) == 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("No thresholds provided"))
			return
		}

		id := chi.URLParam(r, "id")
		if err := handler.SetSensorThresholds(*user, id, req.Name, req.Thresholds); err != nil {
			logger.Warn("set thresholds", slog.String("sensor", id), sl.Err(err))
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		render.JSON(w, r, response.Ok(nil))
	}
}
