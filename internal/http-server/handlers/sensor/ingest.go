package sensor

import (
	"AgriHub/internal/lib/api/response"
	"AgriHub/internal/lib/sl"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type IngestRequest struct {
	Values map[string]float64 `json:"values"`
}

// Ingest accepts one sensor reading, evaluates it against the sensor's
// thresholds and returns any alerts emitted.
func Ingest(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.sensor"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if len(req.Values) == 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("No reading values provided"))
			return
		}

		id := chi.URLParam(r, "id")
		alerts, err := handler.IngestReading(id, req.Values)
		if err != nil {
			logger.Warn("ingest reading", slog.String("sensor", id), sl.Err(err))
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		logger.Debug("reading ingested",
			slog.String("sensor", id),
			slog.Int("alerts", len(alerts)),
		)
		render.JSON(w, r, response.Ok(alerts))
	}
}
