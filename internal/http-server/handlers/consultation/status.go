package consultation

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

type StatusRequest struct {
	Status entity.ConversationStatus `json:"status"`
}

func UpdateStatus(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.consultation"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := cont.GetUser(r.Context())
		if user == nil {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Unauthorized"))
			return
		}

		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		id := chi.URLParam(r, "id")
		if err := handler.UpdateConversationStatus(id, *user, req.Status); err != nil {
			logger.Warn("update status",
				slog.String("conversation", id),
				slog.String("status", string(req.Status)),
				sl.Err(err),
			)
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		render.JSON(w, r, response.Ok(nil))
	}
}

type RateRequest struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

func Rate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.consultation"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := cont.GetUser(r.Context())
		if user == nil {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Unauthorized"))
			return
		}

		var req RateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		id := chi.URLParam(r, "id")
		if err := handler.RateConversation(id, *user, req.Score, req.Feedback); err != nil {
			logger.Warn("rate conversation", slog.String("conversation", id), sl.Err(err))
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		render.JSON(w, r, response.Ok(nil))
	}
}
