package consultation

import (
	"AgriHub/entity"
	"AgriHub/internal/lib/api/cont"
	"AgriHub/internal/lib/api/response"
	"AgriHub/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ListOpen serves the claimable pool to experts.
func ListOpen(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.consultation"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := cont.GetUser(r.Context())
		if user == nil || user.Role == entity.FarmerRole {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Open pool is for experts"))
			return
		}

		conversations, err := handler.ListOpenConversations()
		if err != nil {
			logger.Error("list open conversations", sl.Err(err))
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		logger.Debug("open pool listed", slog.Int("count", len(conversations)))
		render.JSON(w, r, response.Ok(conversations))
	}
}

// ListMine serves the caller's own conversations.
func ListMine(log *slog.Logger, handler Core) http.HandlerFunc {
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

		conversations, err := handler.ListMyConversations(*user)
		if err != nil {
			logger.Error("list conversations", sl.Err(err))
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		render.JSON(w, r, response.Ok(conversations))
	}
}

// Get serves one conversation to a participant or an admin.
func Get(log *slog.Logger, handler Core) http.HandlerFunc {
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

		id := chi.URLParam(r, "id")
		conv, err := handler.GetConversation(id, *user)
		if err != nil {
			logger.Error("get conversation", slog.String("conversation", id), sl.Err(err))
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		render.JSON(w, r, response.Ok(conv))
	}
}
