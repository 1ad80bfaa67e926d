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

type SendMessageRequest struct {
	Content     string              `json:"content"`
	Type        entity.MessageType  `json:"type"`
	Attachments []entity.Attachment `json:"attachments"`
}

func SendMessage(log *slog.Logger, handler Core) http.HandlerFunc {
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

		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.Content == "" && len(req.Attachments) == 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("No message content provided"))
			return
		}
		if req.Type == "" {
			req.Type = entity.MessageText
		}

		id := chi.URLParam(r, "id")
		msg, err := handler.SendMessage(id, *user, req.Content, req.Type, req.Attachments)
		if err != nil {
			logger.Warn("send message", slog.String("conversation", id), sl.Err(err))
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		render.JSON(w, r, response.Ok(msg))
	}
}

func MarkRead(log *slog.Logger, handler Core) http.HandlerFunc {
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
		if err := handler.MarkConversationRead(id, *user); err != nil {
			logger.Warn("mark read", slog.String("conversation", id), sl.Err(err))
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		render.JSON(w, r, response.Ok(nil))
	}
}
