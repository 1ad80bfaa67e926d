package consultation

import (
	"AgriHub/entity"
	"AgriHub/internal/lib/api/cont"
	"AgriHub/internal/lib/api/response"
	"AgriHub/internal/lib/sl"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type CreateRequest struct {
	Subject  string          `json:"subject"`
	Category string          `json:"category"`
	Priority entity.Priority `json:"priority"`
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.consultation"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := cont.GetUser(r.Context())
		if user == nil || user.Role != entity.FarmerRole {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Only farmers can open consultations"))
			return
		}

		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.Subject == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("No subject provided"))
			return
		}

		conv, err := handler.CreateConversation(*user, req.Subject, req.Category, req.Priority)
		if err != nil {
			logger.Error("create conversation", sl.Err(err))
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		logger.Debug("conversation created", slog.String("conversation", conv.ID))
		render.JSON(w, r, response.Ok(conv))
	}
}
