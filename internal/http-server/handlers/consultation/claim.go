package consultation

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

// Claim lets an expert take an open, unassigned conversation. At most one
// of any number of concurrent claims succeeds; the losers get a conflict
// and should re-query the open pool.
func Claim(log *slog.Logger, handler Core) http.HandlerFunc {
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
		conv, err := handler.ClaimConversation(id, *user)
		if err != nil {
			logger.Warn("claim conversation", slog.String("conversation", id), sl.Err(err))
			render.Status(r, httpStatus(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		logger.Info("conversation claimed",
			slog.String("conversation", id),
			slog.String("expert", user.UserID),
		)
		render.JSON(w, r, response.Ok(conv))
	}
}
