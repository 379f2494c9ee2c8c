package key

import (
	"CoverBot/entity"
	"CoverBot/internal/lib/api/cont"
	"CoverBot/internal/lib/api/response"
	"CoverBot/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	IssueApiKey(username string) (string, error)
}

// Generate issues a new api key. Only the internal key holder may call it.
func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.key"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("key service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Key service not available"))
			return
		}

		user := cont.GetUser(r.Context())
		if user == nil || user.Username != entity.InternalUser {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Not allowed"))
			return
		}

		var req entity.KeyRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Debug("bad request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		logger = logger.With(slog.String("username", req.Username))

		key, err := handler.IssueApiKey(req.Username)
		if err != nil {
			logger.Error("issue api key", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to issue key"))
			return
		}
		logger.Info("api key issued")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(map[string]string{"key": key}))
	}
}
