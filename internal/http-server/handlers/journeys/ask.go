package journeys

import (
	"CoverBot/entity"
	"CoverBot/internal/lib/api/response"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func Ask(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		if handler == nil {
			unavailable(w, r, logger)
			return
		}

		var req entity.AskRequest
		if err := render.Bind(r, &req); err != nil {
			badRequest(w, r, logger, err)
			return
		}

		answer, err := handler.Ask(r.Context(), chi.URLParam(r, "product"), chi.URLParam(r, "id"), req.Question)
		if err != nil {
			fail(w, r, logger, "ask", err)
			return
		}
		logger.Debug("question answered", slog.Bool("escalate", answer.Escalate))
		render.JSON(w, r, response.Ok(answer))
	}
}

// DocumentLink returns a signed download path for a policy document.
func DocumentLink(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		if handler == nil {
			unavailable(w, r, logger)
			return
		}

		link, err := handler.DocumentURL(r.Context(), chi.URLParam(r, "product"), chi.URLParam(r, "id"), chi.URLParam(r, "doc"))
		if err != nil {
			fail(w, r, logger, "document link", err)
			return
		}
		render.JSON(w, r, response.Ok(map[string]string{"url": link}))
	}
}
