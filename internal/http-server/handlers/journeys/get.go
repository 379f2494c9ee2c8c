package journeys

import (
	"CoverBot/internal/lib/api/response"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		if handler == nil {
			unavailable(w, r, logger)
			return
		}

		state, err := handler.GetJourney(r.Context(), chi.URLParam(r, "product"), chi.URLParam(r, "id"))
		if err != nil {
			fail(w, r, logger, "get journey", err)
			return
		}
		snapshot(w, r, handler, state)
	}
}

func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		if handler == nil {
			unavailable(w, r, logger)
			return
		}

		err := handler.DeleteJourney(r.Context(), chi.URLParam(r, "product"), chi.URLParam(r, "id"))
		if err != nil {
			fail(w, r, logger, "delete journey", err)
			return
		}
		logger.Debug("journey deleted")
		render.JSON(w, r, response.Ok("Journey deleted"))
	}
}

// Reset starts the journey over under the same id.
func Reset(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		if handler == nil {
			unavailable(w, r, logger)
			return
		}

		state, err := handler.ResetJourney(r.Context(), chi.URLParam(r, "product"), chi.URLParam(r, "id"))
		if err != nil {
			fail(w, r, logger, "reset journey", err)
			return
		}
		snapshot(w, r, handler, state)
	}
}

// Resume continues a journey left active by an interrupted request.
func Resume(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		if handler == nil {
			unavailable(w, r, logger)
			return
		}

		state, err := handler.ResumeJourney(r.Context(), chi.URLParam(r, "product"), chi.URLParam(r, "id"))
		if err != nil {
			fail(w, r, logger, "resume journey", err)
			return
		}
		snapshot(w, r, handler, state)
	}
}
