package journeys

import (
	"CoverBot/entity"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

func Start(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		if handler == nil {
			unavailable(w, r, logger)
			return
		}

		var req entity.StartJourneyRequest
		if err := render.Bind(r, &req); err != nil {
			badRequest(w, r, logger, err)
			return
		}

		state, err := handler.StartJourney(r.Context(), req.Product, req.ID)
		if err != nil {
			fail(w, r, logger, "start journey", err)
			return
		}
		logger.Debug("journey started", slog.String("journey_id", state.ID))

		render.Status(r, http.StatusCreated)
		snapshot(w, r, handler, state)
	}
}
