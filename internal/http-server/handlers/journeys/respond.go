package journeys

import (
	"CoverBot/bot/journey"
	"CoverBot/entity"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func Respond(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		if handler == nil {
			unavailable(w, r, logger)
			return
		}

		var req entity.RespondRequest
		if err := render.Bind(r, &req); err != nil {
			badRequest(w, r, logger, err)
			return
		}

		product, id := chi.URLParam(r, "product"), chi.URLParam(r, "id")
		var (
			state *journey.State
			err   error
		)
		if len(req.Payload) > 0 {
			state, err = handler.RespondRaw(r.Context(), product, id, req.Payload)
		} else {
			state, err = handler.RespondText(r.Context(), product, id, req.Text)
		}
		if err != nil {
			fail(w, r, logger, "respond", err)
			return
		}
		logger.Debug("response accepted", slog.String("step_id", string(state.CurrentStep)))
		snapshot(w, r, handler, state)
	}
}

// Edit re-answers an earlier step and replays the journey from there.
func Edit(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		if handler == nil {
			unavailable(w, r, logger)
			return
		}

		var req entity.StepEditRequest
		if err := render.Bind(r, &req); err != nil {
			badRequest(w, r, logger, err)
			return
		}
		logger = logger.With(slog.String("edit_step", req.StepID))

		state, err := handler.EditJourney(r.Context(), chi.URLParam(r, "product"), chi.URLParam(r, "id"),
			journey.StepID(req.StepID), req.Payload)
		if err != nil {
			fail(w, r, logger, "edit", err)
			return
		}
		snapshot(w, r, handler, state)
	}
}

func Panels(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		if handler == nil {
			unavailable(w, r, logger)
			return
		}

		var req entity.PanelsRequest
		if err := render.Bind(r, &req); err != nil {
			badRequest(w, r, logger, err)
			return
		}

		state, err := handler.SetPanels(r.Context(), chi.URLParam(r, "product"), chi.URLParam(r, "id"), req.Expert, req.AIChat)
		if err != nil {
			fail(w, r, logger, "set panels", err)
			return
		}
		snapshot(w, r, handler, state)
	}
}
