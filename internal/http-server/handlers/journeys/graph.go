package journeys

import (
	"CoverBot/internal/lib/api/response"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func Products(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if handler == nil {
			unavailable(w, r, requestLogger(log, r))
			return
		}
		render.JSON(w, r, response.Ok(handler.Products()))
	}
}

// Graph exports the step graph of a product for tooling and diagrams.
func Graph(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		if handler == nil {
			unavailable(w, r, logger)
			return
		}

		g, err := handler.Graph(chi.URLParam(r, "product"))
		if err != nil {
			fail(w, r, logger, "graph", err)
			return
		}
		render.JSON(w, r, response.Ok(g))
	}
}
