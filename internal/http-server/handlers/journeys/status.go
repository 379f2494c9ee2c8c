package journeys

import (
	"CoverBot/bot/journey"
	"CoverBot/impl/core"
	"CoverBot/internal/lib/api/response"
	"CoverBot/internal/lib/sl"
	"CoverBot/internal/service/documents"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const mod = "http.handlers.journeys"

func requestLogger(log *slog.Logger, r *http.Request) *slog.Logger {
	return log.With(
		sl.Module(mod),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("product", chi.URLParam(r, "product")),
		slog.String("journey_id", chi.URLParam(r, "id")),
	)
}

// errorStatus maps interpreter and core errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, journey.ErrJourneyNotFound),
		errors.Is(err, documents.ErrNoPolicy),
		errors.Is(err, documents.ErrUnknownDocument):
		return http.StatusNotFound
	case errors.Is(err, journey.ErrMalformedResponse),
		errors.Is(err, journey.ErrUnknownStep):
		return http.StatusBadRequest
	case errors.Is(err, journey.ErrNotAwaiting),
		errors.Is(err, journey.ErrNoAnswer):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, action string, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(action, sl.Err(err))
	} else {
		logger.Debug(action, sl.Err(err))
	}
	render.Status(r, status)
	render.JSON(w, r, response.Error(err.Error()))
}

func badRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.Debug("bad request", sl.Err(err))
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response.Error(err.Error()))
}

func unavailable(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	logger.Error("journey service not available")
	render.Status(r, http.StatusServiceUnavailable)
	render.JSON(w, r, response.Error("Journey service not available"))
}

func snapshot(w http.ResponseWriter, r *http.Request, handler Core, state *journey.State) {
	render.JSON(w, r, response.Ok(handler.Snapshot(state)))
}
