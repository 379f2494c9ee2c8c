package files

import (
	"CoverBot/impl/core"
	"CoverBot/internal/lib/sl"
	"CoverBot/internal/service/documents"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Core interface {
	Document(ctx context.Context, product, id, docID, expires, sig string) (documents.Document, error)
}

// Download serves a rendered policy document. The signed query string
// replaces the bearer token so links work from chat messages and <a href>.
// Endpoint: GET /files/{product}/{id}/{doc}?expires=&sig=
func Download(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, id, docID := chi.URLParam(r, "product"), chi.URLParam(r, "id"), chi.URLParam(r, "doc")
		logger := log.With(
			sl.Module("http.handlers.files"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("product", product),
			slog.String("journey_id", id),
			slog.String("doc", docID),
		)

		if handler == nil {
			http.Error(w, "Service not available", http.StatusServiceUnavailable)
			return
		}

		query := r.URL.Query()
		doc, err := handler.Document(r.Context(), product, id, docID, query.Get("expires"), query.Get("sig"))
		switch {
		case err == nil:
		case errors.Is(err, core.ErrLinkInvalid):
			logger.Debug("rejected file link", sl.Err(err))
			http.Error(w, "Link expired or invalid", http.StatusForbidden)
			return
		case errors.Is(err, core.ErrNotConfigured):
			http.Error(w, "Service not available", http.StatusServiceUnavailable)
			return
		default:
			logger.Debug("document not available", sl.Err(err))
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", doc.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
		if _, err := w.Write(doc.Body); err != nil {
			logger.Error("failed to write file", sl.Err(err))
		}
	}
}
