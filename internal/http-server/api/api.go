package api

import (
	"CoverBot/internal/config"
	"CoverBot/internal/http-server/handlers/errors"
	"CoverBot/internal/http-server/handlers/files"
	"CoverBot/internal/http-server/handlers/journeys"
	"CoverBot/internal/http-server/handlers/key"
	"CoverBot/internal/http-server/middleware/authenticate"
	"CoverBot/internal/http-server/middleware/timeout"
	"CoverBot/internal/lib/sl"
	"CoverBot/internal/ws"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	ws.Authenticator
	journeys.Core
	files.Core
	key.Core
}

// NewRouter builds the route tree. hub and metrics are optional.
func NewRouter(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub, metrics http.Handler) http.Handler {
	requestTimeout := conf.Listen.Timeout
	if requestTimeout <= 0 {
		requestTimeout = 30
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	// upgraded connections outlive the request timeout
	if hub != nil {
		router.Get("/ws/{product}/{id}", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(hub, handler, log, w, r, chi.URLParam(r, "product"), chi.URLParam(r, "id"))
		})
	}

	router.Group(func(r chi.Router) {
		r.Use(timeout.Timeout(requestTimeout))

		if metrics != nil {
			r.Handle("/metrics", metrics)
		}
		r.Get("/files/{product}/{id}/{doc}", files.Download(log, handler))

		r.Route("/api/v1", func(v1 chi.Router) {
			v1.Use(render.SetContentType(render.ContentTypeJSON))
			v1.Use(authenticate.New(log, handler))

			v1.Route("/products", func(r chi.Router) {
				r.Get("/", journeys.Products(log, handler))
				r.Get("/{product}/graph", journeys.Graph(log, handler))
			})
			v1.Route("/journeys", func(r chi.Router) {
				r.Post("/", journeys.Start(log, handler))
				r.Route("/{product}/{id}", func(r chi.Router) {
					r.Get("/", journeys.Get(log, handler))
					r.Delete("/", journeys.Delete(log, handler))
					r.Post("/respond", journeys.Respond(log, handler))
					r.Post("/edit", journeys.Edit(log, handler))
					r.Post("/reset", journeys.Reset(log, handler))
					r.Post("/resume", journeys.Resume(log, handler))
					r.Post("/panels", journeys.Panels(log, handler))
					r.Post("/ask", journeys.Ask(log, handler))
					r.Get("/documents/{doc}", journeys.DocumentLink(log, handler))
				})
			})
			v1.Route("/key", func(r chi.Router) {
				r.Post("/new", key.Generate(log, handler))
			})
		})
	})

	return router
}

func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub, metrics http.Handler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  NewRouter(conf, log, handler, hub, metrics),
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
