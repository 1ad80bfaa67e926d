package api

import (
	"AgriHub/internal/config"
	"AgriHub/internal/http-server/handlers/consultation"
	"AgriHub/internal/http-server/handlers/errors"
	"AgriHub/internal/http-server/handlers/sensor"
	"AgriHub/internal/http-server/middleware/authenticate"
	"AgriHub/internal/http-server/middleware/timeout"
	"AgriHub/internal/lib/sl"
	"AgriHub/internal/ws"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net"
	"net/http"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	consultation.Core
	sensor.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	// The websocket gateway authenticates its own handshake; the HTTP
	// middleware chain stops at the upgrade.
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, handler, log, w, r)
	})

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(timeout.Timeout(5))
		v1.Use(render.SetContentType(render.ContentTypeJSON))
		v1.Use(authenticate.New(log, handler))

		v1.Route("/consultations", func(r chi.Router) {
			r.Post("/", consultation.Create(log, handler))
			r.Get("/open", consultation.ListOpen(log, handler))
			r.Get("/mine", consultation.ListMine(log, handler))
			r.Get("/{id}", consultation.Get(log, handler))
			r.Post("/{id}/claim", consultation.Claim(log, handler))
			r.Post("/{id}/messages", consultation.SendMessage(log, handler))
			r.Post("/{id}/read", consultation.MarkRead(log, handler))
			r.Post("/{id}/status", consultation.UpdateStatus(log, handler))
			r.Post("/{id}/rate", consultation.Rate(log, handler))
		})
		v1.Route("/sensors", func(r chi.Router) {
			r.Post("/{id}/readings", sensor.Ingest(log, handler))
			r.Put("/{id}/thresholds", sensor.SetThresholds(log, handler))
			r.Get("/{id}/alerts", sensor.Alerts(log, handler))
			r.Post("/{id}/alerts/{alertId}/ack", sensor.Acknowledge(log, handler))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
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
