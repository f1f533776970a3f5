package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"DonorLink/internal/config"
	"DonorLink/internal/http-server/handlers/auth"
	"DonorLink/internal/http-server/handlers/contact"
	"DonorLink/internal/http-server/handlers/errors"
	"DonorLink/internal/http-server/handlers/user"
	"DonorLink/internal/http-server/middleware/authenticate"
	"DonorLink/internal/http-server/middleware/timeout"
	"DonorLink/internal/lib/sl"
	"DonorLink/internal/ws"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// AuthHandler serves authentication, token validation and the user
// directory.
type AuthHandler interface {
	authenticate.Authenticate
	auth.Core
	user.Core
}

// ChatHandler serves the messaging core.
type ChatHandler interface {
	contact.Core
}

func New(conf *config.Config, log *slog.Logger, authHandler AuthHandler, chatHandler ChatHandler, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	// The live channel authenticates via query token and cannot sit behind
	// the timeout handler, which does not support connection hijacking.
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, authHandler, log, w, r)
	})

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(timeout.Timeout(5))
		v1.Use(render.SetContentType(render.ContentTypeJSON))

		v1.Route("/auth", func(r chi.Router) {
			r.Post("/register", auth.Register(log, authHandler))
			r.Post("/login", auth.Login(log, authHandler))

			r.Group(func(pr chi.Router) {
				pr.Use(authenticate.New(log, authHandler))
				pr.Get("/me", auth.Me(log, authHandler))
			})
		})

		v1.Group(func(pr chi.Router) {
			pr.Use(authenticate.New(log, authHandler))

			pr.Route("/users", func(r chi.Router) {
				r.Get("/", user.List(log, authHandler))
			})
			pr.Route("/contacts", func(r chi.Router) {
				r.Get("/", contact.List(log, chatHandler))
				r.Post("/create", contact.Create(log, chatHandler))
				r.Get("/history", contact.History(log, chatHandler))
				r.Put("/read/{contactId}", contact.MarkRead(log, chatHandler))
			})
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
