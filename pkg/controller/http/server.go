package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/secmon-lab/warden/pkg/usecase"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// Server exposes the Slack-facing HTTP surface: the Events API webhook, the
// interaction callback and the slash command endpoint. Every hook route sits
// behind HMAC signature verification; there is no other authentication.
type Server struct {
	router *chi.Mux
}

func New(uc *usecase.UseCases, signingSecret string) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK")) //nolint:errcheck
	})

	eventHandler := NewSlackEventHandler(uc)
	interactionHandler := NewSlackInteractionHandler(uc)
	commandHandler := NewSlackCommandHandler(uc)

	r.Route("/hooks/slack", func(r chi.Router) {
		r.Use(SlackSignatureMiddleware(signingSecret))

		r.Post("/event", eventHandler.ServeHTTP)
		r.Post("/interaction", interactionHandler.ServeHTTP)
		r.Post("/command", commandHandler.ServeHTTP)
	})

	return &Server{router: r}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
