// Package api exposes the tutor over HTTP. Handlers decode the request,
// call exactly one tutor operation and encode its Response; no tutoring
// logic lives here.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/buddy/internal/logger"
	"github.com/abhisek/buddy/internal/metrics"
	"github.com/abhisek/buddy/internal/tutor"
)

// maxBodyBytes bounds request bodies. Answers and messages are short.
const maxBodyBytes = 64 << 10

// Pinger reports whether the session store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the server.
type Options struct {
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
	CORSOrigins []string
	AccessLog   bool

	// Store and Model feed /healthz.
	Store Pinger
	Model string
}

// Server holds the handler dependencies.
type Server struct {
	tutor *tutor.Service
	opts  Options
	log   *logger.Logger
}

// NewServer creates a Server. A nil logger discards.
func NewServer(svc *tutor.Service, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Server{tutor: svc, opts: opts, log: log}
}

// Routes builds the router with the global middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.observe)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/health"))
	r.Use(cors(s.opts.CORSOrigins))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Get("/", s.listSessions)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Get("/progress", s.progress)

			r.Post("/diagnostic/start", s.step(s.tutor.StartDiagnostic))
			r.Post("/diagnostic/answer", s.answer(s.tutor.SubmitDiagnosticAnswer))
			r.Post("/plan", s.step(s.tutor.GeneratePlan))
			r.Post("/teaching/start", s.step(s.tutor.StartTeaching))
			r.Post("/answer", s.answer(s.tutor.SubmitAnswer))
			r.Post("/reteach", s.step(s.tutor.Reteach))
			r.Post("/assessment", s.step(s.tutor.StartAssessment))
			r.Post("/hint", s.hint)
			r.Post("/skip", s.skip)
			r.Post("/end", s.step(s.tutor.EndSession))
			r.Post("/message", s.message)
			r.Post("/next", s.step(s.tutor.Next))
		})
	})

	return r
}
