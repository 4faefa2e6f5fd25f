package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/indicesp/indicesp/pkg/archival"
	"github.com/indicesp/indicesp/pkg/storage"
	"github.com/indicesp/indicesp/pkg/submission"
)

// QueueReader is the read side of the submission store used for statistics.
type QueueReader interface {
	QueueStats(ctx context.Context) ([]storage.QueueStats, error)
	CountByStatus(ctx context.Context) (map[storage.Status]int, error)
	ListRecentEvents(ctx context.Context, limit int) ([]storage.Event, error)
}

type Config struct {
	Submissions *submission.Service
	Queue       QueueReader
	Validator   *archival.Validator // defaults to one built from the service's catalog
	Pages       http.Handler        // mounted at "/" when set
	Log         *logrus.Logger
	// AllowedOrigins for cross-origin API calls. Empty allows any origin.
	AllowedOrigins []string
	Now            func() time.Time
}

type Server struct {
	subs      *submission.Service
	queue     QueueReader
	validator *archival.Validator
	pages     http.Handler
	log       *logrus.Logger
	origins   []string
	now       func() time.Time
}

func New(cfg Config) (*Server, error) {
	if cfg.Submissions == nil {
		return nil, errors.New("server: submission service is required")
	}
	if cfg.Queue == nil {
		return nil, errors.New("server: queue reader is required")
	}
	s := &Server{
		subs:      cfg.Submissions,
		queue:     cfg.Queue,
		validator: cfg.Validator,
		pages:     cfg.Pages,
		log:       cfg.Log,
		origins:   cfg.AllowedOrigins,
		now:       cfg.Now,
	}
	if s.validator == nil {
		s.validator = archival.NewValidator(s.subs.Catalog().Brands())
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Handler returns the routed, CORS-enabled handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	// API Group
	api := http.NewServeMux()
	api.HandleFunc("GET /api/catalog", s.handleCatalog)
	api.HandleFunc("GET /api/dashboard", s.handleDashboard)
	api.HandleFunc("GET /api/stats", s.handleStats)
	api.HandleFunc("POST /api/archival/validate", s.handleValidate)
	api.HandleFunc("GET /api/submissions", s.handleListSubmissions)
	api.HandleFunc("POST /api/submissions", s.handleCreateSubmission)
	api.HandleFunc("GET /api/submissions/{id}", s.handleGetSubmission)
	api.HandleFunc("POST /api/submissions/{id}/approve", s.handleApprove)
	api.HandleFunc("POST /api/submissions/{id}/reject", s.handleReject)
	mux.Handle("/api/", apiRoutes(api))

	if s.pages != nil {
		mux.Handle("/", s.pages)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	})
	return s.logRequests(c.Handler(mux))
}

// apiRoutes serves api and answers unmatched API requests with the JSON
// error envelope, so they never reach the HTML pages.
func apiRoutes(api *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := api.Handler(r); pattern != "" {
			api.ServeHTTP(w, r)
			return
		}
		var allow []string
		for _, m := range []string{http.MethodGet, http.MethodPost} {
			other := r.Clone(r.Context())
			other.Method = m
			if _, pattern := api.Handler(other); pattern != "" {
				allow = append(allow, m)
			}
		}
		if len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Método não permitido", "")
			return
		}
		writeError(w, http.StatusNotFound, "not_found", "Rota não encontrada", "")
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}
