// Package http exposes the bot and the reports over a small JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"timetrack/internal/bot"
	"timetrack/internal/chart"
	"timetrack/internal/core"
	applog "timetrack/internal/log"
	"timetrack/internal/middleware/ratelimit"
	"timetrack/internal/middleware/security"
	"timetrack/internal/middleware/trace"
)

type (
	MessageHandler interface {
		HandleMessage(ctx context.Context, msg bot.Message) (bot.Reply, error)
	}

	ReportReader interface {
		Daily(ctx context.Context, user core.UserID, date core.Date) (core.DailyReport, error)
		Period(ctx context.Context, user core.UserID, period string, today core.Date) (core.RangeReport, error)
	}
)

// Options wires a Server. Ready, Charts and Limiter are optional.
type Options struct {
	Bot     MessageHandler
	Reports ReportReader
	Charts  chart.Renderer
	Ready   func(ctx context.Context) error
	Limiter *ratelimit.Limiter
	Logger  *applog.Logger

	RequestTimeout time.Duration
	Clock          func() time.Time
	Location       *time.Location
}

type Server struct {
	http.Server
	bot      MessageHandler
	reports  ReportReader
	charts   chart.Renderer
	ready    func(ctx context.Context) error
	logger   *applog.Logger
	clock    func() time.Time
	loc      *time.Location
	tracer   *trace.Middleware
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and the middleware chain, returning a ready-to-run server.
func NewServer(addr string, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	s := &Server{
		bot:      opts.Bot,
		reports:  opts.Reports,
		charts:   opts.Charts,
		ready:    opts.Ready,
		logger:   opts.Logger.WithComponent(applog.ComponentHTTP),
		clock:    opts.Clock,
		loc:      opts.Location,
		detector: security.NewDetector(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /v1/messages", s.handleMessage)
	mux.HandleFunc("GET /v1/users/{id}/reports/daily", s.handleDailyReport)
	mux.HandleFunc("GET /v1/users/{id}/reports/{period}", s.handlePeriodReport)

	var handler http.Handler = http.TimeoutHandler(mux, opts.RequestTimeout, `{"error":"request timeout"}`)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	if opts.Limiter != nil {
		handler = opts.Limiter.Middleware(s.detector.ExtractClientIP, handleRateLimited)(handler)
	}
	handler = s.detector.Middleware(handler)
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		m := s.tracer.GetMetrics()
		s.logger.Info("HTTP server shutting down",
			"total_requests", m.TotalRequests,
			"server_errors", m.ServerErrors)
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) today() core.Date {
	return core.DateOf(s.clock().In(s.loc))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func handleRateLimited(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
}
