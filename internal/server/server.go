package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/laresh1090/pennivault/internal/domain"
	"github.com/laresh1090/pennivault/internal/ledger"
)

// Server exposes the ledger over HTTP. It owns no state beyond its metrics;
// everything durable lives behind the ledger.
type Server struct {
	ledger  *ledger.Ledger
	logger  *zap.Logger
	metrics *metrics
	reg     *prometheus.Registry
}

type metrics struct {
	requests       *prometheus.CounterVec
	quotes         *prometheus.CounterVec
	paymentsOK     prometheus.Counter
	roundsAdvanced prometheus.Counter
}

// NewServer builds a server over a ledger. Each server carries its own
// metrics registry so two instances never fight over collector names.
func NewServer(l *ledger.Ledger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Server{
		ledger: l,
		logger: logger,
		reg:    reg,
		metrics: &metrics{
			requests: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "pennivault_http_requests_total",
				Help: "HTTP requests by route and status code.",
			}, []string{"route", "status"}),
			quotes: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "pennivault_quotes_total",
				Help: "Quotes served by product.",
			}, []string{"product"}),
			paymentsOK: factory.NewCounter(prometheus.CounterOpts{
				Name: "pennivault_payments_applied_total",
				Help: "Installment payments successfully applied.",
			}),
			roundsAdvanced: factory.NewCounter(prometheus.CounterOpts{
				Name: "pennivault_group_rounds_advanced_total",
				Help: "Rotating group rounds advanced.",
			}),
		},
	}
}

// Router wires every route. Mounted at / by the serve command and by tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})).Methods("GET")

	r.HandleFunc("/quotes/installment", s.quoteInstallmentHandler).Methods("POST")
	r.HandleFunc("/quotes/lock", s.quoteLockHandler).Methods("POST")
	r.HandleFunc("/quotes/goal", s.quoteGoalHandler).Methods("POST")

	r.HandleFunc("/plans", s.createPlanHandler).Methods("POST")
	r.HandleFunc("/plans/{id}", s.getPlanHandler).Methods("GET")
	r.HandleFunc("/plans/{id}/payments", s.applyPaymentHandler).Methods("POST")

	r.HandleFunc("/locks", s.createLockHandler).Methods("POST")
	r.HandleFunc("/locks/{id}", s.getLockHandler).Methods("GET")
	r.HandleFunc("/locks/{id}/break-quote", s.breakQuoteHandler).Methods("GET")
	r.HandleFunc("/locks/{id}/break", s.breakLockHandler).Methods("POST")
	r.HandleFunc("/locks/{id}/mature", s.matureLockHandler).Methods("POST")

	r.HandleFunc("/groups", s.createGroupHandler).Methods("POST")
	r.HandleFunc("/groups/{id}", s.getGroupHandler).Methods("GET")
	r.HandleFunc("/groups/{id}/schedule", s.groupScheduleHandler).Methods("GET")
	r.HandleFunc("/groups/{id}/join", s.joinGroupHandler).Methods("POST")
	r.HandleFunc("/groups/{id}/contribute", s.contributeHandler).Methods("POST")
	r.HandleFunc("/groups/{id}/advance", s.advanceRoundHandler).Methods("POST")

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
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
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.requests.WithLabelValues(route, http.StatusText(rec.status)).Inc()
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// statusForError maps the sentinel taxonomy onto HTTP status codes. Unknown
// errors are internal.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrPlanNotFound),
		errors.Is(err, domain.ErrLockNotFound),
		errors.Is(err, domain.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidParameters),
		errors.Is(err, domain.ErrAmountMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, domain.ErrGroupFull),
		errors.Is(err, domain.ErrRotationNotReady),
		errors.Is(err, domain.ErrEarlyExitNotPermitted),
		errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
