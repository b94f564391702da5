package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appauth "github.com/bryanwahyu/admissions-desk/internal/application/auth"
	appnotify "github.com/bryanwahyu/admissions-desk/internal/application/notify"
	appreview "github.com/bryanwahyu/admissions-desk/internal/application/review"
	appscreens "github.com/bryanwahyu/admissions-desk/internal/application/screens"
	"github.com/bryanwahyu/admissions-desk/internal/domain/ai"
	"github.com/bryanwahyu/admissions-desk/internal/domain/review"
	"github.com/bryanwahyu/admissions-desk/internal/domain/screens"
	"github.com/bryanwahyu/admissions-desk/internal/domain/session"
	"github.com/bryanwahyu/admissions-desk/internal/infra/upstream"
	"github.com/bryanwahyu/admissions-desk/internal/middleware"
)

// Deps is everything the gateway routes need.
type Deps struct {
	Screens  *appscreens.Service
	Auth     *appauth.Service
	Review   *appreview.Service
	Notify   *appnotify.Service
	Sessions session.Store

	Checkers       map[string]middleware.HealthChecker
	LoginLimiter   *middleware.RateLimiter
	AllowedOrigins []string
	Logger         *slog.Logger
}

type Router struct {
	screensSvc *appscreens.Service
	authSvc    *appauth.Service
	reviewSvc  *appreview.Service
	notifySvc  *appnotify.Service
	log        *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	r := &Router{
		screensSvc: d.Screens,
		authSvc:    d.Auth,
		reviewSvc:  d.Review,
		notifySvc:  d.Notify,
		log:        log,
	}
	limiter := d.LoginLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(5, 1)
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Logging(log))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(d.Checkers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.With(middleware.RateLimit(limiter)).Post("/login", r.wrap(r.handleLogin))
		rt.Post("/push-tokens", r.wrap(r.handlePushToken))

		rt.Group(func(rt chi.Router) {
			rt.Use(middleware.SessionAuth(d.Sessions, log))

			rt.Get("/profile", r.wrap(r.handleProfile))
			rt.Post("/logout", r.wrap(r.handleLogout))
			rt.Get("/dashboard", r.wrap(r.handleDashboard))

			rt.Get("/screens", r.wrap(r.handleCatalog))
			rt.Get("/screens/{screen}", r.wrap(r.handleView))
			rt.Post("/screens/{screen}/refresh", r.wrap(r.handleRefresh))
			rt.Get("/screens/{screen}/export.pdf", r.wrap(r.handleExport))

			rt.Get("/applications/{number}", r.wrap(r.handleApplication))
			rt.Get("/applications/{number}/history", r.wrap(r.handleHistory))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			r.log.ErrorContext(req.Context(), "request failed", slog.String("error", err.Error()))
		}
		writeJSON(w, status, map[string]string{"error": msg})
	}
}

// statusFor maps service errors to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, screens.ErrUnknownScreen),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, review.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, middleware.ErrInvalidInput),
		errors.Is(err, session.ErrMissingCredentials),
		errors.Is(err, review.ErrNumberRequired),
		errors.Is(err, appnotify.ErrTokenRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, session.ErrLoginRejected):
		var rej *session.RejectedError
		if errors.As(err, &rej) {
			return http.StatusUnauthorized, rej.Error()
		}
		return http.StatusUnauthorized, session.DefaultRejection
	case errors.Is(err, ai.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "ai quota exceeded"
	case errors.Is(err, upstream.ErrUpstream):
		return http.StatusBadGateway, "admissions service unavailable"
	case errors.Is(err, appscreens.ErrExportDisabled):
		return http.StatusNotImplemented, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(req *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, req.Body, 1<<20)).Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", middleware.ErrInvalidInput, err)
	}
	return nil
}

func screenParam(req *http.Request) (screens.Name, error) {
	return middleware.ValidateScreen(chi.URLParam(req, "screen"))
}
