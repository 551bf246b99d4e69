package host

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/appfx/internal/logger"
	"github.com/marmos91/appfx/pkg/app"
	"github.com/marmos91/appfx/pkg/identity"
	"github.com/marmos91/appfx/pkg/metrics"
)

// PrincipalHeader names the request principal when the web host runs behind
// an authenticating proxy.
const PrincipalHeader = "X-Remote-User"

// NewRouter builds the web topology's HTTP surface for a.
//
// Middleware, in order: request id, real IP, request logging, metrics,
// panic recovery, bearer token verification when tokens is non-nil, then
// the per-request identity binding when the environment's identity
// strategy is per request.
//
// Routes:
//   - GET /health - Liveness and startup phase
//   - GET /commands/web - Frozen web-command catalog
//   - GET /commands/web/{name} - One web command
//   - GET /commands/desktop - Desktop-command catalog
//   - GET /plugins - Loaded plugins
//   - GET /blocks/{name} - One aggregate block, customized
//   - GET /views/{entity} - Entity view metadata, customized
//   - GET /whoami - The request's identity context
//   - GET /metrics - Prometheus metrics, when enabled
func NewRouter(a *app.App, m metrics.HTTPMetrics, tokens *TokenVerifier) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(requestMetrics(m))
	r.Use(middleware.Recoverer)
	r.Use(bearerAuth(tokens))
	r.Use(identityBinding(a))

	h := &handlers{app: a, started: time.Now()}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})
	r.Get("/health", h.health)

	r.Route("/commands", func(r chi.Router) {
		r.Get("/web", h.listWebCommands)
		r.Get("/web/{name}", h.getWebCommand)
		r.Get("/desktop", h.listDesktopCommands)
	})
	r.Get("/plugins", h.listPlugins)
	r.Get("/blocks/{name}", h.getBlock)
	r.Get("/views/{entity}", h.getView)
	r.Get("/whoami", h.whoami)

	if mh := metrics.Handler(); mh != nil {
		r.Method(http.MethodGet, "/metrics", mh)
	}

	return r
}

// requestLogger logs each request with its id, status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ctx := logger.WithContext(r.Context(), &logger.LogContext{RequestID: requestID, StartTime: start})
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		logArgs := []any{
			"method", r.Method,
			logger.KeyPath, r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.KeyDurationMs, logger.Duration(start),
		}
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			logger.DebugCtx(ctx, "HTTP request completed", logArgs...)
		} else {
			logger.InfoCtx(ctx, "HTTP request completed", logArgs...)
		}
	})
}

// identityBinding defers to the per-request provider's middleware. The
// provider is resolved on every request because startup installs it after
// the router may have been built.
func identityBinding(a *app.App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := a.Environment().IdentityProvider().(*identity.PerRequest); ok {
				p.Middleware(next).ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestMetrics records request counts and latency per route pattern.
func requestMetrics(m metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveRequest(route, r.Method, status, time.Since(start))
		})
	}
}
