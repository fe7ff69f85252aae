package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/auth"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ctxKey struct{}

// TokenParser проверяет access-токен.
type TokenParser interface {
	Parse(token string) (*auth.Identity, error)
}

// Authenticate пропускает запрос только с валидным Bearer-токеном и кладёт вызывающего в контекст.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				w.Header().Set("WWW-Authenticate", `Bearer`)
				WriteError(w, e.ErrUnauthorized)
				return
			}

			identity, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				WriteError(w, err)
				return
			}

			caller := usecase.NewCaller(identity.ID, domain.Role(identity.Role))
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, caller)))
		})
	}
}

// AdminOnly ставится после Authenticate.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			WriteError(w, e.ErrUnauthorized)
			return
		}
		if !caller.IsAdmin() {
			WriteError(w, e.ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func CallerFromContext(ctx context.Context) (usecase.Caller, bool) {
	caller, ok := ctx.Value(ctxKey{}).(usecase.Caller)
	return caller, ok
}

// Metrics HTTP-метрики Prometheus.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// Middleware считает запросы по шаблону маршрута, а не по фактическому пути.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := routePattern(r)
		m.requests.WithLabelValues(r.Method, path, strconv.Itoa(status(ww))).Inc()
		m.duration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// RequestLogger пишет строку лога на каждый запрос. 5xx уходят в error, 4xx в warn.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			code := status(ww)
			l := log.With(
				"req_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", code,
				"dur_ms", time.Since(start).Milliseconds(),
				"resp_bytes", ww.BytesWritten(),
			)

			switch {
			case code >= http.StatusInternalServerError:
				l.Errorf(nil, "http_request")
			case code >= http.StatusBadRequest:
				l.Warnf("http_request")
			default:
				l.Infof("http_request")
			}
		})
	}
}

func status(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
