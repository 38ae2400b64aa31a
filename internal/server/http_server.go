package server

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/oggyb/matchbox/internal/config"
	"github.com/oggyb/matchbox/internal/metrics"
)

// NewRouter builds the REST surface: health, metrics, the websocket message
// feed and every mounted route group. ws may be nil.
func NewRouter(cfg *config.Config, log *slog.Logger, limiter *RateLimiter, ws *WSHandler, mounts ...Mount) http.Handler {
	r := mux.NewRouter()
	r.Use(RequestLogging(log), metrics.InstrumentHandler)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	if ws != nil {
		r.HandleFunc("/ws/messages", ws.Connect).Methods(http.MethodGet)
	}

	for _, m := range mounts {
		sub := r.PathPrefix(m.Prefix).Subrouter()
		if m.Limited && limiter != nil {
			sub.Use(limiter.Except(m.Exempt...))
		}
		m.Routes.Register(sub)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Yoomoney-Signature"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// NewHTTPServer wraps handler in an http.Server bound to the configured address.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// RequestLogging logs method, route, status and duration of each request.
func RequestLogging(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &loggingRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			}
			if rec.status >= http.StatusInternalServerError {
				log.Error("http request", attrs...)
				return
			}
			log.Info("http request", attrs...)
		})
	}
}

type loggingRecorder struct {
	http.ResponseWriter
	status int
}

func (r *loggingRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *loggingRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
