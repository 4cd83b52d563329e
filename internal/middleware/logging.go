package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type (
	statusWriter struct {
		http.ResponseWriter
		Status int
	}

	Middleware func(http.Handler, *zap.SugaredLogger) http.Handler
)

func (w *statusWriter) WriteHeader(status int) {
	w.Status = status
	w.ResponseWriter.WriteHeader(status)
}

func WithRequestLogging(h http.Handler, sugar *zap.SugaredLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, Status: http.StatusOK}

		h.ServeHTTP(sw, r)

		sugar.Infow("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.Status,
			"duration", time.Since(start),
		)
	})
}
