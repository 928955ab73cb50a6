package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// accessLogger is the process-wide request logger, a package-level
// variable (a no-op until SetLogger is called) rather than a logger
// threaded through every call.
var accessLogger = zap.NewNop().Sugar()

// SetLogger swaps the package-level access logger, called once from main
// after zap.NewProduction() succeeds.
func SetLogger(l *zap.SugaredLogger) { accessLogger = l }

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		accessLogger.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				accessLogger.Errorw("panic recovered", "path", r.URL.Path, "panic", rec)
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
