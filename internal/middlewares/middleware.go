package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

type MiddlewareHandler struct {
	Logger         *logrus.Logger
	AllowedOrigins []string
}

func NewMiddlewareHandler(logger *logrus.Logger, allowedOrigins []string) *MiddlewareHandler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &MiddlewareHandler{
		Logger:         logger,
		AllowedOrigins: allowedOrigins,
	}
}

func (mh *MiddlewareHandler) Cors(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: mh.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         86400, // 24 hours
	})(next)
}

func (mh *MiddlewareHandler) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		mh.Logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"origin":     r.Header.Get("Origin"),
			"request_id": middleware.GetReqID(r.Context()),
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
		}).Info("request")
	})
}

func (mh *MiddlewareHandler) Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
