package middleware

import (
	"net/http"
	"time"

	"github.com/Dosada05/team-hub/logger"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger кладёт в контекст логгер запроса и пишет строку доступа
// после ответа.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLog := log.With(
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			ctx := logger.WithContext(r.Context(), reqLog)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				fields := []zap.Field{
					zap.Int("status", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote_addr", r.RemoteAddr),
				}
				switch {
				case status >= 500:
					reqLog.Error("request completed", fields...)
				case status >= 400:
					reqLog.Warn("request completed", fields...)
				default:
					reqLog.Info("request completed", fields...)
				}
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}
