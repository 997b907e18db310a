package middleware

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/pkg/logger"
)

// AccessLog пишет строку на каждый запрос с request_id из RequestID.
// Должен стоять после RequestID
func AccessLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			reqLog := log.With("request_id", GetRequestID(r.Context()))
			duration := time.Since(start)
			switch {
			case rec.status >= http.StatusInternalServerError:
				reqLog.Error("%s %s - %d in %s", r.Method, r.URL.Path, rec.status, duration)
			case rec.status >= http.StatusBadRequest:
				reqLog.Warn("%s %s - %d in %s", r.Method, r.URL.Path, rec.status, duration)
			default:
				reqLog.Info("%s %s - %d in %s", r.Method, r.URL.Path, rec.status, duration)
			}
		})
	}
}
