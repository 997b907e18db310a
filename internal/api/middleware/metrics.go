package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// HTTPCollector приемник метрик HTTP запросов
type HTTPCollector interface {
	ObserveHTTPRequest(service, method, route string, status int, duration time.Duration)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// MetricsMiddleware пишет длительность и статус каждого запроса
// route берется из шаблона mux, чтобы не плодить метки на каждый ID
func MetricsMiddleware(collector HTTPCollector, serviceName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := "unknown"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			collector.ObserveHTTPRequest(serviceName, r.Method, route, rec.status, time.Since(start))
		})
	}
}
