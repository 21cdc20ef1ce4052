package middleware

import (
	"fmt"
	"net/http"

	"github.com/omni/bridge-relay/logging"
)

func NewRecovererMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger := logging.LoggerFromContext(r.Context())
					logger.WithField("panic", fmt.Sprintf("%v", rvr)).Error("recovered from panic in http handler")
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
