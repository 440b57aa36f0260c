package middleware

import (
	"net/http"

	"github.com/templui/folio/internal/config"
	"github.com/templui/folio/internal/ctxkeys"
)

// Config makes the app config, minus secrets, available to handlers.
func Config(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ctxkeys.WithConfig(r.Context(), cfg.Sanitized())))
		})
	}
}
