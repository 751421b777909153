package middleware

import (
	"net/http"
	"strings"

	"github.com/samber/lo"
)

// CORS allows the configured origins with credentials. "*" allows any origin
// by echoing it back, since browsers reject a wildcard with credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := lo.Contains(origins, "*")
	allowed := lo.SliceToMap(origins, func(o string) (string, struct{}) {
		return strings.TrimRight(o, "/"), struct{}{}
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				_, ok := allowed[origin]
				if allowAll || ok {
					h := w.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Credentials", "true")
					h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
					h.Set("Access-Control-Allow-Headers", lo.Ternary(
						r.Header.Get("Access-Control-Request-Headers") != "",
						r.Header.Get("Access-Control-Request-Headers"),
						"Content-Type, Authorization",
					))
					h.Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
