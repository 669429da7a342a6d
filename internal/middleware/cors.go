package middleware

import "net/http"

// CORS allows the browser client (served from a different origin during
// development) to call the API. Permissive by design — the API's security
// boundary is the bearer token, not the origin, and no cookies are in play
// so there is nothing for a cross-site request to ride on.
//
// Preflight OPTIONS requests are answered here and never reach the router.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
