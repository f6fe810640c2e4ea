package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

// ServiceTokenHeader carries the shared secret on service-to-service calls.
const ServiceTokenHeader = "X-Internal-Token"

// RequireServiceToken admits only requests presenting token in ServiceTokenHeader.
// User credentials are not accepted. An empty token rejects everything.
func RequireServiceToken(token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(strings.TrimSpace(r.Header.Get(ServiceTokenHeader)))
			if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
				reject(w, r, fmt.Errorf("%w: service token required", ErrUnauthenticated))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
