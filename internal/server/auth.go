package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// authorized reports whether r carries token as a bearer credential. An
// empty token rejects every request.
func authorized(r *http.Request, token string) bool {
	header := r.Header.Get("Authorization")
	if token == "" || !strings.HasPrefix(header, bearerPrefix) {
		return false
	}
	got := strings.TrimPrefix(header, bearerPrefix)
	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}
