package auth

import (
	"net/http"
	"strings"
)

var tokenSchemes = []string{"Token ", "Bearer "}

// TokenFromRequest extracts the session token from the Authorization header,
// accepting both the "Token" and "Bearer" schemes.
func TokenFromRequest(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	for _, scheme := range tokenSchemes {
		if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
			return strings.TrimSpace(header[len(scheme):])
		}
	}
	return ""
}
