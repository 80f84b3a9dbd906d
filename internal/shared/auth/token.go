package auth

import (
	"net/http"
	"strings"
)

// ExtractBearerTokenFromHeader pulls the JWT out of an Authorization header
// value, accepting any casing of the "Bearer " prefix.
func ExtractBearerTokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	const bearerPrefix = "bearer "
	if strings.HasPrefix(strings.ToLower(header), bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return ""
}

// ExtractToken looks for a token in the Authorization header first, then the
// named query parameter ("token" when empty). WebSocket clients cannot set
// headers from the browser, so the query fallback matters there.
func ExtractToken(r *http.Request, queryParam string) string {
	if r == nil {
		return ""
	}
	if token := ExtractBearerTokenFromHeader(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if queryParam == "" {
		queryParam = "token"
	}
	if r.URL == nil {
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get(queryParam))
}
