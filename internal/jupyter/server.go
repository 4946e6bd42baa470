// Package jupyter holds the domain types shared by session discovery,
// matching, and execution: the servers being searched and the session
// records they expose.
package jupyter

import (
	"net/url"
	"strings"
)

// Server identifies one Jupyter server to query for sessions.
// Identity is the normalized BaseURL; Token and RootDir are optional.
type Server struct {
	BaseURL string
	Token   string
	RootDir string
}

// NormalizeBaseURL strips trailing slashes so URLs compare and join cleanly.
func NormalizeBaseURL(raw string) string {
	return strings.TrimRight(raw, "/")
}

// WithToken appends the token as a query parameter when present.
func WithToken(rawURL, token string) string {
	if token == "" {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + url.Values{"token": {token}}.Encode()
}
