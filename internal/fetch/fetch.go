// Package fetch provides the HTTP session used for every page request.
//
// The session is shared across all targets of a run. Reuse is append-only
// (headers set once at construction, no per-target mutation), so the same
// client is safe to hand to the whole batch.
package fetch

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/text/encoding/htmlindex"
)

// errBodyLimit caps how much of a non-2xx response body ends up in the error
// message.
const errBodyLimit = 4096

// Session wraps a resty client configured to look like a browser: realistic
// User-Agent and Accept headers, redirect following, fixed request timeout.
type Session struct {
	client *resty.Client
}

// NewSession builds the shared session. timeout applies per request.
func NewSession(timeout time.Duration) *Session {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) "+
			"AppleWebKit/537.36 (KHTML, like Gecko) "+
			"Chrome/120.0.0.0 Safari/537.36")
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")
	client.SetHeader("Connection", "keep-alive")
	return &Session{client: client}
}

// Fetch GETs url and returns the page body as UTF-8.
//
// Errors:
//   - transport errors and timeouts are returned wrapped;
//   - non-2xx statuses return an error carrying the status code and up to
//     4KB of the response body.
//
// Pages whose Content-Type declares a non-UTF-8 charset are transcoded via
// x/text before being returned; undecodable charsets degrade to the raw
// bytes rather than failing the fetch.
func (s *Session) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("http get %s: %w", url, err)
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		body := resp.Body()
		if len(body) > errBodyLimit {
			body = body[:errBodyLimit]
		}
		return "", fmt.Errorf("http status %d: %s", code, strings.TrimSpace(string(body)))
	}

	return decodeBody(resp.Body(), resp.Header().Get("Content-Type")), nil
}

// decodeBody transcodes body to UTF-8 according to the charset declared in
// contentType. Missing, UTF-8, or unknown charsets return the body as-is.
func decodeBody(body []byte, contentType string) string {
	if contentType == "" {
		return string(body)
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(body)
	}

	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return string(body)
	}

	enc, err := htmlindex.Get(charset)
	if err != nil || enc == nil {
		return string(body)
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
