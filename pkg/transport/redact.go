package transport

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gtrends/gtrends-go/pkg/request"
)

const redacted = "[REDACTED]"

// sensitiveHeaders never reach the log in clear text.
var sensitiveHeaders = map[string]bool{
	http.CanonicalHeaderKey(request.HeaderAPIKey): true,
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
}

// sensitiveParams are query parameters masked in logged URLs.
var sensitiveParams = map[string]bool{
	"api_key":      true,
	"apikey":       true,
	"key":          true,
	"token":        true,
	"access_token": true,
}

// maxLoggedBody bounds the body excerpt written to debug records.
const maxLoggedBody = 2048

func (t *Transport) logRequest(d request.Descriptor) {
	if !t.debug {
		return
	}
	t.logger.Debug("api request",
		"method", d.Method(),
		"url", t.redactURL(d.URL()),
		"headers", t.redactHeaders(d.Header()),
		"body", t.redactBody(d.Body()))
}

func (t *Transport) logResponse(d request.Descriptor, env *Envelope) {
	if !t.debug {
		return
	}
	t.logger.Debug("api response",
		"method", d.Method(),
		"url", t.redactURL(d.URL()),
		"status_code", env.StatusCode,
		"reason", env.Reason,
		"headers", t.redactHeaders(env.Header),
		"body", t.redactBody(env.Body))
}

// redactHeaders flattens h for logging with secrets masked.
func (t *Transport) redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if sensitiveHeaders[http.CanonicalHeaderKey(k)] {
			out[k] = redacted
			continue
		}
		out[k] = t.redactString(strings.Join(vs, ", "))
	}
	return out
}

// redactURL masks sensitive query parameters and the configured API key.
func (t *Transport) redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return t.redactString(raw)
	}
	if u.User != nil {
		u.User = url.User(redacted)
	}
	q := u.Query()
	changed := false
	for k := range q {
		if sensitiveParams[strings.ToLower(k)] {
			q.Set(k, redacted)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return t.redactString(u.String())
}

// redactBody masks the API key before cutting, so a key straddling the
// cut never leaves a prefix behind.
func (t *Transport) redactBody(body []byte) string {
	s := t.redactString(string(body))
	if len(s) > maxLoggedBody {
		s = s[:maxLoggedBody] + "..."
	}
	return s
}

func (t *Transport) redactString(s string) string {
	if t.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, t.apiKey, redacted)
}
