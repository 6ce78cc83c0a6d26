// Package response classifies transport envelopes into decoded data or
// typed errors.
//
// Classification is stateless: a 2xx envelope yields its decoded JSON
// object (an empty body yields an empty result), anything else yields an
// *errors.APIError carrying the status, the server's message and the raw
// body.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
	"github.com/gtrends/gtrends-go/pkg/transport"
)

// previewLimit is the number of body bytes kept in [Info.BodyPreview].
const previewLimit = 500

// IsSuccessful reports whether the status is in [200, 300).
func IsSuccessful(env *transport.Envelope) bool {
	return env.StatusCode >= 200 && env.StatusCode < 300
}

// Process decodes a successful envelope or converts a failed one into an
// *errors.APIError. JSON values that are not objects are returned under
// the "data" key.
func Process(env *transport.Envelope) (map[string]any, error) {
	if !IsSuccessful(env) {
		return nil, ErrorDetail(env)
	}

	if len(bytes.TrimSpace(env.Body)) == 0 {
		return map[string]any{}, nil
	}

	var v any
	if err := json.Unmarshal(env.Body, &v); err != nil {
		return nil, &gterrors.APIError{
			Message:    "Failed to decode JSON response: " + err.Error(),
			StatusCode: env.StatusCode,
			Reason:     env.Reason,
			Body:       bytes.Clone(env.Body),
			Cause:      err,
		}
	}
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	return map[string]any{"data": v}, nil
}

// ErrorDetail builds the APIError for a failed envelope. The message is
// taken from the body's "error" field, then "message", then the reason
// phrase.
func ErrorDetail(env *transport.Envelope) *gterrors.APIError {
	reason := env.Reason
	if reason == "" {
		reason = http.StatusText(env.StatusCode)
	}

	e := &gterrors.APIError{
		Message:    reason,
		StatusCode: env.StatusCode,
		Reason:     reason,
		APICode:    strconv.Itoa(env.StatusCode),
		Body:       bytes.Clone(env.Body),
	}
	if e.Message == "" {
		e.Message = "API request failed"
	}
	if id := env.Header.Get("X-Request-Id"); id != "" {
		e.Context = gterrors.Fields{"request_id": id}
	}

	var data map[string]any
	if err := json.Unmarshal(env.Body, &data); err != nil || data == nil {
		return e
	}
	e.Data = data

	if msg := messageOf(data); msg != "" {
		e.Message = msg
	}
	if code, ok := data["code"]; ok && code != nil {
		e.APICode = scalar(code)
	} else if nested, ok := data["error"].(map[string]any); ok && nested["code"] != nil {
		e.APICode = scalar(nested["code"])
	}
	e.Errors = data["errors"]
	e.Details = data["details"]
	if id, ok := data["debug_id"]; ok && id != nil {
		e.DebugID = scalar(id)
	}
	return e
}

func messageOf(data map[string]any) string {
	switch v := data["error"].(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if m, ok := v["message"].(string); ok && m != "" {
			return m
		}
	}
	if m, ok := data["message"].(string); ok && m != "" {
		return m
	}
	return ""
}

func scalar(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// Info is a diagnostic summary of an envelope.
type Info struct {
	StatusCode   int                 `json:"status_code"`
	ReasonPhrase string              `json:"reason_phrase"`
	Protocol     string              `json:"protocol_version"`
	Headers      map[string][]string `json:"headers"`
	BodySize     int                 `json:"body_size"`
	BodyPreview  string              `json:"body_preview"`
	Timestamp    time.Time           `json:"timestamp"`
}

// DebugInfo summarizes env. Bodies longer than 500 bytes are truncated in
// the preview and suffixed with "...".
func DebugInfo(env *transport.Envelope) Info {
	preview := string(env.Body)
	if len(env.Body) > previewLimit {
		preview = string(env.Body[:previewLimit]) + "..."
	}
	headers := map[string][]string{}
	for k, v := range env.Header {
		headers[k] = append([]string(nil), v...)
	}
	return Info{
		StatusCode:   env.StatusCode,
		ReasonPhrase: env.Reason,
		Protocol:     strings.TrimPrefix(env.Proto, "HTTP/"),
		Headers:      headers,
		BodySize:     len(env.Body),
		BodyPreview:  preview,
		Timestamp:    time.Now(),
	}
}
