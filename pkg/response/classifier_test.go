package response

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
	"github.com/gtrends/gtrends-go/pkg/transport"
)

func envelope(status int, body string) *transport.Envelope {
	return &transport.Envelope{
		StatusCode: status,
		Reason:     http.StatusText(status),
		Proto:      "HTTP/1.1",
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(body),
	}
}

func TestIsSuccessful(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{199, false},
		{200, true},
		{204, true},
		{299, true},
		{300, false},
		{404, false},
		{503, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSuccessful(&transport.Envelope{StatusCode: tt.status}), "status %d", tt.status)
	}
}

func TestProcessSuccess(t *testing.T) {
	tests := []struct {
		name string
		env  *transport.Envelope
		want map[string]any
	}{
		{"object", envelope(200, `{"items":[{"title":"go"}]}`), map[string]any{"items": []any{map[string]any{"title": "go"}}}},
		{"empty body", envelope(200, ""), map[string]any{}},
		{"whitespace body", envelope(204, "  \n"), map[string]any{}},
		{"list is wrapped", envelope(200, `[1,2]`), map[string]any{"data": []any{1.0, 2.0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Process(tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessMalformedJSON(t *testing.T) {
	_, err := Process(envelope(200, `{"items": [`))

	var ae *gterrors.APIError
	require.ErrorAs(t, err, &ae)
	assert.True(t, strings.HasPrefix(ae.Message, "Failed to decode JSON response: "), ae.Message)
	assert.Equal(t, `{"items": [`, string(ae.Body))
	assert.Equal(t, 200, ae.StatusCode)
	assert.NotNil(t, ae.Cause)
}

func TestProcessFailure(t *testing.T) {
	tests := []struct {
		name        string
		env         *transport.Envelope
		wantMessage string
		wantCode    string
	}{
		{
			name:        "error field",
			env:         envelope(400, `{"error":"Invalid region","code":"bad_region"}`),
			wantMessage: "Invalid region",
			wantCode:    "bad_region",
		},
		{
			name:        "message field",
			env:         envelope(422, `{"message":"Query too long"}`),
			wantMessage: "Query too long",
			wantCode:    "422",
		},
		{
			name:        "error takes precedence over message",
			env:         envelope(400, `{"error":"first","message":"second"}`),
			wantMessage: "first",
			wantCode:    "400",
		},
		{
			name:        "nested error object",
			env:         envelope(403, `{"error":{"message":"Quota exceeded","code":4031}}`),
			wantMessage: "Quota exceeded",
			wantCode:    "4031",
		},
		{
			name:        "non JSON body falls back to reason phrase",
			env:         envelope(404, `<html>Not here</html>`),
			wantMessage: "Not Found",
			wantCode:    "404",
		},
		{
			name:        "empty body",
			env:         envelope(503, ``),
			wantMessage: "Service Unavailable",
			wantCode:    "503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(tt.env)

			var ae *gterrors.APIError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.env.StatusCode, ae.StatusCode)
			assert.Equal(t, tt.wantMessage, ae.Message)
			assert.Equal(t, tt.wantCode, ae.APICode)
			assert.Equal(t, string(tt.env.Body), string(ae.Body))
		})
	}
}

func TestProcessFailureCapturesDetails(t *testing.T) {
	env := envelope(422, `{"error":"Invalid parameters","errors":{"q":["required"]},"details":{"hint":"add q"},"debug_id":"dbg-1"}`)
	env.Header.Set("X-Request-Id", "req-9")

	_, err := Process(env)

	var ae *gterrors.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, map[string]any{"q": []any{"required"}}, ae.Errors)
	assert.Equal(t, map[string]any{"hint": "add q"}, ae.Details)
	assert.Equal(t, "dbg-1", ae.DebugID)
	assert.Equal(t, "Invalid parameters", ae.Data["error"])
	assert.Equal(t, "req-9", ae.Fields()["request_id"])
}

func TestProcessFailureMatchesSentinels(t *testing.T) {
	_, err := Process(envelope(429, `{"error":"slow down"}`))
	assert.True(t, errors.Is(err, gterrors.ErrRateLimited))

	_, err = Process(envelope(500, `{}`))
	assert.True(t, errors.Is(err, gterrors.ErrServer))
}

func TestProcessUnknownStatusWithoutReason(t *testing.T) {
	_, err := Process(&transport.Envelope{StatusCode: 599})

	var ae *gterrors.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "API request failed", ae.Message)
}

func TestDebugInfo(t *testing.T) {
	body := strings.Repeat("a", 800)
	env := envelope(200, body)

	before := time.Now()
	info := DebugInfo(env)

	assert.Equal(t, 200, info.StatusCode)
	assert.Equal(t, "OK", info.ReasonPhrase)
	assert.Equal(t, "1.1", info.Protocol)
	assert.Equal(t, []string{"application/json"}, info.Headers["Content-Type"])
	assert.Equal(t, 800, info.BodySize)
	assert.Equal(t, strings.Repeat("a", 500)+"...", info.BodyPreview)
	assert.False(t, info.Timestamp.Before(before))
}

func TestDebugInfoShortBody(t *testing.T) {
	info := DebugInfo(envelope(404, `{"error":"x"}`))
	assert.Equal(t, `{"error":"x"}`, info.BodyPreview)
	assert.Equal(t, 13, info.BodySize)
}
