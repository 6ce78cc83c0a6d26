package request

import (
	"context"
	"io"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtrends/gtrends-go/pkg/buildinfo"
	"github.com/gtrends/gtrends-go/pkg/config"
	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
)

func newBuilder(t *testing.T, overrides map[string]any) *Builder {
	t.Helper()
	s, err := config.New(overrides)
	require.NoError(t, err)
	return NewBuilder(s.Settings())
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		endpoint string
		want     string
	}{
		{"http://h/api/", "/trending", "http://h/api/trending"},
		{"http://h/api", "trending", "http://h/api/trending"},
		{"http://h/api///", "///trending", "http://h/api/trending"},
		{"http://h/api/", "related-topics", "http://h/api/related-topics"},
	}

	for _, tt := range tests {
		t.Run(tt.base+"+"+tt.endpoint, func(t *testing.T) {
			b := newBuilder(t, map[string]any{"base_uri": tt.base})
			assert.Equal(t, tt.want, b.BuildURL(tt.endpoint))
		})
	}
}

func TestAddQueryParams(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		params map[string]any
		want   string
	}{
		{"empty params", "http://h/x", nil, "http://h/x"},
		{"new query", "http://h/x", map[string]any{"q": "go lang", "limit": 10}, "http://h/x?limit=10&q=go+lang"},
		{"existing query", "http://h/x?a=1", map[string]any{"b": "2"}, "http://h/x?a=1&b=2"},
		{"booleans", "http://h/x", map[string]any{"news": true, "old": false}, "http://h/x?news=1&old=0"},
		{"nil skipped", "http://h/x", map[string]any{"geo": nil, "q": "x"}, "http://h/x?q=x"},
		{"list", "http://h/x", map[string]any{"t": []string{"a", "b"}}, "http://h/x?t%5B0%5D=a&t%5B1%5D=b"},
		{"float", "http://h/x", map[string]any{"f": 1.5}, "http://h/x?f=1.5"},
		{"escaping", "http://h/x", map[string]any{"q": "a&b=c"}, "http://h/x?q=a%26b%3Dc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddQueryParams(tt.url, tt.params))
		})
	}
}

func TestMergeHeadersOrder(t *testing.T) {
	b := newBuilder(t, map[string]any{
		"api_key": "k-123",
		"headers": map[string]any{"X-Team": "search", "Accept": "text/plain"},
	})

	h := b.MergeHeaders(map[string]string{"Accept": "application/vnd.trends+json", "X-API-Key": "override"})

	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, buildinfo.UserAgent(), h.Get("User-Agent"))
	assert.Equal(t, "search", h.Get("X-Team"))
	assert.Equal(t, "application/vnd.trends+json", h.Get("Accept"), "caller headers win")
	assert.Equal(t, "override", h.Get(HeaderAPIKey), "caller headers win over the API key")
	assert.NotEmpty(t, h.Get(HeaderRequestID))
}

func TestMergeHeadersWithoutAPIKey(t *testing.T) {
	h := newBuilder(t, nil).MergeHeaders(nil)
	assert.Empty(t, h.Get(HeaderAPIKey))
	assert.Equal(t, "application/json", h.Get("Accept"))
}

func TestRequestIDsAreUnique(t *testing.T) {
	b := newBuilder(t, nil)
	a := b.CreateGetRequest("health", nil, nil)
	c := b.CreateGetRequest("health", nil, nil)
	assert.NotEqual(t, a.Header().Get(HeaderRequestID), c.Header().Get(HeaderRequestID))
}

func TestCreateGetRequest(t *testing.T) {
	b := newBuilder(t, map[string]any{"base_uri": "http://h/api/"})

	d := b.CreateGetRequest("/trending", map[string]any{"region": "US", "limit": 10}, map[string]string{"X-Trace": "1"})

	assert.Equal(t, http.MethodGet, d.Method())
	assert.Equal(t, "http://h/api/trending?limit=10&region=US", d.URL())
	assert.Equal(t, "1", d.Header().Get("X-Trace"))
	assert.False(t, d.HasBody())
	assert.Nil(t, d.BodyReader())
}

func TestCreatePostRequest(t *testing.T) {
	b := newBuilder(t, map[string]any{"base_uri": "http://h/api"})

	d, err := b.CreatePostRequest("comparison", map[string]any{"topics": []string{"a", "b"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, d.Method())
	assert.Equal(t, "http://h/api/comparison", d.URL())
	assert.JSONEq(t, `{"topics":["a","b"]}`, string(d.Body()))

	req, err := d.HTTPRequest(context.Background())
	require.NoError(t, err)
	got, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"topics":["a","b"]}`, string(got))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestCreatePostRequestEncodingFailure(t *testing.T) {
	b := newBuilder(t, nil)

	_, err := b.CreatePostRequest("comparison", map[string]any{"bad": math.Inf(1)}, nil)

	var ve *gterrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Failed to encode request data as JSON", ve.Message)
	assert.NotNil(t, ve.Cause)
}

func TestDescriptorIsImmutable(t *testing.T) {
	h := http.Header{"X-One": []string{"1"}}
	body := []byte(`{"a":1}`)
	d := NewDescriptor(http.MethodPost, "http://h/x", h, body)

	h.Set("X-One", "changed")
	body[0] = '['
	d.Header().Set("X-One", "changed again")
	d.Body()[0] = '['

	assert.Equal(t, "1", d.Header().Get("X-One"))
	assert.Equal(t, `{"a":1}`, string(d.Body()))
}
