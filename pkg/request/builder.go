// Package request turns endpoint names and parameters into immutable
// request descriptors.
//
// A [Builder] is bound to a configuration snapshot. It resolves endpoint
// names against the base URI, encodes query parameters, and merges headers
// in a fixed order: built-in defaults, configured headers, the API key, and
// finally the caller's headers, which win on conflict.
package request

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gtrends/gtrends-go/pkg/buildinfo"
	"github.com/gtrends/gtrends-go/pkg/config"
	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
)

// Header names set by the builder.
const (
	HeaderAPIKey    = "X-API-Key"
	HeaderRequestID = "X-Request-Id"
)

// Builder creates request descriptors from a configuration snapshot.
type Builder struct {
	baseURI string
	apiKey  string
	headers map[string]string
}

// NewBuilder creates a builder for the given settings.
func NewBuilder(s config.Settings) *Builder {
	headers := make(map[string]string, len(s.Headers))
	for k, v := range s.Headers {
		headers[k] = v
	}
	return &Builder{
		baseURI: s.BaseURI,
		apiKey:  s.APIKey,
		headers: headers,
	}
}

// BuildURL joins the base URI and endpoint with exactly one slash.
func (b *Builder) BuildURL(endpoint string) string {
	return strings.TrimRight(b.baseURI, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// MergeHeaders returns the default headers overlaid with custom. Every
// descriptor gets a fresh X-Request-Id unless custom supplies one.
func (b *Builder) MergeHeaders(custom map[string]string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("User-Agent", buildinfo.UserAgent())
	h.Set(HeaderRequestID, uuid.NewString())
	for k, v := range b.headers {
		h.Set(k, v)
	}
	if b.apiKey != "" {
		h.Set(HeaderAPIKey, b.apiKey)
	}
	for k, v := range custom {
		h.Set(k, v)
	}
	return h
}

// CreateGetRequest builds a GET descriptor with params encoded in the
// query string.
func (b *Builder) CreateGetRequest(endpoint string, params map[string]any, headers map[string]string) Descriptor {
	url := AddQueryParams(b.BuildURL(endpoint), params)
	return Descriptor{
		method: http.MethodGet,
		url:    url,
		header: b.MergeHeaders(headers),
	}
}

// CreatePostRequest builds a POST descriptor with data encoded as JSON.
// A nil data sends no body. Encoding failures are reported as a
// *errors.ValidationError before any I/O.
func (b *Builder) CreatePostRequest(endpoint string, data any, headers map[string]string) (Descriptor, error) {
	var body []byte
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			e := gterrors.NewValidation("Failed to encode request data as JSON", err.Error())
			e.Cause = err
			return Descriptor{}, e
		}
		body = encoded
	}
	return Descriptor{
		method: http.MethodPost,
		url:    b.BuildURL(endpoint),
		header: b.MergeHeaders(headers),
		body:   body,
	}, nil
}
