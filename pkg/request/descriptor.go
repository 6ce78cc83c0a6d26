package request

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// Descriptor is a fully built HTTP request: method, absolute URL, headers
// and an optional JSON body. It is immutable; accessors return copies.
type Descriptor struct {
	method string
	url    string
	header http.Header
	body   []byte
}

// NewDescriptor creates a descriptor from its parts. The header and body
// are copied.
func NewDescriptor(method, url string, header http.Header, body []byte) Descriptor {
	return Descriptor{
		method: method,
		url:    url,
		header: header.Clone(),
		body:   bytes.Clone(body),
	}
}

// Method returns the HTTP method.
func (d Descriptor) Method() string { return d.method }

// URL returns the absolute request URL including the query string.
func (d Descriptor) URL() string { return d.url }

// Header returns a copy of the request headers.
func (d Descriptor) Header() http.Header {
	if d.header == nil {
		return http.Header{}
	}
	return d.header.Clone()
}

// Body returns a copy of the encoded body, or nil.
func (d Descriptor) Body() []byte { return bytes.Clone(d.body) }

// HasBody reports whether the descriptor carries a body.
func (d Descriptor) HasBody() bool { return d.body != nil }

// BodyReader returns a fresh reader over the body, or nil when there is
// none. Each attempt of a retried request needs its own reader.
func (d Descriptor) BodyReader() io.Reader {
	if d.body == nil {
		return nil
	}
	return bytes.NewReader(d.body)
}

// HTTPRequest builds a standard library request bound to ctx with a fresh
// body reader.
func (d Descriptor) HTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, d.method, d.url, d.BodyReader())
	if err != nil {
		return nil, err
	}
	req.Header = d.Header()
	return req, nil
}
