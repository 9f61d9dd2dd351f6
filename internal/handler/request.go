// Package handler is the Lambda side of the proxy: it turns API Gateway proxy
// events into a Request, routes it by exact path, and serializes the Response
// back into the proxy envelope.
package handler

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Request is the normalized view of an inbound proxy event.
type Request struct {
	Method  string
	Path    string
	Body    *string // nil when the event carries no body
	Query   map[string]string
	Headers map[string]string
}

// Response is what a route produces before it is wrapped in the envelope.
type Response struct {
	StatusCode  int
	Body        string
	ContentType string
}

// ParseEvent normalizes ev. Missing query and header maps become empty maps
// and base64 bodies are decoded.
func ParseEvent(ev events.APIGatewayProxyRequest) (Request, error) {
	req := Request{
		Method:  ev.HTTPMethod,
		Path:    ev.Path,
		Query:   ev.QueryStringParameters,
		Headers: ev.Headers,
	}
	if req.Query == nil {
		req.Query = map[string]string{}
	}
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}

	if ev.Body != "" {
		body := ev.Body
		if ev.IsBase64Encoded {
			raw, err := base64.StdEncoding.DecodeString(ev.Body)
			if err != nil {
				return req, fmt.Errorf("decoding base64 body: %w", err)
			}
			body = string(raw)
		}
		req.Body = &body
	}
	return req, nil
}

// Header returns the first header whose name matches key case-insensitively.
func (r Request) Header(key string) string {
	if v, ok := r.Headers[key]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
