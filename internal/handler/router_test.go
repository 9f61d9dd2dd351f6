package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/wanwu/internal/logging"
)

func decodeEcho(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestHandleRootEcho(t *testing.T) {
	h := New(logging.Discard())

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		Path:       "/",
		HTTPMethod: "GET",
		Headers:    map[string]string{},
	})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "en", resp.Headers["Content-Language"])
	assert.Equal(t, "application/json; charset=utf-8", resp.Headers["Content-Type"])
	assert.Equal(t, strconv.Itoa(len([]byte(resp.Body))), resp.Headers["Content-Length"])
	assert.Len(t, resp.Headers, 3)

	echo := decodeEcho(t, resp.Body)
	assert.Equal(t, "/", echo["path"])
	assert.Equal(t, "GET", echo["method"])
	assert.Contains(t, echo, "body")
	assert.Nil(t, echo["body"])
	assert.Equal(t, map[string]interface{}{}, echo["query"])
	assert.Equal(t, map[string]interface{}{}, echo["headers"])
}

func TestHandleUnknownPath(t *testing.T) {
	h := New(logging.Discard())
	ev := events.APIGatewayProxyRequest{Path: "/nope", HTTPMethod: "GET"}

	resp, err := h.Handle(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	root := RootResource(Request{Path: "/nope", Method: "GET", Query: map[string]string{}, Headers: map[string]string{}})
	assert.Equal(t, root.Body, resp.Body)
	assert.Equal(t, "/nope", decodeEcho(t, resp.Body)["path"])
}

func TestHandleEchoesRequestFields(t *testing.T) {
	h := New(logging.Discard())

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		Path:                  "/",
		HTTPMethod:            "POST",
		Body:                  `{"hello":"wörld"}`,
		QueryStringParameters: map[string]string{"page": "2"},
		Headers:               map[string]string{"Accept": "text/html;q=1, */*;q=0.1"},
	})
	require.NoError(t, err)

	echo := decodeEcho(t, resp.Body)
	assert.Equal(t, `{"hello":"wörld"}`, echo["body"])
	assert.Equal(t, map[string]interface{}{"page": "2"}, echo["query"])
	assert.Equal(t, map[string]interface{}{"Accept": "text/html;q=1, */*;q=0.1"}, echo["headers"])
	assert.Equal(t, strconv.Itoa(len(resp.Body)), resp.Headers["Content-Length"])
}

func TestHandleBase64Body(t *testing.T) {
	h := New(logging.Discard())

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		Path:            "/",
		HTTPMethod:      "PUT",
		Body:            base64.StdEncoding.EncodeToString([]byte("raw payload")),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "raw payload", decodeEcho(t, resp.Body)["body"])

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{
		Path:            "/",
		HTTPMethod:      "PUT",
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleLogsAcceptPrecedence(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf)
	log.SetDebugLevel()
	h := New(log)

	_, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		Path:       "/",
		HTTPMethod: "GET",
		Headers:    map[string]string{"accept": "text/plain;q=0.5, text/html"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "accept precedence")
	assert.Contains(t, buf.String(), "text/html")
}

func TestRouterCustomRoute(t *testing.T) {
	r := NewRouter()
	r.Handle("/health", func(Request) Response {
		return Response{StatusCode: 204}
	})

	assert.Equal(t, 204, r.Dispatch(Request{Path: "/health"}).StatusCode)
	assert.Equal(t, 404, r.Dispatch(Request{Path: "/health/"}).StatusCode)
	assert.Equal(t, 200, r.Dispatch(Request{Path: "/"}).StatusCode)
}

func TestSerializeDefaultsContentType(t *testing.T) {
	out := Serialize(Response{StatusCode: 204})
	assert.Equal(t, "text/plain; charset=utf-8", out.Headers["Content-Type"])
	assert.Equal(t, "0", out.Headers["Content-Length"])
}

func TestParseEventEmptyBodyIsAbsent(t *testing.T) {
	req, err := ParseEvent(events.APIGatewayProxyRequest{Path: "/", HTTPMethod: "GET"})
	require.NoError(t, err)
	assert.Nil(t, req.Body)
	assert.NotNil(t, req.Query)
	assert.NotNil(t, req.Headers)
	assert.Equal(t, "", req.Header("Accept"))
}
