package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/raywall/wanwu/internal/logging"
)

// Route produces a Response for a Request.
type Route func(Request) Response

// Router dispatches on the exact request path.
type Router struct {
	routes   map[string]Route
	notFound Route
}

// NewRouter returns a router serving RootResource at "/" and NotFound elsewhere.
func NewRouter() *Router {
	r := &Router{routes: make(map[string]Route), notFound: NotFound}
	r.Handle("/", RootResource)
	return r
}

// Handle registers route for path.
func (r *Router) Handle(path string, route Route) {
	r.routes[path] = route
}

// Dispatch runs the route registered for req.Path.
func (r *Router) Dispatch(req Request) Response {
	if route, ok := r.routes[req.Path]; ok {
		return route(req)
	}
	return r.notFound(req)
}

type echo struct {
	Path    string            `json:"path"`
	Method  string            `json:"method"`
	Body    *string           `json:"body"`
	Query   map[string]string `json:"query"`
	Headers map[string]string `json:"headers"`
}

// RootResource echoes the request back as JSON.
func RootResource(req Request) Response {
	payload, err := json.Marshal(echo{
		Path:    req.Path,
		Method:  req.Method,
		Body:    req.Body,
		Query:   req.Query,
		Headers: req.Headers,
	})
	if err != nil {
		return errorResponse(http.StatusInternalServerError, err)
	}
	return Response{StatusCode: http.StatusOK, Body: string(payload), ContentType: "application/json"}
}

// NotFound is RootResource with a 404 status.
func NotFound(req Request) Response {
	resp := RootResource(req)
	if resp.StatusCode == http.StatusOK {
		resp.StatusCode = http.StatusNotFound
	}
	return resp
}

func errorResponse(status int, err error) Response {
	payload, _ := json.Marshal(map[string]string{"message": err.Error()})
	return Response{StatusCode: status, Body: string(payload), ContentType: "application/json"}
}

// Serialize wraps resp in the proxy envelope.
func Serialize(resp Response) events.APIGatewayProxyResponse {
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "text/plain"
	}
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Headers: map[string]string{
			"Content-Language": "en",
			"Content-Length":   strconv.Itoa(len(resp.Body)),
			"Content-Type":     contentType + "; charset=utf-8",
		},
	}
}

// Handler is the Lambda entry point.
type Handler struct {
	Router *Router
	Log    logging.LogManager
}

// New returns a Handler with the default routes.
func New(log logging.LogManager) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{Router: NewRouter(), Log: log}
}

// Handle answers one proxy event. Failures are reported in the response, so
// the returned error is always nil.
func (h *Handler) Handle(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := ParseEvent(ev)
	if err != nil {
		h.Log.Warn("bad request", "path", ev.Path, "err", err)
		return Serialize(errorResponse(http.StatusBadRequest, err)), nil
	}

	if accept := req.Header("Accept"); accept != "" {
		h.Log.Debug("accept precedence", "types", ParseAccept(accept))
	}

	resp := h.Router.Dispatch(req)
	h.Log.Info("request", "method", req.Method, "path", req.Path, "status", resp.StatusCode)
	return Serialize(resp), nil
}
