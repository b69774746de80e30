// Package httpapi exposes the classifier over HTTP with fasthttp.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baditaflorin/go_comment_classifier/internal/adapters/wire"
	"github.com/baditaflorin/go_comment_classifier/internal/core/domain"
	"github.com/baditaflorin/go_comment_classifier/internal/ports"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// Error messages returned to clients.
const (
	MsgNoJSON           = "No JSON data provided"
	MsgEmptyComment     = "No comment provided or comment is empty"
	MsgModelsNotLoaded  = "Models not loaded properly"
	MsgNotFound         = "Not found"
	MsgMethodNotAllowed = "Method not allowed"
	MsgInternalPrefix   = "Internal server error: "
)

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// DefaultClassifyTimeout bounds a single classification.
const DefaultClassifyTimeout = 30 * time.Second

// Handler routes and serves the classification API.
type Handler struct {
	classifier ports.Classifier
	logger     ports.Logger
	timeout    time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithClassifyTimeout sets the per-request classification timeout.
func WithClassifyTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.timeout = d
	}
}

// NewHandler creates a new API handler.
func NewHandler(classifier ports.Classifier, logger ports.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		classifier: classifier,
		logger:     logger,
		timeout:    DefaultClassifyTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleRequest is the fasthttp request handler.
func (h *Handler) HandleRequest(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	requestID := string(ctx.Request.Header.Peek(RequestIDHeader))
	if requestID == "" {
		requestID = uuid.NewString()
	}

	// Set common headers
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "CommentClassifier")
	ctx.Response.Header.Set(RequestIDHeader, requestID)
	setCORSHeaders(ctx)

	h.route(ctx, requestID)

	// Log request
	h.logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"request_id", requestID,
		"duration", time.Since(startTime),
	)
}

func (h *Handler) route(ctx *fasthttp.RequestCtx, requestID string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Recovered from panic", "request_id", requestID, "panic", r)
			ctx.Response.ResetBody()
			h.writeJSONError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("%s%v", MsgInternalPrefix, r))
		}
	}()

	switch string(ctx.Path()) {
	case "/classify":
		switch {
		case ctx.IsOptions():
			h.handlePreflight(ctx)
		case ctx.IsPost():
			h.handleClassify(ctx, requestID)
		default:
			h.writeJSONError(ctx, fasthttp.StatusMethodNotAllowed, MsgMethodNotAllowed)
		}
	case "/health":
		switch {
		case ctx.IsOptions():
			h.handlePreflight(ctx)
		case ctx.IsGet() || ctx.IsHead():
			h.handleHealthCheck(ctx)
		default:
			h.writeJSONError(ctx, fasthttp.StatusMethodNotAllowed, MsgMethodNotAllowed)
		}
	default:
		h.writeJSONError(ctx, fasthttp.StatusNotFound, MsgNotFound)
	}
}

// handlePreflight answers CORS preflight requests
func (h *Handler) handlePreflight(ctx *fasthttp.RequestCtx) {
	h.writeJSONResponse(ctx, fasthttp.StatusOK, struct{}{})
}

// handleHealthCheck responds to health check requests
func (h *Handler) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	h.writeJSONResponse(ctx, fasthttp.StatusOK, wire.NewHealthResponse(h.classifier.Ready(), h.classifier.Labels()))
}

// handleClassify handles classification requests
func (h *Handler) handleClassify(ctx *fasthttp.RequestCtx, requestID string) {
	comment, msg := parseComment(ctx.PostBody())
	if msg != "" {
		h.writeJSONError(ctx, fasthttp.StatusBadRequest, msg)
		return
	}

	// Create context with timeout
	c, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	resp, err := h.classifier.Classify(c, comment)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrModelsUnavailable):
			h.writeJSONError(ctx, fasthttp.StatusInternalServerError, MsgModelsNotLoaded)
		case errors.Is(err, domain.ErrEmptyComment):
			h.writeJSONError(ctx, fasthttp.StatusBadRequest, MsgEmptyComment)
		default:
			h.logger.Error("Error in classify", "request_id", requestID, "error", err)
			h.writeJSONError(ctx, fasthttp.StatusInternalServerError, MsgInternalPrefix+err.Error())
		}
		return
	}

	h.writeJSONResponse(ctx, fasthttp.StatusOK, wire.NewClassifyResponse(resp))
}

// parseComment extracts the comment from a request body, returning a client error
// message when the body is not a JSON object with a non-blank string comment.
func parseComment(body []byte) (string, string) {
	if len(body) == 0 {
		return "", MsgNoJSON
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", MsgNoJSON
	}
	obj, ok := data.(map[string]interface{})
	if !ok || len(obj) == 0 {
		return "", MsgNoJSON
	}

	comment, ok := obj["comment"].(string)
	if !ok || strings.TrimSpace(comment) == "" {
		return "", MsgEmptyComment
	}
	return comment, ""
}
