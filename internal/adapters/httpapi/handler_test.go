package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/baditaflorin/go_comment_classifier/internal/adapters/logger"
	"github.com/baditaflorin/go_comment_classifier/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type stubClassifier struct {
	labels []string
	resp   domain.Response
	err    error
	panic  bool
	got    string
}

func (s *stubClassifier) Classify(_ context.Context, comment string) (domain.Response, error) {
	if s.panic {
		panic("boom")
	}
	s.got = comment
	if strings.TrimSpace(comment) == "" {
		return domain.Response{}, domain.ErrEmptyComment
	}
	if len(s.labels) == 0 {
		return domain.Response{}, domain.ErrModelsUnavailable
	}
	return s.resp, s.err
}

func (s *stubClassifier) Ready() bool      { return len(s.labels) > 0 }
func (s *stubClassifier) Labels() []string { return append([]string{}, s.labels...) }

func readyClassifier() *stubClassifier {
	return &stubClassifier{
		labels: []string{"toxic", "insult"},
		resp: domain.Response{
			Category:   "toxic",
			Confidence: 87.65,
			AllPredictions: map[string]domain.Prediction{
				"toxic":  {Predicted: true, Confidence: 87.65},
				"insult": {Predicted: false, Confidence: 12.3},
			},
		},
	}
}

func doRequest(h *Handler, method, path, body string, headers map[string]string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != "" {
		req.SetBodyString(body)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	h.HandleRequest(ctx)
	return ctx
}

func errorMessage(t *testing.T, ctx *fasthttp.RequestCtx) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	return body["error"]
}

func assertCORS(t *testing.T, ctx *fasthttp.RequestCtx) {
	t.Helper()
	assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Equal(t, "Content-Type,Authorization", string(ctx.Response.Header.Peek("Access-Control-Allow-Headers")))
	assert.Equal(t, "GET,PUT,POST,DELETE,OPTIONS", string(ctx.Response.Header.Peek("Access-Control-Allow-Methods")))
}

func TestClassifySuccess(t *testing.T) {
	stub := readyClassifier()
	h := NewHandler(stub, logger.NewNopLogger())

	ctx := doRequest(h, fasthttp.MethodPost, "/classify", `{"comment": "You are a STUPID idiot!"}`, nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "You are a STUPID idiot!", stub.got)
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
	assertCORS(t, ctx)
	assert.JSONEq(t, `{
		"category": "toxic",
		"confidence": 87.65,
		"all_predictions": {
			"toxic": {"predicted": 1, "confidence": 87.65},
			"insult": {"predicted": 0, "confidence": 12.3}
		}
	}`, string(ctx.Response.Body()))
}

func TestClassifyBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "no body", body: "", message: MsgNoJSON},
		{name: "empty object", body: `{}`, message: MsgNoJSON},
		{name: "invalid json", body: `{"comment":`, message: MsgNoJSON},
		{name: "array", body: `["hello"]`, message: MsgNoJSON},
		{name: "null", body: `null`, message: MsgNoJSON},
		{name: "empty comment", body: `{"comment": ""}`, message: MsgEmptyComment},
		{name: "blank comment", body: `{"comment": "   \n"}`, message: MsgEmptyComment},
		{name: "missing comment", body: `{"text": "hello"}`, message: MsgEmptyComment},
		{name: "non-string comment", body: `{"comment": 42}`, message: MsgEmptyComment},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(readyClassifier(), logger.NewNopLogger())
			ctx := doRequest(h, fasthttp.MethodPost, "/classify", tc.body, nil)
			assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
			assert.Equal(t, tc.message, errorMessage(t, ctx))
			assertCORS(t, ctx)
		})
	}
}

func TestClassifyModelsNotLoaded(t *testing.T) {
	h := NewHandler(&stubClassifier{}, logger.NewNopLogger())

	ctx := doRequest(h, fasthttp.MethodPost, "/classify", `{"comment": "hello"}`, nil)
	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	assert.Equal(t, MsgModelsNotLoaded, errorMessage(t, ctx))

	// Validation comes first.
	ctx = doRequest(h, fasthttp.MethodPost, "/classify", `{"comment": ""}`, nil)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestClassifyInternalError(t *testing.T) {
	stub := readyClassifier()
	stub.err = errors.New("scoring label toxic: model exploded")
	h := NewHandler(stub, logger.NewNopLogger())

	ctx := doRequest(h, fasthttp.MethodPost, "/classify", `{"comment": "hello"}`, nil)
	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	assert.Equal(t, "Internal server error: scoring label toxic: model exploded", errorMessage(t, ctx))
}

func TestClassifyPanicRecovered(t *testing.T) {
	h := NewHandler(&stubClassifier{labels: []string{"toxic"}, panic: true}, logger.NewNopLogger())

	ctx := doRequest(h, fasthttp.MethodPost, "/classify", `{"comment": "hello"}`, nil)
	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	assert.Equal(t, "Internal server error: boom", errorMessage(t, ctx))
	assertCORS(t, ctx)
}

func TestHealth(t *testing.T) {
	h := NewHandler(&stubClassifier{}, logger.NewNopLogger())
	ctx := doRequest(h, fasthttp.MethodGet, "/health", "", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"healthy","models_loaded":false,"available_labels":[]}`, string(ctx.Response.Body()))
	assertCORS(t, ctx)

	h = NewHandler(readyClassifier(), logger.NewNopLogger())
	ctx = doRequest(h, fasthttp.MethodGet, "/health", "", nil)
	assert.JSONEq(t, `{"status":"healthy","models_loaded":true,"available_labels":["toxic","insult"]}`, string(ctx.Response.Body()))
}

func TestPreflight(t *testing.T) {
	h := NewHandler(readyClassifier(), logger.NewNopLogger())
	for _, path := range []string{"/classify", "/health"} {
		ctx := doRequest(h, fasthttp.MethodOptions, path, "", nil)
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), path)
		assert.Equal(t, "{}", string(ctx.Response.Body()), path)
		assertCORS(t, ctx)
	}
}

func TestRoutingErrors(t *testing.T) {
	h := NewHandler(readyClassifier(), logger.NewNopLogger())

	ctx := doRequest(h, fasthttp.MethodGet, "/classify", "", nil)
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
	assert.Equal(t, MsgMethodNotAllowed, errorMessage(t, ctx))

	ctx = doRequest(h, fasthttp.MethodPost, "/health", "", nil)
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())

	ctx = doRequest(h, fasthttp.MethodGet, "/nope", "", nil)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.Equal(t, MsgNotFound, errorMessage(t, ctx))
	assertCORS(t, ctx)
}

func TestRequestID(t *testing.T) {
	h := NewHandler(readyClassifier(), logger.NewNopLogger())

	ctx := doRequest(h, fasthttp.MethodGet, "/health", "", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", string(ctx.Response.Header.Peek(RequestIDHeader)))

	ctx = doRequest(h, fasthttp.MethodGet, "/health", "", nil)
	assert.Len(t, string(ctx.Response.Header.Peek(RequestIDHeader)), 36)
}
