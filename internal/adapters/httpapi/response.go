package httpapi

import (
	"encoding/json"

	"github.com/baditaflorin/go_comment_classifier/internal/adapters/wire"
	"github.com/valyala/fasthttp"
)

// writeJSONResponse writes a JSON response to the context
func (h *Handler) writeJSONResponse(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Error marshaling JSON response", "error", err)
		h.writeJSONError(ctx, fasthttp.StatusInternalServerError, "Internal server error: "+err.Error())
		return
	}

	ctx.SetStatusCode(status)
	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func (h *Handler) writeJSONError(ctx *fasthttp.RequestCtx, status int, message string) {
	ctx.SetStatusCode(status)

	response, err := json.Marshal(wire.ErrorResponse{Error: message})
	if err != nil {
		h.logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}
