package httpapi

import "github.com/valyala/fasthttp"

// CORS headers added to every response.
const (
	CORSAllowOrigin  = "*"
	CORSAllowHeaders = "Content-Type,Authorization"
	CORSAllowMethods = "GET,PUT,POST,DELETE,OPTIONS"
)

// setCORSHeaders allows any origin to call the API from a browser.
func setCORSHeaders(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Access-Control-Allow-Origin", CORSAllowOrigin)
	ctx.Response.Header.Set("Access-Control-Allow-Headers", CORSAllowHeaders)
	ctx.Response.Header.Set("Access-Control-Allow-Methods", CORSAllowMethods)
}
