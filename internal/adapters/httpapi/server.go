package httpapi

import (
	"context"
	"time"

	"github.com/baditaflorin/go_comment_classifier/internal/config"
	"github.com/baditaflorin/go_comment_classifier/internal/ports"
	"github.com/valyala/fasthttp"
)

// NewServer creates a fasthttp server serving h with the configured limits.
func NewServer(h *Handler, cfg config.ServerConfig) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:               h.HandleRequest,
		Name:                  "CommentClassifier",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		MaxRequestBodySize:    cfg.MaxRequestSize,
		Concurrency:           cfg.Concurrency,
		DisableKeepalive:      false,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxConnsPerIP:         0, // unlimited
		MaxRequestsPerConn:    0, // unlimited
		MaxIdleWorkerDuration: 10 * time.Second,
		Logger:                nil, // we'll handle logging ourselves
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts the server down
// gracefully and waits for open connections to finish.
func ListenAndServe(ctx context.Context, server *fasthttp.Server, addr string, logger ports.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "address", addr)
		errCh <- server.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		logger.Error("Error during server shutdown", "error", err)
		return err
	}
	return <-errCh
}
