// Package mcp exposes watermark analysis and removal as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pdf_watermark/pdf"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "0.1.0"

// ErrMissingCleaner is returned when the server is built without a cleaner.
var ErrMissingCleaner = errors.New("mcp: cleaner is required")

// Server is the MCP server for the watermark tools.
type Server struct {
	cleaner  *pdf.Cleaner
	defaults pdf.Options
	server   *mcp.Server
}

// NewServer creates a new MCP server. defaults are the detection options
// used when a tool call leaves a parameter out.
func NewServer(cleaner *pdf.Cleaner, defaults pdf.Options) (*Server, error) {
	if cleaner == nil {
		return nil, ErrMissingCleaner
	}
	impl := &mcp.Implementation{
		Name:    "pdf-watermark",
		Version: Version,
	}
	s := &Server{
		cleaner:  cleaner,
		defaults: defaults,
		server:   mcp.NewServer(impl, nil),
	}
	s.registerTools()
	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns a streamable HTTP handler serving this server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			httpServer.Shutdown(context.Background()) //nolint:errcheck
		case <-done:
		}
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
