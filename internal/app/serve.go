package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"folio/internal/tools"
)

const shutdownTimeout = 10 * time.Second

// MCPServer is a tool server ready to be served over streamable HTTP.
type MCPServer struct {
	*server.MCPServer
	Mode tools.Mode
}

// Handler mounts the streamable HTTP transport at path.
func (s *MCPServer) Handler(path string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, server.NewStreamableHTTPServer(s.MCPServer, server.WithEndpointPath(path)))
	return mux
}

// Serve runs handler on addr until ctx is cancelled, then drains in-flight
// requests.
func Serve(ctx context.Context, name, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting %s on http://%s", name, addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to run %s: %w", name, err)
	case <-ctx.Done():
	}

	log.Infof("Shutting down %s", name)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown %s: %w", name, err)
	}
	log.Infof("%s stopped.", name)
	return nil
}
