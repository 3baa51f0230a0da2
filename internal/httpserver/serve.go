package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/andrebq/turnstile/internal/logutil"
)

const (
	DefaultShutdownTimeout = 30 * time.Second
)

// Serve listens on bind and serves handler until ctx is cancelled, then
// drains in-flight requests.
func Serve(ctx context.Context, bind string, handler http.Handler) error {
	lst, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	return ServeListener(ctx, lst, handler)
}

// ServeListener is Serve over an existing listener, which is closed when
// the server stops.
func ServeListener(ctx context.Context, lst net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler:           handler,
		Addr:              lst.Addr().String(),
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute * 2,
		BaseContext: func(net.Listener) context.Context {
			// handlers inherit the process logger
			return logutil.WithLogger(context.Background(), logutil.GetOrDefault(ctx))
		},
	}
	log := logutil.GetOrDefault(ctx).With().Str("server.addr", server.Addr).Logger()

	failed := make(chan error, 1)
	go func() {
		defer close(failed)
		log.Info().Msg("Starting HTTP server")
		err := server.Serve(lst)
		if errors.Is(err, http.ErrServerClosed) {
			log.Info().Msg("Server closed")
			return
		}
		failed <- err
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("Initiating shutdown process")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	<-failed
	if err != nil {
		return err
	}
	log.Info().Msg("Shutdown completed")
	return nil
}
