package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cardgridgames/cardgrid-backend/internal/service"
)

// Start - starts the HTTP server with health and auth endpoints.
func Start(ctx context.Context, port string, users service.UserService, auth service.AuthService) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", pingHandler)
	mux.HandleFunc("/auth/login", loginHandler(users, auth))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
