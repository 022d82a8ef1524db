package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/core/events"
	"github.com/frahmantamala/expense-tracker-client/internal/dashboard"
	"github.com/frahmantamala/expense-tracker-client/internal/transport"
	"github.com/frahmantamala/expense-tracker-client/internal/transport/rest"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the local preview server",
	Long:    `Serve the monthly snapshot, the SVG charts and the API contract on localhost.`,
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, _ []string) error {
		return startHTTPServer(cmd.Context(), deps)
	}),
}

func startHTTPServer(ctx context.Context, deps *Dependencies) error {
	month, err := selectedMonth()
	if err != nil {
		return err
	}

	board := deps.newDashboard(month)
	// a login from another terminal is picked up by the session middleware
	deps.Store.Events().Subscribe(events.EventTypeSessionEstablished, func(ctx context.Context, _ events.Event) error {
		board.Load(ctx)
		return nil
	})
	if deps.Store.Authenticated() {
		board.Load(ctx)
	}

	router := chi.NewRouter()
	setupRoutes(router, deps, board)

	addr := fmt.Sprintf("127.0.0.1:%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting preview server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		deps.Logger.Info("Shutting down preview server")
		// in-flight requests get one write timeout to finish
		shutdownCtx, cancel := internal.WithTimeout(context.Background(), deps.Config.Server.WriteTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("preview server failed: %w", err)
		}
	}

	deps.Logger.Info("Server stopped")
	return nil
}

func setupRoutes(router *chi.Mux, deps *Dependencies, board *dashboard.Dashboard) {
	base := transport.NewBaseHandler(deps.Logger.With("component", "preview"))

	var db *sql.DB
	if deps.DB != nil {
		db = deps.DB.SQL.DB
	}

	rest.RegisterAllRoutes(router, rest.RouteDeps{
		Health:  rest.NewHealthHandler(base, db, deps.Gateway),
		Preview: rest.NewPreviewHandler(base, board),
		Session: deps.Store,
		Logger:  deps.Logger,
	})
}

func init() {
	httpServerCmd.Flags().StringVarP(&monthFlag, "month", "m", "", "initially selected month, e.g. 2024-01")
}
