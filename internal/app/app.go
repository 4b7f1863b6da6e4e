package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"inventoryreservation/internal/config"
	"inventoryreservation/internal/inventory"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Application holds all the components and manages the application lifecycle
type Application struct {
	ctx       context.Context
	cancel    context.CancelFunc
	container *Container
}

// NewApplication creates and fully initializes a new Application instance
func NewApplication(ctx context.Context) (*Application, error) {
	appCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)

	app := &Application{
		ctx:    appCtx,
		cancel: cancel,
	}

	container, err := NewContainer(app.ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	app.container = container

	app.container.Logger().Info("Application initialized successfully")
	return app, nil
}

// Run consumes events and serves HTTP until a signal arrives or either side fails.
func (app *Application) Run() error {
	return serve(app.ctx, app.container.ConsumerService(), app.container.HTTPServer(), app.container.Logger())
}

func serve(ctx context.Context, consumer inventory.ConsumerService, server *http.Server, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Start(gctx)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.HTTPShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}
		logger.Info("HTTP server shutdown complete")
		return nil
	})

	return g.Wait()
}

// Shutdown gracefully shuts down all application components
func (app *Application) Shutdown() {
	if app.container != nil {
		app.container.Logger().Info("Starting application shutdown...")
	}

	if app.cancel != nil {
		app.cancel()
	}

	if app.container != nil {
		app.container.Shutdown(context.Background())
	}
}
