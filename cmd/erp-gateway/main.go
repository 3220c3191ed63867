// Command erp-gateway serves the ERP database over HTTP. Every API request
// is executed with the caller's own database credentials.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/erp-gateway/internal/config"
	"github.com/deppfellow/erp-gateway/internal/handler"
	"github.com/deppfellow/erp-gateway/internal/logger"
	"github.com/deppfellow/erp-gateway/internal/repository"
	"github.com/deppfellow/erp-gateway/internal/router"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/deppfellow/erp-gateway/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Shut down together with the server, which flushes New Relic.
	loggerService := logger.NewLoggerService(cfg.Observability)

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)
	services, err := service.NewService(srv, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create services")
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
