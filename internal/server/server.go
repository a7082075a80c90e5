package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Meesho/BharatMLStack/inferline/internal/audit"
	"github.com/Meesho/BharatMLStack/inferline/internal/config"
	"github.com/Meesho/BharatMLStack/inferline/internal/pipeline"
	"github.com/Meesho/BharatMLStack/inferline/internal/predcache"
	"github.com/Meesho/BharatMLStack/inferline/pkg/logger"
	"github.com/gin-gonic/gin"
)

const shutdownGracePeriod = 10 * time.Second

// InitServer starts the HTTP surface and blocks until a shutdown signal.
// On shutdown the listener closes before the pipeline stops, so no request
// is accepted that the pipeline cannot resolve.
func InitServer(configs *config.AppConfigs, pipe *pipeline.Pipeline, cache *predcache.Cache) {
	if configs.Configs.ApplicationEnv != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), telemetryMiddleware())
	RegisterRoutes(router, pipe, cache)

	address := fmt.Sprintf(":%d", configs.Configs.ApplicationPort)
	httpServer := &http.Server{
		Addr:    address,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()
	logger.Info(fmt.Sprintf("inferline started at port %s", address))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		logger.Panic("Failed to start inferline application!", err)
	case sig := <-quit:
		logger.Info(fmt.Sprintf("Received signal %s, shutting down", sig))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", err)
	}
	pipe.Stop()
	audit.CloseAuditLogger()
	logger.Info("inferline stopped")
}
