package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"

	"relaygo/backend/internal/api/handler"
	"relaygo/backend/internal/chathub"
	"relaygo/backend/internal/config"
	"relaygo/backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)
	log.Info("starting relay", "addr", cfg.Addr())

	store := storage.NewService()
	coordinator := chathub.NewCoordinatorService(store, log)
	h := handler.NewHandler(coordinator, cfg.SendBufferSize, log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", h.ServeWebSocket)
	r.GET("/identity", h.GetIdentity)
	r.GET("/healthz", h.Healthz)

	server := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", "err", err)
			os.Exit(1)
		}
	}()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	wait := gfshutdown.GracefulShutdown(shutdownCtx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})

	exitCode := <-wait
	log.Info("shutdown complete", "code", exitCode)
	os.Exit(exitCode)
}
