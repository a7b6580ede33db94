package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"admin-console-go/internal/config"
	"admin-console-go/internal/constants"
	"admin-console-go/internal/logging"
	"admin-console-go/internal/mockapi"
	"admin-console-go/internal/monitoring/tracing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (endpoint paths are shared with the client)")
	addr := flag.String("addr", "127.0.0.1:3000", "Listen address")
	debug := flag.Bool("debug", false, "Enable debug mode and request logging")
	seed := flag.Bool("seed", true, "Seed sample users")
	accessTTL := flag.Duration("access-ttl", 15*time.Minute, "Access token lifetime, 0 for no expiry")
	refreshDelay := flag.Duration("refresh-delay", 0, "Artificial latency of the refresh endpoint")
	rotate := flag.Bool("rotate", false, "Rotate refresh tokens on every refresh")
	requireChange := flag.Bool("require-password-change", false, "Answer sign-in with a password reset challenge")
	flag.Parse()

	cfg := config.LoadWithFile(*configPath)
	if cfg == nil {
		log.Fatal("Failed to load configuration")
	}
	if *debug {
		cfg.Logging.Debug = true
	}
	if err := logging.Setup(cfg); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}
	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	traceShutdown, err := tracing.Init(ctx, "admin-console-mock-api")
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	}
	if traceShutdown != nil {
		defer func() {
			if err := traceShutdown(context.Background()); err != nil {
				log.WithError(err).Warn("failed to shutdown tracing")
			}
		}()
	}

	mock := mockapi.New(mockapi.Options{
		Endpoints:             cfg.API.Endpoints,
		AccessTokenTTL:        *accessTTL,
		RefreshDelay:          *refreshDelay,
		RotateRefreshTokens:   *rotate,
		RequirePasswordChange: *requireChange,
		RequestLog:            *debug,
		SeedUsers:             *seed,
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mock.Handler(),
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
	}
	go func() {
		log.WithFields(log.Fields{
			"addr":  *addr,
			"admin": mockapi.DefaultAdminEmail,
		}).Infof("Mock admin API listening, base URL %s", mock.BaseURL("http://"+*addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("mock api server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown incomplete")
	}
	log.Info("Server stopped")
}
