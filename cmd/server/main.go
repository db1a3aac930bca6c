package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gin-gonic/gin"
	"github.com/huangang/geoconfig/internal/config"
	"github.com/huangang/geoconfig/internal/utils"
	"github.com/huangang/geoconfig/pkg/logger"
)

var signalNotify = signal.Notify

func main() {
	app := kingpin.New("geoconfig", "Remote configuration service with per-country overrides")
	configFile := app.Flag("config", "Path to YAML configuration file").Envar("CONFIG_PATH").String()
	port := app.Flag("port", "HTTP port exposed by the service").String()
	logLevel := app.Flag("log-level", "Log level: debug, info, warn, error").String()

	serveCmd := app.Command("serve", "Run the HTTP server").Default()
	hashCmd := app.Command("hash-password", "Print the bcrypt hash of a password for auth.admin_password_hash")
	password := hashCmd.Arg("password", "Password to hash").Required().String()

	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case hashCmd.FullCommand():
		hash, err := utils.HashPassword(*password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
	case serveCmd.FullCommand():
		serve(*configFile, *port, *logLevel)
	}
}

func serve(configFile, port, logLevel string) {
	cfg, err := config.Load(configFile)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	if port != "" {
		cfg.Server.Port = port
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger.Init(cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)

	svc, err := bootstrap(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}

	r := gin.New()
	registerRoutes(r, cfg, svc)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	shutdown(server, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	svc.shutdown()
}

func shutdown(server *http.Server, timeout time.Duration) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("Graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("Forced close failed")
		}
	}
}
