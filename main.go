package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chxlky/webhook-relay/api"
	"github.com/chxlky/webhook-relay/integrations"
	"github.com/chxlky/webhook-relay/internal/config"
	"github.com/chxlky/webhook-relay/internal/logging"
	"github.com/chxlky/webhook-relay/internal/mailrelay"
	"github.com/chxlky/webhook-relay/internal/relocator"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to the TOML config file")
	flag.Parse()

	logger, err := logging.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.L().Fatal("Error reading config file", zap.Error(err))
	}

	trelloClient := integrations.NewTrelloClient(cfg.Trello.BaseURL, cfg.Trello.APIKey, cfg.Trello.APIToken)

	apiHandler := &api.Handler{
		Relocator: relocator.New(func(key, token string) relocator.Board {
			return trelloClient.WithCredentials(key, token)
		}, logger.Named("relocator")),
		Relay:  mailrelay.New(integrations.NewResendSender(cfg.Mail.ResendAPIKey), cfg.Mail.Relay(), logger.Named("mailrelay")),
		Trello: cfg.Trello,
		Mail:   cfg.Mail,
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	apiHandler.Register(router.Group("/api"))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	zap.L().Info("Starting server", zap.String("port", cfg.Server.Port))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	var once sync.Once

	cleanup := func(reason string) {
		zap.L().Info("Shutdown initiated", zap.String("reason", reason))

		// in-flight relocations are bounded by trello.timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Trello.Timeout+5*time.Second)
		defer cancel()

		zap.L().Info("Shutting down HTTP server...")
		if err := srv.Shutdown(ctx); err != nil {
			zap.L().Error("Error shutting down server", zap.Error(err))
		} else {
			zap.L().Info("HTTP server shut down gracefully.")
		}
		close(done)
	}

	go func() {
		sig := <-sigCh
		once.Do(func() {
			cleanup(sig.String())
		})

		// if a second signal is caught, exit immediately
		go func() {
			<-sigCh
			zap.L().Info("Second interrupt signal received. Exiting immediately.")
			os.Exit(1)
		}()
	}()

	<-done
	zap.L().Info("Exiting...")
}
