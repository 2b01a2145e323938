package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"payme-click-gateway/internal/client"
	"payme-click-gateway/internal/config"
	"payme-click-gateway/internal/handler"
	"payme-click-gateway/internal/keepalive"
	"payme-click-gateway/internal/lock"
	"payme-click-gateway/internal/logging"
	"payme-click-gateway/internal/repository"
	"payme-click-gateway/internal/secret"
	"payme-click-gateway/internal/server"
	"payme-click-gateway/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	db, err := client.InitDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("database init failed", "err", err)
	}

	clickClient := client.NewClickClient(&cfg.Click)
	orderRepo := repository.NewOrderRepository(db)
	locks := lock.NewKeyed()
	secrets := secret.NewStore(cfg.Payme.MerchantKey)

	paymeService := service.NewPaymeService(orderRepo, locks, secrets, logger)
	clickService := service.NewClickService(orderRepo, clickClient, locks, logger)
	orderService := service.NewOrderService(orderRepo)

	paymeHandler := handler.NewPaymeHandler(paymeService, secrets, cfg.Payme.Login, logger)
	clickHandler := handler.NewClickHandler(clickService, logger)
	orderHandler := handler.NewOrderHandler(orderService)

	srv := server.NewServer(paymeHandler, clickHandler, orderHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go keepalive.Run(ctx, cfg.SelfURL, logger)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Infow("starting HTTP server", "addr", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("HTTP server error", "err", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("Signal received, starting graceful shutdown...")
	cancel()

	if err := srv.Shutdown(); err != nil {
		logger.Fatalw("HTTP server shutdown error", "err", err)
	}
}
