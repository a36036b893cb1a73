package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"levelup-shop/internal/client"
	"levelup-shop/internal/config"
	"levelup-shop/internal/logging"
	"levelup-shop/internal/repository"
	"levelup-shop/internal/server"
	"levelup-shop/internal/service"
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

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := client.InitMysqlClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	webpayClient := client.NewWebpayClient(&cfg.Webpay)

	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	stockService := service.NewStockService(db, productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, stockService)
	orderService := service.NewOrderService(db, orderRepo, cartRepo, productRepo, stockService, cfg.Orders.AllowForcePaid)
	paymentService := service.NewPaymentService(webpayClient, orderRepo, orderService, cfg.Webpay.ReturnURL, logger)
	productService := service.NewProductService(productRepo, stockService)

	srv := server.NewServer(cartService, orderService, paymentService, productService, cfg.Auth.JWTSecret, logger)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
