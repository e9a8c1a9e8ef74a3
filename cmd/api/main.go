package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/karimelh/salespoint/internal/config"
	"github.com/karimelh/salespoint/internal/customer"
	customerStore "github.com/karimelh/salespoint/internal/customer/store"
	"github.com/karimelh/salespoint/internal/database"
	salespointHttp "github.com/karimelh/salespoint/internal/http"
	"github.com/karimelh/salespoint/internal/http/auth"
	customerHandler "github.com/karimelh/salespoint/internal/http/customer"
	dashboardHandler "github.com/karimelh/salespoint/internal/http/dashboard"
	importHandler "github.com/karimelh/salespoint/internal/http/importcsv"
	productHandler "github.com/karimelh/salespoint/internal/http/product"
	saleHandler "github.com/karimelh/salespoint/internal/http/sale"
	settingsHandler "github.com/karimelh/salespoint/internal/http/settings"
	"github.com/karimelh/salespoint/internal/importer"
	"github.com/karimelh/salespoint/internal/product"
	productStore "github.com/karimelh/salespoint/internal/product/store"
	"github.com/karimelh/salespoint/internal/sale"
	saleStore "github.com/karimelh/salespoint/internal/sale/store"
	"github.com/karimelh/salespoint/internal/settings"
	settingsStore "github.com/karimelh/salespoint/internal/settings/store"
	"github.com/karimelh/salespoint/internal/upload"
	"github.com/karimelh/salespoint/internal/user"
	userStore "github.com/karimelh/salespoint/internal/user/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DSN())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	saver, err := upload.NewSaver(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		slog.Error("failed to prepare upload directory", "error", err)
		os.Exit(1)
	}

	var (
		saleService     = sale.NewService(saleStore.New(db, cfg.DB.BusyTimeout))
		productService  = product.NewService(productStore.New(db))
		customerService = customer.NewService(customerStore.New(db))
		settingsService = settings.NewService(settingsStore.New(db))
		userService     = user.NewService(userStore.New(db))
		importService   = importer.NewService()
	)

	// Bootstrap admin account for first run.
	if err := userService.EnsureAdmin(context.Background(), "admin", "admin123", "Administrator"); err != nil {
		slog.Error("failed to ensure admin user", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	var (
		authH      = auth.NewHandler(userService, tokens)
		productH   = productHandler.NewHandler(productService, saver)
		customerH  = customerHandler.NewHandler(customerService)
		saleH      = saleHandler.NewHandler(saleService)
		settingsH  = settingsHandler.NewHandler(settingsService, saver)
		dashboardH = dashboardHandler.NewHandler(saleService, productService, customerService)
		importH    = importHandler.NewHandler(importService, productService)
	)

	router := salespointHttp.New(tokens, authH, productH, customerH, saleH, settingsH, dashboardH, importH, saver.Dir())

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "name", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
