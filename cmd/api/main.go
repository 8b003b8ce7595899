package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/webnexa/studio-api/internal/auth"
	"github.com/webnexa/studio-api/internal/config"
	"github.com/webnexa/studio-api/internal/database"
	studioHttp "github.com/webnexa/studio-api/internal/http"
	authHandler "github.com/webnexa/studio-api/internal/http/auth"
	inquiryHandler "github.com/webnexa/studio-api/internal/http/inquiry"
	invoiceHandler "github.com/webnexa/studio-api/internal/http/invoice"
	notificationHandler "github.com/webnexa/studio-api/internal/http/notification"
	ticketHandler "github.com/webnexa/studio-api/internal/http/ticket"
	userHandler "github.com/webnexa/studio-api/internal/http/user"
	"github.com/webnexa/studio-api/internal/inquiry"
	inquiryStore "github.com/webnexa/studio-api/internal/inquiry/store"
	"github.com/webnexa/studio-api/internal/invoice"
	invoiceStore "github.com/webnexa/studio-api/internal/invoice/store"
	"github.com/webnexa/studio-api/internal/notification"
	notificationStore "github.com/webnexa/studio-api/internal/notification/store"
	"github.com/webnexa/studio-api/internal/ticket"
	ticketStore "github.com/webnexa/studio-api/internal/ticket/store"
	"github.com/webnexa/studio-api/internal/user"
	userStore "github.com/webnexa/studio-api/internal/user/store"
)

func main() {
	// Missing .env is fine in production; variables come from the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenProvider(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var (
		userService         = user.NewService(userStore.New(db))
		authService         = auth.NewService(userStore.New(db), tokens)
		notificationService = notification.NewService(notificationStore.New(db))
		invoiceService      = invoice.NewService(invoiceStore.New(db), userService, notificationService)
		inquiryService      = inquiry.NewService(inquiryStore.New(db), userService, notificationService)
		ticketService       = ticket.NewService(ticketStore.New(db), userService, notificationService)
	)

	router := studioHttp.New(studioHttp.Handlers{
		Auth:          authHandler.NewHandler(authService),
		Users:         userHandler.NewHandler(userService),
		Invoices:      invoiceHandler.NewHandler(invoiceService),
		Notifications: notificationHandler.NewHandler(notificationService),
		Inquiries:     inquiryHandler.NewHandler(inquiryService),
		Tickets:       ticketHandler.NewHandler(ticketService),
	}, tokens, cfg.CORS.AllowedOrigins)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "addr", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
