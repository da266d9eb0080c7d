package main

import (
	"log"
	"time"
	"vmp-callback/internal/api"
	"vmp-callback/internal/config"
	"vmp-callback/internal/database"
	"vmp-callback/internal/services"
	"vmp-callback/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}
	cfg := config.AppConfig

	// Initialize logging
	logging.InitLogging()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.CloseDatabase()

	// Build the callback pipeline. Everything is constructed here and
	// injected so nothing below reaches for ambient configuration.
	authenticator := services.NewOriginAuthenticator(cfg.AllowedIPs, cfg.CallbackSecret, cfg.VerifySignature)
	transactions := services.NewTransactionService(database.GetDB())
	fulfillment := services.NewFulfillmentService(database.GetDB())
	settings := services.NewSettingService(database.GetDB(), database.GetRedis(), time.Duration(cfg.SettingCacheMinutes)*time.Minute)
	notifier := services.NewTelegramNotifier(cfg.BotToken, cfg.ChannelID, cfg.AdminIDs)

	var alerts services.OperatorAlerter
	if mailer := services.NewAlertMailer(cfg.BrevoAPIKey, cfg.BrevoFromEmail, cfg.AlertEmail, cfg.ServiceName); mailer != nil {
		alerts = mailer
	}

	processor := services.NewCallbackProcessor(authenticator, transactions, fulfillment, settings, notifier, alerts)

	// Set Gin mode
	gin.SetMode(cfg.Mode)

	// Create Gin engine
	r := gin.Default()

	// Setup routes
	api.SetupRoutes(r, api.NewCallbackHandler(processor))

	// Start server
	port := cfg.Port
	logging.Infof("Starting callback server on port %s", port)

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
