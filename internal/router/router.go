// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/playline/agency-backend/internal/config"
	"github.com/playline/agency-backend/internal/handlers"
	"github.com/playline/agency-backend/internal/middleware"
	"github.com/playline/agency-backend/internal/services"
	"github.com/playline/agency-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	statementService, err := services.NewStatementService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Statement uploads disabled")
		statementService = nil
	}

	authService := services.NewAuthService(db, cfg)
	hierarchyService := services.NewHierarchyService(db)
	rateService := services.NewRateService(db)
	commissionService := services.NewCommissionService(db, cfg, hierarchyService, rateService)
	settlementService := services.NewSettlementService(db, statementService)
	balanceService := services.NewBalanceService(db)
	payoutService := services.NewPayoutService(db, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	hierarchyHandler := handlers.NewHierarchyHandler(hierarchyService)
	rateHandler := handlers.NewRateHandler(rateService)
	commissionHandler := handlers.NewCommissionHandler(commissionService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)
	balanceHandler := handlers.NewBalanceHandler(balanceService, payoutService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		// Betting platform relay webhooks
		webhooks := v1.Group("/webhooks")
		webhooks.Use(middleware.WebhookSignature(cfg.Webhook.SharedSecret))
		{
			webhooks.POST("/bets", commissionHandler.ProcessBet)
			webhooks.POST("/round-results", commissionHandler.ProcessRoundResult)
		}

		// Agent routes
		agents := v1.Group("/agents")
		agents.Use(middleware.AuthRequired())
		{
			agents.GET("/:id/children", hierarchyHandler.GetChildren)
			agents.GET("/:id/descendants", hierarchyHandler.GetDescendants)
			agents.GET("/:id/ancestors", hierarchyHandler.GetAncestors)
			agents.GET("/:id/rates", rateHandler.ListRates)
			agents.GET("/:id/rates/:category/:type", rateHandler.GetRate)
			agents.GET("/:id/ledger", commissionHandler.ListLedgerEntries)
			agents.GET("/:id/balance", balanceHandler.GetBalance)
			agents.GET("/:id/payouts", balanceHandler.GetPayoutHistory)

			agents.POST("", middleware.OperatorRequired(), hierarchyHandler.CreateAgent)
			agents.PUT("/:id/parent", middleware.OperatorRequired(), hierarchyHandler.ReparentAgent)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired(), middleware.OperatorRequired())
		{
			users.POST("", hierarchyHandler.CreateUser)
			users.GET("/:id/referrals", hierarchyHandler.GetUserReferrals)
			users.PUT("/:id/referrer", hierarchyHandler.ReparentUser)
		}

		// Rate management
		rates := v1.Group("/rates")
		rates.Use(middleware.AuthRequired(), middleware.OperatorRequired())
		{
			rates.PUT("", rateHandler.SetRate)
		}

		// Ledger administration
		ledger := v1.Group("/ledger")
		ledger.Use(middleware.AuthRequired(), middleware.OperatorRequired())
		{
			ledger.POST("/:id/cancel", commissionHandler.CancelEntry)
		}

		// Settlement routes
		settlements := v1.Group("/settlements")
		settlements.Use(middleware.AuthRequired(), middleware.OperatorRequired())
		{
			settlements.GET("/preview", settlementHandler.Preview)
			settlements.GET("", settlementHandler.List)
			settlements.GET("/:id", settlementHandler.Get)
			settlements.POST("", settlementHandler.Create)
			settlements.POST("/:id/confirm", settlementHandler.Confirm)
			settlements.POST("/:id/reject", settlementHandler.Reject)
			settlements.POST("/:id/pay", settlementHandler.Pay)
		}

		// Balance administration
		balances := v1.Group("/balances")
		balances.Use(middleware.AuthRequired(), middleware.OperatorRequired())
		{
			balances.POST("/adjust", balanceHandler.Adjust)
		}

		// Payouts (agent self-service)
		payouts := v1.Group("/payouts")
		payouts.Use(middleware.AuthRequired())
		{
			payouts.POST("", balanceHandler.RequestPayout)
		}
	}

	return r
}
