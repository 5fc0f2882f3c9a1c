package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/config"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/core"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/db"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/middleware"
)

// SetupRoutes configures all application routes. Global middleware (logging,
// recovery, CORS) is applied to the router before this is called, in main.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	userService core.UserService,
	billingService core.BillingService,
	dealService core.DealService,
	notificationService core.NotificationService,
	assistantService core.AssistantService,
) {
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("Firebase Auth client is not initialized; routes cannot be secured")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient, logger)

	authHandler := NewAuthHandler(userService, logger)
	userHandler := NewUserHandler(userService, logger)
	billingHandler := NewBillingHandler(billingService, logger)
	dealHandler := NewDealHandler(dealService, logger)
	notificationHandler := NewNotificationHandler(notificationService, logger)
	assistantHandler := NewAssistantHandler(assistantService, dealService, logger)

	apiV1 := router.Group("/api/v1")
	{
		// --- User and profile endpoints ---
		usersGroup := apiV1.Group("/users", authMW.VerifyToken())
		{
			// Called after a client-side Firebase login/signup to ensure
			// the backend profile exists.
			usersGroup.POST("/initialize", authHandler.InitializeUserProfile)
			usersGroup.GET("/me", userHandler.GetCurrentUserProfile)
			usersGroup.PUT("/me", userHandler.UpdateCurrentUserProfile)
		}

		// --- Billing endpoints ---
		billingGroup := apiV1.Group("/billing")
		{
			billingGroup.POST("/create-checkout-session", authMW.VerifyToken(), billingHandler.CreateCheckoutSession)
			billingGroup.GET("/session/:sessionId", authMW.VerifyToken(), billingHandler.GetCheckoutSession)
			billingGroup.POST("/create-portal-session", authMW.VerifyToken(), billingHandler.CreatePortalSession)
			billingGroup.POST("/cancel-subscription", authMW.VerifyToken(), billingHandler.CancelSubscription)
			billingGroup.POST("/request-refund", authMW.VerifyToken(), billingHandler.RequestRefund)

			// Public webhook endpoint. Stripe authenticates via signature,
			// verified in the billing service.
			billingGroup.POST("/webhooks/stripe", billingHandler.HandleStripeWebhook)
		}

		// --- Deal CRM endpoints ---
		dealsGroup := apiV1.Group("/deals", authMW.VerifyToken())
		{
			dealsGroup.POST("", dealHandler.CreateDeal)
			dealsGroup.GET("", dealHandler.ListDeals)
			dealsGroup.GET("/:dealId", dealHandler.GetDeal)
			dealsGroup.PUT("/:dealId", dealHandler.UpdateDeal)
			dealsGroup.DELETE("/:dealId", dealHandler.DeleteDeal)
		}

		// --- Notification endpoints ---
		notificationsGroup := apiV1.Group("/notifications", authMW.VerifyToken())
		{
			notificationsGroup.GET("", notificationHandler.ListNotifications)
			notificationsGroup.POST("/:notificationId/read", notificationHandler.MarkNotificationRead)
			notificationsGroup.DELETE("/:notificationId", notificationHandler.DeleteNotification)
		}

		// --- AI assistant endpoints (paid plans only) ---
		assistantGroup := apiV1.Group("/assistant", authMW.VerifyToken(), middleware.RequirePaidPlan(userService, logger))
		{
			assistantGroup.POST("/analyze-contract", assistantHandler.AnalyzeContract)
			assistantGroup.POST("/recommend-pricing", assistantHandler.RecommendPricing)
			assistantGroup.GET("/deal-insights", assistantHandler.DealInsights)
			assistantGroup.POST("/draft-email", assistantHandler.DraftOutreachEmail)
			assistantGroup.POST("/draft-captions", assistantHandler.DraftCaptions)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured under /api/v1 and /health")
}
