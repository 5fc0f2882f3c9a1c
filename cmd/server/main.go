package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/api"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/config"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/core"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/db"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/llm"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/middleware"
	"github.com/Ih205R/creator-project-tracker-sub001/pkg/cache"
	"github.com/Ih205R/creator-project-tracker-sub001/pkg/mailer"
)

func main() {
	// Load .env if present; in production configuration comes from the
	// environment directly.
	_ = godotenv.Load()

	// --- 1. Initialize Logger (Zap) ---
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Zap logger initialized successfully.")

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 3. Initialize Firebase Admin SDK (Firestore and Auth clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
	}
	zapLogger.Info("Firebase Admin SDK (Firestore, Auth) initialized successfully.")

	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firestore client is nil after initialization. Application cannot start.")
	}
	if firebaseAuthClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firebase Auth client is nil after initialization. Application cannot start.")
	}

	// --- 4. Initialize Repositories ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	dealRepo := db.NewFirestoreDealRepository(firestoreClient)
	notificationRepo := db.NewFirestoreNotificationRepository(firestoreClient)
	zapLogger.Info("Repositories initialized successfully.")

	// --- 5. Initialize profile cache (Redis, or no-op when unconfigured) ---
	var profileCache cache.Cache
	if appConfig.RedisAddr != "" {
		profileCache, err = cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
		})
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to Redis", zap.Error(err))
		}
		zapLogger.Info("Redis profile cache connected", zap.String("address", appConfig.RedisAddr))
	} else {
		profileCache = cache.NewNoopCache()
		zapLogger.Warn("REDIS_ADDR not configured; profile caching disabled")
	}

	// --- 6. Initialize supporting clients ---
	mail := mailer.New(mailer.Config{
		Host:   appConfig.SMTPHost,
		Port:   appConfig.SMTPPort,
		User:   appConfig.SMTPUser,
		Pass:   appConfig.SMTPPass,
		Sender: appConfig.SMTPSender,
	}, zapLogger)
	if !mail.Configured() {
		zapLogger.Warn("SMTP not configured; transactional email will be logged instead of sent")
	}

	llmClient := llm.NewClient(appConfig.OpenAIAPIKey, appConfig.OpenAIModel)
	if appConfig.OpenAIAPIKey == "" {
		zapLogger.Warn("OPENAI_API_KEY not configured; assistant endpoints will return 503")
	}

	// --- 7. Initialize Services ---
	userService := core.NewUserService(userRepo, profileCache, mail, appConfig.AppName, zapLogger)
	notificationService := core.NewNotificationService(notificationRepo, zapLogger)
	billingService := core.NewBillingService(appConfig, userService, notificationService, zapLogger)
	dealService := core.NewDealService(dealRepo, zapLogger)
	assistantService := core.NewAssistantService(llmClient, zapLogger)
	zapLogger.Info("Core services initialized successfully.")

	// --- 8. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	// --- 9. Apply Global Middleware (order matters) ---
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	// --- 10. Setup API Routes ---
	api.SetupRoutes(
		router,
		appConfig,
		zapLogger,
		userService,
		billingService,
		dealService,
		notificationService,
		assistantService,
	)

	// --- 11. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 12. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	zapLogger.Info("Attempting graceful shutdown of HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	if err := db.CloseFirestore(); err != nil {
		zapLogger.Warn("Error closing Firestore client", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
