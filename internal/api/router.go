package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yusufstar/photoai/internal/api/handler"
	"github.com/yusufstar/photoai/internal/api/middleware"
	"github.com/yusufstar/photoai/internal/config"
	"github.com/yusufstar/photoai/internal/logger"
	"github.com/yusufstar/photoai/internal/repository"
	"github.com/yusufstar/photoai/internal/service"
	"github.com/yusufstar/photoai/internal/webhook"
)

// Deps bundles the constructed services the router wires into handlers.
type Deps struct {
	Verifier   *webhook.Verifier
	Reconciler *service.ReconcilerService
	Training   *service.TrainingService
	Generation *service.GenerationService
	Credits    *repository.CreditRepository
}

// SetupRouter configures the Gin router with all routes.
// Parameters:
//   - deps: constructed services and repositories.
//   - cfg: application configuration.
//   - log: base logger for request logging.
// Returns:
//   - *gin.Engine: configured router.
func SetupRouter(deps Deps, cfg *config.Config, log *logger.Logger) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler()
	webhookHandler := handler.NewWebhookHandler(deps.Verifier, deps.Reconciler)
	trainHandler := handler.NewTrainHandler(deps.Training)
	modelHandler := handler.NewModelHandler(deps.Training)
	imageHandler := handler.NewImageHandler(deps.Generation)
	creditHandler := handler.NewCreditHandler(deps.Credits)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Provider callbacks authenticate with a signature, not a user token
	r.POST("/api/webhooks/training", webhookHandler.TrainingCallback)

	// API v1 routes (user-authenticated)
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.Auth.JWTSecret))
	{
		// Training
		v1.POST("/train", trainHandler.StartTraining)
		v1.POST("/uploads/url", trainHandler.SignUpload)

		// Models
		v1.GET("/models", modelHandler.ListModels)
		v1.GET("/models/:name", modelHandler.GetModel)

		// Images
		v1.POST("/images/generate", imageHandler.Generate)
		v1.POST("/images", imageHandler.StoreImages)
		v1.GET("/images", imageHandler.ListImages)

		// Credits
		v1.GET("/credits", creditHandler.GetCredits)
	}

	return r
}
