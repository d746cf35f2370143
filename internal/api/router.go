package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/adityapatel007-byte/Student-Material-Hub/docs"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/api/handler"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/api/middleware"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
	"github.com/adityapatel007-byte/Student-Material-Hub/pkg/logger"
)

// RouterConfig carries the assembled collaborators the router wires to routes.
type RouterConfig struct {
	AuthService     ports.AuthService
	SubjectService  ports.SubjectService
	MaterialService ports.MaterialService
	QuestionService ports.QuestionService

	// Limiter is optional; when nil no rate limiting is applied.
	Limiter middleware.Limiter

	Mongo     *mongo.Database
	Redis     *redis.Client
	UploadDir string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddleware("studenthub"))

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)
	e.Static("/uploads", cfg.UploadDir)

	api := e.Group("/api")
	if cfg.Limiter != nil {
		api.Use(middleware.RateLimit(cfg.Limiter, log))
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(cfg.Mongo, cfg.Redis)
	api.GET("/health", healthHandler.Liveness)
	api.GET("/health/ready", healthDepsHandler.Readiness)

	authRequired := middleware.Auth(cfg.AuthService)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/logout", authHandler.Logout)
	auth.GET("/verify-email/:token", authHandler.VerifyEmail)
	auth.POST("/resend-verification", authHandler.ResendVerification)
	auth.GET("/account-status/:email", authHandler.AccountStatus)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.PUT("/reset-password/:token", authHandler.ResetPassword)
	auth.GET("/me", authHandler.Me, authRequired)
	auth.PUT("/me", authHandler.UpdateMe, authRequired)
	auth.PUT("/password", authHandler.ChangePassword, authRequired)

	admin := api.Group("/admin", authRequired, adminOnly)
	admin.PUT("/users/:id/status", authHandler.SetUserStatus)

	// --- Subject routes ---
	subjectHandler := handler.NewSubjectHandler(cfg.SubjectService)
	subjects := api.Group("/subjects")
	subjects.GET("", subjectHandler.List)
	subjects.GET("/:id", subjectHandler.Get)
	subjects.POST("", subjectHandler.Create, authRequired, adminOnly)
	subjects.PUT("/:id", subjectHandler.Update, authRequired, adminOnly)
	subjects.DELETE("/:id", subjectHandler.Delete, authRequired, adminOnly)

	// --- Material routes ---
	materialHandler := handler.NewMaterialHandler(cfg.MaterialService)
	materials := api.Group("/materials")
	materials.GET("", materialHandler.List)
	materials.GET("/:id", materialHandler.Get)
	materials.POST("", materialHandler.Upload, authRequired)
	materials.PUT("/:id", materialHandler.Update, authRequired)
	materials.DELETE("/:id", materialHandler.Delete, authRequired)
	materials.POST("/:id/like", materialHandler.ToggleLike, authRequired)
	materials.GET("/:id/download", materialHandler.Download, authRequired)

	// --- Question routes ---
	questionHandler := handler.NewQuestionHandler(cfg.QuestionService)
	questions := api.Group("/questions")
	questions.GET("", questionHandler.List)
	questions.GET("/:id", questionHandler.Get)
	questions.POST("", questionHandler.Ask, authRequired)
	questions.DELETE("/:id", questionHandler.Delete, authRequired)
	questions.POST("/:id/answers", questionHandler.Answer, authRequired)
	questions.POST("/:id/answers/:answerID/accept", questionHandler.AcceptAnswer, authRequired)

	return e
}

// requestLogger emits one structured log line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	})
}
