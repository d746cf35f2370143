package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/api"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/service"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/infrastructure/config"
	mongodb "github.com/adityapatel007-byte/Student-Material-Hub/internal/infrastructure/db/mongo"
	redisdb "github.com/adityapatel007-byte/Student-Material-Hub/internal/infrastructure/db/redis"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/infrastructure/email"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/infrastructure/queue"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/infrastructure/storage"
	"github.com/adityapatel007-byte/Student-Material-Hub/pkg/logger"
)

// @title        Student Material Hub API
// @version      1.0
// @description  Notes sharing platform: accounts, subjects, study materials, and Q&A.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(shutdownCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	files, err := storage.NewLocalStore(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("upload dir setup failed")
	}

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	subjectRepo := mongodb.NewSubjectRepository(db)
	materialRepo := mongodb.NewMaterialRepository(db)
	questionRepo := mongodb.NewQuestionRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":     userRepo.EnsureIndexes,
		"subjects":  subjectRepo.EnsureIndexes,
		"materials": materialRepo.EnsureIndexes,
		"questions": questionRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Mail delivery ---
	var mailer ports.Mailer
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPMailer(email.Config{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			From:      cfg.SMTP.From,
			ClientURL: cfg.ClientURL,
		}, log)
	} else {
		log.Warn().Msg("SMTP_HOST not set, mail goes to the log only")
		mailer = email.NewLogMailer(log)
	}

	welcomeDispatcher := queue.NewMailDispatcher(0, mailer, log)
	welcomeDispatcher.Start(ctx)

	// --- Services ---
	tokens := service.NewTokenService()
	sessions := service.NewSessionIssuer(cfg.JWTSecret, cfg.SessionTTL)
	authService := service.NewAuthService(userRepo, tokens, sessions, mailer, welcomeDispatcher, cfg.BcryptCost, log)
	subjectService := service.NewSubjectService(subjectRepo, materialRepo, log)
	materialService := service.NewMaterialService(materialRepo, subjectRepo, files, log)
	questionService := service.NewQuestionService(questionRepo, subjectRepo, log)

	limiter := redisdb.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)

	e := api.NewRouter(api.RouterConfig{
		AuthService:     authService,
		SubjectService:  subjectService,
		MaterialService: materialService,
		QuestionService: questionService,
		Limiter:         limiter,
		Mongo:           db,
		Redis:           rdb,
		UploadDir:       cfg.UploadDir,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
