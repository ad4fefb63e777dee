package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/uni-request-api/api/swagger"
	"github.com/noah-isme/uni-request-api/internal/handler"
	"github.com/noah-isme/uni-request-api/internal/pdf"
	"github.com/noah-isme/uni-request-api/internal/repository"
	"github.com/noah-isme/uni-request-api/internal/service"
	"github.com/noah-isme/uni-request-api/pkg/cache"
	"github.com/noah-isme/uni-request-api/pkg/config"
	"github.com/noah-isme/uni-request-api/pkg/database"
	"github.com/noah-isme/uni-request-api/pkg/logger"
)

// @title University Request API
// @version 1.0.0
// @description Request management backend with role-gated review chains
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional; without it caching is disabled and the API
	// falls through to the database.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	addSeatRepo := repository.NewAddSeatRepository(db)
	openCourseRepo := repository.NewOpenCourseRepository(db)
	petitionRepo := repository.NewPetitionRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	audit := service.NewAuditService(userRepo, logr, service.AuditOptions{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		MaxRetries: cfg.Audit.MaxRetries,
	})
	audit.Start(ctx)
	defer audit.Stop()

	renderer := pdf.NewRenderer(cfg.PDF.InstitutionName)

	authSvc := service.NewAuthService(userRepo, audit, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, audit, validate, logr, cfg.Users.AllowedEmailDomain)
	addSeatSvc := service.NewAddSeatService(addSeatRepo, audit, renderer, logr)
	openCourseSvc := service.NewOpenCourseService(openCourseRepo, audit, renderer, logr)
	petitionSvc := service.NewPetitionService(petitionRepo, audit, renderer, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil)
	dashboardSvc := service.NewDashboardService(statsRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)

	router := handler.NewRouter(cfg, logr, handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Users:      handler.NewUserHandler(userSvc),
		AddSeat:    handler.NewAddSeatHandler(addSeatSvc, metrics),
		OpenCourse: handler.NewOpenCourseHandler(openCourseSvc, metrics),
		Petition:   handler.NewPetitionHandler(petitionSvc, metrics),
		Subjects:   handler.NewSubjectHandler(subjectSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),

		AuthService: authSvc,
		Metrics:     metrics,

		Ready: db.Ping,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}

	if err := cacheRepo.Close(); err != nil {
		logr.Warn("failed to close redis", zap.Error(err))
	}
}
