package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/examplanner-api/internal/allocation"
	"github.com/noah-isme/examplanner-api/internal/handler"
	"github.com/noah-isme/examplanner-api/internal/repository"
	"github.com/noah-isme/examplanner-api/internal/service"
	"github.com/noah-isme/examplanner-api/pkg/cache"
	"github.com/noah-isme/examplanner-api/pkg/config"
	"github.com/noah-isme/examplanner-api/pkg/database"
	"github.com/noah-isme/examplanner-api/pkg/docstore"
	"github.com/noah-isme/examplanner-api/pkg/events"
	"github.com/noah-isme/examplanner-api/pkg/export"
	"github.com/noah-isme/examplanner-api/pkg/jobs"
	"github.com/noah-isme/examplanner-api/pkg/logger"
	"github.com/noah-isme/examplanner-api/pkg/storage"
)

// @title Examplanner API
// @version 1.0.0
// @description Exam seat allocation and invigilator assignment
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, allotment cache disabled", zap.Error(err))
	} else {
		redisClient = client
		defer redisClient.Close() //nolint:errcheck
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metrics := service.NewMetricsService()

	students := repository.NewStudentRepository(db)
	classrooms := repository.NewClassroomRepository(db)
	examSlots := repository.NewExamSlotRepository(db)
	invigilators := repository.NewInvigilatorRepository(db)
	allotments := repository.NewAllotmentRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Allotment.CacheTTL, logr, redisClient != nil)

	publisher := newPublisher(cfg, logr)
	defer publisher.Close() //nolint:errcheck
	mirror := newMirror(ctx, cfg, logr)
	defer mirror.Close() //nolint:errcheck

	router := jobs.NewRouter()
	publication := service.NewAllotmentPublicationService(allotments, publisher, mirror, cacheSvc, metrics, logr)
	publication.Register(router)
	queue := jobs.NewQueue("allotment-publication", router.Dispatch, jobs.QueueConfig{
		Workers:    cfg.Publication.WorkerConcurrency,
		MaxRetries: cfg.Publication.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	allotmentSvc := service.NewAllotmentService(
		examSlots,
		students,
		classrooms,
		invigilators,
		allotments,
		db,
		cacheSvc,
		metrics,
		queue,
		validate,
		logr,
		service.AllotmentConfig{
			ProposalTTL: cfg.Allotment.ProposalTTL,
			Options: allocation.Options{
				SortByRollNumber: cfg.Allotment.SortByRollNumber,
				HeadcountBasis:   allocation.ParseHeadcountBasis(cfg.Allotment.HeadcountBasis),
			},
		},
	)

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewAllotmentExportService(allotments, classrooms, files, signer, validate, logr,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
		export.NewCSVExporter(), export.NewPDFExporter())
	go runExportCleanup(ctx, exportSvc, cfg.Exports.SignedURLTTL, logr)

	auth := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})

	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	engine := newRouter(cfg, logr, metrics, auth, routeHandlers{
		students:     handler.NewStudentHandler(service.NewStudentService(students, validate, logr)),
		classrooms:   handler.NewClassroomHandler(service.NewClassroomService(classrooms, validate, logr)),
		examSlots:    handler.NewExamSlotHandler(service.NewExamSlotService(examSlots, validate, logr)),
		invigilators: handler.NewInvigilatorHandler(service.NewInvigilatorService(invigilators, validate, logr)),
		allotments:   handler.NewAllotmentHandler(allotmentSvc, exportSvc),
		metrics:      handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
}

func newPublisher(cfg *config.Config, logr *zap.Logger) events.Publisher {
	if cfg.Publication.RabbitMQURL == "" {
		logr.Info("rabbitmq not configured, allotment events disabled")
		return events.NoopPublisher{}
	}
	return events.NewRabbitPublisher(cfg.Publication.RabbitMQURL, cfg.Publication.RabbitMQQueue, logr)
}

func newMirror(ctx context.Context, cfg *config.Config, logr *zap.Logger) docstore.Mirror {
	if cfg.Publication.FirestoreProjectID == "" {
		return docstore.NoopMirror{}
	}
	mirror, err := docstore.NewFirestoreMirror(ctx, docstore.FirestoreConfig{
		ProjectID:       cfg.Publication.FirestoreProjectID,
		CredentialsFile: cfg.Publication.FirestoreCredentialsFile,
		Collection:      cfg.Publication.FirestoreCollection,
	})
	if err != nil {
		logr.Warn("firestore mirror unavailable", zap.Error(err))
		return docstore.NoopMirror{}
	}
	return mirror
}

func runExportCleanup(ctx context.Context, exports *service.AllotmentExportService, ttl time.Duration, logr *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := exports.Cleanup(ttl)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}
