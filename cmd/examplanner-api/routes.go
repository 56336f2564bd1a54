package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/examplanner-api/api/swagger"
	"github.com/noah-isme/examplanner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/examplanner-api/internal/middleware"
	"github.com/noah-isme/examplanner-api/internal/models"
	"github.com/noah-isme/examplanner-api/internal/service"
	"github.com/noah-isme/examplanner-api/pkg/config"
	"github.com/noah-isme/examplanner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/examplanner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/examplanner-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	students     *handler.StudentHandler
	classrooms   *handler.ClassroomHandler
	examSlots    *handler.ExamSlotHandler
	invigilators *handler.InvigilatorHandler
	allotments   *handler.AllotmentHandler
	metrics      *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, tokens internalmiddleware.TokenValidator, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	// Signed links are the credential for downloads; a bearer token only tags the request log.
	api.GET("/allotments/export/:token", internalmiddleware.OptionalJWT(tokens), h.allotments.Download)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(tokens))
	secured.GET("/metrics/summary", h.metrics.Summary)

	secured.GET("/students", h.students.List)
	secured.GET("/students/:id", h.students.Get)
	secured.GET("/classrooms", h.classrooms.List)
	secured.GET("/classrooms/:id", h.classrooms.Get)
	secured.GET("/exam-slots", h.examSlots.List)
	secured.GET("/exam-slots/:id", h.examSlots.Get)
	secured.GET("/invigilators", h.invigilators.List)
	secured.GET("/invigilators/:id", h.invigilators.Get)
	secured.GET("/allotments", h.allotments.List)
	secured.GET("/allotments/:id", h.allotments.Get)

	admin := secured.Group("")
	admin.Use(internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))

	admin.POST("/students", h.students.Create)
	admin.PUT("/students/:id", h.students.Update)
	admin.DELETE("/students/:id", h.students.Delete)

	admin.POST("/classrooms", h.classrooms.Create)
	admin.PUT("/classrooms/:id", h.classrooms.Update)
	admin.DELETE("/classrooms/:id", h.classrooms.Delete)

	admin.POST("/exam-slots", h.examSlots.Create)
	admin.PUT("/exam-slots/:id", h.examSlots.Update)
	admin.DELETE("/exam-slots/:id", h.examSlots.Delete)

	admin.POST("/invigilators", h.invigilators.Create)
	admin.PUT("/invigilators/:id", h.invigilators.Update)
	admin.DELETE("/invigilators/:id", h.invigilators.Delete)

	admin.POST("/allotments/preview", h.allotments.Preview)
	admin.POST("/allotments/commit", h.allotments.Commit)
	admin.DELETE("/allotments/:id", h.allotments.Delete)
	admin.POST("/allotments/:id/export", h.allotments.Export)

	return r
}
