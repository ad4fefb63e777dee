package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	internalmiddleware "github.com/noah-isme/uni-request-api/internal/middleware"
	"github.com/noah-isme/uni-request-api/internal/models"
	"github.com/noah-isme/uni-request-api/internal/service"
	"github.com/noah-isme/uni-request-api/pkg/config"
	"github.com/noah-isme/uni-request-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-request-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-request-api/pkg/middleware/requestid"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	AddSeat    *AddSeatHandler
	OpenCourse *OpenCourseHandler
	Petition   *PetitionHandler
	Subjects   *SubjectHandler
	Dashboard  *DashboardHandler

	AuthService *service.AuthService
	Metrics     *service.MetricsService

	Ready func() error
}

// NewRouter assembles the gin engine with all middleware and routes.
func NewRouter(cfg *config.Config, logr *zap.Logger, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(h.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if h.Ready != nil {
			if err := h.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authn := internalmiddleware.JWT(h.AuthService)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", authn, h.Auth.Logout)
		auth.POST("/change-password", authn, h.Auth.ChangePassword)
		auth.GET("/me", authn, h.Auth.Me)
	}

	users := api.Group("/users", authn)
	{
		users.POST("", internalmiddleware.RBAC("ADMIN"), h.Users.Create)
		users.GET("", internalmiddleware.RBAC("ADMIN"), h.Users.List)
		users.GET("/:id", internalmiddleware.RBAC("ADMIN", "SELF"), h.Users.Get)
		users.PUT("/:id", internalmiddleware.RBAC("ADMIN", "SELF"), h.Users.Update)
		users.PUT("/:id/role", internalmiddleware.RBAC("ADMIN"), h.Users.ChangeRole)
		users.DELETE("/:id", internalmiddleware.RBAC("ADMIN"), h.Users.Delete)
	}

	mountRequestRoutes(api.Group("/requests/add-seat", authn), requestRoutes{
		create:     h.AddSeat.Create,
		draft:      h.AddSeat.CreateDraft,
		list:       h.AddSeat.List,
		drafts:     h.AddSeat.ListDrafts,
		draftCount: h.AddSeat.DraftCount,
		inbox:      h.AddSeat.Inbox,
		get:        h.AddSeat.Get,
		update:     h.AddSeat.Update,
		submit:     h.AddSeat.Submit,
		remove:     h.AddSeat.Delete,
		cancel:     h.AddSeat.Cancel,
		approve:    h.AddSeat.Approve,
		reject:     h.AddSeat.Reject,
		pdf:        h.AddSeat.PDF,
		reviewers:  []models.UserRole{models.RoleInstructor},
	})

	twoStepReviewers := []models.UserRole{models.RoleAdvisor, models.RoleHead}

	mountRequestRoutes(api.Group("/requests/open-course", authn), requestRoutes{
		create:     h.OpenCourse.Create,
		draft:      h.OpenCourse.CreateDraft,
		list:       h.OpenCourse.List,
		drafts:     h.OpenCourse.ListDrafts,
		draftCount: h.OpenCourse.DraftCount,
		inbox:      h.OpenCourse.Inbox,
		get:        h.OpenCourse.Get,
		update:     h.OpenCourse.Update,
		submit:     h.OpenCourse.Submit,
		remove:     h.OpenCourse.Delete,
		cancel:     h.OpenCourse.Cancel,
		approve:    h.OpenCourse.Approve,
		reject:     h.OpenCourse.Reject,
		pdf:        h.OpenCourse.PDF,
		reviewers:  twoStepReviewers,
	})

	mountRequestRoutes(api.Group("/requests/petition", authn), requestRoutes{
		create:     h.Petition.Create,
		draft:      h.Petition.CreateDraft,
		list:       h.Petition.List,
		drafts:     h.Petition.ListDrafts,
		draftCount: h.Petition.DraftCount,
		inbox:      h.Petition.Inbox,
		get:        h.Petition.Get,
		update:     h.Petition.Update,
		submit:     h.Petition.Submit,
		remove:     h.Petition.Delete,
		cancel:     h.Petition.Cancel,
		approve:    h.Petition.Approve,
		reject:     h.Petition.Reject,
		pdf:        h.Petition.PDF,
		reviewers:  twoStepReviewers,
	})

	subjects := api.Group("/subjects", authn)
	{
		subjects.GET("", h.Subjects.List)
		subjects.GET("/:id", h.Subjects.Get)
		subjects.POST("", internalmiddleware.RequireRoles(models.RoleAdmin), h.Subjects.Create)
		subjects.PUT("/:id", internalmiddleware.RequireRoles(models.RoleAdmin), h.Subjects.Update)
		subjects.DELETE("/:id", internalmiddleware.RequireRoles(models.RoleAdmin), h.Subjects.Delete)
	}

	if cfg.Dashboard.Enabled {
		dashboard := api.Group("/dashboard", authn, internalmiddleware.RequireRoles(models.RoleAdmin))
		dashboard.GET("/stats", h.Dashboard.Stats)
	}

	return r
}

// requestRoutes lists the handlers every request type exposes. All three
// forms share the same surface; only the reviewer roles differ.
type requestRoutes struct {
	create     gin.HandlerFunc
	draft      gin.HandlerFunc
	list       gin.HandlerFunc
	drafts     gin.HandlerFunc
	draftCount gin.HandlerFunc
	inbox      gin.HandlerFunc
	get        gin.HandlerFunc
	update     gin.HandlerFunc
	submit     gin.HandlerFunc
	remove     gin.HandlerFunc
	cancel     gin.HandlerFunc
	approve    gin.HandlerFunc
	reject     gin.HandlerFunc
	pdf        gin.HandlerFunc
	reviewers  []models.UserRole
}

func mountRequestRoutes(g *gin.RouterGroup, routes requestRoutes) {
	student := internalmiddleware.RequireRoles(models.RoleStudent)
	review := internalmiddleware.RequireRoles(routes.reviewers...)

	g.POST("", student, routes.create)
	g.POST("/draft", student, routes.draft)
	g.GET("", routes.list)
	g.GET("/drafts", routes.drafts)
	g.GET("/drafts/count", routes.draftCount)
	g.GET("/inbox", review, routes.inbox)
	g.GET("/:id", routes.get)
	g.PUT("/:id", routes.update)
	g.DELETE("/:id", routes.remove)
	g.POST("/:id/submit", routes.submit)
	g.POST("/:id/cancel", routes.cancel)
	g.POST("/:id/approve", review, routes.approve)
	g.POST("/:id/reject", review, routes.reject)
	g.GET("/:id/pdf", routes.pdf)
}
