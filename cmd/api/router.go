package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"equiplend/internal/cache"
	"equiplend/internal/config"
	"equiplend/internal/domain/activity"
	"equiplend/internal/domain/borrow"
	"equiplend/internal/domain/equipment"
	"equiplend/internal/domain/stats"
	"equiplend/internal/domain/upload"
	"equiplend/internal/domain/user"
	"equiplend/internal/middleware"
	jwtsvc "equiplend/internal/pkg/jwt"
	"equiplend/internal/pkg/response"
	"equiplend/internal/repository"
	"equiplend/internal/storage"
)

// newRouter wires repositories, services and handlers under /api.
// statsCache may be nil.
func newRouter(cfg *config.Config, db *gorm.DB, tokens *jwtsvc.Service, statsCache *cache.Store, objects storage.ObjectStore, hub *activity.Hub) *gin.Engine {
	userRepo := repository.NewUserRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	borrowRepo := repository.NewBorrowRepository(db)

	userService := user.NewService(userRepo, cfg.IsAdminEmail)
	equipmentService := equipment.NewService(equipmentRepo, statsCache)
	borrowService := borrow.NewService(borrowRepo, hub, statsCache)
	statsService := stats.NewService(borrowRepo, equipmentRepo, statsCache)
	uploadService := upload.NewService(objects, "")

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger(), middleware.RequestID(), middleware.ErrorLogger(), middleware.CORS(cfg.CORSAllowedOrigins))
	r.NoRoute(func(c *gin.Context) {
		response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		response.CustomError(c, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			response.CustomError(c, http.StatusServiceUnavailable, "UNHEALTHY", "database unreachable")
			return
		}
		response.OK(c, gin.H{"status": "ok", "subscribers": hub.Subscribers()})
	})
	if cfg.StorageDriver == config.StorageLocal {
		r.Static(cfg.StaticURLBase, cfg.UploadDir)
	}

	api := r.Group("/api")
	protected := api.Group("", middleware.JWTAuth(tokens, userService))

	user.RegisterRoutes(protected, user.NewHandler(userService))
	equipment.RegisterRoutes(api, protected, equipment.NewHandler(equipmentService))
	borrow.RegisterRoutes(api, protected, borrow.NewHandler(borrowService))
	activity.RegisterRoutes(api, activity.NewHandler(hub, cfg.CORSAllowedOrigins))
	stats.RegisterRoutes(protected, stats.NewHandler(statsService))
	upload.RegisterRoutes(protected, upload.NewHandler(uploadService))

	return r
}
