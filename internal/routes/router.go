package routes

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"store-directory/internal/config"
	"store-directory/internal/database"
	"store-directory/internal/logger"
	"store-directory/internal/mailer"
	"store-directory/internal/middleware"
	storehandler "store-directory/internal/store/handler"
	storerepository "store-directory/internal/store/repository"
	storeservice "store-directory/internal/store/service"
	"store-directory/internal/upload"
	userhandler "store-directory/internal/user/handler"
	userrepository "store-directory/internal/user/repository"
	userservice "store-directory/internal/user/service"
	"store-directory/pkg/utils"
)

func SetupRoutes(cfg *config.Config, db *database.Database) (*gin.Engine, error) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	sessionStore := cookie.NewStore([]byte(cfg.Session.Secret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Server.Environment == "production",
	})
	router.Use(sessions.Sessions(cfg.Session.Name, sessionStore))

	router.LoadHTMLGlob("templates/*.html")
	router.Static("/uploads", cfg.Upload.Dir)

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Service is running", nil)
	})

	userRepository := userrepository.NewRepository(db)
	userService := userservice.NewService(userRepository, mailer.NewSMTPMailer(&cfg.SMTP))
	userHandler := userhandler.NewHandler(userService, cfg.Server.BaseURL)

	photoProcessor, err := upload.NewProcessor(&cfg.Upload)
	if err != nil {
		return nil, err
	}

	storeRepository := storerepository.NewRepository(db)
	storeService := storeservice.NewService(storeRepository)
	storeHandler := storehandler.NewHandler(storeService, photoProcessor)

	router.Use(middleware.CurrentUser(userService))

	root := router.Group("")
	{
		userHandler.RegisterRoutes(root)
		storeHandler.RegisterRoutes(root)

		protected := root.Group("")
		protected.Use(middleware.LoginRequired())
		{
			storeHandler.RegisterProtectedRoutes(protected)
		}
	}

	api := router.Group("/api/v1")
	{
		storeHandler.RegisterAPIRoutes(api)
	}

	logger.Info("All routes initialized")
	return router, nil
}
