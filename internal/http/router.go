package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/auth"
	"github.com/inkwellcms/inkwell/internal/cache"
	"github.com/inkwellcms/inkwell/internal/cache/redisclient"
	"github.com/inkwellcms/inkwell/internal/config"
	"github.com/inkwellcms/inkwell/internal/domain/user"
	"github.com/inkwellcms/inkwell/internal/http/handlers"
	"github.com/inkwellcms/inkwell/internal/http/middlewares"
	"github.com/inkwellcms/inkwell/internal/observability"
	"github.com/inkwellcms/inkwell/internal/repo/postgres"
	"github.com/inkwellcms/inkwell/internal/uploads"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(cfg config.Config, pool *pgxpool.Pool, rds *redisclient.Client, prom *observability.Prom, files *uploads.Store) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(prom.GinHandleMiddleware())
	r.Use(otelgin.Middleware("inkwell-api"))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// uploaded files are served straight off disk
	r.Static("/uploads", files.Dir())

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool)
	postsRepo := postgres.NewPostsRepo(pool)
	pagesRepo := postgres.NewPagesRepo(pool)
	clientsRepo := postgres.NewClientsRepo(pool)
	mediaRepo := postgres.NewMediaRepo(pool)
	settingsRepo := postgres.NewSettingsRepo(pool)
	taxonomyRepo := postgres.NewTaxonomyRepo(pool)
	commentsRepo := postgres.NewCommentsRepo(pool)
	dashboardRepo := postgres.NewDashboardRepo(pool, prom)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	authMw := middlewares.NewAuthMiddleware(jwtManager, usersRepo)

	requireAuth := authMw.RequireAuth()
	optionalAuth := authMw.OptionalAuth()
	adminOnly := authMw.RequireRole(user.RoleAdmin)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, refreshRepo, cfg)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	postsHandler := handlers.NewPostsHandler(postsRepo, taxonomyRepo)
	pagesHandler := handlers.NewPagesHandler(pagesRepo)
	clientsHandler := handlers.NewClientsHandler(clientsRepo)
	mediaHandler := handlers.NewMediaHandler(mediaRepo, files, cfg.MaxUploadBytes)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo, cache.New(10*time.Second))
	taxonomyHandler := handlers.NewTaxonomyHandler(taxonomyRepo)
	commentsHandler := handlers.NewCommentsHandler(commentsRepo, postsRepo)
	dashboardHandler := handlers.NewDashboardHandler(dashboardRepo, rds)

	loginLimiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	limitByIP := loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	// JSON routes stay at the small body cap; only the upload route
	// gets the multipart-sized one.
	jsonBody := middlewares.MaxBodyBytes(cfg.MaxBodyBytes)
	uploadBody := middlewares.MaxBodyBytes(cfg.MaxUploadBytes)

	authGroup := api.Group("/auth", jsonBody)
	authGroup.POST("/login", limitByIP, authHandler.Login)
	authGroup.POST("/register", limitByIP, authHandler.Register)
	authGroup.GET("/me", requireAuth, authHandler.Me)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)

	usersGroup := api.Group("/users", jsonBody, requireAuth)
	usersGroup.GET("", adminOnly, usersHandler.ListUsers)
	usersGroup.GET("/:id", usersHandler.GetUser)
	usersGroup.PUT("/:id", usersHandler.UpdateUser)
	usersGroup.DELETE("/:id", adminOnly, usersHandler.DeleteUser)

	clientsGroup := api.Group("/clients", jsonBody, requireAuth)
	clientsGroup.GET("", clientsHandler.ListClients)
	clientsGroup.GET("/:id", clientsHandler.GetClient)
	clientsGroup.POST("", clientsHandler.CreateClient)
	clientsGroup.PUT("/:id", clientsHandler.UpdateClient)
	clientsGroup.DELETE("/:id", clientsHandler.DeleteClient)

	blogGroup := api.Group("/blog", jsonBody)
	blogGroup.GET("/categories", taxonomyHandler.ListCategories)
	blogGroup.POST("/categories", requireAuth, adminOnly, taxonomyHandler.CreateCategory)
	blogGroup.DELETE("/categories/:id", requireAuth, adminOnly, taxonomyHandler.DeleteCategory)
	blogGroup.GET("/tags", taxonomyHandler.ListTags)
	blogGroup.POST("/tags", requireAuth, adminOnly, taxonomyHandler.CreateTag)
	blogGroup.DELETE("/tags/:id", requireAuth, adminOnly, taxonomyHandler.DeleteTag)

	blogGroup.GET("", postsHandler.ListPosts)
	blogGroup.GET("/:identifier", postsHandler.GetPost)
	blogGroup.POST("", requireAuth, postsHandler.CreatePost)
	blogGroup.PUT("/:identifier", requireAuth, postsHandler.UpdatePost)
	blogGroup.DELETE("/:identifier", requireAuth, postsHandler.DeletePost)

	blogGroup.GET("/:identifier/comments", optionalAuth, commentsHandler.ListComments)
	blogGroup.POST("/:identifier/comments", commentsHandler.CreateComment)
	blogGroup.PUT("/comments/:commentId", requireAuth, commentsHandler.ModerateComment)
	blogGroup.DELETE("/comments/:commentId", requireAuth, commentsHandler.DeleteComment)

	pagesGroup := api.Group("/pages", jsonBody)
	pagesGroup.GET("", pagesHandler.ListPages)
	pagesGroup.GET("/:identifier", pagesHandler.GetPage)
	pagesGroup.POST("", requireAuth, pagesHandler.CreatePage)
	pagesGroup.PUT("/:identifier", requireAuth, pagesHandler.UpdatePage)
	pagesGroup.DELETE("/:identifier", requireAuth, pagesHandler.DeletePage)

	mediaGroup := api.Group("/media", requireAuth)
	mediaGroup.GET("", mediaHandler.ListMedia)
	mediaGroup.POST("/upload", uploadBody, mediaHandler.Upload)
	mediaGroup.DELETE("/:id", mediaHandler.DeleteMedia)

	settingsGroup := api.Group("/settings", jsonBody)
	settingsGroup.GET("", settingsHandler.GetSettings)
	settingsGroup.GET("/:key", settingsHandler.GetSetting)
	settingsGroup.PUT("", requireAuth, adminOnly, settingsHandler.UpdateSettings)

	api.GET("/dashboard/stats", jsonBody, requireAuth, dashboardHandler.GetStats)

	return r
}
