package routes

import (
	"os"
	"strings"
	"time"

	"redditsync/handlers"
	"redditsync/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func allowedOrigins() []string {
	if env := os.Getenv("CORS_ALLOWED_ORIGINS"); env != "" {
		return strings.Split(env, ",")
	}
	return []string{"http://localhost:3000", "http://127.0.0.1:3000"}
}

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Reddit manager API is running",
			"time":    time.Now().Unix(),
		})
	})

	// Public auth routes, rate limited against credential stuffing
	auth := router.Group("/api")
	auth.Use(middleware.RateLimitMiddleware())
	auth.POST("/auth/signup/", handlers.Signup)
	auth.POST("/auth/login/", handlers.Login)
	auth.POST("/token/", handlers.ObtainTokenPair)
	auth.POST("/token/refresh/", handlers.RefreshTokenPair)

	// OAuth callback is public: Reddit redirects the browser here and the
	// stored state token identifies the user.
	router.GET("/api/reddit/callback/", handlers.RedditCallback)

	// Protected routes group
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware())

	// Session
	protected.POST("/auth/logout/", handlers.Logout)
	protected.GET("/auth/user/", handlers.CurrentUser)

	// Reddit linkage
	protected.GET("/reddit/accounts/", handlers.ListRedditAccounts)
	protected.GET("/reddit/apps/", handlers.ListRedditApps)
	protected.POST("/reddit/connect/", handlers.ConnectReddit)
	protected.DELETE("/reddit/disconnect/:id/", handlers.DisconnectReddit)
	protected.POST("/reddit/accounts/:id/test/", handlers.TestRedditConnection)
	protected.POST("/reddit/accounts/:id/switch-app/", handlers.SwitchRedditApp)

	// Posts
	protected.GET("/posts/", handlers.ListPosts)
	protected.POST("/posts/create/", handlers.CreatePost)
	protected.GET("/posts/posted/", handlers.ListPostedPosts)
	protected.GET("/posts/scheduled/", handlers.ListScheduledPosts)
	protected.GET("/posts/failed/", handlers.ListFailedPosts)
	protected.GET("/posts/:id/", handlers.GetPost)
	protected.PUT("/posts/:id/", handlers.UpdatePost)
	protected.DELETE("/posts/:id/", handlers.DeletePost)
	protected.POST("/posts/:id/publish/", handlers.PublishPost)
	protected.POST("/posts/:id/schedule/", handlers.SchedulePost)
	protected.POST("/posts/:id/retry/", handlers.RetryPost)

	// JSON 404 for unknown API routes
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{
				"error":   "Endpoint not found",
				"path":    c.Request.URL.Path,
				"message": "Check the API documentation for available endpoints",
			})
			return
		}
		c.Next()
	})

	return router
}
