// File: /routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"wanderlog-api/config"
	"wanderlog-api/controllers"
	"wanderlog-api/middleware"
	"wanderlog-api/repositories"
	"wanderlog-api/services"
)

func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, emailService *services.EmailService) {
	// Repositories and services
	tripRepo := repositories.NewTripRepository(db)
	followRepo := repositories.NewFollowRepository(db)
	visibility := services.NewVisibilityService(db, followRepo)

	// Controllers
	authController := controllers.NewAuthController(db, cfg.JWTSecret, emailService)
	userController := controllers.NewUserController(db, tripRepo, followRepo)
	followController := controllers.NewFollowController(db, followRepo)
	tripController := controllers.NewTripController(db, tripRepo, visibility, emailService)
	postController := controllers.NewPostController(db, visibility)
	bookmarkController := controllers.NewBookmarkController(db)
	searchController := controllers.NewSearchController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
		auth.POST("/verify-code", authController.VerifyCode)
		auth.POST("/resend-verification", authController.ResendVerificationCode)
		auth.POST("/reset-password", authController.ResetPassword)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		// User routes
		users := protected.Group("/users")
		{
			users.GET("/profile", userController.GetProfile)
			users.PUT("/profile", userController.UpdateProfile)
			users.DELETE("/profile", userController.DeleteAccount)
			users.GET("/:username", userController.GetUser)
			users.POST("/:username/follow", followController.FollowUser)
			users.DELETE("/:username/follow", followController.UnfollowUser)
			users.GET("/:username/followers", followController.GetFollowers)
			users.GET("/:username/following", followController.GetFollowing)
		}

		// Mutual friends (participant candidates for the planner)
		protected.GET("/friends", followController.GetFriends)

		// Trip routes
		trips := protected.Group("/trips")
		{
			trips.GET("/", tripController.GetMyTrips)
			trips.GET("/all", tripController.GetAllTrips)
			trips.POST("/", tripController.CreateSimpleTrip)
			trips.POST("/create", tripController.CreateCollaborativeTrip)
			trips.GET("/:id", tripController.GetTrip)
			trips.PUT("/:id", tripController.EditTrip)
			trips.DELETE("/:id", tripController.DeleteTrip)
			trips.POST("/:id/chat", tripController.AppendChatMessage)
			trips.GET("/:id/chat", tripController.ListChatMessages)
			trips.GET("/user/:username", tripController.GetUserTrips)
		}

		// Post routes
		posts := protected.Group("/posts")
		{
			posts.GET("/", postController.GetAllPosts)
			posts.POST("/", postController.CreatePost)
			posts.DELETE("/:id", postController.DeletePost)
			posts.GET("/user/:username", postController.GetUserPosts)
			posts.POST("/:id/comments", postController.AddComment)
			posts.GET("/:id/comments", postController.GetComments)
			posts.GET("/comments/:comment_id/replies", postController.GetReplies)
			posts.PUT("/comments/:comment_id", postController.UpdateComment)
			posts.DELETE("/comments/:comment_id", postController.DeleteComment)
			posts.POST("/:id/save", bookmarkController.ToggleSave)
		}

		// Bookmarks
		protected.GET("/bookmarks", bookmarkController.GetSavedPosts)

		// Search
		protected.GET("/search", searchController.Search)
	}
}
