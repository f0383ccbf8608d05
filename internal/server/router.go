package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/goldwen/matching-service/internal/handlers"
)

// RouterConfig wires handlers into the HTTP router.
type RouterConfig struct {
	MatchingHandler *handlers.MatchingHandler
	UsersHandler    *handlers.UsersHandler
}

// NewRouter builds the gin engine with CORS and all API routes mounted
// under /api/v1.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	}))

	router.GET("/health", handlers.HealthCheck)

	api := router.Group("/api/v1")
	{
		matching := api.Group("/matching")
		{
			matching.GET("/daily-selection/:userID", cfg.MatchingHandler.GetDailySelection)
			matching.POST("/generate-selection/:userID", cfg.MatchingHandler.GenerateSelection)
			matching.POST("/compatibility-score", cfg.MatchingHandler.CompatibilityScore)
			matching.POST("/user-choice/:userID", cfg.MatchingHandler.RecordChoice)
			matching.GET("/user-choices/:userID", cfg.MatchingHandler.ListChoices)
		}

		users := api.Group("/users")
		{
			users.POST("", cfg.UsersHandler.CreateUser)
			users.GET("/:userID", cfg.UsersHandler.GetUser)
			users.POST("/:userID/personality", cfg.UsersHandler.SubmitQuestionnaire)
			users.GET("/:userID/personality", cfg.UsersHandler.GetQuestionnaire)
			users.PUT("/:userID/premium", cfg.UsersHandler.SetPremium)
			users.DELETE("/:userID", cfg.UsersHandler.DeleteUser)
		}
	}

	return router
}
