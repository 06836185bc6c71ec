package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/yungbote/souldna-backend/internal/handlers"
  "github.com/yungbote/souldna-backend/internal/middleware"
)

type RouterConfig struct {
  DNAHandler   *handlers.DNAHandler
  BatchHandler *handlers.BatchHandler
  PostHandler  *handlers.PostHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.New()
  router.Use(gin.Recovery())
  router.Use(middleware.RequestID())

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  router.GET("/healthz", handlers.HealthCheck)

  internal := router.Group("/internal")
  {
    // Batch orchestration
    internal.POST("/batch/runs", cfg.BatchHandler.TriggerRun)
    internal.GET("/batch/runs", cfg.BatchHandler.ListRuns)
    // DNA scores
    internal.GET("/users/:id/dna", cfg.DNAHandler.GetDNA)
    internal.POST("/users/:id/dna/recalculate", cfg.DNAHandler.Recalculate)
    // Content analysis
    internal.POST("/posts/:id/analyze", cfg.PostHandler.Analyze)
  }

  return router
}
