package main

import (
  "context"
  "fmt"
  "os"
  "time"

  "github.com/yungbote/souldna-backend/internal/clients/openai"
  "github.com/yungbote/souldna-backend/internal/clients/redis"
  "github.com/yungbote/souldna-backend/internal/db"
  "github.com/yungbote/souldna-backend/internal/handlers"
  "github.com/yungbote/souldna-backend/internal/jobs"
  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/repos"
  "github.com/yungbote/souldna-backend/internal/server"
  "github.com/yungbote/souldna-backend/internal/services"
  "github.com/yungbote/souldna-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  port := utils.GetEnv("PORT", "8080", log)
  batchIntervalSeconds := utils.GetEnvAsInt("BATCH_INTERVAL_SECONDS", 3600, log)
  batchJobDelayMS := utils.GetEnvAsInt("BATCH_JOB_DELAY_MS", 50, log)
  batchRunOnStart := utils.GetEnvAsBool("BATCH_RUN_ON_START", false, log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Fatal("Postgres init failed", "error", err)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Fatal("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  profileRepo := repos.NewProfileRepo(thePG, log)
  insightRepo := repos.NewInsightRepo(thePG, log)
  postRepo := repos.NewPostRepo(thePG, log)
  traitStatRepo := repos.NewTraitStatRepo(thePG, log)
  dnaScoreRepo := repos.NewDNAScoreRepo(thePG, log)
  similarityCacheRepo := repos.NewSimilarityCacheRepo(thePG, log)
  batchJobRepo := repos.NewBatchJobRepo(thePG, log)
  batchRunRepo := repos.NewBatchRunRepo(thePG, log)

  // Clients
  openaiClient, err := openai.New(log)
  if err != nil {
    log.Fatal("Could not init OpenAI client", "error", err)
  }
  var ranker services.PercentileRanker
  if os.Getenv("REDIS_ADDR") != "" {
    redisRanker, err := redis.NewPercentileRanker(log)
    if err != nil {
      log.Fatal("Could not init Redis percentile ranker", "error", err)
    }
    defer redisRanker.Close()
    ranker = redisRanker
  } else {
    log.Warn("REDIS_ADDR not set, ranking percentiles against Postgres")
    ranker = services.NewDBPercentileRanker(dnaScoreRepo)
  }

  // Services
  log.Info("Setting up Services from main...")
  cityClusterService := services.NewCityClusterService(log)
  originalityService := services.NewOriginalityService(thePG, log, postRepo, similarityCacheRepo)
  dnaScoreService := services.NewDNAScoreService(
    thePG,
    log,
    profileRepo,
    insightRepo,
    postRepo,
    traitStatRepo,
    dnaScoreRepo,
    originalityService,
    cityClusterService,
    ranker,
  )
  contentAnalysisService := services.NewContentAnalysisService(thePG, log, postRepo, insightRepo, openaiClient)

  // Batch runner
  registry := jobs.NewRegistry()
  for _, h := range []jobs.Handler{
    jobs.NewContentAnalysisHandler(contentAnalysisService),
    jobs.NewEmbeddingUpdateHandler(log, postRepo, openaiClient),
    jobs.NewDNARecalculationHandler(dnaScoreService),
  } {
    if err := registry.Register(h); err != nil {
      log.Fatal("Could not register job handler", "error", err)
    }
  }
  runner := jobs.NewRunner(log, batchJobRepo, batchRunRepo, registry, time.Duration(batchJobDelayMS)*time.Millisecond)
  go func() {
    if batchRunOnStart {
      if _, err := runner.RunOnce(context.Background(), "startup"); err != nil {
        log.Error("Startup batch run failed", "error", err)
      }
    }
    runner.Start(context.Background(), time.Duration(batchIntervalSeconds)*time.Second)
  }()

  // HTTP
  router := server.NewRouter(server.RouterConfig{
    DNAHandler:   handlers.NewDNAHandler(dnaScoreService, batchJobRepo),
    BatchHandler: handlers.NewBatchHandler(runner, batchRunRepo),
    PostHandler:  handlers.NewPostHandler(postRepo, batchJobRepo),
  })
  log.Info("Starting HTTP server", "port", port)
  if err := router.Run(":" + port); err != nil {
    log.Fatal("HTTP server exited", "error", err)
  }
}
