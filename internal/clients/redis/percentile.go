package redis

import (
  "context"
  "fmt"
  "math"
  "os"
  "strings"
  "time"

  "github.com/google/uuid"
  goredis "github.com/redis/go-redis/v9"

  "github.com/yungbote/souldna-backend/internal/logger"
)

// PercentileRanker answers "what share of scored users sit at or below this
// score". Backed by one sorted set over all live DNA scores, refreshed on
// every score upsert.
type PercentileRanker interface {
  RecordScore(ctx context.Context, userID uuid.UUID, finalScore int) error
  PercentileRank(ctx context.Context, finalScore int) (int, error)
  Close() error
}

type percentileRanker struct {
  log *logger.Logger
  rdb *goredis.Client
  key string
}

func NewPercentileRanker(log *logger.Logger) (PercentileRanker, error) {
  if log == nil {
    return nil, fmt.Errorf("logger required")
  }

  addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
  if addr == "" {
    return nil, fmt.Errorf("missing REDIS_ADDR")
  }
  key := strings.TrimSpace(os.Getenv("REDIS_SCORE_KEY"))
  if key == "" {
    key = "souldna:scores"
  }

  rdb := goredis.NewClient(&goredis.Options{
    Addr:        addr,
    DialTimeout: 5 * time.Second,
  })

  ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if err := rdb.Ping(ctx).Err(); err != nil {
    _ = rdb.Close()
    return nil, fmt.Errorf("redis ping: %w", err)
  }

  return &percentileRanker{
    log: log.With("client", "RedisPercentileRanker"),
    rdb: rdb,
    key: key,
  }, nil
}

func (r *percentileRanker) RecordScore(ctx context.Context, userID uuid.UUID, finalScore int) error {
  if r == nil || r.rdb == nil {
    return fmt.Errorf("percentile ranker not initialized")
  }
  if userID == uuid.Nil {
    return fmt.Errorf("missing user id")
  }
  return r.rdb.ZAdd(ctx, r.key, goredis.Z{
    Score:  float64(finalScore),
    Member: userID.String(),
  }).Err()
}

func (r *percentileRanker) PercentileRank(ctx context.Context, finalScore int) (int, error) {
  if r == nil || r.rdb == nil {
    return 0, fmt.Errorf("percentile ranker not initialized")
  }
  total, err := r.rdb.ZCard(ctx, r.key).Result()
  if err != nil {
    return 0, err
  }
  if total == 0 {
    return 0, nil
  }
  atOrBelow, err := r.rdb.ZCount(ctx, r.key, "-inf", fmt.Sprintf("%d", finalScore)).Result()
  if err != nil {
    return 0, err
  }
  return int(math.Round(float64(atOrBelow) / float64(total) * 100)), nil
}

func (r *percentileRanker) Close() error {
  if r == nil || r.rdb == nil {
    return nil
  }
  return r.rdb.Close()
}
