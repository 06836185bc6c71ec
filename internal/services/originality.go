package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/repos"
  "github.com/yungbote/souldna-backend/internal/souldna"
  "github.com/yungbote/souldna-backend/internal/types"
)

const (
  maxUserEmbeddings   = 10
  minUserEmbeddings   = 3
  maxPopulationSample = 1000
  minPopulationSample = 10
  similarityCacheTTL  = 7 * 24 * time.Hour
)

// OriginalityService scores content novelty against a population sample of
// post embeddings, with a per-user cache in front of the O(n*m) pairwise
// pass.
type OriginalityService interface {
  ScoreUser(ctx context.Context, userID uuid.UUID) (souldna.ComponentScore, error)
}

type originalityService struct {
  db    *gorm.DB
  log   *logger.Logger
  posts repos.PostRepo
  cache repos.SimilarityCacheRepo
  now   func() time.Time
}

func NewOriginalityService(db *gorm.DB, baseLog *logger.Logger, posts repos.PostRepo, cache repos.SimilarityCacheRepo) OriginalityService {
  return &originalityService{
    db:    db,
    log:   baseLog.With("service", "OriginalityService"),
    posts: posts,
    cache: cache,
    now:   time.Now,
  }
}

func (s *originalityService) ScoreUser(ctx context.Context, userID uuid.UUID) (souldna.ComponentScore, error) {
  now := s.now()

  cached, err := s.cache.GetValidByUserID(ctx, nil, userID, now)
  if err != nil {
    return souldna.ComponentScore{}, fmt.Errorf("read similarity cache: %w", err)
  }
  if cached != nil {
    return souldna.ComponentScore{
      Score:       float64(cached.OriginalityScore),
      Explanation: fmt.Sprintf("Compared %d of your posts against %d others (cached)", cached.ComparedPosts, cached.SampleSize),
    }, nil
  }

  userPosts, err := s.posts.GetRecentEmbedded(ctx, nil, userID, maxUserEmbeddings)
  if err != nil {
    return souldna.ComponentScore{}, fmt.Errorf("load user embeddings: %w", err)
  }
  userVecs := embeddingVectors(userPosts)
  if len(userVecs) < minUserEmbeddings {
    return souldna.ComponentScore{
      Score:       50,
      Explanation: fmt.Sprintf("Need at least %d embedded posts to measure originality (you have %d)", minUserEmbeddings, len(userVecs)),
    }, nil
  }

  populationPosts, err := s.posts.SamplePopulationEmbedded(ctx, nil, userID, maxPopulationSample)
  if err != nil {
    return souldna.ComponentScore{}, fmt.Errorf("sample population embeddings: %w", err)
  }
  populationVecs := embeddingVectors(populationPosts)
  if len(populationVecs) < minPopulationSample {
    return souldna.ComponentScore{
      Score:       50,
      Explanation: "Not enough community content to compare against yet",
    }, nil
  }

  stats := souldna.ComputeSimilarityStats(userVecs, populationVecs)
  score := souldna.OriginalityFromSimilarity(stats.Avg)

  entry := &types.ContentSimilarityCache{
    ID:               uuid.New(),
    UserID:           userID,
    AvgSimilarity:    stats.Avg,
    MinSimilarity:    stats.Min,
    MaxSimilarity:    stats.Max,
    SampleSize:       stats.SampleSize,
    ComparedPosts:    stats.ComparedPosts,
    OriginalityScore: score,
    ValidUntil:       now.Add(similarityCacheTTL),
  }
  if err := s.cache.Upsert(ctx, nil, entry); err != nil {
    // The cache only saves recomputation; a failed write must not fail the
    // score.
    s.log.Warn("Failed to upsert similarity cache", "user_id", userID, "error", err)
  }

  return souldna.ComponentScore{
    Score:       float64(score),
    Explanation: fmt.Sprintf("Compared %d of your posts against %d others", stats.ComparedPosts, stats.SampleSize),
  }, nil
}

func embeddingVectors(posts []*types.Post) [][]float32 {
  out := make([][]float32, 0, len(posts))
  for _, post := range posts {
    if vec, ok := post.EmbeddingVector(); ok {
      out = append(out, vec)
    }
  }
  return out
}
