package services

import (
  "context"
  "encoding/json"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/yungbote/souldna-backend/internal/clients/openai"
  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/repos"
  "github.com/yungbote/souldna-backend/internal/types"
)

// ContentAnalysisService extracts insights from a post. Identical content
// (same content_hash) copies the prior analysis instead of paying for a new
// classification call.
type ContentAnalysisService interface {
  AnalyzePost(ctx context.Context, postID uuid.UUID) (int, error)
}

type contentAnalysisService struct {
  db       *gorm.DB
  log      *logger.Logger
  posts    repos.PostRepo
  insights repos.InsightRepo
  ai       openai.Client
  now      func() time.Time
}

func NewContentAnalysisService(db *gorm.DB, baseLog *logger.Logger, posts repos.PostRepo, insights repos.InsightRepo, ai openai.Client) ContentAnalysisService {
  return &contentAnalysisService{
    db:       db,
    log:      baseLog.With("service", "ContentAnalysisService"),
    posts:    posts,
    insights: insights,
    ai:       ai,
    now:      time.Now,
  }
}

// AnalyzePost returns the tokens spent so the batch run can account for
// them. A post that cannot be found is an error: the job retries and
// eventually fails if the row never appears. Re-analysis is idempotent: a
// completed post returns immediately and a retry of a partially-failed run
// reuses the insights the first attempt already persisted.
func (s *contentAnalysisService) AnalyzePost(ctx context.Context, postID uuid.UUID) (int, error) {
  post, err := s.posts.GetByID(ctx, nil, postID)
  if err != nil {
    return 0, fmt.Errorf("load post: %w", err)
  }
  if post == nil {
    return 0, fmt.Errorf("post %s not found", postID)
  }
  if post.ProcessingStatus == types.PostProcessingCompleted {
    s.log.Debug("Post already analyzed, skipping", "post_id", post.ID)
    return 0, nil
  }

  // A retry after stampProcessed failed mid-run already has its insight
  // rows; finish the bookkeeping instead of classifying (and inserting)
  // again.
  existing, err := s.insights.GetByPostID(ctx, nil, post.ID)
  if err != nil {
    return 0, fmt.Errorf("load existing insights: %w", err)
  }
  if len(existing) > 0 {
    if err := s.stampProcessed(ctx, post.ID, map[string]interface{}{
      "source":        "classification",
      "insight_count": len(existing),
      "tokens_used":   0,
    }); err != nil {
      return 0, err
    }
    s.log.Info("Reused insights from an earlier attempt", "post_id", post.ID, "insights", len(existing))
    return 0, nil
  }

  if post.ContentHash != "" {
    prior, err := s.posts.GetCompletedByContentHash(ctx, nil, post.ContentHash, post.ID)
    if err != nil {
      return 0, fmt.Errorf("look up content hash: %w", err)
    }
    if prior != nil {
      return 0, s.copyPriorAnalysis(ctx, post, prior)
    }
  }

  candidates, tokens, err := s.ai.ExtractInsights(ctx, post.Caption, post.CategoryList())
  if err != nil {
    return 0, fmt.Errorf("extract insights: %w", err)
  }

  rows := make([]*types.Insight, 0, len(candidates))
  for _, c := range candidates {
    rows = append(rows, &types.Insight{
      ID:          uuid.New(),
      UserID:      post.UserID,
      PostID:      post.ID,
      Category:    c.Category,
      Title:       c.Title,
      Description: c.Description,
      Confidence:  c.Confidence,
      Status:      types.InsightStatusPending,
    })
  }
  if _, err := s.insights.Create(ctx, nil, rows); err != nil {
    return tokens, fmt.Errorf("persist insights: %w", err)
  }

  if err := s.stampProcessed(ctx, post.ID, map[string]interface{}{
    "source":        "classification",
    "insight_count": len(rows),
    "tokens_used":   tokens,
  }); err != nil {
    return tokens, err
  }
  s.log.Info("Analyzed post", "post_id", post.ID, "insights", len(rows), "tokens", tokens)
  return tokens, nil
}

func (s *contentAnalysisService) copyPriorAnalysis(ctx context.Context, post, prior *types.Post) error {
  priorInsights, err := s.insights.GetByPostID(ctx, nil, prior.ID)
  if err != nil {
    return fmt.Errorf("load prior insights: %w", err)
  }
  rows := make([]*types.Insight, 0, len(priorInsights))
  for _, ins := range priorInsights {
    rows = append(rows, &types.Insight{
      ID:          uuid.New(),
      UserID:      post.UserID,
      PostID:      post.ID,
      Category:    ins.Category,
      Title:       ins.Title,
      Description: ins.Description,
      Confidence:  ins.Confidence,
      Status:      types.InsightStatusPending,
    })
  }
  if _, err := s.insights.Create(ctx, nil, rows); err != nil {
    return fmt.Errorf("persist copied insights: %w", err)
  }
  if err := s.stampProcessed(ctx, post.ID, map[string]interface{}{
    "source":      "content_hash_cache",
    "copied_from": prior.ID,
    "insight_count": len(rows),
  }); err != nil {
    return err
  }
  s.log.Info("Copied prior analysis for identical content",
    "post_id", post.ID,
    "copied_from", prior.ID,
    "insights", len(rows),
  )
  return nil
}

func (s *contentAnalysisService) stampProcessed(ctx context.Context, postID uuid.UUID, analysisResult map[string]interface{}) error {
  raw, err := json.Marshal(analysisResult)
  if err != nil {
    return err
  }
  return s.posts.UpdateFields(ctx, nil, postID, map[string]interface{}{
    "processing_status": types.PostProcessingCompleted,
    "processed_at":      s.now(),
    "analysis_result":   datatypes.JSON(raw),
  })
}
