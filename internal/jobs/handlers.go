package jobs

import (
  "encoding/json"
  "fmt"

  "gorm.io/datatypes"

  "github.com/yungbote/souldna-backend/internal/clients/openai"
  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/repos"
  "github.com/yungbote/souldna-backend/internal/services"
  "github.com/yungbote/souldna-backend/internal/types"
)

// Caps how many posts one embedding_update job embeds; anything beyond waits
// for the next job for that user.
const embedPostsPerJob = 25

type contentAnalysisHandler struct {
  analysis services.ContentAnalysisService
}

func NewContentAnalysisHandler(analysis services.ContentAnalysisService) Handler {
  return &contentAnalysisHandler{analysis: analysis}
}

func (h *contentAnalysisHandler) Type() string {
  return types.JobTypeContentAnalysis
}

func (h *contentAnalysisHandler) Run(jc *Context) (int, error) {
  postID, err := jc.PostID()
  if err != nil {
    return 0, err
  }
  return h.analysis.AnalyzePost(jc.Ctx, postID)
}

type embeddingUpdateHandler struct {
  log   *logger.Logger
  posts repos.PostRepo
  ai    openai.Client
}

func NewEmbeddingUpdateHandler(baseLog *logger.Logger, posts repos.PostRepo, ai openai.Client) Handler {
  return &embeddingUpdateHandler{
    log:   baseLog.With("handler", "EmbeddingUpdateHandler"),
    posts: posts,
    ai:    ai,
  }
}

func (h *embeddingUpdateHandler) Type() string {
  return types.JobTypeEmbeddingUpdate
}

func (h *embeddingUpdateHandler) Run(jc *Context) (int, error) {
  userID, err := jc.UserID()
  if err != nil {
    return 0, err
  }
  posts, err := h.posts.GetUnembeddedByUserID(jc.Ctx, nil, userID, embedPostsPerJob)
  if err != nil {
    return 0, fmt.Errorf("load unembedded posts: %w", err)
  }
  if len(posts) == 0 {
    return 0, nil
  }

  captions := make([]string, len(posts))
  for i, post := range posts {
    captions[i] = post.Caption
  }
  vectors, tokens, err := h.ai.Embed(jc.Ctx, captions)
  if err != nil {
    return 0, fmt.Errorf("embed posts: %w", err)
  }
  if len(vectors) != len(posts) {
    return tokens, fmt.Errorf("embedding count mismatch: %d posts, %d vectors", len(posts), len(vectors))
  }

  for i, post := range posts {
    raw, err := json.Marshal(vectors[i])
    if err != nil {
      return tokens, fmt.Errorf("encode embedding: %w", err)
    }
    if err := h.posts.UpdateFields(jc.Ctx, nil, post.ID, map[string]interface{}{
      "embedding": datatypes.JSON(raw),
    }); err != nil {
      return tokens, fmt.Errorf("store embedding for post %s: %w", post.ID, err)
    }
  }
  h.log.Info("Embedded posts", "user_id", userID, "count", len(posts), "tokens", tokens)
  return tokens, nil
}

type dnaRecalculationHandler struct {
  scores services.DNAScoreService
}

func NewDNARecalculationHandler(scores services.DNAScoreService) Handler {
  return &dnaRecalculationHandler{scores: scores}
}

func (h *dnaRecalculationHandler) Type() string {
  return types.JobTypeDNARecalculation
}

func (h *dnaRecalculationHandler) Run(jc *Context) (int, error) {
  userID, err := jc.UserID()
  if err != nil {
    return 0, err
  }
  if _, err := h.scores.CalculateAndSave(jc.Ctx, userID); err != nil {
    return 0, fmt.Errorf("recalculate dna for user %s: %w", userID, err)
  }
  return 0, nil
}
