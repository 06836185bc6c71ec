package services

import (
  "context"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"

  "github.com/yungbote/souldna-backend/internal/clients/openai"
  "github.com/yungbote/souldna-backend/internal/types"
)

func newTestContentAnalysis(posts *stubPostRepo, insights *stubInsightRepo, ai openai.Client) *contentAnalysisService {
  return &contentAnalysisService{
    db:       nil,
    log:      testLogger(),
    posts:    posts,
    insights: insights,
    ai:       ai,
    now:      time.Now,
  }
}

func TestAnalyzePostMissingPost(t *testing.T) {
  svc := newTestContentAnalysis(&stubPostRepo{}, &stubInsightRepo{}, &stubAIClient{})
  _, err := svc.AnalyzePost(context.Background(), uuid.New())
  if err == nil || !strings.Contains(err.Error(), "not found") {
    t.Fatalf("err = %v, want not-found error", err)
  }
}

func TestAnalyzePostClassifiesAndPersists(t *testing.T) {
  userID := uuid.New()
  post := &types.Post{
    ID:      uuid.New(),
    UserID:  userID,
    Caption: "Spent the weekend volunteering at the shelter",
  }
  posts := &stubPostRepo{byID: map[uuid.UUID]*types.Post{post.ID: post}}
  insights := &stubInsightRepo{}
  ai := &stubAIClient{
    insights: []openai.InsightCandidate{
      {Category: "values", Title: "Community minded", Description: "Volunteers regularly", Confidence: 0.9},
      {Category: "lifestyle", Title: "Animal lover", Confidence: 0.7},
    },
    tokens: 350,
  }
  svc := newTestContentAnalysis(posts, insights, ai)

  tokens, err := svc.AnalyzePost(context.Background(), post.ID)
  if err != nil {
    t.Fatalf("AnalyzePost: %v", err)
  }
  if tokens != 350 {
    t.Errorf("tokens = %d, want 350", tokens)
  }

  if len(insights.created) != 1 || len(insights.created[0]) != 2 {
    t.Fatalf("created = %v, want one batch of 2 insights", insights.created)
  }
  for _, ins := range insights.created[0] {
    if ins.Status != types.InsightStatusPending {
      t.Errorf("insight status = %s, want pending for moderation", ins.Status)
    }
    if ins.UserID != userID || ins.PostID != post.ID {
      t.Errorf("insight attributed to %s/%s, want %s/%s", ins.UserID, ins.PostID, userID, post.ID)
    }
  }

  updates, ok := posts.updates[post.ID]
  if !ok {
    t.Fatalf("post was never stamped processed")
  }
  if updates["processing_status"] != types.PostProcessingCompleted {
    t.Errorf("processing_status = %v, want completed", updates["processing_status"])
  }
}

func TestAnalyzePostCopiesPriorAnalysisForIdenticalContent(t *testing.T) {
  userID := uuid.New()
  post := &types.Post{
    ID:          uuid.New(),
    UserID:      userID,
    Caption:     "Same caption as before",
    ContentHash: "abc123",
  }
  prior := &types.Post{
    ID:               uuid.New(),
    UserID:           uuid.New(),
    ContentHash:      "abc123",
    ProcessingStatus: types.PostProcessingCompleted,
  }
  posts := &stubPostRepo{
    byID:   map[uuid.UUID]*types.Post{post.ID: post},
    byHash: prior,
  }
  insights := &stubInsightRepo{byPost: map[uuid.UUID][]*types.Insight{
    prior.ID: {
      {ID: uuid.New(), UserID: prior.UserID, PostID: prior.ID, Title: "Coffee enthusiast", Status: types.InsightStatusApproved},
    },
  }}
  ai := &stubAIClient{tokens: 999}
  svc := newTestContentAnalysis(posts, insights, ai)

  tokens, err := svc.AnalyzePost(context.Background(), post.ID)
  if err != nil {
    t.Fatalf("AnalyzePost: %v", err)
  }
  if tokens != 0 {
    t.Errorf("tokens = %d, want 0 for the dedupe path", tokens)
  }

  if len(insights.created) != 1 || len(insights.created[0]) != 1 {
    t.Fatalf("created = %v, want the prior insight copied once", insights.created)
  }
  copied := insights.created[0][0]
  if copied.PostID != post.ID || copied.UserID != userID {
    t.Errorf("copy attributed to %s/%s, want the new post's user and id", copied.UserID, copied.PostID)
  }
  if copied.Status != types.InsightStatusPending {
    t.Errorf("copied status = %s, want pending (re-moderated for the new user)", copied.Status)
  }
  if copied.ID == insights.byPost[prior.ID][0].ID {
    t.Errorf("copy reused the prior insight row id")
  }

  updates := posts.updates[post.ID]
  if updates == nil {
    t.Fatalf("post was never stamped processed")
  }
}

func TestAnalyzePostCompletedPostIsIdempotent(t *testing.T) {
  userID := uuid.New()
  post := &types.Post{
    ID:               uuid.New(),
    UserID:           userID,
    Caption:          "Already handled last run",
    ProcessingStatus: types.PostProcessingCompleted,
  }
  posts := &stubPostRepo{byID: map[uuid.UUID]*types.Post{post.ID: post}}
  insights := &stubInsightRepo{}
  ai := &stubAIClient{
    insights: []openai.InsightCandidate{{Category: "values", Title: "Dup", Confidence: 0.8}},
    tokens:   500,
  }
  svc := newTestContentAnalysis(posts, insights, ai)

  tokens, err := svc.AnalyzePost(context.Background(), post.ID)
  if err != nil {
    t.Fatalf("AnalyzePost: %v", err)
  }
  if tokens != 0 {
    t.Errorf("tokens = %d, want 0 for an already-completed post", tokens)
  }
  if ai.extractCalls != 0 {
    t.Errorf("classification calls = %d, want 0", ai.extractCalls)
  }
  if len(insights.created) != 0 {
    t.Errorf("created %d insight batches, want 0 (no duplicates)", len(insights.created))
  }
  if len(posts.updates) != 0 {
    t.Errorf("post was re-stamped: %v", posts.updates)
  }
}

func TestAnalyzePostRetryReusesEarlierInsights(t *testing.T) {
  userID := uuid.New()
  post := &types.Post{
    ID:               uuid.New(),
    UserID:           userID,
    Caption:          "First attempt inserted insights, then crashed before stamping",
    ProcessingStatus: types.PostProcessingPending,
  }
  posts := &stubPostRepo{byID: map[uuid.UUID]*types.Post{post.ID: post}}
  insights := &stubInsightRepo{byPost: map[uuid.UUID][]*types.Insight{
    post.ID: {
      {ID: uuid.New(), UserID: userID, PostID: post.ID, Title: "Bookworm", Status: types.InsightStatusPending},
      {ID: uuid.New(), UserID: userID, PostID: post.ID, Title: "Night owl", Status: types.InsightStatusPending},
    },
  }}
  ai := &stubAIClient{tokens: 500}
  svc := newTestContentAnalysis(posts, insights, ai)

  tokens, err := svc.AnalyzePost(context.Background(), post.ID)
  if err != nil {
    t.Fatalf("AnalyzePost: %v", err)
  }
  if tokens != 0 {
    t.Errorf("tokens = %d, want 0 when reusing earlier insights", tokens)
  }
  if ai.extractCalls != 0 {
    t.Errorf("classification calls = %d, want 0", ai.extractCalls)
  }
  if len(insights.created) != 0 {
    t.Errorf("created %d insight batches, want 0 (rows already exist)", len(insights.created))
  }
  updates := posts.updates[post.ID]
  if updates == nil || updates["processing_status"] != types.PostProcessingCompleted {
    t.Errorf("retry should finish the bookkeeping, got %v", updates)
  }
}

func TestAnalyzePostNoInsightsStillCompletes(t *testing.T) {
  post := &types.Post{ID: uuid.New(), UserID: uuid.New(), Caption: "ok"}
  posts := &stubPostRepo{byID: map[uuid.UUID]*types.Post{post.ID: post}}
  insights := &stubInsightRepo{}
  svc := newTestContentAnalysis(posts, insights, &stubAIClient{tokens: 40})

  tokens, err := svc.AnalyzePost(context.Background(), post.ID)
  if err != nil {
    t.Fatalf("AnalyzePost: %v", err)
  }
  if tokens != 40 {
    t.Errorf("tokens = %d, want 40", tokens)
  }
  if updates := posts.updates[post.ID]; updates["processing_status"] != types.PostProcessingCompleted {
    t.Errorf("post with zero insights should still complete, got %v", updates)
  }
}
