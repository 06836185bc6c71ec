package services

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/souldna-backend/internal/clients/openai"
  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/souldna"
  "github.com/yungbote/souldna-backend/internal/types"
)

func testLogger() *logger.Logger {
  log, err := logger.New("test")
  if err != nil {
    panic(err)
  }
  return log
}

type stubProfileRepo struct {
  profile *types.Profile
  peers   []*types.Profile
}

func (s *stubProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error) {
  return s.profile, nil
}

func (s *stubProfileRepo) SampleByLocation(ctx context.Context, tx *gorm.DB, location string, excludeUserID uuid.UUID, limit int) ([]*types.Profile, error) {
  return s.peers, nil
}

type stubInsightRepo struct {
  approved []*types.Insight
  byPost   map[uuid.UUID][]*types.Insight
  created  [][]*types.Insight
}

func (s *stubInsightRepo) Create(ctx context.Context, tx *gorm.DB, insights []*types.Insight) ([]*types.Insight, error) {
  s.created = append(s.created, insights)
  return insights, nil
}

func (s *stubInsightRepo) GetApprovedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Insight, error) {
  return s.approved, nil
}

func (s *stubInsightRepo) GetByPostID(ctx context.Context, tx *gorm.DB, postID uuid.UUID) ([]*types.Insight, error) {
  return s.byPost[postID], nil
}

type stubPostRepo struct {
  byID          map[uuid.UUID]*types.Post
  byUser        []*types.Post
  recentEmbedded []*types.Post
  population    []*types.Post
  unembedded    []*types.Post
  byHash        *types.Post
  updates       map[uuid.UUID]map[string]interface{}
}

func (s *stubPostRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Post, error) {
  return s.byID[id], nil
}

func (s *stubPostRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Post, error) {
  return s.byUser, nil
}

func (s *stubPostRepo) GetRecentEmbedded(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Post, error) {
  return s.recentEmbedded, nil
}

func (s *stubPostRepo) SamplePopulationEmbedded(ctx context.Context, tx *gorm.DB, excludeUserID uuid.UUID, limit int) ([]*types.Post, error) {
  return s.population, nil
}

func (s *stubPostRepo) GetUnembeddedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Post, error) {
  return s.unembedded, nil
}

func (s *stubPostRepo) GetCompletedByContentHash(ctx context.Context, tx *gorm.DB, contentHash string, excludePostID uuid.UUID) (*types.Post, error) {
  return s.byHash, nil
}

func (s *stubPostRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  if s.updates == nil {
    s.updates = map[uuid.UUID]map[string]interface{}{}
  }
  s.updates[id] = updates
  return nil
}

type stubTraitStatRepo struct {
  stats []*types.TraitDistributionStat
}

func (s *stubTraitStatRepo) GetByKeys(ctx context.Context, tx *gorm.DB, keys []string) ([]*types.TraitDistributionStat, error) {
  return s.stats, nil
}

type stubDNAScoreRepo struct {
  existing *types.DNAScore
  upserted []*types.DNAScore
  total    int64
  atOrBelow int64
}

func (s *stubDNAScoreRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.DNAScore, error) {
  return s.existing, nil
}

func (s *stubDNAScoreRepo) Upsert(ctx context.Context, tx *gorm.DB, score *types.DNAScore) error {
  s.upserted = append(s.upserted, score)
  return nil
}

func (s *stubDNAScoreRepo) CountTotal(ctx context.Context, tx *gorm.DB) (int64, error) {
  return s.total, nil
}

func (s *stubDNAScoreRepo) CountAtOrBelow(ctx context.Context, tx *gorm.DB, finalScore int) (int64, error) {
  return s.atOrBelow, nil
}

type stubSimilarityCacheRepo struct {
  valid    *types.ContentSimilarityCache
  upserted []*types.ContentSimilarityCache
}

func (s *stubSimilarityCacheRepo) GetValidByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) (*types.ContentSimilarityCache, error) {
  return s.valid, nil
}

func (s *stubSimilarityCacheRepo) Upsert(ctx context.Context, tx *gorm.DB, entry *types.ContentSimilarityCache) error {
  s.upserted = append(s.upserted, entry)
  return nil
}

type stubOriginality struct {
  score souldna.ComponentScore
  err   error
}

func (s *stubOriginality) ScoreUser(ctx context.Context, userID uuid.UUID) (souldna.ComponentScore, error) {
  return s.score, s.err
}

type stubRanker struct {
  rank     int
  recorded []int
}

func (s *stubRanker) RecordScore(ctx context.Context, userID uuid.UUID, finalScore int) error {
  s.recorded = append(s.recorded, finalScore)
  return nil
}

func (s *stubRanker) PercentileRank(ctx context.Context, finalScore int) (int, error) {
  return s.rank, nil
}

type stubAIClient struct {
  insights     []openai.InsightCandidate
  tokens       int
  embedded     [][]float32
  embedTokens  int
  err          error
  embedCalls   int
  extractCalls int
}

func (s *stubAIClient) Embed(ctx context.Context, inputs []string) ([][]float32, int, error) {
  s.embedCalls++
  if s.err != nil {
    return nil, 0, s.err
  }
  if s.embedded != nil {
    return s.embedded, s.embedTokens, nil
  }
  out := make([][]float32, len(inputs))
  for i := range inputs {
    out[i] = []float32{0.1, 0.2, 0.3}
  }
  return out, s.embedTokens, nil
}

func (s *stubAIClient) ExtractInsights(ctx context.Context, caption string, categories []string) ([]openai.InsightCandidate, int, error) {
  s.extractCalls++
  if s.err != nil {
    return nil, 0, s.err
  }
  return s.insights, s.tokens, nil
}
