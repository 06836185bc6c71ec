package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "math"
  "time"

  "github.com/google/uuid"
  "golang.org/x/sync/errgroup"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/repos"
  "github.com/yungbote/souldna-backend/internal/souldna"
  "github.com/yungbote/souldna-backend/internal/types"
)

// ErrProfileNotFound is fatal for one user's calculation and propagates to
// the caller; the batch handler turns it into a job failure.
var ErrProfileNotFound = errors.New("profile not found")

const culturalPeerSample = 100

// PercentileRanker is the external ranked aggregation over all persisted
// scores. The Redis sorted-set client implements it in production; a
// DB-count fallback exists for deployments without Redis.
type PercentileRanker interface {
  RecordScore(ctx context.Context, userID uuid.UUID, finalScore int) error
  PercentileRank(ctx context.Context, finalScore int) (int, error)
}

type DNAScoreService interface {
  Calculate(ctx context.Context, userID uuid.UUID) (*souldna.Result, error)
  Save(ctx context.Context, result *souldna.Result) (*types.DNAScore, error)
  CalculateAndSave(ctx context.Context, userID uuid.UUID) (*types.DNAScore, error)
  GetByUserID(ctx context.Context, userID uuid.UUID) (*types.DNAScore, error)
}

type dnaScoreService struct {
  db           *gorm.DB
  log          *logger.Logger
  profiles     repos.ProfileRepo
  insights     repos.InsightRepo
  posts        repos.PostRepo
  traitStats   repos.TraitStatRepo
  scores       repos.DNAScoreRepo
  originality  OriginalityService
  cityClusters CityClusterService
  ranker       PercentileRanker
  now          func() time.Time
}

func NewDNAScoreService(
  db *gorm.DB,
  baseLog *logger.Logger,
  profiles repos.ProfileRepo,
  insights repos.InsightRepo,
  posts repos.PostRepo,
  traitStats repos.TraitStatRepo,
  scores repos.DNAScoreRepo,
  originality OriginalityService,
  cityClusters CityClusterService,
  ranker PercentileRanker,
) DNAScoreService {
  return &dnaScoreService{
    db:           db,
    log:          baseLog.With("service", "DNAScoreService"),
    profiles:     profiles,
    insights:     insights,
    posts:        posts,
    traitStats:   traitStats,
    scores:       scores,
    originality:  originality,
    cityClusters: cityClusters,
    ranker:       ranker,
    now:          time.Now,
  }
}

func (s *dnaScoreService) Calculate(ctx context.Context, userID uuid.UUID) (*souldna.Result, error) {
  profile, err := s.profiles.GetByUserID(ctx, nil, userID)
  if err != nil {
    return nil, fmt.Errorf("load profile: %w", err)
  }
  if profile == nil {
    return nil, fmt.Errorf("user %s: %w", userID, ErrProfileNotFound)
  }

  approvedInsights, err := s.insights.GetApprovedByUserID(ctx, nil, userID)
  if err != nil {
    return nil, fmt.Errorf("load approved insights: %w", err)
  }
  daysActive := souldna.DaysActive(profile.CreatedAt, s.now())

  if len(approvedInsights) < souldna.MinApprovedInsights {
    return souldna.SeedResult(userID, len(approvedInsights), daysActive), nil
  }

  posts, err := s.posts.GetByUserID(ctx, nil, userID)
  if err != nil {
    return nil, fmt.Errorf("load posts: %w", err)
  }

  // The five component scorers are independent; fan them out. Trait,
  // cultural and originality each do their own reads, depth and behavioral
  // are pure over what is already fetched.
  var (
    traitRes       souldna.TraitRarityResult
    depthScore     souldna.ComponentScore
    depthDims      map[string]float64
    behavioralRes  souldna.BehavioralResult
    culturalScore  souldna.ComponentScore
    originalityRes souldna.ComponentScore
  )

  g, gctx := errgroup.WithContext(ctx)
  g.Go(func() error {
    res, err := s.scoreTraitRarity(gctx, approvedInsights)
    if err != nil {
      return err
    }
    traitRes = res
    return nil
  })
  g.Go(func() error {
    depthScore, depthDims = souldna.ScoreProfileDepth(profile)
    return nil
  })
  g.Go(func() error {
    behavioralRes = souldna.ScoreBehavioral(daysActive, posts)
    return nil
  })
  g.Go(func() error {
    cluster := s.cityClusters.Resolve(gctx, profile)
    peers, err := s.profiles.SampleByLocation(gctx, nil, profile.Location, userID, culturalPeerSample)
    if err != nil {
      return fmt.Errorf("sample cultural peers: %w", err)
    }
    culturalScore = souldna.ScoreCulturalVariance(profile, peers, cluster)
    return nil
  })
  g.Go(func() error {
    res, err := s.originality.ScoreUser(gctx, userID)
    if err != nil {
      return fmt.Errorf("score originality: %w", err)
    }
    originalityRes = res
    return nil
  })
  if err := g.Wait(); err != nil {
    return nil, err
  }

  components := map[string]souldna.ComponentScore{
    souldna.ComponentTraitRarity:        traitRes.ComponentScore,
    souldna.ComponentProfileDepth:       depthScore,
    souldna.ComponentBehavioral:         behavioralRes.ComponentScore,
    souldna.ComponentContentOriginality: originalityRes,
    souldna.ComponentCulturalVariance:   culturalScore,
  }
  componentValues := make(map[string]float64, len(components))
  for name, c := range components {
    componentValues[name] = c.Score
  }
  finalScore := souldna.FinalScore(componentValues)

  dimensions := traitRes.Dimensions
  if dimensions == nil {
    dimensions = map[string]float64{}
  }
  for k, v := range depthDims {
    if _, exists := dimensions[k]; !exists {
      dimensions[k] = v
    }
  }

  result := &souldna.Result{
    UserID:                userID,
    FinalScore:            finalScore,
    RarityTier:            souldna.TierForScore(finalScore),
    Components:            components,
    Breakdown:             souldna.BuildBreakdown(components),
    RareTraits:            traitRes.RareTraits,
    UniqueBehaviors:       behavioralRes.UniqueBehaviors,
    Dimensions:            dimensions,
    ApprovedInsightsCount: len(approvedInsights),
    DaysActive:            daysActive,
    AlgorithmVersion:      souldna.AlgorithmVersion,
  }

  previous, err := s.scores.GetByUserID(ctx, nil, userID)
  if err != nil {
    return nil, fmt.Errorf("load previous score: %w", err)
  }
  if previous != nil {
    prevScore := previous.FinalScore
    prevTier := souldna.Tier(previous.RarityTier)
    result.PreviousScore = &prevScore
    result.PreviousTier = &prevTier
    result.ScoreDelta = finalScore - prevScore
  }

  rank, err := s.ranker.PercentileRank(ctx, finalScore)
  if err != nil {
    return nil, fmt.Errorf("percentile rank: %w", err)
  }
  result.PercentileRank = rank

  return result, nil
}

func (s *dnaScoreService) scoreTraitRarity(ctx context.Context, insights []*types.Insight) (souldna.TraitRarityResult, error) {
  traits := make([]souldna.TraitInput, 0, len(insights))
  keys := make([]string, 0, len(insights))
  for _, insight := range insights {
    key := souldna.NormalizeTraitKey(insight.Title)
    if key == "" {
      continue
    }
    traits = append(traits, souldna.TraitInput{Key: key, Category: insight.Category})
    keys = append(keys, key)
  }
  statRows, err := s.traitStats.GetByKeys(ctx, nil, keys)
  if err != nil {
    return souldna.TraitRarityResult{}, fmt.Errorf("load trait stats: %w", err)
  }
  stats := make(map[string]souldna.TraitStat, len(statRows))
  for _, row := range statRows {
    stats[row.TraitKey] = souldna.TraitStat{
      Category:  row.Category,
      Frequency: row.Frequency,
      IDFScore:  row.IDFScore,
    }
  }
  return souldna.ScoreTraitRarity(traits, stats), nil
}

// Save upserts the single live row for the user. This is the only place the
// persisted score's tier-change bookkeeping is decided.
func (s *dnaScoreService) Save(ctx context.Context, result *souldna.Result) (*types.DNAScore, error) {
  if result == nil {
    return nil, fmt.Errorf("nil result")
  }
  now := s.now()

  row := &types.DNAScore{
    ID:                      uuid.New(),
    UserID:                  result.UserID,
    FinalScore:              result.FinalScore,
    RarityTier:              string(result.RarityTier),
    PercentileRank:          result.PercentileRank,
    TraitRarityScore:        result.Components[souldna.ComponentTraitRarity].Score,
    ProfileDepthScore:       result.Components[souldna.ComponentProfileDepth].Score,
    BehavioralScore:         result.Components[souldna.ComponentBehavioral].Score,
    ContentOriginalityScore: result.Components[souldna.ComponentContentOriginality].Score,
    CulturalVarianceScore:   result.Components[souldna.ComponentCulturalVariance].Score,
    ComponentBreakdown:      mustJSON(result.Breakdown),
    RareTraits:              mustJSON(result.RareTraits),
    UniqueBehaviors:         mustJSON(result.UniqueBehaviors),
    ApprovedInsightsCount:   result.ApprovedInsightsCount,
    DaysActive:              result.DaysActive,
    AlgorithmVersion:        result.AlgorithmVersion,
    LastCalculatedAt:        now,
  }

  previous, err := s.scores.GetByUserID(ctx, nil, result.UserID)
  if err != nil {
    return nil, fmt.Errorf("load previous score: %w", err)
  }
  if previous != nil && previous.RarityTier != row.RarityTier {
    prevTier := previous.RarityTier
    changedAt := now
    row.PreviousTier = &prevTier
    row.TierChangedAt = &changedAt
    s.log.Info("Rarity tier changed",
      "user_id", result.UserID,
      "from", prevTier,
      "to", row.RarityTier,
    )
  }

  if err := s.scores.Upsert(ctx, nil, row); err != nil {
    return nil, fmt.Errorf("upsert dna score: %w", err)
  }

  if err := s.ranker.RecordScore(ctx, result.UserID, result.FinalScore); err != nil {
    // Ranking is eventually consistent; the persisted row is authoritative.
    s.log.Warn("Failed to record score in ranker", "user_id", result.UserID, "error", err)
  }
  return row, nil
}

func (s *dnaScoreService) CalculateAndSave(ctx context.Context, userID uuid.UUID) (*types.DNAScore, error) {
  result, err := s.Calculate(ctx, userID)
  if err != nil {
    return nil, err
  }
  return s.Save(ctx, result)
}

func (s *dnaScoreService) GetByUserID(ctx context.Context, userID uuid.UUID) (*types.DNAScore, error) {
  return s.scores.GetByUserID(ctx, nil, userID)
}

func mustJSON(v interface{}) datatypes.JSON {
  raw, err := json.Marshal(v)
  if err != nil {
    return datatypes.JSON([]byte("null"))
  }
  return datatypes.JSON(raw)
}

// NewDBPercentileRanker ranks against the persisted score table directly.
// Used when REDIS_ADDR is not configured; RecordScore is a no-op because the
// upsert already landed the row being counted.
func NewDBPercentileRanker(scores repos.DNAScoreRepo) PercentileRanker {
  return &dbPercentileRanker{scores: scores}
}

type dbPercentileRanker struct {
  scores repos.DNAScoreRepo
}

func (r *dbPercentileRanker) RecordScore(ctx context.Context, userID uuid.UUID, finalScore int) error {
  return nil
}

func (r *dbPercentileRanker) PercentileRank(ctx context.Context, finalScore int) (int, error) {
  total, err := r.scores.CountTotal(ctx, nil)
  if err != nil {
    return 0, err
  }
  if total == 0 {
    return 0, nil
  }
  atOrBelow, err := r.scores.CountAtOrBelow(ctx, nil, finalScore)
  if err != nil {
    return 0, err
  }
  return int(math.Round(float64(atOrBelow) / float64(total) * 100)), nil
}
