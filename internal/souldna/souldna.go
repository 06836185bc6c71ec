package souldna

import (
  "fmt"
  "math"

  "github.com/google/uuid"
)

const (
  AlgorithmVersion = "2.1"

  // MinApprovedInsights gates the whole calculation: below the floor a user
  // stays in the seed state, no partial credit.
  MinApprovedInsights = 5

  // MinDaysForBehavioral gates the behavioral component only.
  MinDaysForBehavioral = 7
)

const (
  ComponentTraitRarity        = "trait_rarity"
  ComponentProfileDepth       = "profile_depth"
  ComponentBehavioral         = "behavioral"
  ComponentContentOriginality = "content_originality"
  ComponentCulturalVariance   = "cultural_variance"
)

// Weights sum to exactly 1.0. Both the synchronous API path and the batch
// recalculation handler aggregate through FinalScore, so these are the only
// copy of the weights anywhere.
var Weights = map[string]float64{
  ComponentTraitRarity:        0.35,
  ComponentProfileDepth:       0.25,
  ComponentBehavioral:         0.20,
  ComponentContentOriginality: 0.15,
  ComponentCulturalVariance:   0.05,
}

// ComponentScore is one scorer's output: a 0-100 score plus a plain-language
// explanation the UI can render without special-casing seed/neutral states.
type ComponentScore struct {
  Score       float64 `json:"score"`
  Explanation string  `json:"explanation"`
}

type BreakdownEntry struct {
  Score       float64 `json:"score"`
  Weight      float64 `json:"weight"`
  Explanation string  `json:"explanation"`
}

type RareTrait struct {
  TraitKey   string  `json:"trait_key"`
  Category   string  `json:"category"`
  Frequency  float64 `json:"frequency"`
  IDFScore   float64 `json:"idf_score"`
  Percentile float64 `json:"percentile"`
}

type UniqueBehavior struct {
  Behavior       string  `json:"behavior"`
  UserValue      float64 `json:"user_value"`
  PopulationMean float64 `json:"population_mean"`
  Percentile     float64 `json:"percentile"`
}

// Result is the full outcome of one MySoulDNA calculation.
type Result struct {
  UserID                uuid.UUID                  `json:"user_id"`
  FinalScore            int                        `json:"final_score"`
  RarityTier            Tier                       `json:"rarity_tier"`
  PercentileRank        int                        `json:"percentile_rank"`
  Components            map[string]ComponentScore  `json:"components"`
  Breakdown             map[string]BreakdownEntry  `json:"breakdown"`
  RareTraits            []RareTrait                `json:"rare_traits"`
  UniqueBehaviors       []UniqueBehavior           `json:"unique_behaviors"`
  Dimensions            map[string]float64         `json:"dimensions"`
  ApprovedInsightsCount int                        `json:"approved_insights_count"`
  DaysActive            int                        `json:"days_active"`
  AlgorithmVersion      string                     `json:"algorithm_version"`
  PreviousScore         *int                       `json:"previous_score,omitempty"`
  PreviousTier          *Tier                      `json:"previous_tier,omitempty"`
  ScoreDelta            int                        `json:"score_delta"`
}

// FinalScore collapses component scores into the weighted 0-100 composite.
// Missing components weigh in at zero.
func FinalScore(components map[string]float64) int {
  sum := 0.0
  for name, weight := range Weights {
    sum += components[name] * weight
  }
  rounded := int(math.Round(sum))
  if rounded < 0 {
    return 0
  }
  if rounded > 100 {
    return 100
  }
  return rounded
}

func BuildBreakdown(components map[string]ComponentScore) map[string]BreakdownEntry {
  out := make(map[string]BreakdownEntry, len(Weights))
  for name, weight := range Weights {
    c := components[name]
    out[name] = BreakdownEntry{
      Score:       c.Score,
      Weight:      weight,
      Explanation: c.Explanation,
    }
  }
  return out
}

// SeedResult is the fully-populated zero state returned while a user sits
// below the approved-insight floor.
func SeedResult(userID uuid.UUID, approvedInsights int, daysActive int) *Result {
  needMsg := fmt.Sprintf("Need at least %d approved insights to calculate your SoulDNA (you have %d)", MinApprovedInsights, approvedInsights)
  components := map[string]ComponentScore{
    ComponentTraitRarity:        {Score: 0, Explanation: needMsg},
    ComponentProfileDepth:       {Score: 0, Explanation: "Profile depth is scored once enough insights are approved"},
    ComponentBehavioral:         {Score: 0, Explanation: "Behavioral signal is scored once enough insights are approved"},
    ComponentContentOriginality: {Score: 0, Explanation: "Content originality is scored once enough insights are approved"},
    ComponentCulturalVariance:   {Score: 0, Explanation: "Cultural variance is scored once enough insights are approved"},
  }
  return &Result{
    UserID:                userID,
    FinalScore:            0,
    RarityTier:            TierCommon,
    PercentileRank:        0,
    Components:            components,
    Breakdown:             BuildBreakdown(components),
    RareTraits:            []RareTrait{},
    UniqueBehaviors:       []UniqueBehavior{},
    Dimensions:            map[string]float64{},
    ApprovedInsightsCount: approvedInsights,
    DaysActive:            daysActive,
    AlgorithmVersion:      AlgorithmVersion,
  }
}
