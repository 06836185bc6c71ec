package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// DNAScore is the single live MySoulDNA row per user. It is upserted on every
// recalculation; PreviousTier/TierChangedAt are stamped only when the tier
// moved, otherwise left null.
type DNAScore struct {
  ID                      uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID                  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
  FinalScore              int             `gorm:"column:final_score;not null;default:0" json:"final_score"`
  RarityTier              string          `gorm:"column:rarity_tier;not null;default:COMMON" json:"rarity_tier"`
  PercentileRank          int             `gorm:"column:percentile_rank;not null;default:0" json:"percentile_rank"`
  TraitRarityScore        float64         `gorm:"column:trait_rarity_score;not null;default:0" json:"trait_rarity_score"`
  ProfileDepthScore       float64         `gorm:"column:profile_depth_score;not null;default:0" json:"profile_depth_score"`
  BehavioralScore         float64         `gorm:"column:behavioral_score;not null;default:0" json:"behavioral_score"`
  ContentOriginalityScore float64         `gorm:"column:content_originality_score;not null;default:0" json:"content_originality_score"`
  CulturalVarianceScore   float64         `gorm:"column:cultural_variance_score;not null;default:0" json:"cultural_variance_score"`
  ComponentBreakdown      datatypes.JSON  `gorm:"type:jsonb;column:component_breakdown" json:"component_breakdown"`
  RareTraits              datatypes.JSON  `gorm:"type:jsonb;column:rare_traits" json:"rare_traits"`
  UniqueBehaviors         datatypes.JSON  `gorm:"type:jsonb;column:unique_behaviors" json:"unique_behaviors"`
  ApprovedInsightsCount   int             `gorm:"column:approved_insights_count;not null;default:0" json:"approved_insights_count"`
  DaysActive              int             `gorm:"column:days_active;not null;default:0" json:"days_active"`
  AlgorithmVersion        string          `gorm:"column:algorithm_version;not null" json:"algorithm_version"`
  PreviousTier            *string         `gorm:"column:previous_tier" json:"previous_tier,omitempty"`
  TierChangedAt           *time.Time      `gorm:"column:tier_changed_at" json:"tier_changed_at,omitempty"`
  LastCalculatedAt        time.Time       `gorm:"column:last_calculated_at;not null;default:now()" json:"last_calculated_at"`
  CreatedAt               time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt               time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (DNAScore) TableName() string {
  return "dna_score"
}
