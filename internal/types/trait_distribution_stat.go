package types

import (
  "time"

  "github.com/google/uuid"
)

// TraitDistributionStat is a population-level statistic per trait key,
// maintained by a periodic rollup outside the scoring engine. Frequency is
// the share of users holding the trait (0..1); lower frequency means higher
// rarity, reflected in the IDF score.
type TraitDistributionStat struct {
  ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  TraitKey   string     `gorm:"column:trait_key;not null;uniqueIndex" json:"trait_key"`
  Category   string     `gorm:"column:category" json:"category"`
  Frequency  float64    `gorm:"column:frequency;not null;default:0" json:"frequency"`
  IDFScore   float64    `gorm:"column:idf_score;not null;default:0" json:"idf_score"`
  UserCount  int        `gorm:"column:user_count;not null;default:0" json:"user_count"`
  TotalUsers int        `gorm:"column:total_users;not null;default:0" json:"total_users"`
  CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt  time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (TraitDistributionStat) TableName() string {
  return "trait_distribution_stat"
}
