package types

import (
  "time"

  "github.com/google/uuid"
)

// ContentSimilarityCache holds aggregate embedding-similarity stats for one
// user so the originality scorer can skip the pairwise cosine pass while the
// row is still valid. Concurrent refreshes for the same user are a benign
// race; last write wins.
type ContentSimilarityCache struct {
  ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
  AvgSimilarity    float64    `gorm:"column:avg_similarity;not null;default:0" json:"avg_similarity"`
  MinSimilarity    float64    `gorm:"column:min_similarity;not null;default:0" json:"min_similarity"`
  MaxSimilarity    float64    `gorm:"column:max_similarity;not null;default:0" json:"max_similarity"`
  SampleSize       int        `gorm:"column:sample_size;not null;default:0" json:"sample_size"`
  ComparedPosts    int        `gorm:"column:compared_posts;not null;default:0" json:"compared_posts"`
  OriginalityScore int        `gorm:"column:originality_score;not null;default:0" json:"originality_score"`
  ValidUntil       time.Time  `gorm:"column:valid_until;not null" json:"valid_until"`
  CreatedAt        time.Time  `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt        time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (ContentSimilarityCache) TableName() string {
  return "content_similarity_cache"
}
