package types

import (
  "time"

  "github.com/google/uuid"
)

const (
  InsightStatusPending  = "pending"
  InsightStatusApproved = "approved"
  InsightStatusRejected = "rejected"
)

// Insight is an extracted claim about a user derived from one of their posts.
// Only approved insights count toward scoring.
type Insight struct {
  ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
  PostID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"post_id"`
  Post        *Post      `gorm:"constraint:OnDelete:CASCADE;foreignKey:PostID;references:ID" json:"post,omitempty"`
  Category    string     `gorm:"column:category;not null" json:"category"`
  Title       string     `gorm:"column:title;not null" json:"title"`
  Description string     `gorm:"column:description" json:"description"`
  Confidence  float64    `gorm:"column:confidence;not null;default:0" json:"confidence"`
  Status      string     `gorm:"column:status;not null;default:pending;index" json:"status"`
  CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Insight) TableName() string {
  return "insight"
}
