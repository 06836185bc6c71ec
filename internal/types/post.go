package types

import (
  "encoding/json"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

const (
  PostProcessingPending   = "pending"
  PostProcessingCompleted = "completed"
)

// Post is a unit of shared content. DepthLevel is 1-4, higher meaning more
// emotionally/substantively rich. Embedding is a 1536-dim vector serialized
// as a JSON array; empty until the embedding_update job fills it in.
type Post struct {
  ID               uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
  Caption          string          `gorm:"column:caption" json:"caption"`
  Categories       datatypes.JSON  `gorm:"type:jsonb;column:categories" json:"categories"`
  DepthLevel       int             `gorm:"column:depth_level;not null;default:1" json:"depth_level"`
  Embedding        datatypes.JSON  `gorm:"type:jsonb;column:embedding" json:"embedding,omitempty"`
  ContentHash      string          `gorm:"column:content_hash;index" json:"content_hash"`
  ProcessingStatus string          `gorm:"column:processing_status;not null;default:pending" json:"processing_status"`
  ProcessedAt      *time.Time      `gorm:"column:processed_at" json:"processed_at,omitempty"`
  AnalysisResult   datatypes.JSON  `gorm:"type:jsonb;column:analysis_result" json:"analysis_result,omitempty"`
  CreatedAt        time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt        time.Time       `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt        gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (Post) TableName() string {
  return "post"
}

// EmbeddingVector decodes the stored JSON embedding. Returns false when the
// post has no usable embedding.
func (p *Post) EmbeddingVector() ([]float32, bool) {
  if p == nil || len(p.Embedding) == 0 {
    return nil, false
  }
  var vec []float32
  if err := json.Unmarshal(p.Embedding, &vec); err != nil || len(vec) == 0 {
    return nil, false
  }
  return vec, true
}

// CategoryList decodes the stored JSON categories, tolerating a missing or
// malformed column.
func (p *Post) CategoryList() []string {
  if p == nil || len(p.Categories) == 0 {
    return nil
  }
  var out []string
  if err := json.Unmarshal(p.Categories, &out); err != nil {
    return nil
  }
  return out
}
