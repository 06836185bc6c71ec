package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/types"
)

type ProfileRepo interface {
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error)
  SampleByLocation(ctx context.Context, tx *gorm.DB, location string, excludeUserID uuid.UUID, limit int) ([]*types.Profile, error)
}

type profileRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
  return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if userID == uuid.Nil {
    return nil, nil
  }
  var profile types.Profile
  err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Limit(1).
    Find(&profile).Error
  if err != nil {
    return nil, err
  }
  if profile.ID == uuid.Nil {
    return nil, nil
  }
  return &profile, nil
}

func (r *profileRepo) SampleByLocation(ctx context.Context, tx *gorm.DB, location string, excludeUserID uuid.UUID, limit int) ([]*types.Profile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Profile
  if location == "" || limit <= 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("location = ? AND user_id <> ?", location, excludeUserID).
    Limit(limit).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
