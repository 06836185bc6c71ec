package repos

import (
  "context"

  "gorm.io/gorm"

  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/types"
)

// TraitStatRepo reads the externally maintained trait distribution rollup.
type TraitStatRepo interface {
  GetByKeys(ctx context.Context, tx *gorm.DB, keys []string) ([]*types.TraitDistributionStat, error)
}

type traitStatRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTraitStatRepo(db *gorm.DB, baseLog *logger.Logger) TraitStatRepo {
  return &traitStatRepo{db: db, log: baseLog.With("repo", "TraitStatRepo")}
}

func (r *traitStatRepo) GetByKeys(ctx context.Context, tx *gorm.DB, keys []string) ([]*types.TraitDistributionStat, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.TraitDistributionStat
  if len(keys) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("trait_key IN ?", keys).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
