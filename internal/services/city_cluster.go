package services

import (
  "context"
  "strings"

  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/types"
)

// DefaultCityCluster is the documented fallback for profiles whose location
// has no cluster assignment yet.
const DefaultCityCluster = "global_default"

type CityClusterService interface {
  Resolve(ctx context.Context, profile *types.Profile) string
}

type cityClusterService struct {
  log      *logger.Logger
  clusters map[string]string
}

// The assignment table is maintained by the growth team; this static seed
// covers launch markets until the lookup moves behind its own store.
var launchClusters = map[string]string{
  "istanbul": "istanbul_metro",
  "ankara":   "ankara_metro",
  "izmir":    "izmir_metro",
  "london":   "london_metro",
  "berlin":   "berlin_metro",
  "dubai":    "gulf_metro",
  "abu dhabi": "gulf_metro",
  "new york": "nyc_metro",
  "toronto":  "toronto_metro",
}

func NewCityClusterService(baseLog *logger.Logger) CityClusterService {
  return &cityClusterService{
    log:      baseLog.With("service", "CityClusterService"),
    clusters: launchClusters,
  }
}

func (s *cityClusterService) Resolve(ctx context.Context, profile *types.Profile) string {
  if profile == nil {
    return DefaultCityCluster
  }
  if cluster := strings.TrimSpace(profile.CityCluster); cluster != "" {
    return cluster
  }
  location := strings.ToLower(strings.TrimSpace(profile.Location))
  if location == "" {
    return DefaultCityCluster
  }
  if cluster, ok := s.clusters[location]; ok {
    return cluster
  }
  s.log.Debug("No cluster assignment for location, using fallback", "location", location)
  return DefaultCityCluster
}
