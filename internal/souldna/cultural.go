package souldna

import (
  "fmt"
  "math"
  "strings"

  "github.com/yungbote/souldna-backend/internal/types"
)

const minComparableProfiles = 5

// ScoreCulturalVariance compares the user against profiles sharing their
// location. Being unlike the local cohort scores positively: the composite
// measures rarity, not match quality. With no location or too small a
// cohort the component stays neutral at 50.
func ScoreCulturalVariance(profile *types.Profile, peers []*types.Profile, cluster string) ComponentScore {
  if profile == nil || strings.TrimSpace(profile.Location) == "" {
    return ComponentScore{
      Score:       50,
      Explanation: "No location set, cultural variance unknown",
    }
  }

  compared := 0
  mismatches := 0
  for _, peer := range peers {
    if peer == nil || peer.UserID == profile.UserID {
      continue
    }
    compared++
    if !equalFold(profile.ReligiousSect, peer.ReligiousSect) {
      mismatches++
    }
    if !equalFold(profile.Occupation, peer.Occupation) {
      mismatches++
    }
    if !equalFold(profile.MaritalStatus, peer.MaritalStatus) {
      mismatches++
    }
    if !equalBoolPtr(profile.WantsChildren, peer.WantsChildren) {
      mismatches++
    }
  }

  if compared < minComparableProfiles {
    return ComponentScore{
      Score:       50,
      Explanation: fmt.Sprintf("Not enough comparable profiles in %s yet (%d found)", cluster, compared),
    }
  }

  uniquenessRatio := float64(mismatches) / float64(4*compared)
  score := math.Round(uniquenessRatio * 100)
  return ComponentScore{
    Score:       score,
    Explanation: fmt.Sprintf("Compared against %d profiles in %s, you differ on %.0f%% of cultural markers", compared, cluster, uniquenessRatio*100),
  }
}

func equalFold(a, b string) bool {
  return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func equalBoolPtr(a, b *bool) bool {
  if a == nil || b == nil {
    return a == b
  }
  return *a == *b
}
