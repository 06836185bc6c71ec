package souldna

import (
  "fmt"
  "strings"

  "github.com/yungbote/souldna-backend/internal/types"
)

// ScoreProfileDepth measures how completely the user filled their profile.
// Four dimensions are a filled-field fraction over a fixed checklist; the
// personality dimension is a discrete bio-length rule, since a bio needs a
// minimum length before it says anything.
func ScoreProfileDepth(profile *types.Profile) (ComponentScore, map[string]float64) {
  if profile == nil {
    return ComponentScore{Score: 0, Explanation: "No profile on record"}, map[string]float64{}
  }

  religious := checklistScore(
    profile.Religion,
    profile.ReligiousSect,
    profile.PracticeLevel,
    profile.PrayerFrequency,
  )
  career := checklistScore(
    profile.Education,
    profile.Occupation,
    profile.CareerGoals,
  )
  lifestyle := checklistScore(
    profile.Smoking,
    profile.Drinking,
    profile.Exercise,
    profile.Diet,
  )
  family := checklistScore(
    profile.MaritalStatus,
    boolField(profile.WantsChildren),
    profile.FamilyValues,
    boolField(profile.WillingToRelocate),
  )

  personality := 0.0
  bioLen := len(strings.TrimSpace(profile.Bio))
  switch {
  case bioLen > 50:
    personality = 100
  case bioLen > 20:
    personality = 50
  }

  dimensions := map[string]float64{
    "religious":   religious,
    "career":      career,
    "personality": personality,
    "lifestyle":   lifestyle,
    "family":      family,
  }

  score := (religious + career + personality + lifestyle + family) / 5.0
  return ComponentScore{
    Score:       score,
    Explanation: fmt.Sprintf("Profile is %.0f%% complete across religious, career, personality, lifestyle and family dimensions", score),
  }, dimensions
}

func checklistScore(fields ...string) float64 {
  filled := 0
  for _, f := range fields {
    if strings.TrimSpace(f) != "" {
      filled++
    }
  }
  if len(fields) == 0 {
    return 0
  }
  return float64(filled) / float64(len(fields)) * 100
}

// A set pointer counts as filled either way; the user answered the question.
func boolField(v *bool) string {
  if v == nil {
    return ""
  }
  return "set"
}
