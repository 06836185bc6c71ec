package souldna

import (
  "fmt"
  "time"

  "github.com/yungbote/souldna-backend/internal/types"
)

// Population comparators for unique-behavior flags. Product-supplied
// baselines, not live statistics; kept as named constants until a posting
// rollup exists to derive them from.
const (
  baselineAvgDepth       = 2.1
  baselineDepthPercentile = 92.0
  baselinePostsPerDay    = 0.4
  baselineFreqPercentile = 88.0
)

type BehavioralResult struct {
  ComponentScore
  UniqueBehaviors []UniqueBehavior
}

// ScoreBehavioral derives an activity-uniqueness score from the posting
// timeline. Under MinDaysForBehavioral the signal is considered unreliable
// and the score is a hard 0, not a discounted one.
func ScoreBehavioral(daysActive int, posts []*types.Post) BehavioralResult {
  if daysActive < MinDaysForBehavioral {
    return BehavioralResult{
      ComponentScore: ComponentScore{
        Score:       0,
        Explanation: fmt.Sprintf("Behavioral scoring needs at least %d days of account activity (you have %d)", MinDaysForBehavioral, daysActive),
      },
      UniqueBehaviors: []UniqueBehavior{},
    }
  }
  if len(posts) == 0 {
    return BehavioralResult{
      ComponentScore: ComponentScore{
        Score:       30,
        Explanation: "No shared content yet, behavior is emerging but unmeasured",
      },
      UniqueBehaviors: []UniqueBehavior{},
    }
  }

  first := posts[0].CreatedAt
  last := posts[0].CreatedAt
  depthTotal := 0
  for _, p := range posts {
    if p.CreatedAt.Before(first) {
      first = p.CreatedAt
    }
    if p.CreatedAt.After(last) {
      last = p.CreatedAt
    }
    depthTotal += p.DepthLevel
  }

  spanDays := last.Sub(first).Hours() / 24
  avgDepth := float64(depthTotal) / float64(len(posts))
  perDay := float64(len(posts)) / float64(daysActive)

  consistency := capAt100(spanDays / 30 * 50)
  depth := capAt100(avgDepth / 5 * 100)
  frequency := capAt100(perDay * 20)

  behaviors := []UniqueBehavior{}
  if avgDepth >= 4 {
    behaviors = append(behaviors, UniqueBehavior{
      Behavior:       "Deep Content Creator",
      UserValue:      avgDepth,
      PopulationMean: baselineAvgDepth,
      Percentile:     baselineDepthPercentile,
    })
  }
  if perDay > 1.5 {
    behaviors = append(behaviors, UniqueBehavior{
      Behavior:       "Highly Active Poster",
      UserValue:      perDay,
      PopulationMean: baselinePostsPerDay,
      Percentile:     baselineFreqPercentile,
    })
  }

  score := (consistency + depth + frequency) / 3
  return BehavioralResult{
    ComponentScore: ComponentScore{
      Score:       score,
      Explanation: fmt.Sprintf("Based on %d posts over %.0f days (avg depth %.1f)", len(posts), spanDays, avgDepth),
    },
    UniqueBehaviors: behaviors,
  }
}

// DaysActive is days since account creation, floored at zero.
func DaysActive(createdAt time.Time, now time.Time) int {
  days := int(now.Sub(createdAt).Hours() / 24)
  if days < 0 {
    return 0
  }
  return days
}

func capAt100(v float64) float64 {
  if v > 100 {
    return 100
  }
  return v
}
