package souldna

import (
  "fmt"
  "sort"
  "strings"
  "unicode"
)

const (
  rareFrequencyCeiling = 0.10
  maxRareTraits        = 5
)

// TraitStat mirrors one trait_distribution_stat row for lookup by key.
type TraitStat struct {
  Category  string
  Frequency float64
  IDFScore  float64
}

type TraitInput struct {
  Key      string
  Category string
}

type TraitRarityResult struct {
  ComponentScore
  RareTraits []RareTrait
  Dimensions map[string]float64
}

// NormalizeTraitKey lower-snake-cases an insight title so it joins against
// the keys the distribution rollup writes.
func NormalizeTraitKey(title string) string {
  var b strings.Builder
  lastUnderscore := true
  for _, r := range strings.ToLower(strings.TrimSpace(title)) {
    if unicode.IsLetter(r) || unicode.IsDigit(r) {
      b.WriteRune(r)
      lastUnderscore = false
      continue
    }
    if !lastUnderscore {
      b.WriteByte('_')
      lastUnderscore = true
    }
  }
  return strings.TrimRight(b.String(), "_")
}

// ScoreTraitRarity averages the normalized IDF of every trait with known
// distribution data. Traits without a stat are excluded; a user with no
// distribution data at all scores a neutral 50 rather than being penalized
// for population gaps.
func ScoreTraitRarity(traits []TraitInput, stats map[string]TraitStat) TraitRarityResult {
  found := 0
  total := 0.0
  rare := make([]RareTrait, 0, len(traits))
  dimTotals := map[string]float64{}
  dimCounts := map[string]int{}
  seen := map[string]struct{}{}

  for _, trait := range traits {
    if trait.Key == "" {
      continue
    }
    if _, dup := seen[trait.Key]; dup {
      continue
    }
    seen[trait.Key] = struct{}{}
    stat, ok := stats[trait.Key]
    if !ok {
      continue
    }
    normalized := (stat.IDFScore / 5.0) * 100.0
    if normalized > 100 {
      normalized = 100
    }
    found++
    total += normalized

    category := stat.Category
    if category == "" {
      category = trait.Category
    }
    if category != "" {
      dimTotals[category] += normalized
      dimCounts[category]++
    }

    if stat.Frequency < rareFrequencyCeiling {
      rare = append(rare, RareTrait{
        TraitKey:   trait.Key,
        Category:   category,
        Frequency:  stat.Frequency,
        IDFScore:   stat.IDFScore,
        Percentile: (1 - stat.Frequency) * 100,
      })
    }
  }

  if found == 0 {
    return TraitRarityResult{
      ComponentScore: ComponentScore{
        Score:       50,
        Explanation: "No population data for your traits yet, assuming average rarity",
      },
      RareTraits: []RareTrait{},
      Dimensions: map[string]float64{},
    }
  }

  sort.Slice(rare, func(i, j int) bool { return rare[i].IDFScore > rare[j].IDFScore })
  if len(rare) > maxRareTraits {
    rare = rare[:maxRareTraits]
  }

  dimensions := make(map[string]float64, len(dimTotals))
  for category, sum := range dimTotals {
    dimensions[category] = sum / float64(dimCounts[category])
  }

  score := total / float64(found)
  return TraitRarityResult{
    ComponentScore: ComponentScore{
      Score:       score,
      Explanation: fmt.Sprintf("Scored %d traits against the population, %d of them rare", found, len(rare)),
    },
    RareTraits: rare,
    Dimensions: dimensions,
  }
}
