package souldna

import "math"

// SimilarityStats aggregates pairwise cosine similarity between a user's
// embeddings and a population sample.
type SimilarityStats struct {
  Avg           float64
  Min           float64
  Max           float64
  SampleSize    int
  ComparedPosts int
}

// CosineSimilarity returns 0 for zero or mismatched vectors. For any
// non-zero v, CosineSimilarity(v, v) is exactly 1 and
// CosineSimilarity(v, -v) is exactly -1.
func CosineSimilarity(a, b []float32) float64 {
  if len(a) == 0 || len(a) != len(b) {
    return 0
  }
  var dot, normA, normB float64
  for i := range a {
    dot += float64(a[i]) * float64(b[i])
    normA += float64(a[i]) * float64(a[i])
    normB += float64(b[i]) * float64(b[i])
  }
  if normA == 0 || normB == 0 {
    return 0
  }
  sim := dot / math.Sqrt(normA*normB)
  // Guard float drift at the extremes so the identity holds exactly.
  if sim > 1 {
    return 1
  }
  if sim < -1 {
    return -1
  }
  return sim
}

// ComputeSimilarityStats runs the full pairwise pass. Bounded upstream by
// sampling caps (10 user embeddings x 1000 population embeddings).
func ComputeSimilarityStats(user, population [][]float32) SimilarityStats {
  stats := SimilarityStats{
    Min:           1,
    Max:           -1,
    SampleSize:    len(population),
    ComparedPosts: len(user),
  }
  pairs := 0
  total := 0.0
  for _, u := range user {
    for _, p := range population {
      sim := CosineSimilarity(u, p)
      total += sim
      if sim < stats.Min {
        stats.Min = sim
      }
      if sim > stats.Max {
        stats.Max = sim
      }
      pairs++
    }
  }
  if pairs == 0 {
    return SimilarityStats{}
  }
  stats.Avg = total / float64(pairs)
  return stats
}

// OriginalityFromSimilarity maps average similarity to a 0-100 originality
// score: the less similar to the population, the more original.
func OriginalityFromSimilarity(avg float64) int {
  score := int(math.Round((1 - avg) * 100))
  if score < 0 {
    return 0
  }
  if score > 100 {
    return 100
  }
  return score
}
