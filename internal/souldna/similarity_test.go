package souldna

import (
  "math"
  "testing"
)

func TestCosineSimilarityRoundTrip(t *testing.T) {
  vectors := [][]float32{
    {1, 0, 0},
    {0.3, -0.7, 0.2, 0.9},
    {5, 5, 5},
  }
  for _, v := range vectors {
    if got := CosineSimilarity(v, v); got != 1.0 {
      t.Errorf("cos(v, v) = %v, want exactly 1.0", got)
    }
    neg := make([]float32, len(v))
    for i := range v {
      neg[i] = -v[i]
    }
    if got := CosineSimilarity(v, neg); got != -1.0 {
      t.Errorf("cos(v, -v) = %v, want exactly -1.0", got)
    }
  }
}

func TestCosineSimilarityDegenerateInputs(t *testing.T) {
  if got := CosineSimilarity(nil, nil); got != 0 {
    t.Errorf("cos(nil, nil) = %v, want 0", got)
  }
  if got := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
    t.Errorf("cos of mismatched dims = %v, want 0", got)
  }
  if got := CosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
    t.Errorf("cos with zero vector = %v, want 0", got)
  }
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
  got := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
  if math.Abs(got) > 1e-12 {
    t.Errorf("cos of orthogonal vectors = %v, want 0", got)
  }
}

func TestComputeSimilarityStats(t *testing.T) {
  user := [][]float32{{1, 0}}
  population := [][]float32{{1, 0}, {-1, 0}}
  stats := ComputeSimilarityStats(user, population)
  if stats.Avg != 0 {
    t.Errorf("avg = %v, want 0 (mean of 1 and -1)", stats.Avg)
  }
  if stats.Min != -1 || stats.Max != 1 {
    t.Errorf("min/max = %v/%v, want -1/1", stats.Min, stats.Max)
  }
  if stats.SampleSize != 2 || stats.ComparedPosts != 1 {
    t.Errorf("sample sizes = %d/%d, want 2/1", stats.SampleSize, stats.ComparedPosts)
  }
}

func TestComputeSimilarityStatsEmpty(t *testing.T) {
  stats := ComputeSimilarityStats(nil, [][]float32{{1, 0}})
  if stats != (SimilarityStats{}) {
    t.Errorf("stats = %+v, want zero value for empty input", stats)
  }
}

func TestOriginalityFromSimilarity(t *testing.T) {
  cases := []struct {
    avg  float64
    want int
  }{
    {0, 100},
    {1, 0},
    {0.5, 50},
    {0.004, 100}, // rounds up
    {-0.2, 100},  // clamped
    {1.3, 0},     // clamped
  }
  for _, c := range cases {
    if got := OriginalityFromSimilarity(c.avg); got != c.want {
      t.Errorf("OriginalityFromSimilarity(%v) = %d, want %d", c.avg, got, c.want)
    }
  }
}
