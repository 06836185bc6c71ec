package souldna

type Tier string

const (
  TierCommon    Tier = "COMMON"
  TierUncommon  Tier = "UNCOMMON"
  TierRare      Tier = "RARE"
  TierEpic      Tier = "EPIC"
  TierLegendary Tier = "LEGENDARY"
)

// Inclusive band maxima; COMMON covers 0-40, LEGENDARY 96-100.
var tierBands = []struct {
  max  int
  tier Tier
}{
  {40, TierCommon},
  {60, TierUncommon},
  {80, TierRare},
  {95, TierEpic},
  {100, TierLegendary},
}

func TierForScore(score int) Tier {
  for _, band := range tierBands {
    if score <= band.max {
      return band.tier
    }
  }
  return TierLegendary
}

var tierOrder = map[Tier]int{
  TierCommon:    0,
  TierUncommon:  1,
  TierRare:      2,
  TierEpic:      3,
  TierLegendary: 4,
}

// TierRank orders tiers COMMON < UNCOMMON < RARE < EPIC < LEGENDARY.
// Unknown tiers rank lowest.
func TierRank(t Tier) int {
  return tierOrder[t]
}
