package models

import "fmt"

// QualityTier is the ordinal connection quality rating. Tiers are totally
// ordered from TierOffline (worst) to TierExcellent (best).
type QualityTier int

const (
	TierOffline QualityTier = iota
	TierPoor
	TierFair
	TierGood
	TierExcellent
)

func (t QualityTier) String() string {
	switch t {
	case TierOffline:
		return "offline"
	case TierPoor:
		return "poor"
	case TierFair:
		return "fair"
	case TierGood:
		return "good"
	case TierExcellent:
		return "excellent"
	default:
		return fmt.Sprintf("QualityTier(%d)", int(t))
	}
}

// MarshalJSON encodes the tier as its lowercase name.
func (t QualityTier) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}
