package scoring

// Tier is the motivational band a session result falls into.
type Tier string

const (
	TierVeryLow Tier = "very-low"
	TierLow     Tier = "low"
	TierMedium  Tier = "medium"
	TierGood    Tier = "good"
	TierPerfect Tier = "perfect"
)

// AllTiers returns all tiers in order from lowest to highest.
func AllTiers() []Tier {
	return []Tier{TierVeryLow, TierLow, TierMedium, TierGood, TierPerfect}
}

// Rank orders tiers; higher is better.
func (t Tier) Rank() int {
	for i, x := range AllTiers() {
		if x == t {
			return i
		}
	}
	return -1
}

// DisplayName returns a human-readable label for the tier.
func (t Tier) DisplayName() string {
	switch t {
	case TierPerfect:
		return "Perfect"
	case TierGood:
		return "Good"
	case TierMedium:
		return "Medium"
	case TierLow:
		return "Low"
	case TierVeryLow:
		return "Very low"
	default:
		return string(t)
	}
}

// Ratio is score over attempted, with attempted floored at one.
func Ratio(score, attempted int) float64 {
	return float64(score) / float64(max(attempted, 1))
}

// TierFor maps a score to its tier.
func TierFor(score, attempted int) Tier {
	return TierForRatio(Ratio(score, attempted))
}

// TierForRatio maps an accuracy ratio (0.0-1.0) to its tier.
func TierForRatio(ratio float64) Tier {
	switch {
	case ratio >= 1:
		return TierPerfect
	case ratio >= 0.75:
		return TierGood
	case ratio >= 0.50:
		return TierMedium
	case ratio >= 0.25:
		return TierLow
	default:
		return TierVeryLow
	}
}
