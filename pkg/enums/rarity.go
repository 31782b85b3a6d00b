package enums

import "fmt"

// RarityLevel classifies catalog products. Rare, legendary and mythic form the rare tier.
type RarityLevel string

const (
	RarityCommon    RarityLevel = "common"
	RarityUncommon  RarityLevel = "uncommon"
	RarityRare      RarityLevel = "rare"
	RarityLegendary RarityLevel = "legendary"
	RarityMythic    RarityLevel = "mythic"
)

var validRarityLevels = []RarityLevel{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityLegendary,
	RarityMythic,
}

// String implements fmt.Stringer.
func (r RarityLevel) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RarityLevel.
func (r RarityLevel) IsValid() bool {
	for _, candidate := range validRarityLevels {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsRareTier reports whether the rarity counts towards gating.
func (r RarityLevel) IsRareTier() bool {
	switch r {
	case RarityRare, RarityLegendary, RarityMythic:
		return true
	default:
		return false
	}
}

// ParseRarityLevel converts raw input into a RarityLevel.
func ParseRarityLevel(value string) (RarityLevel, error) {
	for _, candidate := range validRarityLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rarity level %q", value)
}
