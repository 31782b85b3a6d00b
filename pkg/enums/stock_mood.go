package enums

import "fmt"

// StockMood describes how a product's inventory tends to move.
type StockMood string

const (
	StockMoodStable   StockMood = "stable"
	StockMoodVolatile StockMood = "volatile"
	StockMoodGenerous StockMood = "generous"
	StockMoodScarce   StockMood = "scarce"
)

var validStockMoods = []StockMood{
	StockMoodStable,
	StockMoodVolatile,
	StockMoodGenerous,
	StockMoodScarce,
}

func (m StockMood) String() string {
	return string(m)
}

func (m StockMood) IsValid() bool {
	for _, candidate := range validStockMoods {
		if candidate == m {
			return true
		}
	}
	return false
}

func ParseStockMood(value string) (StockMood, error) {
	for _, candidate := range validStockMoods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock mood %q", value)
}
