package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
)

// MaxDecimalPlaces is the finest money granularity accepted on the wire
const MaxDecimalPlaces = 2

// ParseAmount parses a monetary amount from its wire representation.
// Amounts must be positive and carry at most two decimal places.
func ParseAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, amount)
	}
	if !value.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, amount)
	}
	if value.Exponent() < -MaxDecimalPlaces {
		return decimal.Zero, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}
	return value, nil
}

// FormatAmount renders a monetary amount with exactly two decimal places
func FormatAmount(value decimal.Decimal) string {
	return value.StringFixed(MaxDecimalPlaces)
}
