package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PointsScale is the fixed-point scale for all monetary and points values
const PointsScale = 2

// Points policy modes
const (
	PointsModeRatio = "ratio"
	PointsModeFlat  = "flat"
)

// PointsPolicy converts a settled order amount into loyalty points.
// Ratio mode credits a percentage of the amount (default 1%); flat mode
// credits a fixed number of points per whole currency unit.
type PointsPolicy struct {
	Mode  string
	Ratio decimal.Decimal
}

// DefaultPointsPolicy returns the ratio policy at 1% of the order amount
func DefaultPointsPolicy() PointsPolicy {
	return PointsPolicy{Mode: PointsModeRatio, Ratio: decimal.NewFromFloat(0.01)}
}

// NewPointsPolicy builds a policy from configuration values
func NewPointsPolicy(mode string, ratio string) (PointsPolicy, error) {
	switch mode {
	case PointsModeRatio, PointsModeFlat:
	default:
		return PointsPolicy{}, fmt.Errorf("unknown points mode %q", mode)
	}

	r, err := decimal.NewFromString(ratio)
	if err != nil {
		return PointsPolicy{}, fmt.Errorf("invalid points ratio %q: %w", ratio, err)
	}
	if r.IsNegative() {
		return PointsPolicy{}, fmt.Errorf("points ratio cannot be negative")
	}

	return PointsPolicy{Mode: mode, Ratio: r}, nil
}

// Calculate returns the points earned for the given order amount, rounded
// half-up to two decimal places. Flat mode truncates the amount to whole
// currency units before applying the ratio.
func (p PointsPolicy) Calculate(amount decimal.Decimal) decimal.Decimal {
	switch p.Mode {
	case PointsModeFlat:
		return amount.Floor().Mul(p.Ratio).Round(PointsScale)
	default:
		return amount.Mul(p.Ratio).Round(PointsScale)
	}
}
