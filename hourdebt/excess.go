/*
excess.go - Hours-over-threshold calculation

PURPOSE:
  Converts a day's worked hours into the minutes eligible to pay down debt.
  Pure function: no store access, no failure modes.

ROUNDING RULE:
  (hours - threshold) * 60, rounded to the nearest minute, clamped at zero.
  9.5h against an 8h threshold is 90 minutes; 7.99h is 0, never negative.
*/
package hourdebt

import "github.com/shopspring/decimal"

// DefaultDailyThresholdHours applies when a tenant has no configured
// threshold.
var DefaultDailyThresholdHours = decimal.NewFromInt(8)

var minutesPerHour = decimal.NewFromInt(60)

// ComputeExcess returns the excess minutes of a day's worked hours over the
// tenant's daily threshold. Never negative.
func ComputeExcess(hoursWorked, dailyThresholdHours decimal.Decimal) int {
	excess := hoursWorked.Sub(dailyThresholdHours).Mul(minutesPerHour).Round(0)
	if excess.IsNegative() {
		return 0
	}
	return int(excess.IntPart())
}

// ThresholdSource resolves the configured daily threshold for a tenant.
// Implemented by config.Config; tests use ThresholdFunc.
type ThresholdSource interface {
	DailyThresholdHours(tenantID string) decimal.Decimal
}

// ThresholdFunc adapts a function to ThresholdSource.
type ThresholdFunc func(tenantID string) decimal.Decimal

func (f ThresholdFunc) DailyThresholdHours(tenantID string) decimal.Decimal {
	return f(tenantID)
}

// FixedThreshold returns a ThresholdSource that ignores the tenant.
func FixedThreshold(hours float64) ThresholdSource {
	d := decimal.NewFromFloat(hours)
	return ThresholdFunc(func(string) decimal.Decimal { return d })
}
