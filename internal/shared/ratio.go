package shared

import "math"

// SafeDivide returns num/den, or 0 when the denominator is zero or either
// operand is not a finite number. Every ratio surfaced by the reporting
// stack goes through this helper so that empty scopes degrade to zero
// instead of leaking NaN or Inf into JSON payloads.
func SafeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	if math.IsNaN(num) || math.IsInf(num, 0) || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0
	}
	return num / den
}

// SafePercent returns part as a percentage of whole, zero-guarded.
func SafePercent(part, whole float64) float64 {
	return SafeDivide(part, whole) * 100
}

// SafeAmount coerces a possibly malformed numeric value to something the
// dashboards can always render: NaN and Inf become 0.
func SafeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
