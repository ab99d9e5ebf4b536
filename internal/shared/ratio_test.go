package shared

import (
	"math"
	"testing"
)

func TestSafeDivide(t *testing.T) {
	if got := SafeDivide(10, 4); got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
	if got := SafeDivide(10, 0); got != 0 {
		t.Fatalf("zero denominator must yield 0, got %v", got)
	}
	if got := SafeDivide(math.NaN(), 3); got != 0 {
		t.Fatalf("NaN numerator must yield 0, got %v", got)
	}
	if got := SafeDivide(1, math.Inf(1)); got != 0 {
		t.Fatalf("Inf denominator must yield 0, got %v", got)
	}
}

func TestSafePercent(t *testing.T) {
	if got := SafePercent(25, 100); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
	if got := SafePercent(25, 0); got != 0 {
		t.Fatalf("zero whole must yield 0, got %v", got)
	}
}

func TestSafeAmount(t *testing.T) {
	if got := SafeAmount(math.NaN()); got != 0 {
		t.Fatalf("NaN must coerce to 0, got %v", got)
	}
	if got := SafeAmount(-5); got != -5 {
		t.Fatalf("finite values pass through, got %v", got)
	}
}
