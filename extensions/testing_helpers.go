package extensions

import (
	"math"
	"testing"
)

func AssertAreEqual[T comparable](t *testing.T, name string, expected T, actual T) {
	t.Helper()
	if expected != actual {
		t.Fatalf("value mismatch for %s, expected %v, got %v", name, expected, actual)
	}
}

// AssertInDelta compares floats to within tolerance, for values that pass
// through non-associative arithmetic.
func AssertInDelta(t *testing.T, name string, expected, actual, delta float64) {
	t.Helper()
	if math.Abs(expected-actual) > delta {
		t.Fatalf("value mismatch for %s, expected %v within %v, got %v", name, expected, delta, actual)
	}
}

func AssertNillability[T comparable](t *testing.T, name string, expected bool, actual *T) {
	t.Helper()
	if (actual == nil) != expected {
		t.Fatalf("value mismatch for %s, expected %v, got %v", name, expected, (actual == nil))
	}
}
