package task

import "testing"

func TestRatioIdentical(t *testing.T) {
	if r := Ratio("buy milk", "buy milk"); r != 1 {
		t.Fatalf("expected 1, got %v", r)
	}
	if r := Ratio("", ""); r != 1 {
		t.Fatalf("expected 1 for two empty strings, got %v", r)
	}
}

func TestRatioDisjoint(t *testing.T) {
	if r := Ratio("abc", "xyz"); r != 0 {
		t.Fatalf("expected 0, got %v", r)
	}
	if r := Ratio("", "abc"); r != 0 {
		t.Fatalf("expected 0 against empty string, got %v", r)
	}
}

func TestRatioPartialOverlap(t *testing.T) {
	// longest common block "bcd": 2*3/(4+4)
	if r := Ratio("abcd", "bcde"); r != 0.75 {
		t.Fatalf("expected 0.75, got %v", r)
	}
}

func TestRatioNearDuplicateTitlesCrossThreshold(t *testing.T) {
	if r := Ratio("buy grocery", "buy groceries"); r < 0.7 {
		t.Fatalf("near-duplicate should clear 0.7, got %v", r)
	}
	if r := Ratio("buy groceries", "call the dentist"); r >= 0.7 {
		t.Fatalf("unrelated titles should stay below 0.7, got %v", r)
	}
}
