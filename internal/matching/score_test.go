package matching

import "testing"

func TestRound2(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     float64
		expect float64
	}{
		{in: 22.3456, expect: 22.35},
		{in: 0.125, expect: 0.12},
		{in: 0.375, expect: 0.38},
		{in: 2.675, expect: 2.67},
		{in: -3.14159, expect: -3.14},
		{in: 110.00000001, expect: 110},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.expect {
			t.Fatalf("Round2(%v): expected %v, got %v", tt.in, tt.expect, got)
		}
	}
}

func TestScoreOffsets(t *testing.T) {
	t.Parallel()

	if got := CorpusScore(0.5); got != 60 {
		t.Fatalf("expected corpus score 60, got %v", got)
	}
	if got := CustomScore(0.5); got != 80 {
		t.Fatalf("expected custom score 80, got %v", got)
	}
	if got := CorpusScore(0.123456); got != 22.35 {
		t.Fatalf("expected corpus score 22.35, got %v", got)
	}
	if got := CustomScore(-0.2); got != 10 {
		t.Fatalf("expected custom score 10, got %v", got)
	}
}
