package xp

import "testing"

func TestLevelOf_Table(t *testing.T) {
	tests := []struct {
		xp        int
		wantLevel int
		wantInto  int
		wantNext  int
	}{
		{0, 1, 0, 100},
		{50, 1, 50, 50},
		{99, 1, 99, 1},
		{100, 2, 0, 200},
		{299, 2, 199, 1},
		{300, 3, 0, 300},
		{600, 4, 0, 400},
		{999, 4, 399, 1},
		{1000, 5, 0, 500},
		{1499, 5, 499, 1},
		{1500, 6, 0, 500},
		{2750, 8, 250, 250},
	}

	for _, tt := range tests {
		got := LevelOf(tt.xp)
		if got.Level != tt.wantLevel || got.XPIntoLevel != tt.wantInto || got.XPToNext != tt.wantNext {
			t.Errorf("LevelOf(%d) = {%d %d %d}, want {%d %d %d}",
				tt.xp, got.Level, got.XPIntoLevel, got.XPToNext,
				tt.wantLevel, tt.wantInto, tt.wantNext)
		}
	}
}

func TestLevelOf_Monotonic(t *testing.T) {
	prev := 0
	for totalXP := 0; totalXP <= 5000; totalXP++ {
		p := LevelOf(totalXP)
		if p.Level < prev {
			t.Fatalf("LevelOf(%d).Level = %d dropped below %d", totalXP, p.Level, prev)
		}
		if p.XPToNext <= 0 {
			t.Fatalf("LevelOf(%d).XPToNext = %d, want > 0", totalXP, p.XPToNext)
		}
		if p.XPIntoLevel < 0 {
			t.Fatalf("LevelOf(%d).XPIntoLevel = %d, want >= 0", totalXP, p.XPIntoLevel)
		}
		prev = p.Level
	}
}

func TestLevelOf_NegativeClamped(t *testing.T) {
	if got := LevelOf(-5); got.Level != 1 {
		t.Errorf("LevelOf(-5).Level = %d, want 1", got.Level)
	}
}
