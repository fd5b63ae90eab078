package xp

import (
	"math"
	"testing"
)

// testLadder mirrors the documented 5-level example: thresholds 0, 500,
// 1500, 3000, 5000.
var testLadder = []Level{
	{Level: 1, Name: "Beginner", XPRequired: 0, Unlocks: []string{"browse"}},
	{Level: 2, Name: "Learner", XPRequired: 500, Unlocks: []string{"edit"}},
	{Level: 3, Name: "Skilled", XPRequired: 1500, Unlocks: []string{"create"}},
	{Level: 4, Name: "Advanced", XPRequired: 3000, Unlocks: []string{"moderate"}},
	{Level: 5, Name: "Elite", XPRequired: 5000, Unlocks: []string{"curate"}},
}

func TestResolve_ThresholdsAreInclusiveLowerBounds(t *testing.T) {
	for _, lvl := range testLadder {
		got := Resolve(testLadder, lvl.XPRequired)
		if got.Current.Level != lvl.Level {
			t.Errorf("Resolve(%d): level = %d, want %d (threshold is inclusive)",
				lvl.XPRequired, got.Current.Level, lvl.Level)
		}
		if lvl.XPRequired > 0 {
			below := Resolve(testLadder, lvl.XPRequired-1)
			if below.Current.Level >= lvl.Level {
				t.Errorf("Resolve(%d): level = %d, want < %d",
					lvl.XPRequired-1, below.Current.Level, lvl.Level)
			}
		}
	}
}

func TestResolve_Monotonic(t *testing.T) {
	prev := 0
	for xp := int64(0); xp <= 6000; xp += 7 {
		got := Resolve(testLadder, xp).Current.Level
		if got < prev {
			t.Fatalf("level decreased from %d to %d at xp=%d", prev, got, xp)
		}
		prev = got
	}
}

func TestResolve_ProgressBounds(t *testing.T) {
	for xp := int64(0); xp <= 7000; xp += 13 {
		p := Resolve(testLadder, xp)
		if p.ProgressPct < 0 || p.ProgressPct > 100 {
			t.Fatalf("ProgressPct = %v at xp=%d, want within [0,100]", p.ProgressPct, xp)
		}
	}
}

func TestResolve_JustBelowSecondLevel(t *testing.T) {
	p := Resolve(testLadder, 499)
	if p.Current.Level != 1 {
		t.Errorf("level = %d, want 1", p.Current.Level)
	}
	if p.Next == nil || p.Next.Level != 2 {
		t.Fatalf("next = %+v, want level 2", p.Next)
	}
	if p.XPToNext != 1 {
		t.Errorf("XPToNext = %d, want 1", p.XPToNext)
	}
	if math.Abs(p.ProgressPct-99.8) > 1e-9 {
		t.Errorf("ProgressPct = %v, want 99.8", p.ProgressPct)
	}
}

func TestResolve_ExactlyAtSecondLevel(t *testing.T) {
	p := Resolve(testLadder, 500)
	if p.Current.Level != 2 {
		t.Errorf("level = %d, want 2", p.Current.Level)
	}
	if p.XPToNext != 1000 {
		t.Errorf("XPToNext = %d, want 1000", p.XPToNext)
	}
	if p.ProgressPct != 0 {
		t.Errorf("ProgressPct = %v, want 0", p.ProgressPct)
	}
}

func TestResolve_MaxLevelSaturates(t *testing.T) {
	for _, xp := range []int64{5000, 5001, 999999} {
		p := Resolve(testLadder, xp)
		if p.Current.Level != 5 {
			t.Errorf("Resolve(%d): level = %d, want 5", xp, p.Current.Level)
		}
		if p.Next != nil {
			t.Errorf("Resolve(%d): Next = %+v, want nil", xp, p.Next)
		}
		if p.ProgressPct != 100 {
			t.Errorf("Resolve(%d): ProgressPct = %v, want 100", xp, p.ProgressPct)
		}
	}
}

func TestResolve_NegativeXPClampsToLevelOne(t *testing.T) {
	p := Resolve(testLadder, -250)
	if p.Current.Level != 1 {
		t.Errorf("level = %d, want 1", p.Current.Level)
	}
	if p.ProgressPct != 0 {
		t.Errorf("ProgressPct = %v, want 0", p.ProgressPct)
	}
}

func TestDefaultLevels_StrictlyAscending(t *testing.T) {
	if DefaultLevels[0].XPRequired != 0 {
		t.Fatalf("level 1 threshold = %d, want 0", DefaultLevels[0].XPRequired)
	}
	for i := 1; i < len(DefaultLevels); i++ {
		if DefaultLevels[i].XPRequired <= DefaultLevels[i-1].XPRequired {
			t.Errorf("threshold for level %d (%d) not above level %d (%d)",
				DefaultLevels[i].Level, DefaultLevels[i].XPRequired,
				DefaultLevels[i-1].Level, DefaultLevels[i-1].XPRequired)
		}
		if DefaultLevels[i].Level != DefaultLevels[i-1].Level+1 {
			t.Errorf("ladder has a gap between %d and %d",
				DefaultLevels[i-1].Level, DefaultLevels[i].Level)
		}
	}
}

func TestNewlyUnlocked(t *testing.T) {
	cases := []struct {
		name         string
		oldXP, newXP int64
		want         []string
	}{
		{"no boundary crossed", 100, 400, nil},
		{"single level", 400, 600, []string{"edit"}},
		{"multiple levels at once", 0, 3200, []string{"edit", "create", "moderate"}},
		{"already at max", 5000, 9000, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewlyUnlocked(testLadder, tc.oldXP, tc.newXP)
			if len(got) != len(tc.want) {
				t.Fatalf("unlocks = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("unlocks[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}
