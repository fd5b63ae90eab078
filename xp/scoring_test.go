package xp

import (
	"strings"
	"testing"
)

func fullSnapshot() Snapshot {
	return Snapshot{
		Description:     strings.Repeat("a", 200),
		StepGuide:       "1. pop\n2. flick\n3. catch",
		TipsAndTricks:   "commit to the rotation",
		CommonMistakes:  "leaning back",
		SafetyNotes:     "wear a helmet",
		VideoURLs:       []string{"https://video.example/1"},
		ImageURLs:       []string{"https://img.example/1"},
		Tags:            []string{"flip", "street", "advanced"},
		Prerequisites:   []string{"ollie"},
		SourceURLs:      []string{"https://source.example"},
		ComboComponents: []string{"kickflip", "manual"},
		Difficulty:      9,
		IsCombo:         true,
	}
}

// --- ScoreCreation ---

func TestScoreCreation_EmptySnapshotScoresBase(t *testing.T) {
	if got := ScoreCreation(Snapshot{}); got != CreationBaseXP {
		t.Errorf("ScoreCreation(empty) = %d, want %d", got, CreationBaseXP)
	}
}

func TestScoreCreation_DocumentedScenario(t *testing.T) {
	s := Snapshot{
		Description: strings.Repeat("x", 60),
		VideoURLs:   []string{"http://a"},
		Tags:        []string{"a", "b", "c"},
	}
	// base 50 + description 20 + video 25 + tags 10
	if got := ScoreCreation(s); got != 105 {
		t.Errorf("ScoreCreation = %d, want 105", got)
	}
}

func TestScoreCreation_FullSnapshotHitsCap(t *testing.T) {
	if got := ScoreCreation(fullSnapshot()); got != CreationMaxXP {
		t.Errorf("ScoreCreation(full) = %d, want cap %d", got, CreationMaxXP)
	}
}

func TestScoreCreation_Bounds(t *testing.T) {
	snapshots := []Snapshot{
		{},
		{Description: "short"},
		{Tags: []string{"one", "two"}}, // below minTagCount
		{Difficulty: highDifficulty - 1},
		fullSnapshot(),
	}
	for i, s := range snapshots {
		got := ScoreCreation(s)
		if got < CreationBaseXP || got > CreationMaxXP {
			t.Errorf("snapshot %d: score %d outside [%d,%d]", i, got, CreationBaseXP, CreationMaxXP)
		}
	}
}

func TestScoreCreation_ThresholdSignalsDoNotQualifyBelowCutoff(t *testing.T) {
	s := Snapshot{
		Description: strings.Repeat("x", minDescriptionLen-1),
		Tags:        []string{"a", "b"},
		Difficulty:  highDifficulty - 1,
	}
	if got := ScoreCreation(s); got != CreationBaseXP {
		t.Errorf("score = %d, want base %d (no signal crosses its cutoff)", got, CreationBaseXP)
	}
}

// --- ScoreEdit ---

func TestScoreEdit_IdenticalVersionsScoreBase(t *testing.T) {
	s := fullSnapshot()
	if got := ScoreEdit(s, s); got != EditBaseXP {
		t.Errorf("ScoreEdit(x, x) = %d, want %d", got, EditBaseXP)
	}
}

func TestScoreEdit_Bounds(t *testing.T) {
	pairs := []struct{ old, new Snapshot }{
		{Snapshot{}, Snapshot{}},
		{Snapshot{}, fullSnapshot()},
		{fullSnapshot(), Snapshot{}},
	}
	for i, p := range pairs {
		got := ScoreEdit(p.old, p.new)
		if got < EditBaseXP || got > EditMaxXP {
			t.Errorf("pair %d: score %d outside [%d,%d]", i, got, EditBaseXP, EditMaxXP)
		}
	}
}

func TestScoreEdit_EverythingChangedHitsCap(t *testing.T) {
	full := fullSnapshot()
	full.Published = true
	if got := ScoreEdit(Snapshot{}, full); got != EditMaxXP {
		t.Errorf("ScoreEdit(empty, full+publish) = %d, want cap %d", got, EditMaxXP)
	}
}

func TestScoreEdit_GrowingDescriptionNeverLowersScore(t *testing.T) {
	old := Snapshot{Description: strings.Repeat("a", 100)}
	baseline := ScoreEdit(old, old)

	grown := old
	grown.Description = old.Description + strings.Repeat("b", 60)
	if got := ScoreEdit(old, grown); got < baseline {
		t.Errorf("score with extra significant change %d < baseline %d", got, baseline)
	}
}

func TestScoreEdit_RemovingTextScoresNothing(t *testing.T) {
	old := Snapshot{Description: strings.Repeat("a", 300)}
	if got := ScoreEdit(old, Snapshot{}); got != EditBaseXP {
		t.Errorf("score = %d, want base %d (content removal never counts)", got, EditBaseXP)
	}
}

func TestScoreEdit_SmallTextTweakIsNotSignificant(t *testing.T) {
	old := Snapshot{Description: strings.Repeat("a", 1000)}
	new := Snapshot{Description: strings.Repeat("a", 1000) + "tiny"}
	// 4 chars on 1000 is below both the absolute and relative cutoffs.
	if got := ScoreEdit(old, new); got != EditBaseXP {
		t.Errorf("score = %d, want base %d", got, EditBaseXP)
	}
}

func TestScoreEdit_RelativeTextGrowthCounts(t *testing.T) {
	old := Snapshot{TipsAndTricks: strings.Repeat("a", 100)}
	new := Snapshot{TipsAndTricks: strings.Repeat("a", 125)} // +25%, under 50 abs
	if got := ScoreEdit(old, new); got != EditBaseXP+10 {
		t.Errorf("score = %d, want %d", got, EditBaseXP+10)
	}
}

func TestScoreEdit_ListReorderIsNotAChange(t *testing.T) {
	old := Snapshot{Tags: []string{"street", "flip", "basic"}}
	new := Snapshot{Tags: []string{"basic", "street", "flip"}}
	if got := ScoreEdit(old, new); got != EditBaseXP {
		t.Errorf("score = %d, want base %d (order-independent comparison)", got, EditBaseXP)
	}
}

func TestScoreEdit_ListMembershipChangeCounts(t *testing.T) {
	old := Snapshot{Tags: []string{"street", "flip"}}
	new := Snapshot{Tags: []string{"street", "vert"}}
	if got := ScoreEdit(old, new); got != EditBaseXP+5 {
		t.Errorf("score = %d, want %d", got, EditBaseXP+5)
	}
}

func TestScoreEdit_PublishTransitionIsOneWay(t *testing.T) {
	draft := Snapshot{}
	published := Snapshot{Published: true}

	if got := ScoreEdit(draft, published); got != EditBaseXP+25 {
		t.Errorf("publish score = %d, want %d", got, EditBaseXP+25)
	}
	if got := ScoreEdit(published, draft); got != EditBaseXP {
		t.Errorf("unpublish score = %d, want base %d", got, EditBaseXP)
	}
}

func TestScoreEdit_ScalarChanges(t *testing.T) {
	old := Snapshot{Difficulty: 3}
	new := Snapshot{Difficulty: 4, IsCombo: true}
	if got := ScoreEdit(old, new); got != EditBaseXP+10+5 {
		t.Errorf("score = %d, want %d", got, EditBaseXP+10+5)
	}
}
