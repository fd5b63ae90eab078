package xp

import (
	"sort"
	"strings"
)

// Snapshot is the scoring view of a trick. The engine only cares about
// completeness signals, not domain identity, so services build one from
// whatever record shape they hold.
type Snapshot struct {
	Description     string
	StepGuide       string
	TipsAndTricks   string
	CommonMistakes  string
	SafetyNotes     string
	VideoURLs       []string
	ImageURLs       []string
	Tags            []string
	Prerequisites   []string
	SourceURLs      []string
	ComboComponents []string
	Difficulty      int
	IsCombo         bool
	Published       bool
}

// Scoring constants. The cutoffs are product heuristics, tunable without
// touching the fold logic below.
const (
	CreationBaseXP = 50
	CreationMaxXP  = 200

	EditBaseXP = 5
	EditMaxXP  = 150

	// A description shorter than this earns no completeness bonus.
	minDescriptionLen = 50
	// Difficulty at or above this counts as advanced content.
	highDifficulty = 8
	// Minimum tag count that counts as properly categorized.
	minTagCount = 3

	// Text edits are significant at >= this many characters changed…
	textAbsDelta = 50
	// …or >= this fraction of the previous length.
	textRelDelta = 0.20
)

// creationBonus is one completeness signal on a newly created trick.
type creationBonus struct {
	name      string
	points    int
	qualifies func(s Snapshot) bool
}

var creationBonuses = []creationBonus{
	{"description", 20, func(s Snapshot) bool { return len(strings.TrimSpace(s.Description)) >= minDescriptionLen }},
	{"step_guide", 30, func(s Snapshot) bool { return strings.TrimSpace(s.StepGuide) != "" }},
	{"tips", 10, func(s Snapshot) bool { return strings.TrimSpace(s.TipsAndTricks) != "" }},
	{"common_mistakes", 10, func(s Snapshot) bool { return strings.TrimSpace(s.CommonMistakes) != "" }},
	{"safety_notes", 10, func(s Snapshot) bool { return strings.TrimSpace(s.SafetyNotes) != "" }},
	{"video", 25, func(s Snapshot) bool { return len(s.VideoURLs) > 0 }},
	{"image", 15, func(s Snapshot) bool { return len(s.ImageURLs) > 0 }},
	{"tags", 10, func(s Snapshot) bool { return len(s.Tags) >= minTagCount }},
	{"prerequisites", 10, func(s Snapshot) bool { return len(s.Prerequisites) > 0 }},
	{"sources", 10, func(s Snapshot) bool { return len(s.SourceURLs) > 0 }},
	{"high_difficulty", 15, func(s Snapshot) bool { return s.Difficulty >= highDifficulty }},
	{"combo", 10, func(s Snapshot) bool { return s.IsCombo }},
}

// ScoreCreation rates a newly created trick. Starts from the base award and
// adds a bonus per completeness signal, capped at CreationMaxXP. Total over
// all inputs: an empty snapshot scores exactly the base.
func ScoreCreation(s Snapshot) int {
	score := CreationBaseXP
	for _, b := range creationBonuses {
		if b.qualifies(s) {
			score += b.points
		}
	}
	if score > CreationMaxXP {
		score = CreationMaxXP
	}
	return score
}

// editRule decides whether one tracked field changed significantly between
// two versions of a trick, and what that change is worth.
type editRule struct {
	name    string
	points  int
	changed func(old, new Snapshot) bool
}

var editRules = []editRule{
	{"description", 15, func(o, n Snapshot) bool { return textGrewSignificantly(o.Description, n.Description) }},
	{"step_guide", 20, func(o, n Snapshot) bool { return textGrewSignificantly(o.StepGuide, n.StepGuide) }},
	{"tips", 10, func(o, n Snapshot) bool { return textGrewSignificantly(o.TipsAndTricks, n.TipsAndTricks) }},
	{"common_mistakes", 10, func(o, n Snapshot) bool { return textGrewSignificantly(o.CommonMistakes, n.CommonMistakes) }},
	{"safety_notes", 10, func(o, n Snapshot) bool { return textGrewSignificantly(o.SafetyNotes, n.SafetyNotes) }},
	{"tags", 5, func(o, n Snapshot) bool { return listChanged(o.Tags, n.Tags) }},
	{"video_urls", 15, func(o, n Snapshot) bool { return listChanged(o.VideoURLs, n.VideoURLs) }},
	{"image_urls", 10, func(o, n Snapshot) bool { return listChanged(o.ImageURLs, n.ImageURLs) }},
	{"prerequisites", 10, func(o, n Snapshot) bool { return listChanged(o.Prerequisites, n.Prerequisites) }},
	{"source_urls", 5, func(o, n Snapshot) bool { return listChanged(o.SourceURLs, n.SourceURLs) }},
	{"combo_components", 10, func(o, n Snapshot) bool { return listChanged(o.ComboComponents, n.ComboComponents) }},
	{"difficulty", 10, func(o, n Snapshot) bool { return o.Difficulty != n.Difficulty }},
	{"combo_flag", 5, func(o, n Snapshot) bool { return o.IsCombo != n.IsCombo }},
	// Publishing is scored; unpublishing is not.
	{"published", 25, func(o, n Snapshot) bool { return !o.Published && n.Published }},
}

// ScoreEdit rates the difference between two versions of a trick. Starts
// from the base award and adds a fixed increment per significant field
// change, capped at EditMaxXP. Identical versions score exactly the base.
func ScoreEdit(old, new Snapshot) int {
	score := EditBaseXP
	for _, r := range editRules {
		if r.changed(old, new) {
			score += r.points
		}
	}
	if score > EditMaxXP {
		score = EditMaxXP
	}
	return score
}

// textGrewSignificantly reports whether a free-text field grew by at least
// textAbsDelta characters or textRelDelta of its previous length. Shrinking
// or emptying a field never counts — removing content scores nothing.
func textGrewSignificantly(old, new string) bool {
	oldLen, newLen := len(old), len(new)
	if newLen == 0 || newLen <= oldLen {
		return false
	}
	delta := newLen - oldLen
	if delta >= textAbsDelta {
		return true
	}
	base := oldLen
	if base == 0 {
		base = 1
	}
	return float64(delta)/float64(base) >= textRelDelta
}

// listChanged compares list fields order-independently: a different element
// count, or a different set of elements, is a change.
func listChanged(old, new []string) bool {
	if len(old) != len(new) {
		return true
	}
	a := append([]string(nil), old...)
	b := append([]string(nil), new...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}
