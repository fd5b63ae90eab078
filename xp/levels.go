// Package xp implements the Trickipedia progression engine: the level
// ladder, progress resolution, and the contribution scoring heuristics.
// Everything in this package is pure — persistence of XP totals belongs
// to the progression service.
package xp

// Level is one rung of the ladder. XPRequired is the cumulative XP needed
// to *reach* this level; level 1 starts at 0 so it is always attained.
type Level struct {
	Level      int      `json:"level"`
	Name       string   `json:"name"`
	XPRequired int64    `json:"xp_required"`
	Color      string   `json:"color"`
	Unlocks    []string `json:"unlocks"`
}

// DefaultLevels is the production ladder. Thresholds strictly increase;
// tuning them is a product decision, not an engine one.
var DefaultLevels = []Level{
	{Level: 1, Name: "Rookie", XPRequired: 0, Color: "zinc", Unlocks: []string{
		"Browse and bookmark tricks",
	}},
	{Level: 2, Name: "Novice", XPRequired: 250, Color: "emerald", Unlocks: []string{
		"Suggest edits to existing tricks",
	}},
	{Level: 3, Name: "Contributor", XPRequired: 750, Color: "sky", Unlocks: []string{
		"Create new tricks",
		"Upload trick media",
	}},
	{Level: 4, Name: "Regular", XPRequired: 1500, Color: "blue", Unlocks: []string{
		"Edit tricks without review",
	}},
	{Level: 5, Name: "Veteran", XPRequired: 3000, Color: "violet", Unlocks: []string{
		"Create combo tricks",
		"Custom profile flair",
	}},
	{Level: 6, Name: "Expert", XPRequired: 5000, Color: "purple", Unlocks: []string{
		"Moderate trick submissions",
	}},
	{Level: 7, Name: "Master", XPRequired: 8000, Color: "amber", Unlocks: []string{
		"Curate featured tricks",
	}},
	{Level: 8, Name: "Legend", XPRequired: 12000, Color: "gold", Unlocks: []string{
		"Legend badge",
		"Name in the credits",
	}},
}

// Progress describes where a cumulative XP total sits on a ladder.
// Next is nil at max level; XPToNext is only meaningful when Next is set.
type Progress struct {
	Current     Level   `json:"current_level"`
	Next        *Level  `json:"next_level,omitempty"`
	ProgressPct float64 `json:"progress_pct"`
	XPToNext    int64   `json:"xp_to_next,omitempty"`
}

// Resolve maps xp onto the given ascending ladder. Thresholds are inclusive
// lower bounds: xp exactly at a threshold belongs to that level. Negative
// input is treated as 0, so the function is total.
func Resolve(levels []Level, xp int64) Progress {
	if xp < 0 {
		xp = 0
	}

	// Highest entry whose threshold is <= xp.
	idx := 0
	for i, lvl := range levels {
		if xp >= lvl.XPRequired {
			idx = i
		}
	}

	current := levels[idx]
	if idx == len(levels)-1 {
		// Max level: saturated, nothing left to earn.
		return Progress{Current: current, ProgressPct: 100}
	}

	next := levels[idx+1]
	span := next.XPRequired - current.XPRequired
	pct := float64(xp-current.XPRequired) / float64(span) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return Progress{
		Current:     current,
		Next:        &next,
		ProgressPct: pct,
		XPToNext:    next.XPRequired - xp,
	}
}

// ResolveDefault resolves against the production ladder.
func ResolveDefault(xp int64) Progress {
	return Resolve(DefaultLevels, xp)
}

// NewlyUnlocked returns the unlock descriptions gained by moving from oldXP
// to newXP on the ladder (every level crossed contributes its unlocks, in
// ladder order). Empty when no level boundary was crossed.
func NewlyUnlocked(levels []Level, oldXP, newXP int64) []string {
	before := Resolve(levels, oldXP).Current.Level
	after := Resolve(levels, newXP).Current.Level

	var unlocks []string
	for _, lvl := range levels {
		if lvl.Level > before && lvl.Level <= after {
			unlocks = append(unlocks, lvl.Unlocks...)
		}
	}
	return unlocks
}
