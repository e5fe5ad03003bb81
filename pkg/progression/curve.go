package progression

import "math"

// LevelInfo describes where a total experience value sits on the curve.
type LevelInfo struct {
	Level              int `json:"level"`
	CurrentLevelExp    int `json:"currentLevelExp"`
	ExpToNextLevel     int `json:"expToNextLevel"`
	ProgressPercentage int `json:"progressPercentage"`
}

// MaxExperienceForLevel returns the total experience required to complete the
// given level, i.e. to reach the next one. Each level costs double the
// previous one: level 1 is 100, level 2 is 200, level 3 is 400, and so on.
// Early levels are quick wins, later levels are long-haul commitments.
func MaxExperienceForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	if level == 1 {
		return 100
	}
	return 100 * (1 << (level - 1))
}

// LevelFromExperience maps a total experience value back onto the curve.
// It is the left inverse of MaxExperienceForLevel: for any level >= 1,
// LevelFromExperience(MaxExperienceForLevel(level)).Level == level.
func LevelFromExperience(totalExp int) LevelInfo {
	if totalExp < 0 {
		totalExp = 0
	}

	level := 1
	for totalExp >= MaxExperienceForLevel(level+1) {
		level++
	}

	floor := MaxExperienceForLevel(level)
	ceil := MaxExperienceForLevel(level + 1)

	// Totals below the level-1 threshold would go negative; treat them as
	// zero progress within level 1.
	current := totalExp - floor
	if current < 0 {
		current = 0
	}
	span := ceil - floor

	pct := int(math.Round(100 * float64(current) / float64(span)))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return LevelInfo{
		Level:              level,
		CurrentLevelExp:    current,
		ExpToNextLevel:     ceil - totalExp,
		ProgressPercentage: pct,
	}
}
