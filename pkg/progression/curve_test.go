package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxExperienceForLevel(t *testing.T) {
	assert.Equal(t, 0, MaxExperienceForLevel(-1))
	assert.Equal(t, 0, MaxExperienceForLevel(0))
	assert.Equal(t, 100, MaxExperienceForLevel(1))
	assert.Equal(t, 200, MaxExperienceForLevel(2))
	assert.Equal(t, 400, MaxExperienceForLevel(3))
	assert.Equal(t, 800, MaxExperienceForLevel(4))
	assert.Equal(t, 100*(1<<9), MaxExperienceForLevel(10))
}

func TestLevelFromExperienceScenario(t *testing.T) {
	info := LevelFromExperience(150)
	assert.Equal(t, 1, info.Level)
	assert.Equal(t, 50, info.CurrentLevelExp)
	assert.Equal(t, 50, info.ExpToNextLevel)
	assert.Equal(t, 50, info.ProgressPercentage)
}

func TestLevelFromExperienceInverse(t *testing.T) {
	for level := 1; level <= 50; level++ {
		info := LevelFromExperience(MaxExperienceForLevel(level))
		require.Equal(t, level, info.Level, "level %d threshold", level)
		// exactly at the threshold means zero progress into the level
		assert.Equal(t, 0, info.CurrentLevelExp)
		assert.Equal(t, 0, info.ProgressPercentage)
	}
}

func TestLevelFromExperienceMonotonic(t *testing.T) {
	prev := LevelFromExperience(0).Level
	for exp := 0; exp <= 10000; exp += 37 {
		cur := LevelFromExperience(exp).Level
		require.GreaterOrEqual(t, cur, prev, "exp %d", exp)
		prev = cur
	}
}

func TestProgressPercentageBounds(t *testing.T) {
	for _, exp := range []int{0, 1, 99, 100, 101, 150, 199, 200, 399, 400, 12345, 1 << 20} {
		info := LevelFromExperience(exp)
		assert.GreaterOrEqual(t, info.ProgressPercentage, 0, "exp %d", exp)
		assert.LessOrEqual(t, info.ProgressPercentage, 100, "exp %d", exp)
		assert.GreaterOrEqual(t, info.CurrentLevelExp, 0, "exp %d", exp)
		assert.Greater(t, info.ExpToNextLevel, 0, "exp %d", exp)
	}
}

func TestNegativeExperienceClamped(t *testing.T) {
	info := LevelFromExperience(-5)
	assert.Equal(t, 1, info.Level)
	assert.Equal(t, 0, info.CurrentLevelExp)
}
