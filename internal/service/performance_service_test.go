package service

import (
	"testing"

	"code_mentor_backend/internal/config"
	"code_mentor_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer() *PerformanceService {
	return NewPerformanceService(nil, config.EngineDefaults())
}

func attemptSeq(correct []bool, responseMs int) []model.Attempt {
	attempts := make([]model.Attempt, 0, len(correct))
	for _, ok := range correct {
		attempts = append(attempts, model.Attempt{
			IsCorrect:      ok,
			ResponseTimeMs: responseMs,
			Level:          1,
			Topic:          "loops",
		})
	}
	return attempts
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	snap := newTestAnalyzer().Analyze(nil)

	assert.Equal(t, 0, snap.AttemptsCount)
	assert.Equal(t, 0.0, snap.AccuracyRate)
	assert.Equal(t, model.TrendInsufficientData, snap.Trend)
}

func TestAnalyzeAccuracyAndSpeed(t *testing.T) {
	// 4 次中对 3 次，每次恰好踩在 30s 基线上
	attempts := attemptSeq([]bool{true, true, true, false}, 30000)
	snap := newTestAnalyzer().Analyze(attempts)

	assert.InDelta(t, 75.0, snap.AccuracyRate, 0.001)
	assert.InDelta(t, 30000.0, snap.AverageResponseTime, 0.001)
	assert.InDelta(t, 100.0, snap.SpeedScore, 0.001)
	assert.InDelta(t, 100.0, snap.ConsistencyScore, 0.001, "identical times have zero variance")
	// 0.4*75 + 0.3*100 + 0.3*100
	assert.InDelta(t, 90.0, snap.OverallScore, 0.001)
}

func TestSpeedScorePenalizesSlowness(t *testing.T) {
	svc := newTestAnalyzer()
	// 平均 60s 对 30s 基线：100 - 50*(2-1) = 50
	attempts := attemptSeq([]bool{true, true}, 60000)
	snap := svc.Analyze(attempts)
	assert.InDelta(t, 50.0, snap.SpeedScore, 0.001)
}

func TestConsistencyScoreDispersion(t *testing.T) {
	assert.Equal(t, 100.0, consistencyScore([]float64{12000}), "single attempt is perfectly consistent")
	assert.Equal(t, 100.0, consistencyScore([]float64{5000, 5000, 5000}))

	// mean 20000, stddev 10000 → CV 0.5 → 50
	spread := consistencyScore([]float64{10000, 30000})
	assert.InDelta(t, 50.0, spread, 0.001)
}

func TestTrendDeclining(t *testing.T) {
	// 前半 5 次对 4 次（80%），后半 5 次对 2 次（40%）
	correct := []bool{true, true, true, true, false, true, true, false, false, false}
	attempts := attemptSeq(correct, 10000)

	snap := newTestAnalyzer().Analyze(attempts)
	assert.Equal(t, model.TrendDeclining, snap.Trend)
}

func TestTrendImproving(t *testing.T) {
	attempts := attemptSeq([]bool{false, false, false, true, true, true}, 10000)
	snap := newTestAnalyzer().Analyze(attempts)
	assert.Equal(t, model.TrendImproving, snap.Trend)
}

func TestTrendStableAndInsufficient(t *testing.T) {
	stable := attemptSeq([]bool{true, false, true, false}, 10000)
	assert.Equal(t, model.TrendStable, newTestAnalyzer().Analyze(stable).Trend)

	sparse := attemptSeq([]bool{true, false}, 10000)
	assert.Equal(t, model.TrendInsufficientData, newTestAnalyzer().Analyze(sparse).Trend)
}

func TestWeakAreaByAccuracy(t *testing.T) {
	attempts := []model.Attempt{
		{IsCorrect: false, Level: 3, Topic: "recursion", ResponseTimeMs: 10000},
		{IsCorrect: false, Level: 3, Topic: "recursion", ResponseTimeMs: 10000},
		{IsCorrect: true, Level: 3, Topic: "recursion", ResponseTimeMs: 10000},
		{IsCorrect: true, Level: 1, Topic: "loops", ResponseTimeMs: 10000},
		{IsCorrect: true, Level: 1, Topic: "loops", ResponseTimeMs: 10000},
		{IsCorrect: true, Level: 1, Topic: "loops", ResponseTimeMs: 10000},
	}
	snap := newTestAnalyzer().Analyze(attempts)

	require.NotEmpty(t, snap.WeakAreas)
	keys := map[string]string{}
	for _, w := range snap.WeakAreas {
		keys[w.Kind+":"+w.Key] = w.Severity
	}
	// recursion 组正确率 33%，难度 3 组同样 33%，都该被标记为 high
	assert.Equal(t, model.SeverityHigh, keys["topic:recursion"])
	assert.Equal(t, model.SeverityHigh, keys["difficulty:3"])

	// loops 组全对，是强项
	strengthKeys := map[string]bool{}
	for _, s := range snap.Strengths {
		strengthKeys[s.Kind+":"+s.Key] = true
	}
	assert.True(t, strengthKeys["topic:loops"])
}

func TestWeakAreaMediumSeverity(t *testing.T) {
	// 正确率 50%，在 40 和 60 之间 → medium
	attempts := []model.Attempt{
		{IsCorrect: true, Level: 2, Topic: "arrays", ResponseTimeMs: 10000},
		{IsCorrect: true, Level: 2, Topic: "arrays", ResponseTimeMs: 10000},
		{IsCorrect: false, Level: 2, Topic: "arrays", ResponseTimeMs: 10000},
		{IsCorrect: false, Level: 2, Topic: "arrays", ResponseTimeMs: 10000},
	}
	snap := newTestAnalyzer().Analyze(attempts)

	require.NotEmpty(t, snap.WeakAreas)
	assert.Equal(t, model.SeverityMedium, snap.WeakAreas[0].Severity)
}

func TestWeakAreaSmallGroupsIgnored(t *testing.T) {
	attempts := []model.Attempt{
		{IsCorrect: false, Level: 9, Topic: "graphs", ResponseTimeMs: 10000},
		{IsCorrect: false, Level: 9, Topic: "graphs", ResponseTimeMs: 10000},
	}
	snap := newTestAnalyzer().Analyze(attempts)
	assert.Empty(t, snap.WeakAreas, "fewer than 3 attempts per group is not judged")
}

func TestWeakAreasSortedHighFirst(t *testing.T) {
	attempts := []model.Attempt{
		// arrays 50% → medium
		{IsCorrect: true, Topic: "arrays", Level: 1, ResponseTimeMs: 1000},
		{IsCorrect: true, Topic: "arrays", Level: 1, ResponseTimeMs: 1000},
		{IsCorrect: false, Topic: "arrays", Level: 1, ResponseTimeMs: 1000},
		{IsCorrect: false, Topic: "arrays", Level: 1, ResponseTimeMs: 1000},
		// recursion 0% → high
		{IsCorrect: false, Topic: "recursion", Level: 1, ResponseTimeMs: 1000},
		{IsCorrect: false, Topic: "recursion", Level: 1, ResponseTimeMs: 1000},
		{IsCorrect: false, Topic: "recursion", Level: 1, ResponseTimeMs: 1000},
	}
	snap := newTestAnalyzer().Analyze(attempts)

	require.True(t, len(snap.WeakAreas) >= 2)
	assert.Equal(t, model.SeverityHigh, snap.WeakAreas[0].Severity)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	attempts := attemptSeq([]bool{true, false, true, true, false, true}, 12000)
	svc := newTestAnalyzer()

	first := svc.Analyze(attempts)
	second := svc.Analyze(attempts)
	assert.Equal(t, first, second)
}
