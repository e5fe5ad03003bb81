package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"code_mentor_backend/internal/config"
	"code_mentor_backend/internal/model"
)

// attemptStore 表现分析需要的持久化能力
type attemptStore interface {
	FindByUserSince(userID uint, since time.Time, problemType model.ProblemType) ([]model.Attempt, error)
}

// PerformanceService 把一段时间窗口内的尝试聚合成表现快照。
// Analyze 是输入的纯函数，同一份尝试列表算两遍结果一致。
type PerformanceService struct {
	attempts attemptStore
	engine   config.EngineConfig
}

func NewPerformanceService(attempts attemptStore, engine config.EngineConfig) *PerformanceService {
	return &PerformanceService{attempts: attempts, engine: engine}
}

// Report 拉取窗口内的尝试并分析，windowDays<=0 时用配置的评估窗口
func (s *PerformanceService) Report(userID uint, windowDays int, problemType model.ProblemType) (*model.PerformanceSnapshot, error) {
	if windowDays <= 0 {
		windowDays = s.engine.AssessmentWindowDays
	}
	since := time.Now().AddDate(0, 0, -windowDays)
	attempts, err := s.attempts.FindByUserSince(userID, since, problemType)
	if err != nil {
		return nil, err
	}
	return s.Analyze(attempts), nil
}

// Analyze 按时间顺序的尝试列表聚合出表现快照
func (s *PerformanceService) Analyze(attempts []model.Attempt) *model.PerformanceSnapshot {
	snap := &model.PerformanceSnapshot{
		AttemptsCount: len(attempts),
		Trend:         model.TrendInsufficientData,
	}
	if len(attempts) == 0 {
		return snap
	}

	correct := 0
	var totalTime float64
	times := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		if a.IsCorrect {
			correct++
		}
		totalTime += float64(a.ResponseTimeMs)
		times = append(times, float64(a.ResponseTimeMs))
	}

	snap.AccuracyRate = 100 * float64(correct) / float64(len(attempts))
	snap.AverageResponseTime = totalTime / float64(len(attempts))
	snap.ConsistencyScore = consistencyScore(times)
	snap.SpeedScore = s.speedScore(snap.AverageResponseTime)
	snap.OverallScore = s.engine.AccuracyWeight*snap.AccuracyRate +
		s.engine.SpeedWeight*snap.SpeedScore +
		s.engine.ConsistencyWeight*snap.ConsistencyScore
	snap.Trend = classifyTrend(attempts)
	snap.WeakAreas, snap.Strengths = s.groupAreas(attempts, snap.AverageResponseTime)

	return snap
}

// consistencyScore 基于作答时长变异系数：波动越小分越高。
// 少于 2 次尝试约定为满分，避免稀疏数据上除零抖动。
func consistencyScore(times []float64) float64 {
	if len(times) < 2 {
		return 100
	}
	mean := 0.0
	for _, t := range times {
		mean += t
	}
	mean /= float64(len(times))
	if mean == 0 {
		return 100
	}

	variance := 0.0
	for _, t := range times {
		variance += (t - mean) * (t - mean)
	}
	variance /= float64(len(times))
	cv := math.Sqrt(variance) / mean

	return math.Max(0, 100-100*cv)
}

// speedScore 平均时长对照基线打分，快于基线不再额外加分
func (s *PerformanceService) speedScore(avgMs float64) float64 {
	score := 100 - 50*(avgMs/s.engine.BaselineResponseMs-1)
	return math.Max(0, math.Min(100, score))
}

// classifyTrend 窗口对半切，比较前后两半的正确率。
// 差值超过 ±5 个百分点判定为上升或下滑，少于 3 次尝试不下结论。
func classifyTrend(attempts []model.Attempt) string {
	if len(attempts) < 3 {
		return model.TrendInsufficientData
	}

	half := len(attempts) / 2
	first := accuracyOf(attempts[:half])
	second := accuracyOf(attempts[half:])

	diff := second - first
	switch {
	case diff > 5:
		return model.TrendImproving
	case diff < -5:
		return model.TrendDeclining
	}
	return model.TrendStable
}

func accuracyOf(attempts []model.Attempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	correct := 0
	for _, a := range attempts {
		if a.IsCorrect {
			correct++
		}
	}
	return 100 * float64(correct) / float64(len(attempts))
}

type areaStats struct {
	kind      string
	key       string
	count     int
	correct   int
	totalTime float64
}

// groupAreas 按难度和主题分组找薄弱与强项。样本不足 3 次的组不评判。
func (s *PerformanceService) groupAreas(attempts []model.Attempt, overallAvgMs float64) ([]model.WeakArea, []model.Strength) {
	groups := map[string]*areaStats{}
	add := func(kind, key string, a model.Attempt) {
		if key == "" {
			return
		}
		id := kind + ":" + key
		g, ok := groups[id]
		if !ok {
			g = &areaStats{kind: kind, key: key}
			groups[id] = g
		}
		g.count++
		if a.IsCorrect {
			g.correct++
		}
		g.totalTime += float64(a.ResponseTimeMs)
	}
	for _, a := range attempts {
		add("difficulty", strconv.Itoa(a.Level), a)
		add("topic", a.Topic, a)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var weak []model.WeakArea
	var strengths []model.Strength
	for _, id := range ids {
		g := groups[id]
		if g.count < 3 {
			continue
		}
		acc := 100 * float64(g.correct) / float64(g.count)
		avgTime := g.totalTime / float64(g.count)

		switch {
		case acc < 60:
			severity := model.SeverityMedium
			if acc < 40 {
				severity = model.SeverityHigh
			}
			weak = append(weak, model.WeakArea{
				Kind:         g.kind,
				Key:          g.key,
				AccuracyRate: acc,
				AvgTimeMs:    avgTime,
				Severity:     severity,
				Reason:       fmt.Sprintf("accuracy %.0f%% is below 60%%", acc),
			})
		case overallAvgMs > 0 && avgTime > 1.5*overallAvgMs:
			severity := model.SeverityMedium
			if avgTime > 2*overallAvgMs {
				severity = model.SeverityHigh
			}
			weak = append(weak, model.WeakArea{
				Kind:         g.kind,
				Key:          g.key,
				AccuracyRate: acc,
				AvgTimeMs:    avgTime,
				Severity:     severity,
				Reason:       "solve time is well above your average",
			})
		}

		if acc >= 80 {
			strengths = append(strengths, model.Strength{
				Kind:         g.kind,
				Key:          g.key,
				AccuracyRate: acc,
			})
		}
	}

	// high 在前，同级保持分组遍历顺序
	sort.SliceStable(weak, func(i, j int) bool {
		return severityRank(weak[i].Severity) > severityRank(weak[j].Severity)
	})

	return weak, strengths
}

func severityRank(s string) int {
	switch s {
	case model.SeverityHigh:
		return 3
	case model.SeverityMedium:
		return 2
	case model.SeverityLow:
		return 1
	}
	return 0
}
