package service

import (
	"fmt"
	"sort"
	"time"

	"code_mentor_backend/internal/config"
	"code_mentor_backend/internal/model"
	"code_mentor_backend/internal/util"

	"go.uber.org/zap"
)

// assessmentStore 等级评定需要的持久化能力
type assessmentStore interface {
	FindByUser(userID uint) (*model.UserProgression, error)
	Create(p *model.UserProgression) error
	Save(p *model.UserProgression) error
	SaveAssessment(a *model.LevelAssessment) error
	FindAssessments(userID uint, limit int) ([]model.LevelAssessment, error)
}

// AssignmentService 按表现快照评定技能档位并生成反馈。
// Assign 本身是纯函数；Assess 负责取数、校验样本量并落库评定记录。
type AssignmentService struct {
	store    assessmentStore
	attempts attemptStore
	analyzer *PerformanceService
	engine   config.EngineConfig
	log      *zap.Logger
}

func NewAssignmentService(store assessmentStore, attempts attemptStore, analyzer *PerformanceService, engine config.EngineConfig, log *zap.Logger) *AssignmentService {
	return &AssignmentService{
		store:    store,
		attempts: attempts,
		analyzer: analyzer,
		engine:   engine,
		log:      log,
	}
}

// TierForScore 总评分到档位的映射：[0,40] 入门，(40,70] 进阶，(70,100] 高阶
func TierForScore(score float64) model.SkillTier {
	switch {
	case score <= 40:
		return model.TierBeginner
	case score <= 70:
		return model.TierIntermediate
	}
	return model.TierAdvanced
}

// Assign 评定档位并打包反馈，previous 为空表示首次评定
func (s *AssignmentService) Assign(previous model.SkillTier, snap *model.PerformanceSnapshot) *model.LevelAssignment {
	assigned := TierForScore(snap.OverallScore)

	changeKind := model.ChangeInitial
	if previous != "" {
		switch {
		case assigned.Rank() > previous.Rank():
			changeKind = model.ChangePromoted
		case assigned.Rank() < previous.Rank():
			changeKind = model.ChangeDemoted
		default:
			changeKind = model.ChangeMaintained
		}
	}

	return &model.LevelAssignment{
		AssignedLevel:   assigned,
		PreviousLevel:   previous,
		ChangeKind:      changeKind,
		Feedback:        buildFeedback(assigned, snap),
		Recommendations: buildRecommendations(snap),
	}
}

// Assess 基于最近窗口重估用户档位并持久化评定记录。
// 窗口内尝试不足时返回 ErrInsufficientData，调用方应原样透出而不是默认定级。
func (s *AssignmentService) Assess(userID uint) (*model.LevelAssignment, error) {
	since := time.Now().AddDate(0, 0, -s.engine.AssessmentWindowDays)
	attempts, err := s.attempts.FindByUserSince(userID, since, "")
	if err != nil {
		return nil, err
	}
	if len(attempts) < s.engine.MinAttemptsForAssessment {
		return nil, util.ErrInsufficientData
	}

	snap := s.analyzer.Analyze(attempts)

	prog, err := s.store.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if prog == nil {
		prog = &model.UserProgression{UserID: userID, Level: 1, HighestLevelReached: 1}
		if err := s.store.Create(prog); err != nil {
			return nil, err
		}
	}

	assignment := s.Assign(prog.SkillTier, snap)

	now := time.Now()
	prog.SkillTier = assignment.AssignedLevel
	prog.LastAssessedAt = &now
	if err := s.store.Save(prog); err != nil {
		return nil, err
	}

	record := &model.LevelAssessment{
		UserID:        userID,
		AssignedTier:  assignment.AssignedLevel,
		PreviousTier:  assignment.PreviousLevel,
		ChangeKind:    assignment.ChangeKind,
		OverallScore:  snap.OverallScore,
		AccuracyRate:  snap.AccuracyRate,
		AttemptsCount: snap.AttemptsCount,
	}
	if err := s.store.SaveAssessment(record); err != nil {
		return nil, err
	}

	s.log.Info("skill tier assessed",
		zap.Uint("userId", userID),
		zap.String("tier", string(assignment.AssignedLevel)),
		zap.String("changeKind", assignment.ChangeKind),
		zap.Float64("overallScore", snap.OverallScore))

	return assignment, nil
}

// History 用户的评定历史
func (s *AssignmentService) History(userID uint, limit int) ([]model.LevelAssessment, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.store.FindAssessments(userID, limit)
}

var tierFeedback = map[model.SkillTier]string{
	model.TierBeginner:     "You are building your foundations. Short, frequent practice sessions will pay off fastest.",
	model.TierIntermediate: "You handle the fundamentals well. Push into harder problem types to keep growing.",
	model.TierAdvanced:     "Strong performance across the board. Seek out the hardest exercises to stay challenged.",
}

func buildFeedback(tier model.SkillTier, snap *model.PerformanceSnapshot) string {
	feedback := tierFeedback[tier]
	if len(snap.WeakAreas) > 0 {
		w := snap.WeakAreas[0]
		feedback += fmt.Sprintf(" Focus area: %s %s.", w.Kind, w.Key)
	}
	if len(snap.Strengths) > 0 {
		st := snap.Strengths[0]
		feedback += fmt.Sprintf(" Keep leaning on your strength in %s %s.", st.Kind, st.Key)
	}
	return feedback
}

// buildRecommendations 从快照装配建议列表，高优先级在前，至多 5 条
func buildRecommendations(snap *model.PerformanceSnapshot) []model.Recommendation {
	var recs []model.Recommendation

	for _, w := range snap.WeakAreas {
		recs = append(recs, model.Recommendation{
			Type:     "practice",
			Priority: w.Severity,
			Message:  fmt.Sprintf("Practice more %s %s exercises: %s.", w.Kind, w.Key, w.Reason),
		})
	}

	if snap.Trend == model.TrendDeclining {
		recs = append(recs, model.Recommendation{
			Type:     "pace",
			Priority: model.SeverityHigh,
			Message:  "Your recent accuracy is slipping. Slow down and review before submitting.",
		})
	}

	for _, st := range snap.Strengths {
		recs = append(recs, model.Recommendation{
			Type:     "advance",
			Priority: model.SeverityLow,
			Message:  fmt.Sprintf("You are strong at %s %s. Try the next difficulty up.", st.Kind, st.Key),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return severityRank(recs[i].Priority) > severityRank(recs[j].Priority)
	})
	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}
