package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"code_mentor_backend/internal/model"
	"code_mentor_backend/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubmitRequest 一次答题提交
// swagger:model SubmitRequest
type SubmitRequest struct {
	ProblemID uint `json:"problemId" binding:"required"`
	Submission
	ResponseTimeMs int `json:"responseTimeMs"`
}

// SubmitResult 判分加经验结算的组合结果。
// Progression 为 nil 表示经验结算失败，判分结果依然有效。
type SubmitResult struct {
	AttemptID   uint               `json:"attemptId"`
	Grade       *GradeResult       `json:"grade"`
	Progression *ProgressionUpdate `json:"progression,omitempty"`
}

// attemptWriter 提交流程需要的尝试持久化能力
type attemptWriter interface {
	Create(attempt *model.Attempt) error
	CountByUserAndProblem(userID, problemID uint) (int64, error)
}

// problemFinder 提交流程需要的题目查询能力
type problemFinder interface {
	FindByID(id uint) (*model.Problem, error)
}

// AttemptService 串起判分、落库、经验结算的提交主流程。
// 判分 -> 落库 -> 结算是尽力而为的链：经验结算失败不吞掉判分结果，
// 每一段都可独立重试。
type AttemptService struct {
	problems   problemFinder
	attempts   attemptWriter
	grader     *GradingService
	experience *ExperienceService
	log        *zap.Logger
}

func NewAttemptService(problems problemFinder, attempts attemptWriter, grader *GradingService, experience *ExperienceService, log *zap.Logger) *AttemptService {
	return &AttemptService{
		problems:   problems,
		attempts:   attempts,
		grader:     grader,
		experience: experience,
		log:        log,
	}
}

// Submit 判分一次提交并结算经验
func (s *AttemptService) Submit(ctx context.Context, userID uint, req *SubmitRequest) (*SubmitResult, error) {
	problem, err := s.problems.FindByID(req.ProblemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProblemNotFound
		}
		return nil, err
	}
	if !problem.IsPublished {
		return nil, util.ErrProblemNotFound
	}

	grade, err := s.grader.Grade(ctx, problem, req.Submission)
	if err != nil {
		return nil, err
	}

	priorCount, err := s.attempts.CountByUserAndProblem(userID, problem.ID)
	if err != nil {
		return nil, err
	}

	rawAnswers, _ := json.Marshal(req.Submission)
	rawResults, _ := json.Marshal(grade.SlotResults)

	attempt := &model.Attempt{
		UserID:         userID,
		ProblemID:      problem.ID,
		ProblemType:    problem.ProblemType,
		Level:          problem.Level,
		Topic:          problem.Topic,
		Answers:        string(rawAnswers),
		SlotResults:    string(rawResults),
		Score:          grade.Score,
		IsCorrect:      grade.IsCorrect,
		CorrectCount:   grade.CorrectCount,
		TotalCount:     grade.TotalCount,
		ResponseTimeMs: req.ResponseTimeMs,
		IsFirstAttempt: priorCount == 0,
		SubmittedAt:    time.Now(),
	}
	if err := s.attempts.Create(attempt); err != nil {
		return nil, err
	}

	result := &SubmitResult{
		AttemptID: attempt.ID,
		Grade:     grade,
	}

	update, err := s.experience.ApplyAttempt(ctx, userID, attempt)
	if err != nil {
		// 判分已落库，经验可基于该尝试重算，不让结算失败掩盖判分结果
		s.log.Error("experience settlement failed",
			zap.Uint("userId", userID),
			zap.Uint("attemptId", attempt.ID),
			zap.Error(err))
		return result, nil
	}
	result.Progression = update

	return result, nil
}
