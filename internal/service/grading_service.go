package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"code_mentor_backend/internal/config"
	"code_mentor_backend/internal/model"
	"code_mentor_backend/internal/util"
	"code_mentor_backend/pkg/monitoring"
	"code_mentor_backend/pkg/sandbox"

	"go.uber.org/zap"
)

// NoAnswer 缺失答案的占位符，始终判为错
const NoAnswer = "no answer"

// Submission 用户提交，按题型恰好填充一个字段
type Submission struct {
	// SlotAnswers 填空题：slotId -> 答案文本
	SlotAnswers map[int]string `json:"slotAnswers,omitempty"`
	// Ordered 积木题：按位置排列的代码块
	Ordered []string `json:"ordered,omitempty"`
	// Code 自由编程题：完整代码
	Code string `json:"code,omitempty"`
}

// GradeResult 判分结果
type GradeResult struct {
	Score        int                `json:"score"`
	IsCorrect    bool               `json:"isCorrect"`
	CorrectCount int                `json:"correctCount"`
	TotalCount   int                `json:"totalCount"`
	SlotResults  []model.SlotResult `json:"slotResults"`
	FeedbackText string             `json:"feedbackText"`
}

// GradingService 将用户提交与题目答案逐槽比对并产出得分。
// 除自由编程题的沙箱执行外不做任何 I/O，可安全并发调用。
type GradingService struct {
	runner  sandbox.Runner
	timeout time.Duration
	log     *zap.Logger
}

func NewGradingService(runner sandbox.Runner, cfg *config.SandboxConfig, log *zap.Logger) *GradingService {
	timeout := time.Second
	if cfg != nil && cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return &GradingService{
		runner:  runner,
		timeout: timeout,
		log:     log,
	}
}

// Grade 判分入口。题目数据损坏返回 ErrProblemMisconfigured，
// 提交结构与题型不符返回 ErrValidation，用户答错不产生 error。
func (s *GradingService) Grade(ctx context.Context, problem *model.Problem, sub Submission) (*GradeResult, error) {
	var (
		result *GradeResult
		err    error
	)

	switch problem.ProblemType {
	case model.Cloze:
		if sub.SlotAnswers == nil {
			return nil, util.ErrValidation
		}
		result, err = s.gradeSlots(problem, func(slot model.AnswerSlot, _ int) string {
			return sub.SlotAnswers[slot.SlotID]
		})
	case model.Block:
		if sub.Ordered == nil {
			return nil, util.ErrValidation
		}
		// 积木题按位置比对：第 i 个提交块对第 i 个答案槽；
		// 提交不足补缺、过长截断，残缺输入不应使判分抛错
		result, err = s.gradeSlots(problem, func(_ model.AnswerSlot, idx int) string {
			if idx < len(sub.Ordered) {
				return sub.Ordered[idx]
			}
			return ""
		})
	case model.FreeCode:
		if strings.TrimSpace(sub.Code) == "" {
			return nil, util.ErrValidation
		}
		result, err = s.gradeFreeCode(ctx, problem, sub.Code)
	default:
		return nil, util.ErrValidation
	}

	if err != nil {
		return nil, err
	}

	monitoring.AttemptsGraded.WithLabelValues(
		string(problem.ProblemType),
		strconv.FormatBool(result.IsCorrect),
	).Inc()

	return result, nil
}

// resolveAnswer 确定一个槽的标准答案。生成管线可能同时产出权威映射和
// 位置回退列表，两者都在时以映射为准；不一致说明上游数据有问题，记日志
// 而不是悄悄吞掉。
func (s *GradingService) resolveAnswer(problemID uint, slot model.AnswerSlot, answerMap map[int]string) string {
	mapped, ok := answerMap[slot.SlotID]
	if !ok {
		return slot.Answer
	}
	if slot.Answer != "" && !util.AnswerEqual(mapped, slot.Answer) {
		s.log.Warn("answer sources disagree for slot",
			zap.Uint("problemId", problemID),
			zap.Int("slotId", slot.SlotID),
			zap.String("mapped", mapped),
			zap.String("positional", slot.Answer))
	}
	return mapped
}

func (s *GradingService) gradeSlots(problem *model.Problem, answerAt func(model.AnswerSlot, int) string) (*GradeResult, error) {
	slots, err := problem.DecodeSlots()
	if err != nil {
		return nil, util.ErrProblemMisconfigured
	}
	answerMap, err := problem.DecodeAnswerMap()
	if err != nil {
		return nil, util.ErrProblemMisconfigured
	}
	if len(slots) == 0 {
		return nil, util.ErrProblemMisconfigured
	}

	results := make([]model.SlotResult, 0, len(slots))
	correct := 0
	for i, slot := range slots {
		canonical := s.resolveAnswer(problem.ID, slot, answerMap)
		if strings.TrimSpace(canonical) == "" {
			// 标准答案为空属于题目数据损坏，不能当成用户答错
			return nil, util.ErrProblemMisconfigured
		}

		userAnswer := answerAt(slot, i)
		ok := false
		if strings.TrimSpace(userAnswer) == "" {
			userAnswer = NoAnswer
		} else {
			ok = util.AnswerEqual(canonical, userAnswer)
		}
		if ok {
			correct++
		}
		results = append(results, model.SlotResult{
			SlotID:          slot.SlotID,
			CanonicalAnswer: canonical,
			UserAnswer:      userAnswer,
			IsCorrect:       ok,
		})
	}

	return buildResult(correct, len(slots), results), nil
}

// gradeFreeCode 把每组样例当作一个答案槽：跑一次沙箱，输出与期望一致记对。
// 沙箱超时或执行异常只让该样例记错，绝不让整次判分失败。
func (s *GradingService) gradeFreeCode(ctx context.Context, problem *model.Problem, code string) (*GradeResult, error) {
	examples, err := problem.DecodeExamples()
	if err != nil {
		return nil, util.ErrProblemMisconfigured
	}
	if len(examples) == 0 {
		return nil, util.ErrProblemMisconfigured
	}
	for _, ex := range examples {
		if strings.TrimSpace(ex.Output) == "" {
			return nil, util.ErrProblemMisconfigured
		}
	}

	results := make([]model.SlotResult, 0, len(examples))
	correct := 0
	for i, ex := range examples {
		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		run, runErr := s.runner.Run(runCtx, problem.Language, code, ex.Input)
		cancel()

		got := ""
		ok := false
		if runErr != nil {
			monitoring.SandboxTimeouts.Inc()
			s.log.Warn("sandbox execution failed, counting example as miss",
				zap.Uint("problemId", problem.ID),
				zap.Int("example", i+1),
				zap.Error(runErr))
		} else if run.ExitCode == 0 {
			got = strings.TrimSpace(run.Stdout)
			ok = got == strings.TrimSpace(ex.Output)
		}
		if ok {
			correct++
		}
		if got == "" {
			got = NoAnswer
		}
		results = append(results, model.SlotResult{
			SlotID:          i + 1,
			CanonicalAnswer: strings.TrimSpace(ex.Output),
			UserAnswer:      got,
			IsCorrect:       ok,
		})
	}

	return buildResult(correct, len(examples), results), nil
}

func buildResult(correct, total int, slotResults []model.SlotResult) *GradeResult {
	score := int(math.Round(100 * float64(correct) / float64(total)))
	return &GradeResult{
		Score:        score,
		IsCorrect:    correct == total,
		CorrectCount: correct,
		TotalCount:   total,
		SlotResults:  slotResults,
		FeedbackText: feedbackForScore(score),
	}
}

// feedbackForScore 固定的反馈阶梯，只看总分不看具体槽位
func feedbackForScore(score int) string {
	switch {
	case score == 100:
		return "Perfect! Every answer is correct."
	case score >= 80:
		return "Good work, just a couple of slips to fix."
	case score >= 60:
		return "Getting there. Review the missed answers and try again."
	default:
		return "Keep practicing. Revisit this topic and retry the exercise."
	}
}
