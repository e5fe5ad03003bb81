package service

import (
	"context"
	"testing"
	"time"

	"code_mentor_backend/internal/config"
	"code_mentor_backend/internal/model"
	"code_mentor_backend/internal/util"
	"code_mentor_backend/pkg/sandbox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRunner 按 stdin 查表返回预设输出，便于离线测自由编程题判分
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   int
}

func (f *fakeRunner) Run(_ context.Context, _ string, _ string, stdin string) (*sandbox.RunResult, error) {
	f.calls++
	if err, ok := f.errs[stdin]; ok {
		return nil, err
	}
	return &sandbox.RunResult{
		Stdout:   f.outputs[stdin],
		ExitCode: 0,
		Duration: 5 * time.Millisecond,
	}, nil
}

func newTestGrader(runner sandbox.Runner) *GradingService {
	return NewGradingService(runner, &config.SandboxConfig{TimeoutMs: 1000}, zap.NewNop())
}

func clozeProblem(slots, answerMap string) *model.Problem {
	p := &model.Problem{
		Title:       "for 循环填空",
		ProblemType: model.Cloze,
		Slots:       slots,
		AnswerMap:   answerMap,
	}
	p.ID = 1
	return p
}

func TestGradeClozeAllCorrect(t *testing.T) {
	grader := newTestGrader(nil)
	problem := clozeProblem(`[{"slotId":1,"answer":"for"},{"slotId":2,"answer":"range"},{"slotId":3,"answer":"print"}]`, "")

	result, err := grader.Grade(context.Background(), problem, Submission{
		SlotAnswers: map[int]string{1: "  FOR ", 2: "range", 3: "Print"},
	})
	require.NoError(t, err)

	assert.Equal(t, 100, result.Score)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, 3, result.CorrectCount)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, "Perfect! Every answer is correct.", result.FeedbackText)
}

func TestGradeClozePartial(t *testing.T) {
	grader := newTestGrader(nil)
	problem := clozeProblem(`[{"slotId":1,"answer":"for"},{"slotId":2,"answer":"range"},{"slotId":3,"answer":"print"}]`, "")

	result, err := grader.Grade(context.Background(), problem, Submission{
		SlotAnswers: map[int]string{1: "while", 2: "range", 3: "print"},
	})
	require.NoError(t, err)

	assert.Equal(t, 67, result.Score, "round(100*2/3)")
	assert.False(t, result.IsCorrect)
	assert.Equal(t, 2, result.CorrectCount)
	require.Len(t, result.SlotResults, 3)
	assert.False(t, result.SlotResults[0].IsCorrect)
	assert.Equal(t, "while", result.SlotResults[0].UserAnswer)
}

func TestGradeClozeMissingSlotIsMiss(t *testing.T) {
	grader := newTestGrader(nil)
	problem := clozeProblem(`[{"slotId":1,"answer":"for"},{"slotId":2,"answer":"range"}]`, "")

	result, err := grader.Grade(context.Background(), problem, Submission{
		SlotAnswers: map[int]string{2: "range"},
	})
	require.NoError(t, err)

	assert.Equal(t, 50, result.Score)
	assert.Equal(t, NoAnswer, result.SlotResults[0].UserAnswer)
	assert.False(t, result.SlotResults[0].IsCorrect)
}

func TestGradeClozeWhitespaceOnlyAnswerIsMiss(t *testing.T) {
	grader := newTestGrader(nil)
	problem := clozeProblem(`[{"slotId":1,"answer":"for"}]`, "")

	result, err := grader.Grade(context.Background(), problem, Submission{
		SlotAnswers: map[int]string{1: "   "},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, NoAnswer, result.SlotResults[0].UserAnswer)
}

func TestGradeAnswerMapTakesPrecedence(t *testing.T) {
	grader := newTestGrader(nil)
	// 位置答案说 while，权威映射说 for，以映射为准
	problem := clozeProblem(
		`[{"slotId":1,"answer":"while"}]`,
		`{"1":"for"}`,
	)

	result, err := grader.Grade(context.Background(), problem, Submission{
		SlotAnswers: map[int]string{1: "for"},
	})
	require.NoError(t, err)

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, "for", result.SlotResults[0].CanonicalAnswer)
}

func TestGradeAnswerMapFillsMissingPositional(t *testing.T) {
	grader := newTestGrader(nil)
	problem := clozeProblem(
		`[{"slotId":1,"answer":""},{"slotId":2,"answer":"range"}]`,
		`{"1":"for"}`,
	)

	result, err := grader.Grade(context.Background(), problem, Submission{
		SlotAnswers: map[int]string{1: "for", 2: "range"},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)
}

func TestGradeBlockOrderedWithPadding(t *testing.T) {
	grader := newTestGrader(nil)
	problem := &model.Problem{
		Title:       "排序积木",
		ProblemType: model.Block,
		Slots:       `[{"slotId":1,"answer":"def sort(a):"},{"slotId":2,"answer":"a.sort()"},{"slotId":3,"answer":"return a"}]`,
	}
	problem.ID = 2

	// 只提交两块，第三槽补缺记错
	result, err := grader.Grade(context.Background(), problem, Submission{
		Ordered: []string{"def sort(a):", "a.sort()"},
	})
	require.NoError(t, err)

	assert.Equal(t, 67, result.Score)
	assert.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, NoAnswer, result.SlotResults[2].UserAnswer)
}

func TestGradeBlockExtraBlocksTruncated(t *testing.T) {
	grader := newTestGrader(nil)
	problem := &model.Problem{
		ProblemType: model.Block,
		Slots:       `[{"slotId":1,"answer":"x = 1"}]`,
	}

	result, err := grader.Grade(context.Background(), problem, Submission{
		Ordered: []string{"x = 1", "y = 2", "z = 3"},
	})
	require.NoError(t, err)

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 1, result.TotalCount)
}

func TestGradeMisconfiguredProblem(t *testing.T) {
	grader := newTestGrader(nil)

	cases := []struct {
		name    string
		problem *model.Problem
	}{
		{"no slots", clozeProblem("", "")},
		{"empty slot list", clozeProblem(`[]`, "")},
		{"empty canonical answer", clozeProblem(`[{"slotId":1,"answer":"  "}]`, "")},
		{"broken slots json", clozeProblem(`[{`, "")},
		{"broken answer map json", clozeProblem(`[{"slotId":1,"answer":"for"}]`, `{broken`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := grader.Grade(context.Background(), tc.problem, Submission{
				SlotAnswers: map[int]string{1: "for"},
			})
			assert.ErrorIs(t, err, util.ErrProblemMisconfigured)
		})
	}
}

func TestGradeRejectsMismatchedPayload(t *testing.T) {
	grader := newTestGrader(nil)
	problem := clozeProblem(`[{"slotId":1,"answer":"for"}]`, "")

	_, err := grader.Grade(context.Background(), problem, Submission{Ordered: nil, SlotAnswers: nil})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func freeCodeProblem(examples string) *model.Problem {
	p := &model.Problem{
		Title:       "两数之和",
		ProblemType: model.FreeCode,
		Language:    "python",
		Examples:    examples,
	}
	p.ID = 3
	return p
}

func TestGradeFreeCodeAllExamplesPass(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"1 2": "3\n",
		"5 7": "12\n",
	}}
	grader := newTestGrader(runner)
	problem := freeCodeProblem(`[{"input":"1 2","output":"3"},{"input":"5 7","output":"12"}]`)

	result, err := grader.Grade(context.Background(), problem, Submission{
		Code: "a, b = map(int, input().split())\nprint(a + b)",
	})
	require.NoError(t, err)

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 2, runner.calls, "one sandbox run per example")
	assert.Equal(t, "3", result.SlotResults[0].CanonicalAnswer)
}

func TestGradeFreeCodeSandboxErrorIsMiss(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{"1 2": "3\n"},
		errs:    map[string]error{"5 7": sandbox.ErrTimeout},
	}
	grader := newTestGrader(runner)
	problem := freeCodeProblem(`[{"input":"1 2","output":"3"},{"input":"5 7","output":"12"}]`)

	result, err := grader.Grade(context.Background(), problem, Submission{Code: "print(3)"})
	require.NoError(t, err, "sandbox failure must not fail the grading call")

	assert.Equal(t, 50, result.Score)
	assert.False(t, result.SlotResults[1].IsCorrect)
	assert.Equal(t, NoAnswer, result.SlotResults[1].UserAnswer)
}

func TestGradeFreeCodeWrongOutput(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"1 2": "4\n"}}
	grader := newTestGrader(runner)
	problem := freeCodeProblem(`[{"input":"1 2","output":"3"}]`)

	result, err := grader.Grade(context.Background(), problem, Submission{Code: "print(4)"})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, "4", result.SlotResults[0].UserAnswer)
}

func TestGradeFreeCodeNoExamplesIsMisconfigured(t *testing.T) {
	grader := newTestGrader(&fakeRunner{})
	problem := freeCodeProblem("")

	_, err := grader.Grade(context.Background(), problem, Submission{Code: "print(1)"})
	assert.ErrorIs(t, err, util.ErrProblemMisconfigured)
}

func TestGradeFreeCodeEmptyCodeRejected(t *testing.T) {
	grader := newTestGrader(&fakeRunner{})
	problem := freeCodeProblem(`[{"input":"","output":"hi"}]`)

	_, err := grader.Grade(context.Background(), problem, Submission{Code: "   "})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestFeedbackLadder(t *testing.T) {
	assert.Equal(t, "Perfect! Every answer is correct.", feedbackForScore(100))
	assert.Equal(t, "Good work, just a couple of slips to fix.", feedbackForScore(80))
	assert.Equal(t, "Getting there. Review the missed answers and try again.", feedbackForScore(60))
	assert.Equal(t, "Keep practicing. Revisit this topic and retry the exercise.", feedbackForScore(59))
}
