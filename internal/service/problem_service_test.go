package service

import (
	"testing"

	"code_mentor_backend/internal/model"
	"code_mentor_backend/internal/util"

	"github.com/stretchr/testify/assert"
)

func validClozeInput() *ProblemInput {
	return &ProblemInput{
		Title:       "for 循环填空",
		ProblemType: model.Cloze,
		Slots: []model.AnswerSlot{
			{SlotID: 1, Answer: "for"},
			{SlotID: 2, Answer: "range"},
		},
	}
}

func TestValidateProblemInputCloze(t *testing.T) {
	assert.NoError(t, validateProblemInput(validClozeInput()))
}

func TestValidateProblemInputRejectsDuplicateSlotIDs(t *testing.T) {
	input := validClozeInput()
	input.Slots[1].SlotID = 1
	assert.ErrorIs(t, validateProblemInput(input), util.ErrValidation)
}

func TestValidateProblemInputRejectsNonPositiveSlotID(t *testing.T) {
	input := validClozeInput()
	input.Slots[0].SlotID = 0
	assert.ErrorIs(t, validateProblemInput(input), util.ErrValidation)
}

func TestValidateProblemInputRejectsEmptyAnswerWithoutMapEntry(t *testing.T) {
	input := validClozeInput()
	input.Slots[0].Answer = "  "
	assert.ErrorIs(t, validateProblemInput(input), util.ErrValidation)

	// 权威映射补上了答案就放行
	input.AnswerMap = map[int]string{1: "for"}
	assert.NoError(t, validateProblemInput(input))
}

func TestValidateProblemInputRejectsEmptyMapAnswer(t *testing.T) {
	input := validClozeInput()
	input.AnswerMap = map[int]string{2: " "}
	assert.ErrorIs(t, validateProblemInput(input), util.ErrValidation)
}

func TestValidateProblemInputFreeCode(t *testing.T) {
	input := &ProblemInput{
		Title:       "两数之和",
		ProblemType: model.FreeCode,
		Language:    "python",
		Examples:    []model.ExamplePair{{Input: "1 2", Output: "3"}},
	}
	assert.NoError(t, validateProblemInput(input))

	input.Examples = nil
	assert.ErrorIs(t, validateProblemInput(input), util.ErrValidation)

	input.Examples = []model.ExamplePair{{Input: "1 2", Output: " "}}
	assert.ErrorIs(t, validateProblemInput(input), util.ErrValidation)
}

func TestValidateProblemInputUnknownType(t *testing.T) {
	input := &ProblemInput{Title: "x", ProblemType: "quiz"}
	assert.ErrorIs(t, validateProblemInput(input), util.ErrValidation)
}

func TestEncodeProblemPayloadRoundTrip(t *testing.T) {
	input := validClozeInput()
	input.AnswerMap = map[int]string{1: "for"}

	problem := &model.Problem{}
	assert.NoError(t, encodeProblemPayload(problem, input))

	slots, err := problem.DecodeSlots()
	assert.NoError(t, err)
	assert.Len(t, slots, 2)

	m, err := problem.DecodeAnswerMap()
	assert.NoError(t, err)
	assert.Equal(t, "for", m[1])
}
