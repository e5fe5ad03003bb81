package service

import (
	"context"
	"testing"

	"code_mentor_backend/internal/config"
	"code_mentor_backend/internal/model"
	"code_mentor_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeProblemFinder struct {
	problems map[uint]*model.Problem
}

func (f *fakeProblemFinder) FindByID(id uint) (*model.Problem, error) {
	p, ok := f.problems[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

type fakeAttemptWriter struct {
	created []*model.Attempt
	prior   int64
}

func (f *fakeAttemptWriter) Create(attempt *model.Attempt) error {
	attempt.ID = uint(len(f.created) + 1)
	f.created = append(f.created, attempt)
	return nil
}

func (f *fakeAttemptWriter) CountByUserAndProblem(_, _ uint) (int64, error) {
	return f.prior, nil
}

func newTestAttemptService(finder *fakeProblemFinder, writer *fakeAttemptWriter, progStore *fakeProgressionStore) *AttemptService {
	log := zap.NewNop()
	grader := newTestGrader(nil)
	experience := NewExperienceService(progStore, nil, config.EngineDefaults(), log)
	return NewAttemptService(finder, writer, grader, experience, log)
}

func publishedCloze() *model.Problem {
	p := clozeProblem(`[{"slotId":1,"answer":"for"},{"slotId":2,"answer":"range"}]`, "")
	p.IsPublished = true
	p.Level = 1
	p.Topic = "loops"
	return p
}

func TestSubmitGradesPersistsAndSettles(t *testing.T) {
	finder := &fakeProblemFinder{problems: map[uint]*model.Problem{1: publishedCloze()}}
	writer := &fakeAttemptWriter{}
	progStore := &fakeProgressionStore{}
	svc := newTestAttemptService(finder, writer, progStore)

	result, err := svc.Submit(context.Background(), 7, &SubmitRequest{
		ProblemID:      1,
		Submission:     Submission{SlotAnswers: map[int]string{1: "For", 2: "range"}},
		ResponseTimeMs: 12000,
	})
	require.NoError(t, err)

	assert.Equal(t, 100, result.Grade.Score)
	require.NotNil(t, result.Progression)
	assert.True(t, result.Progression.GainedXP > 0)

	require.Len(t, writer.created, 1)
	attempt := writer.created[0]
	assert.True(t, attempt.IsFirstAttempt)
	assert.True(t, attempt.IsCorrect)
	assert.Equal(t, "loops", attempt.Topic)
	assert.Equal(t, 12000, attempt.ResponseTimeMs)
	assert.NotEmpty(t, attempt.SlotResults)
}

func TestSubmitSecondAttemptNotFirst(t *testing.T) {
	finder := &fakeProblemFinder{problems: map[uint]*model.Problem{1: publishedCloze()}}
	writer := &fakeAttemptWriter{prior: 3}
	svc := newTestAttemptService(finder, writer, &fakeProgressionStore{})

	_, err := svc.Submit(context.Background(), 7, &SubmitRequest{
		ProblemID:  1,
		Submission: Submission{SlotAnswers: map[int]string{1: "for", 2: "range"}},
	})
	require.NoError(t, err)
	assert.False(t, writer.created[0].IsFirstAttempt)
}

func TestSubmitUnknownProblem(t *testing.T) {
	svc := newTestAttemptService(&fakeProblemFinder{problems: map[uint]*model.Problem{}}, &fakeAttemptWriter{}, &fakeProgressionStore{})

	_, err := svc.Submit(context.Background(), 7, &SubmitRequest{ProblemID: 99})
	assert.ErrorIs(t, err, util.ErrProblemNotFound)
}

func TestSubmitUnpublishedProblemHidden(t *testing.T) {
	p := publishedCloze()
	p.IsPublished = false
	svc := newTestAttemptService(&fakeProblemFinder{problems: map[uint]*model.Problem{1: p}}, &fakeAttemptWriter{}, &fakeProgressionStore{})

	_, err := svc.Submit(context.Background(), 7, &SubmitRequest{
		ProblemID:  1,
		Submission: Submission{SlotAnswers: map[int]string{1: "for"}},
	})
	assert.ErrorIs(t, err, util.ErrProblemNotFound)
}

func TestSubmitMisconfiguredProblemNotPersisted(t *testing.T) {
	p := clozeProblem(`[{"slotId":1,"answer":""}]`, "")
	p.IsPublished = true
	writer := &fakeAttemptWriter{}
	svc := newTestAttemptService(&fakeProblemFinder{problems: map[uint]*model.Problem{1: p}}, writer, &fakeProgressionStore{})

	_, err := svc.Submit(context.Background(), 7, &SubmitRequest{
		ProblemID:  1,
		Submission: Submission{SlotAnswers: map[int]string{1: "for"}},
	})
	assert.ErrorIs(t, err, util.ErrProblemMisconfigured)
	assert.Empty(t, writer.created, "broken problems must not produce attempt rows")
}
