package assessment

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func mcRow(id uint, options []string, correct, points int) *models.Question {
	q := &models.Question{ID: id, Type: models.MultipleChoice, Prompt: "pick one", Points: points, CorrectIndex: intPtr(correct)}
	_ = q.SetOptions(options)
	return q
}

func textRow(id uint, qt models.QuestionType, correct string, points int) *models.Question {
	return &models.Question{ID: id, Type: qt, Prompt: "type it", Points: points, CorrectText: strPtr(correct)}
}

func answers(values map[uint]string) Answers {
	out := make(Answers, len(values))
	for id, v := range values {
		out[id] = json.RawMessage(v)
	}
	return out
}

func publishedQuiz() *models.Quiz {
	return &models.Quiz{
		ID:      7,
		Status:  models.QuizStatusPublished,
		Classes: []models.Class{{ID: 1}, {ID: 2}},
	}
}

// ===== QUESTION BANK =====

func TestNewQuestionBank(t *testing.T) {
	t.Run("orders by position and sums points", func(t *testing.T) {
		first := mcRow(2, []string{"a", "b"}, 0, 3)
		first.Position = 0
		second := textRow(1, models.ShortAnswer, "x", 0)
		second.Position = 1

		bank, err := NewQuestionBank([]*models.Question{second, first})
		require.NoError(t, err)

		qs := bank.Questions()
		require.Len(t, qs, 2)
		assert.Equal(t, uint(2), qs[0].ID)
		assert.Equal(t, uint(1), qs[1].ID)
		assert.Equal(t, 1, qs[1].Points, "unset points default to one")
		assert.Equal(t, 4, bank.TotalPoints())
	})

	t.Run("true false defaults its options", func(t *testing.T) {
		row := &models.Question{ID: 1, Type: models.TrueFalse, Points: 1, CorrectIndex: intPtr(1)}
		q, err := BuildQuestion(row)
		require.NoError(t, err)
		body, ok := q.Body.(TrueFalseBody)
		require.True(t, ok)
		assert.Equal(t, []string{"True", "False"}, body.Options)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		_, err := NewQuestionBank([]*models.Question{{ID: 1, Type: "matching", Points: 1}})
		assert.ErrorIs(t, err, ErrUnsupportedQuestionType)
	})

	t.Run("correct option out of range is malformed", func(t *testing.T) {
		_, err := BuildQuestion(mcRow(1, []string{"a", "b"}, 2, 1))
		assert.ErrorIs(t, err, ErrMalformedQuestion)
	})

	t.Run("text question without key is malformed", func(t *testing.T) {
		_, err := BuildQuestion(&models.Question{ID: 1, Type: models.FillInBlank, Points: 1})
		assert.ErrorIs(t, err, ErrMalformedQuestion)
	})
}

// ===== CATALOG =====

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to models.QuizStatus
		ok       bool
	}{
		{models.QuizStatusDraft, models.QuizStatusPublished, true},
		{models.QuizStatusPublished, models.QuizStatusArchived, true},
		{models.QuizStatusDraft, models.QuizStatusArchived, false},
		{models.QuizStatusPublished, models.QuizStatusDraft, false},
		{models.QuizStatusArchived, models.QuizStatusPublished, false},
		{models.QuizStatusArchived, models.QuizStatusDraft, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := Transition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestModifyAndDeleteGuards(t *testing.T) {
	quiz := &models.Quiz{Status: models.QuizStatusDraft}
	assert.True(t, CanModify(quiz))
	assert.True(t, CanDelete(quiz))

	quiz.Status = models.QuizStatusPublished
	assert.True(t, CanModify(quiz), "published quizzes stay editable until attempted")
	assert.False(t, CanDelete(quiz))
	assert.ErrorIs(t, EnsureDeletable(quiz), ErrQuizNotDeletable)

	quiz.Status = models.QuizStatusDraft
	quiz.AttemptCount = 1
	assert.False(t, CanModify(quiz))
	assert.False(t, CanDelete(quiz))
	assert.ErrorIs(t, EnsureModifiable(quiz), ErrQuizNotModifiable)
}

func TestRecomputeTotalPoints(t *testing.T) {
	rows := []*models.Question{mcRow(1, []string{"a", "b"}, 0, 4), textRow(2, models.ShortAnswer, "x", 6), {ID: 3, Type: models.Essay}}
	assert.Equal(t, 11, RecomputeTotalPoints(rows))
	assert.Equal(t, 0, RecomputeTotalPoints(nil))
}

// ===== AUTHORIZER =====

func TestAuthorizeAttempt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("eligible student gets the current count back", func(t *testing.T) {
		quiz := publishedQuiz()
		quiz.AllowedAttempts = intPtr(3)
		count, err := AuthorizeAttempt(quiz, []uint{2}, 2, now)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("draft quiz is not available", func(t *testing.T) {
		quiz := publishedQuiz()
		quiz.Status = models.QuizStatusDraft
		_, err := AuthorizeAttempt(quiz, nil, 0, now)
		assert.ErrorIs(t, err, ErrQuizNotAvailable)
	})

	t.Run("status is checked before class membership", func(t *testing.T) {
		quiz := publishedQuiz()
		quiz.Status = models.QuizStatusArchived
		_, err := AuthorizeAttempt(quiz, []uint{99}, 0, now)
		assert.ErrorIs(t, err, ErrQuizNotAvailable)
	})

	t.Run("no shared class is access denied", func(t *testing.T) {
		_, err := AuthorizeAttempt(publishedQuiz(), []uint{3, 12}, 0, now)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("class membership is checked before the window", func(t *testing.T) {
		quiz := publishedQuiz()
		quiz.AvailableFrom = timePtr(now.Add(time.Hour))
		_, err := AuthorizeAttempt(quiz, nil, 0, now)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("before the window opens", func(t *testing.T) {
		quiz := publishedQuiz()
		quiz.AvailableFrom = timePtr(now.Add(time.Minute))
		_, err := AuthorizeAttempt(quiz, []uint{1}, 0, now)
		assert.ErrorIs(t, err, ErrNotYetAvailable)
	})

	t.Run("window bounds are inclusive", func(t *testing.T) {
		quiz := publishedQuiz()
		quiz.AvailableFrom = timePtr(now)
		quiz.AvailableUntil = timePtr(now)
		_, err := AuthorizeAttempt(quiz, []uint{1}, 0, now)
		assert.NoError(t, err)
	})

	t.Run("after the window closes", func(t *testing.T) {
		quiz := publishedQuiz()
		quiz.AvailableUntil = timePtr(now.Add(-time.Second))
		quiz.AllowedAttempts = intPtr(1)
		_, err := AuthorizeAttempt(quiz, []uint{1}, 5, now)
		assert.ErrorIs(t, err, ErrExpired, "expiry is reported before the attempt limit")
	})

	t.Run("attempt limit reached", func(t *testing.T) {
		quiz := publishedQuiz()
		quiz.AllowedAttempts = intPtr(2)
		_, err := AuthorizeAttempt(quiz, []uint{1}, 2, now)
		assert.ErrorIs(t, err, ErrAttemptLimitExceeded)

		var ruleErr *RuleError
		require.True(t, errors.As(err, &ruleErr))
		assert.Equal(t, 2, ruleErr.Context["allowed_attempts"])
	})

	t.Run("unlimited attempts", func(t *testing.T) {
		_, err := AuthorizeAttempt(publishedQuiz(), []uint{1}, 500, now)
		assert.NoError(t, err)
		assert.Nil(t, AttemptsRemaining(publishedQuiz(), 500))
	})
}

// ===== GRADER =====

func TestGrade(t *testing.T) {
	t.Run("multiple choice matches by index", func(t *testing.T) {
		bank, err := NewQuestionBank([]*models.Question{mcRow(1, []string{"3", "4", "5", "6"}, 1, 10)})
		require.NoError(t, err)

		graded, err := Grade(bank, answers(map[uint]string{1: `1`}))
		require.NoError(t, err)
		require.Len(t, graded, 1)
		assert.True(t, graded[0].IsCorrect)
		assert.Equal(t, 10, graded[0].EarnedPoints)
		assert.Equal(t, 1, graded[0].CorrectAnswer)
	})

	t.Run("string index does not match a numeric key", func(t *testing.T) {
		bank, err := NewQuestionBank([]*models.Question{mcRow(1, []string{"a", "b"}, 1, 2)})
		require.NoError(t, err)

		graded, err := Grade(bank, answers(map[uint]string{1: `"1"`}))
		require.NoError(t, err)
		assert.False(t, graded[0].IsCorrect)
		assert.Equal(t, 0, graded[0].EarnedPoints)
		assert.Equal(t, "1", graded[0].SubmittedValue)
	})

	t.Run("true false", func(t *testing.T) {
		row := &models.Question{ID: 4, Type: models.TrueFalse, Points: 1, CorrectIndex: intPtr(0)}
		bank, err := NewQuestionBank([]*models.Question{row})
		require.NoError(t, err)

		graded, err := Grade(bank, answers(map[uint]string{4: `0`}))
		require.NoError(t, err)
		assert.True(t, graded[0].IsCorrect)
	})

	t.Run("text answers are trimmed and case folded", func(t *testing.T) {
		bank, err := NewQuestionBank([]*models.Question{
			textRow(1, models.ShortAnswer, "Paris", 1),
			textRow(2, models.FillInBlank, " Mitochondria", 1),
			textRow(3, models.ShortAnswer, "42", 1),
		})
		require.NoError(t, err)

		graded, err := Grade(bank, answers(map[uint]string{1: `" paris "`, 2: `"MITOCHONDRIA"`, 3: `42`}))
		require.NoError(t, err)
		for _, g := range graded {
			assert.True(t, g.IsCorrect, "question %d", g.QuestionID)
		}
	})

	t.Run("missing and null answers are empty", func(t *testing.T) {
		bank, err := NewQuestionBank([]*models.Question{
			textRow(1, models.ShortAnswer, "Paris", 1),
			mcRow(2, []string{"a", "b"}, 0, 1),
			textRow(3, models.FillInBlank, "x", 1),
		})
		require.NoError(t, err)

		graded, err := Grade(bank, answers(map[uint]string{3: `null`}))
		require.NoError(t, err)
		for _, g := range graded {
			assert.False(t, g.IsCorrect)
			assert.Nil(t, g.SubmittedValue)
		}
	})

	t.Run("essays never score and need review", func(t *testing.T) {
		bank, err := NewQuestionBank([]*models.Question{{ID: 1, Type: models.Essay, Points: 5}})
		require.NoError(t, err)

		graded, err := Grade(bank, answers(map[uint]string{1: `"a thoughtful essay"`}))
		require.NoError(t, err)
		assert.False(t, graded[0].IsCorrect)
		assert.Equal(t, 0, graded[0].EarnedPoints)
		assert.Equal(t, 5, graded[0].Points)
		assert.True(t, NeedsReview(graded))
	})

	t.Run("answers to unknown questions are ignored", func(t *testing.T) {
		bank, err := NewQuestionBank([]*models.Question{mcRow(1, []string{"a", "b"}, 0, 1)})
		require.NoError(t, err)

		graded, err := Grade(bank, answers(map[uint]string{1: `0`, 99: `"noise"`}))
		require.NoError(t, err)
		assert.Len(t, graded, 1)
	})
}

// ===== SCORING =====

func TestScore(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("half marks fail a seventy percent gate", func(t *testing.T) {
		bank, err := NewQuestionBank([]*models.Question{mcRow(1, []string{"a", "b"}, 0, 10), mcRow(2, []string{"a", "b"}, 0, 10)})
		require.NoError(t, err)
		graded, err := Grade(bank, answers(map[uint]string{1: `0`, 2: `1`}))
		require.NoError(t, err)

		r := Score(graded, ScoreInput{PassingScore: intPtr(70), StartedAt: start, CompletedAt: start.Add(90 * time.Second)})
		assert.Equal(t, 10, r.Score)
		assert.Equal(t, 20, r.MaxScore)
		assert.Equal(t, 50.0, r.Percentage)
		assert.False(t, r.Passed)
		assert.Equal(t, 90, r.TimeSpentSeconds)
	})

	t.Run("no passing score always passes", func(t *testing.T) {
		r := Score([]GradedAnswer{{Points: 3}}, ScoreInput{StartedAt: start, CompletedAt: start})
		assert.True(t, r.Passed)
		assert.Equal(t, 0.0, r.Percentage)
	})

	t.Run("empty breakdown is zero percent", func(t *testing.T) {
		r := Score(nil, ScoreInput{PassingScore: intPtr(0), StartedAt: start, CompletedAt: start})
		assert.Equal(t, 0, r.MaxScore)
		assert.Equal(t, 0.0, r.Percentage)
		assert.True(t, r.Passed)
	})

	t.Run("rounded percentage is what gets compared", func(t *testing.T) {
		graded := []GradedAnswer{{Points: 106, EarnedPoints: 71}}
		r := Score(graded, ScoreInput{PassingScore: intPtr(67), StartedAt: start, CompletedAt: start})
		assert.Equal(t, 67.0, r.Percentage)
		assert.True(t, r.Passed)
	})

	t.Run("late only after the window closes", func(t *testing.T) {
		until := start.Add(time.Hour)
		onTime := Score(nil, ScoreInput{AvailableUntil: &until, StartedAt: start, CompletedAt: until})
		late := Score(nil, ScoreInput{AvailableUntil: &until, StartedAt: start, CompletedAt: until.Add(time.Second)})
		assert.False(t, onTime.IsLate)
		assert.True(t, late.IsLate)
	})

	t.Run("negative durations clamp to zero", func(t *testing.T) {
		assert.Equal(t, 0, TimeSpentSeconds(start, start.Add(-time.Minute)))
	})
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 33.3, Round1(100.0/3))
	assert.Equal(t, 66.7, Round1(200.0/3))
	assert.Equal(t, 12.5, Round1(12.45000001))
	assert.Equal(t, 100.0, Round1(100))
}

func TestEffectiveStart(t *testing.T) {
	done := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, done, EffectiveStart(time.Time{}, done))
	assert.Equal(t, done, EffectiveStart(done.Add(time.Minute), done))
	assert.Equal(t, done.Add(-2*time.Hour), EffectiveStart(done.Add(-2*time.Hour), done))
}

func TestScoreFlagsOverTimeLimitWithoutMovingStart(t *testing.T) {
	done := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	graded := []GradedAnswer{{Points: 4, EarnedPoints: 4}}

	over := Score(graded, ScoreInput{TimeLimit: intPtr(10), StartedAt: done.Add(-3 * time.Hour), CompletedAt: done})
	assert.True(t, over.OverTimeLimit)
	assert.Equal(t, 10800, over.TimeSpentSeconds)
	assert.Equal(t, 4, over.Score)

	within := Score(graded, ScoreInput{TimeLimit: intPtr(10), StartedAt: done.Add(-10 * time.Minute), CompletedAt: done})
	assert.False(t, within.OverTimeLimit)

	unlimited := Score(graded, ScoreInput{StartedAt: done.Add(-3 * time.Hour), CompletedAt: done})
	assert.False(t, unlimited.OverTimeLimit)
}

// ===== END TO END =====

func TestLateSubmissionIsGradedNotRejected(t *testing.T) {
	until := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	quiz := publishedQuiz()
	quiz.AvailableUntil = &until

	startedAt := until.Add(-5 * time.Minute)
	completedAt := until.Add(time.Minute)
	effective := EffectiveStart(startedAt, completedAt)

	_, err := AuthorizeAttempt(quiz, []uint{1}, 0, effective)
	require.NoError(t, err)

	bank, err := NewQuestionBank([]*models.Question{textRow(1, models.ShortAnswer, "Paris", 4)})
	require.NoError(t, err)
	graded, err := Grade(bank, answers(map[uint]string{1: `"paris"`}))
	require.NoError(t, err)

	r := Score(graded, ScoreInput{AvailableUntil: quiz.AvailableUntil, StartedAt: effective, CompletedAt: completedAt})
	assert.True(t, r.IsLate)
	assert.Equal(t, 4, r.Score)
	assert.Equal(t, 100.0, r.Percentage)
	assert.Equal(t, 360, r.TimeSpentSeconds)
}
