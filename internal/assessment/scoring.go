package assessment

import (
	"math"
	"time"
)

// Result is the aggregate outcome of a graded submission.
type Result struct {
	Score            int     `json:"score"`
	MaxScore         int     `json:"max_score"`
	Percentage       float64 `json:"percentage"`
	Passed           bool    `json:"passed"`
	IsLate           bool    `json:"is_late"`
	OverTimeLimit    bool    `json:"over_time_limit"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`
}

// ScoreInput carries the quiz rules and timestamps scoring depends on.
type ScoreInput struct {
	PassingScore   *int
	TimeLimit      *int // minutes
	AvailableUntil *time.Time
	StartedAt      time.Time
	CompletedAt    time.Time
}

// Score aggregates a graded breakdown. The rounded percentage is the value
// stored, displayed and compared against the passing score.
func Score(graded []GradedAnswer, in ScoreInput) Result {
	var r Result
	for _, g := range graded {
		r.Score += g.EarnedPoints
		r.MaxScore += g.Points
	}

	r.Percentage = Percentage(r.Score, r.MaxScore)
	r.Passed = in.PassingScore == nil || r.Percentage >= float64(*in.PassingScore)
	r.IsLate = in.AvailableUntil != nil && in.CompletedAt.After(*in.AvailableUntil)
	r.TimeSpentSeconds = TimeSpentSeconds(in.StartedAt, in.CompletedAt)
	r.OverTimeLimit = in.TimeLimit != nil && *in.TimeLimit > 0 && r.TimeSpentSeconds > *in.TimeLimit*60
	return r
}

// Percentage returns score/maxScore*100 rounded to one decimal, or 0 when maxScore is 0.
func Percentage(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return Round1(float64(score) / float64(maxScore) * 100)
}

// Round1 rounds half away from zero to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// TimeSpentSeconds is never negative.
func TimeSpentSeconds(startedAt, completedAt time.Time) int {
	d := completedAt.Sub(startedAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// EffectiveStart maps a missing or future client start time to completedAt.
// Any earlier start is kept as reported.
func EffectiveStart(startedAt, completedAt time.Time) time.Time {
	if startedAt.IsZero() || startedAt.After(completedAt) {
		return completedAt
	}
	return startedAt
}
