package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/assessment"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout   = "2006-01-02 15:04:05"
)

var resultHeaders = []string{
	"Student ID", "Attempt", "Score", "Max Score", "Percentage", "Result",
	"Late", "Needs Review", "Time Spent (seconds)", "Started At", "Completed At",
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportQuizResults writes every attempt of a quiz into an xlsx workbook with
// a per-attempt sheet and a summary sheet.
func (s *exportService) ExportQuizResults(ctx context.Context, quizID uint, caller Caller) (*ExportResult, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, quizLookupError(quizID, err)
	}
	if err := ensureOwner(quiz, caller, "export_results"); err != nil {
		return nil, err
	}

	attempts, err := s.repo.Attempt().ListByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz attempts: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeRow(f, resultsSheet, 1, toCells(resultHeaders)); err != nil {
		return nil, err
	}
	for i, attempt := range attempts {
		if err := writeRow(f, resultsSheet, i+2, attemptRow(attempt)); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	for i, row := range summaryRows(quiz, attempts) {
		if err := writeRow(f, summarySheet, i+1, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Quiz results exported", "quiz_id", quizID, "attempts", len(attempts), "user_id", caller.UserID)
	return &ExportResult{
		FileName:    fmt.Sprintf("quiz-%d-results.xlsx", quizID),
		ContentType: xlsxMIME,
		Data:        buf.Bytes(),
	}, nil
}

func attemptRow(attempt *models.QuizAttempt) []interface{} {
	result := "Fail"
	if attempt.Passed {
		result = "Pass"
	}
	return []interface{}{
		attempt.StudentID,
		attempt.AttemptNumber,
		attempt.Score,
		attempt.MaxScore,
		attempt.Percentage,
		result,
		yesNo(attempt.IsLate),
		yesNo(attempt.NeedsReview),
		attempt.TimeSpentSeconds,
		attempt.StartedAt.UTC().Format(timeLayout),
		attempt.CompletedAt.UTC().Format(timeLayout),
	}
}

func summaryRows(quiz *models.Quiz, attempts []*models.QuizAttempt) [][]interface{} {
	students := make(map[string]struct{})
	passed, late := 0, 0
	var percentageSum float64
	for _, attempt := range attempts {
		students[attempt.StudentID] = struct{}{}
		percentageSum += attempt.Percentage
		if attempt.Passed {
			passed++
		}
		if attempt.IsLate {
			late++
		}
	}

	average := 0.0
	if len(attempts) > 0 {
		average = percentageSum / float64(len(attempts))
	}

	passingScore := interface{}("none")
	if quiz.PassingScore != nil {
		passingScore = *quiz.PassingScore
	}

	return [][]interface{}{
		{"Quiz", quiz.Title},
		{"Status", string(quiz.Status)},
		{"Total Points", quiz.TotalPoints},
		{"Passing Score", passingScore},
		{"Attempts", len(attempts)},
		{"Students", len(students)},
		{"Passed Attempts", passed},
		{"Late Attempts", late},
		{"Average Percentage", assessment.Round1(average)},
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to address cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
