package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
)

const (
	exportPageSize  = 500
	exportTimestamp = "2006-01-02 15:04:05"
)

var (
	courseResultHeader     = []interface{}{"Result ID", "User ID", "Full name", "Email", "Correct", "Total", "Percentage", "Passed", "Submitted at"}
	assessmentResultHeader = []interface{}{"Result ID", "User ID", "Full name", "Email", "Test", "Correct", "Total", "Percentage", "Passed", "Time taken (s)", "Submitted at"}
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(deps *Dependencies) ExportService {
	deps = deps.withDefaults()
	return &exportService{repo: deps.Repo, logger: deps.Logger}
}

func (s *exportService) ExportCourseResults(ctx context.Context, courseID uint) ([]byte, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	var rows [][]interface{}
	filters := repositories.ResultFilters{CourseID: &courseID, Limit: exportPageSize}
	for {
		page, _, err := s.repo.Result().ListCourseResults(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list course results: %w", err)
		}
		for _, r := range page {
			name, email := userColumns(r.User)
			rows = append(rows, []interface{}{
				r.ID, r.UserID, name, email, r.CorrectAnswers, r.TotalQuestions, r.Percentage, yesNo(r.Passed),
				r.CompletedAt.Format(exportTimestamp),
			})
		}
		if len(page) < exportPageSize {
			break
		}
		filters.Offset += exportPageSize
	}

	s.logger.Info("Exporting course results", "course_id", courseID, "rows", len(rows))
	return buildWorkbook(truncateSheetName(course.Name), courseResultHeader, rows)
}

func (s *exportService) ExportAssessmentResults(ctx context.Context) ([]byte, error) {
	var rows [][]interface{}
	filters := repositories.ResultFilters{Limit: exportPageSize}
	for {
		page, _, err := s.repo.Result().ListAssessmentResults(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list assessment results: %w", err)
		}
		for _, r := range page {
			name, email := userColumns(r.User)
			title := ""
			if r.AssessmentTest != nil {
				title = r.AssessmentTest.Title
			}
			rows = append(rows, []interface{}{
				r.ID, r.UserID, name, email, title, r.CorrectAnswers, r.TotalQuestions, RoundPercentage(r.Percentage),
				yesNo(r.Passed), r.TimeTaken, r.CompletedAt.Format(exportTimestamp),
			})
		}
		if len(page) < exportPageSize {
			break
		}
		filters.Offset += exportPageSize
	}

	s.logger.Info("Exporting assessment results", "rows", len(rows))
	return buildWorkbook("Saralash", assessmentResultHeader, rows)
}

// buildWorkbook writes a single sheet with a bold frozen header row
func buildWorkbook(sheet string, header []interface{}, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol, bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func userColumns(u *models.User) (string, string) {
	if u == nil {
		return "", ""
	}
	return u.DisplayName(), u.Email
}

func yesNo(b bool) string {
	if b {
		return "Ha"
	}
	return "Yo'q"
}

// truncateSheetName keeps names inside Excel's 31 character limit and
// replaces characters sheets cannot hold
func truncateSheetName(name string) string {
	r := []rune(name)
	for i, c := range r {
		switch c {
		case ':', '\\', '/', '?', '*', '[', ']':
			r[i] = '-'
		}
	}
	if len(r) > 31 {
		r = r[:31]
	}
	if len(r) == 0 {
		return "Natijalar"
	}
	return string(r)
}
