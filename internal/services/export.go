package services

import (
	"strings"
	"time"

	"github.com/itwoqa/bugtracker/internal/models"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportService renders the full bug list as an XLSX workbook.
type ExportService struct {
	db *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

// Filename returns the download name for today's export.
func (s *ExportService) Filename() string {
	return "bug-reports-" + time.Now().Format("2006-01-02") + ".xlsx"
}

var exportHeaders = []string{
	"Bug ID", "Title", "Description", "Status", "Priority",
	"Reporter Name", "Reporter Email", "Assignee",
	"Created Date", "Updated Date", "Comments",
}

// BuildWorkbook queries all bugs (newest first) with their comments and
// lays them out one row per bug. The caller owns closing the file.
func (s *ExportService) BuildWorkbook() (*excelize.File, error) {
	var bugs []models.Bug
	if err := s.db.Order("created_at DESC").Find(&bugs).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Bug Reports"
	f.SetSheetName("Sheet1", sheet)

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, bug := range bugs {
		var comments []models.Comment
		if err := s.db.Where("bug_id = ?", bug.ID).Order("created_at ASC").Find(&comments).Error; err != nil {
			return nil, err
		}

		values := []interface{}{
			bug.TicketNumber,
			bug.Title,
			bug.Description,
			displayLabel(bug.Status),
			displayLabel(bug.Priority),
			bug.ReporterName,
			bug.ReporterEmail,
			bug.Assignee,
			bug.CreatedAt.Format("2006-01-02 15:04"),
			bug.UpdatedAt.Format("2006-01-02 15:04"),
			joinComments(comments),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f, nil
}

// joinComments flattens a bug's comment thread into one cell.
func joinComments(comments []models.Comment) string {
	if len(comments) == 0 {
		return "No comments"
	}
	parts := make([]string, 0, len(comments))
	for _, c := range comments {
		parts = append(parts, c.Author+": "+c.Content)
	}
	return strings.Join(parts, " | ")
}

// displayLabel turns an enum value like "in-progress" into "In Progress".
func displayLabel(value string) string {
	words := strings.Split(strings.ReplaceAll(value, "-", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
