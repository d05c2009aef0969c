package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"syllabus-review-api/models"
)

// ExportService produces the downloadable progress report. The workbook is
// built from ProgressStatistics and the audit trail only; it adds no data
// of its own.
type ExportService struct {
	schedules *ScheduleService
}

func NewExportService(schedules *ScheduleService) *ExportService {
	return &ExportService{schedules: schedules}
}

// ExportExcel renders one schedule's progress report as an xlsx workbook.
func (s *ExportService) ExportExcel(scheduleID int) (*bytes.Buffer, string, error) {
	schedule, err := s.schedules.Get(scheduleID)
	if err != nil {
		return nil, "", err
	}
	entries, _, err := AuditTrail(s.schedules.db, scheduleID, 500, 0)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	f.SetSheetName("Sheet1", summary)
	summaryRows := [][]interface{}{
		{"Schedule", schedule.ScheduleName},
		{"Status", string(schedule.Status)},
		{"Review start", schedule.ReviewStartDate.String()},
		{"L1 deadline", schedule.L1DeadlineDate.String()},
		{"L2 deadline", schedule.L2DeadlineDate.String()},
		{"Final approval", schedule.FinalApprovalDate.String()},
	}
	if p := schedule.Progress; p != nil {
		summaryRows = append(summaryRows,
			[]interface{}{"Total syllabi", p.TotalCount},
			[]interface{}{"Reviewed", p.ReviewedCount},
			[]interface{}{"Pending", p.PendingCount},
			[]interface{}{"Overdue", p.OverdueCount},
			[]interface{}{"Progress %", p.ProgressPercentage},
			[]interface{}{"Avg review hours", p.AvgReviewHours},
		)
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, "", fmt.Errorf("failed to write summary sheet: %w", err)
		}
	}

	if p := schedule.Progress; p != nil {
		if err := writeDepartmentSheet(f, p.ByDepartment); err != nil {
			return nil, "", err
		}
		if err := writeReviewerSheet(f, p.ByReviewer); err != nil {
			return nil, "", err
		}
	}
	if err := writeAuditSheet(f, entries); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}
	filename := fmt.Sprintf("review-schedule-%d-progress.xlsx", scheduleID)
	return buf, filename, nil
}

func writeDepartmentSheet(f *excelize.File, rows []models.DepartmentProgress) error {
	const sheet = "Departments"
	f.NewSheet(sheet)
	header := []interface{}{"Department", "Total", "Reviewed", "Pending", "Overdue"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		values := []interface{}{row.DepartmentName, row.TotalCount, row.ReviewedCount, row.PendingCount, row.OverdueCount}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func writeReviewerSheet(f *excelize.File, rows []models.ReviewerProgress) error {
	const sheet = "Reviewers"
	f.NewSheet(sheet)
	header := []interface{}{"Reviewer", "Role", "Stage", "Total", "Reviewed", "Pending", "Overdue"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		values := []interface{}{row.ReviewerName, row.Role, string(row.Stage), row.TotalCount, row.ReviewedCount, row.PendingCount, row.OverdueCount}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func writeAuditSheet(f *excelize.File, entries []models.AuditTrailEntry) error {
	const sheet = "Audit Trail"
	f.NewSheet(sheet)
	header := []interface{}{"Performed at", "Action", "Field", "Old value", "New value", "Performed by", "Reason"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	for i, e := range entries {
		values := []interface{}{
			e.PerformedAt.Format("2006-01-02 15:04:05"),
			e.Action, deref(e.Field), deref(e.OldValue), deref(e.NewValue),
			e.PerformedBy, deref(e.Reason),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
