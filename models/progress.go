package models

// ProgressStatistics is derived on every read, never persisted. Counts roll
// up the schedule's syllabus reviews; per-department and per-reviewer rows
// are independent projections over the same records, zero-filled so that
// departments with no work yet remain visible.
type ProgressStatistics struct {
	ScheduleID         int     `json:"schedule_id"`
	TotalCount         int     `json:"total_count"`
	ReviewedCount      int     `json:"reviewed_count"`
	PendingCount       int     `json:"pending_count"`
	OverdueCount       int     `json:"overdue_count"`
	ProgressPercentage int     `json:"progress_percentage"`
	AvgReviewHours     float64 `json:"avg_review_hours"`

	ByDepartment []DepartmentProgress `json:"by_department"`
	ByReviewer   []ReviewerProgress   `json:"by_reviewer"`
}

// Outstanding reports whether any review still needs action.
func (p *ProgressStatistics) Outstanding() bool {
	return p.PendingCount+p.OverdueCount > 0
}

type DepartmentProgress struct {
	DepartmentID   int    `json:"department_id"`
	DepartmentName string `json:"department_name"`
	TotalCount     int    `json:"total_count"`
	ReviewedCount  int    `json:"reviewed_count"`
	PendingCount   int    `json:"pending_count"`
	OverdueCount   int    `json:"overdue_count"`
}

type ReviewerProgress struct {
	ReviewerID    int         `json:"reviewer_id"`
	ReviewerName  string      `json:"reviewer_name"`
	Role          string      `json:"role"`
	Stage         ReviewStage `json:"stage"`
	TotalCount    int         `json:"total_count"`
	ReviewedCount int         `json:"reviewed_count"`
	PendingCount  int         `json:"pending_count"`
	OverdueCount  int         `json:"overdue_count"`
}
