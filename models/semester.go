package models

import "time"

// Semester is read-only reference data owned by the course-catalog service.
// Rows are synced in, never mutated here; a review schedule's start date is
// validated against the submission window.
type Semester struct {
	SemesterID            int       `gorm:"primaryKey;column:semester_id" json:"semester_id"`
	SemesterName          string    `gorm:"column:semester_name" json:"semester_name"`
	AcademicYear          string    `gorm:"column:academic_year" json:"academic_year"`
	StartDate             Date      `gorm:"column:start_date" json:"start_date"`
	EndDate               Date      `gorm:"column:end_date" json:"end_date"`
	SubmissionWindowStart Date      `gorm:"column:submission_window_start" json:"submission_window_start"`
	SubmissionWindowEnd   Date      `gorm:"column:submission_window_end" json:"submission_window_end"`
	CreateAt              time.Time `gorm:"column:create_at" json:"create_at"`
}

func (Semester) TableName() string { return "semesters" }
