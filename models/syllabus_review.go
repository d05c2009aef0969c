package models

import "time"

// Review record statuses for a single syllabus at a single stage.
const (
	ReviewPending  = "PENDING"
	ReviewApproved = "APPROVED"
	ReviewRejected = "REJECTED"
	ReviewOverdue  = "OVERDUE"
)

// SyllabusReview is one syllabus awaiting (or past) a decision at one stage
// of a schedule's cycle. These are the underlying records the progress
// aggregator rolls up and the alert scheduler scans for outstanding work.
// The syllabus content itself lives in the syllabus service; only the
// review-workflow projection is kept here.
type SyllabusReview struct {
	ReviewID     int         `gorm:"primaryKey;column:review_id" json:"review_id"`
	ScheduleID   int         `gorm:"column:schedule_id" json:"schedule_id"`
	SyllabusCode string      `gorm:"column:syllabus_code" json:"syllabus_code"`
	SyllabusName string      `gorm:"column:syllabus_name" json:"syllabus_name"`
	DepartmentID int         `gorm:"column:department_id" json:"department_id"`
	Stage        ReviewStage `gorm:"column:stage" json:"stage"`
	ReviewerID   int         `gorm:"column:reviewer_id" json:"reviewer_id"`
	Status       string      `gorm:"column:status" json:"status"`
	AssignedAt   time.Time   `gorm:"column:assigned_at" json:"assigned_at"`
	DecidedAt    *time.Time  `gorm:"column:decided_at" json:"decided_at,omitempty"`
	Comment      *string     `gorm:"column:comment" json:"comment,omitempty"`

	// Relations
	Reviewer   *User       `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

func (SyllabusReview) TableName() string { return "syllabus_reviews" }

// IsDecided reports whether a decision has been recorded.
func (r *SyllabusReview) IsDecided() bool {
	return r.Status == ReviewApproved || r.Status == ReviewRejected
}

// IsOutstanding reports whether the review still needs reviewer action.
func (r *SyllabusReview) IsOutstanding() bool {
	return r.Status == ReviewPending || r.Status == ReviewOverdue
}
