package models

import "time"

// ReviewerAssignment maps a department to its reviewer pair for one
// schedule. At most one assignment per (schedule, department), enforced by
// a composite unique key so concurrent assigns race on the constraint, not
// on a check-then-write in application code. The primary reviewer's role
// fixes the stage: HOD performs L1, AA performs L2.
type ReviewerAssignment struct {
	AssignmentID      int       `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	ScheduleID        int       `gorm:"column:schedule_id;uniqueIndex:uq_schedule_department" json:"schedule_id"`
	DepartmentID      int       `gorm:"column:department_id;uniqueIndex:uq_schedule_department" json:"department_id"`
	PrimaryReviewerID int       `gorm:"column:primary_reviewer_id" json:"primary_reviewer_id"`
	BackupReviewerID  *int      `gorm:"column:backup_reviewer_id" json:"backup_reviewer_id,omitempty"`
	AssignedBy        int       `gorm:"column:assigned_by" json:"assigned_by"`
	CreateAt          time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt          time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Department      *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	PrimaryReviewer *User       `gorm:"foreignKey:PrimaryReviewerID" json:"primary_reviewer,omitempty"`
	BackupReviewer  *User       `gorm:"foreignKey:BackupReviewerID" json:"backup_reviewer,omitempty"`
}

func (ReviewerAssignment) TableName() string { return "reviewer_assignments" }
