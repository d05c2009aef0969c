package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"syllabus-review-api/models"
)

// AssignmentInput is the request payload for creating or updating a
// reviewer assignment.
type AssignmentInput struct {
	DepartmentID      int  `json:"department_id"`
	PrimaryReviewerID int  `json:"primary_reviewer_id"`
	BackupReviewerID  *int `json:"backup_reviewer_id"`
}

// AssignmentService manages the department -> reviewer-pair registry for a
// schedule. Uniqueness per (schedule, department) rides on the composite
// unique key: a concurrent duplicate assign loses at the constraint and is
// reported as a ConflictError, not discovered by a racy pre-check.
type AssignmentService struct {
	db *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

// Assign creates the assignment for a department that has none yet.
func (s *AssignmentService) Assign(scheduleID int, in *AssignmentInput, performedBy int) (*models.ReviewerAssignment, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	var schedule models.ReviewSchedule
	if err := s.db.Where("schedule_id = ? AND delete_at IS NULL", scheduleID).First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "review schedule", ID: scheduleID}
		}
		return nil, fmt.Errorf("failed to load schedule %d: %w", scheduleID, err)
	}

	now := time.Now()
	assignment := &models.ReviewerAssignment{
		ScheduleID:        scheduleID,
		DepartmentID:      in.DepartmentID,
		PrimaryReviewerID: in.PrimaryReviewerID,
		BackupReviewerID:  in.BackupReviewerID,
		AssignedBy:        performedBy,
		CreateAt:          now,
		UpdateAt:          now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(assignment).Error; err != nil {
			if isDuplicateKeyError(err) {
				return &ConflictError{Message: fmt.Sprintf("Department %d already has a reviewer assignment for this schedule", in.DepartmentID)}
			}
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		entry := &models.AuditTrailEntry{
			ScheduleID:  scheduleID,
			Action:      models.AuditActionAssignReviewer,
			Field:       auditString("department_id"),
			NewValue:    auditString(fmt.Sprintf("%d", in.DepartmentID)),
			PerformedBy: performedBy,
			PerformedAt: now,
		}
		return RecordAudit(tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// Update replaces the reviewer pair on an existing assignment.
func (s *AssignmentService) Update(assignmentID int, in *AssignmentInput, performedBy int) (*models.ReviewerAssignment, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	var assignment models.ReviewerAssignment
	if err := s.db.Where("assignment_id = ?", assignmentID).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "reviewer assignment", ID: assignmentID}
		}
		return nil, fmt.Errorf("failed to load assignment %d: %w", assignmentID, err)
	}

	oldPrimary := assignment.PrimaryReviewerID
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"primary_reviewer_id": in.PrimaryReviewerID,
			"backup_reviewer_id":  in.BackupReviewerID,
			"update_at":           now,
		}
		if err := tx.Model(&models.ReviewerAssignment{}).
			Where("assignment_id = ?", assignmentID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update assignment: %w", err)
		}
		entry := &models.AuditTrailEntry{
			ScheduleID:  assignment.ScheduleID,
			Action:      models.AuditActionUpdateReviewer,
			Field:       auditString("primary_reviewer_id"),
			OldValue:    auditString(fmt.Sprintf("%d", oldPrimary)),
			NewValue:    auditString(fmt.Sprintf("%d", in.PrimaryReviewerID)),
			PerformedBy: performedBy,
			PerformedAt: now,
		}
		return RecordAudit(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	assignment.PrimaryReviewerID = in.PrimaryReviewerID
	assignment.BackupReviewerID = in.BackupReviewerID
	assignment.UpdateAt = now
	return &assignment, nil
}

// Remove deletes an assignment. There is no precondition: a department left
// without an assignment is surfaced by the UI as a warning, not prevented
// here.
func (s *AssignmentService) Remove(assignmentID int, performedBy int) error {
	var assignment models.ReviewerAssignment
	if err := s.db.Where("assignment_id = ?", assignmentID).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "reviewer assignment", ID: assignmentID}
		}
		return fmt.Errorf("failed to load assignment %d: %w", assignmentID, err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ReviewerAssignment{}, "assignment_id = ?", assignmentID).Error; err != nil {
			return fmt.Errorf("failed to remove assignment: %w", err)
		}
		entry := &models.AuditTrailEntry{
			ScheduleID:  assignment.ScheduleID,
			Action:      models.AuditActionRemoveReviewer,
			Field:       auditString("department_id"),
			OldValue:    auditString(fmt.Sprintf("%d", assignment.DepartmentID)),
			PerformedBy: performedBy,
		}
		return RecordAudit(tx, entry)
	})
}

// AvailableReviewers lists users who can hold assignments, optionally
// limited to one department.
func (s *AssignmentService) AvailableReviewers(departmentID int) ([]models.User, error) {
	query := s.db.Preload("Department").
		Where("role IN ? AND delete_at IS NULL", []string{models.RoleHOD, models.RoleAA})
	if departmentID > 0 {
		query = query.Where("department_id = ?", departmentID)
	}

	var users []models.User
	if err := query.Order("user_fname, user_lname").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load available reviewers: %w", err)
	}
	return users, nil
}

func (s *AssignmentService) validateInput(in *AssignmentInput) error {
	verr := &ValidationError{}
	if in.DepartmentID <= 0 {
		verr.add("department_id", "Department is required")
	}
	if in.PrimaryReviewerID <= 0 {
		verr.add("primary_reviewer_id", "Primary reviewer is required")
	}
	if in.BackupReviewerID != nil && *in.BackupReviewerID == in.PrimaryReviewerID {
		verr.add("backup_reviewer_id", "Backup reviewer must differ from the primary reviewer")
	}
	return verr.orNil()
}

// isDuplicateKeyError matches both GORM's translated error and the raw
// MySQL duplicate-entry message.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}
