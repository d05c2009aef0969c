package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"syllabus-review-api/models"
	"syllabus-review-api/utils"
)

// ScheduleListFilter narrows and orders the schedule list. Status and
// progress percentage are derived values, so filtering and sorting on them
// happens after hydration rather than in SQL.
type ScheduleListFilter struct {
	Status       models.ScheduleStatus
	SemesterID   int
	AcademicYear string
	Search       string
	SortBy       string // name | review_start_date | progress_percentage
	SortOrder    string // asc | desc
	Page         int
	Limit        int
}

// ScheduleService owns the review-schedule lifecycle: create and edit
// through the validator, delete through the lifecycle gate, every mutation
// audited in the same transaction.
type ScheduleService struct {
	db       *gorm.DB
	progress *ProgressService
}

func NewScheduleService(db *gorm.DB, progress *ProgressService) *ScheduleService {
	return &ScheduleService{db: db, progress: progress}
}

// Create validates and persists a new schedule. One schedule per semester:
// a duplicate is a ConflictError, enforced by the unique key on
// semester_id.
func (s *ScheduleService) Create(in *ScheduleInput, createdBy int) (*models.ReviewSchedule, []string, error) {
	semester, err := s.loadSemester(in.SemesterID)
	if err != nil {
		return nil, nil, err
	}

	warnings, err := ValidateSchedule(in, semester, nil)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	schedule := &models.ReviewSchedule{
		ScheduleName:      utils.SanitizeInput(in.ScheduleName),
		SemesterID:        in.SemesterID,
		ReviewStartDate:   in.ReviewStartDate,
		L1DeadlineDate:    in.L1DeadlineDate,
		L2DeadlineDate:    in.L2DeadlineDate,
		FinalApprovalDate: in.FinalApprovalDate,
		DeadlineAlertConfig: models.DeadlineAlertConfig{
			AlertsEnabled:     in.AlertsEnabled,
			AlertThresholds:   in.ThresholdsCSV(),
			AlertChannels:     in.ChannelsCSV(),
			SendOverdueAlerts: in.SendOverdueAlerts,
		},
		CreatedBy: createdBy,
		CreateAt:  now,
		UpdateAt:  now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(schedule).Error; err != nil {
			if isDuplicateKeyError(err) {
				return &ConflictError{Message: "A review schedule already exists for this semester"}
			}
			return fmt.Errorf("failed to create schedule: %w", err)
		}
		entry := &models.AuditTrailEntry{
			ScheduleID:  schedule.ScheduleID,
			Action:      models.AuditActionCreate,
			NewValue:    auditString(schedule.ScheduleName),
			PerformedBy: createdBy,
			PerformedAt: now,
		}
		return RecordAudit(tx, entry)
	})
	if err != nil {
		return nil, nil, err
	}

	schedule.Status = models.StatusUpcoming
	return schedule, warnings, nil
}

// Update edits an existing schedule. Rejected outright on a COMPLETED
// schedule; otherwise validated with the monotonic-extension rule. The
// semester binding is immutable.
func (s *ScheduleService) Update(scheduleID int, in *ScheduleInput, performedBy int) (*models.ReviewSchedule, []string, error) {
	schedule, err := s.load(scheduleID)
	if err != nil {
		return nil, nil, err
	}

	progress, err := s.progress.GetProgress(scheduleID)
	if err != nil {
		return nil, nil, err
	}
	status := ComputeStatus(time.Now(), schedule, progress)
	if !CanEdit(status) {
		return nil, nil, &BusinessRuleError{
			Rule:    "edit_completed",
			Message: "A completed schedule can no longer be edited",
		}
	}

	if in.SemesterID != 0 && in.SemesterID != schedule.SemesterID {
		return nil, nil, &ValidationError{Fields: []FieldError{{
			Field: "semester_id", Message: "A schedule cannot move to a different semester",
		}}}
	}
	in.SemesterID = schedule.SemesterID

	semester, err := s.loadSemester(schedule.SemesterID)
	if err != nil {
		return nil, nil, err
	}

	warnings, err := ValidateSchedule(in, semester, schedule)
	if err != nil {
		return nil, nil, err
	}

	changes := diffSchedule(schedule, in)
	now := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"schedule_name":       utils.SanitizeInput(in.ScheduleName),
			"review_start_date":   in.ReviewStartDate,
			"l1_deadline_date":    in.L1DeadlineDate,
			"l2_deadline_date":    in.L2DeadlineDate,
			"final_approval_date": in.FinalApprovalDate,
			"alerts_enabled":      in.AlertsEnabled,
			"alert_thresholds":    in.ThresholdsCSV(),
			"alert_channels":      in.ChannelsCSV(),
			"send_overdue_alerts": in.SendOverdueAlerts,
			"update_at":           now,
		}
		if err := tx.Model(&models.ReviewSchedule{}).
			Where("schedule_id = ?", scheduleID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update schedule: %w", err)
		}

		detail, _ := json.Marshal(changes)
		entry := &models.AuditTrailEntry{
			ScheduleID:  scheduleID,
			Action:      models.AuditActionUpdate,
			NewValue:    auditString(string(detail)),
			PerformedBy: performedBy,
			PerformedAt: now,
		}
		return RecordAudit(tx, entry)
	})
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.load(scheduleID)
	if err != nil {
		return nil, nil, err
	}
	updated.Status = ComputeStatus(time.Now(), updated, progress)
	return updated, warnings, nil
}

// Delete soft-deletes a schedule. Allowed only while UPCOMING with zero
// decided reviews; a failed delete leaves the schedule untouched and writes
// no audit entry.
func (s *ScheduleService) Delete(scheduleID int, performedBy int) error {
	schedule, err := s.load(scheduleID)
	if err != nil {
		return err
	}

	progress, err := s.progress.GetProgress(scheduleID)
	if err != nil {
		return err
	}
	status := ComputeStatus(time.Now(), schedule, progress)
	if !CanDelete(status, progress.ReviewedCount) {
		return &BusinessRuleError{
			Rule:    "delete_started_cycle",
			Message: "Only an upcoming schedule with no recorded reviews can be deleted",
		}
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ReviewSchedule{}).
			Where("schedule_id = ?", scheduleID).
			Update("delete_at", now).Error; err != nil {
			return fmt.Errorf("failed to delete schedule: %w", err)
		}
		entry := &models.AuditTrailEntry{
			ScheduleID:  scheduleID,
			Action:      models.AuditActionDelete,
			OldValue:    auditString(schedule.ScheduleName),
			PerformedBy: performedBy,
			PerformedAt: now,
		}
		return RecordAudit(tx, entry)
	})
}

// Get returns one schedule hydrated with assignments, progress and derived
// status.
func (s *ScheduleService) Get(scheduleID int) (*models.ReviewSchedule, error) {
	var schedule models.ReviewSchedule
	err := s.db.Preload("Semester").
		Preload("Assignments").
		Preload("Assignments.Department").
		Preload("Assignments.PrimaryReviewer").
		Preload("Assignments.BackupReviewer").
		Where("schedule_id = ? AND delete_at IS NULL", scheduleID).
		First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "review schedule", ID: scheduleID}
		}
		return nil, fmt.Errorf("failed to load schedule %d: %w", scheduleID, err)
	}

	progress, err := s.progress.GetProgress(scheduleID)
	if err != nil {
		return nil, err
	}
	schedule.Progress = progress
	schedule.Status = ComputeStatus(time.Now(), &schedule, progress)
	return &schedule, nil
}

// List returns hydrated schedules matching the filter, sorted and paged.
// Status filtering and progress-percentage sorting require the derived
// values, so the matching rows are hydrated first and paged in memory;
// schedule counts are bounded by one per semester, which keeps this cheap.
func (s *ScheduleService) List(filter ScheduleListFilter) ([]models.ReviewSchedule, int64, error) {
	query := s.db.Preload("Semester").Where("review_schedules.delete_at IS NULL")

	if filter.SemesterID > 0 {
		query = query.Where("semester_id = ?", filter.SemesterID)
	}
	if filter.AcademicYear != "" {
		query = query.Where("semester_id IN (?)",
			s.db.Model(&models.Semester{}).Select("semester_id").Where("academic_year = ?", filter.AcademicYear))
	}
	if filter.Search != "" {
		query = query.Where("schedule_name LIKE ?", "%"+filter.Search+"%")
	}

	var schedules []models.ReviewSchedule
	if err := query.Find(&schedules).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list schedules: %w", err)
	}

	now := time.Now()
	hydrated := schedules[:0]
	for i := range schedules {
		schedule := schedules[i]
		progress, err := s.progress.GetProgress(schedule.ScheduleID)
		if err != nil {
			return nil, 0, err
		}
		schedule.Progress = progress
		schedule.Status = ComputeStatus(now, &schedule, progress)
		if filter.Status != "" && schedule.Status != filter.Status {
			continue
		}
		hydrated = append(hydrated, schedule)
	}

	sortSchedules(hydrated, filter.SortBy, filter.SortOrder)

	total := int64(len(hydrated))
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(hydrated) {
		return []models.ReviewSchedule{}, total, nil
	}
	end := start + limit
	if end > len(hydrated) {
		end = len(hydrated)
	}
	return hydrated[start:end], total, nil
}

func sortSchedules(schedules []models.ReviewSchedule, sortBy, sortOrder string) {
	desc := sortOrder == "desc"
	less := func(i, j int) bool {
		switch sortBy {
		case "progress_percentage":
			a, b := 0, 0
			if schedules[i].Progress != nil {
				a = schedules[i].Progress.ProgressPercentage
			}
			if schedules[j].Progress != nil {
				b = schedules[j].Progress.ProgressPercentage
			}
			if a != b {
				return a < b
			}
		case "review_start_date":
			if !schedules[i].ReviewStartDate.Equal(schedules[j].ReviewStartDate) {
				return schedules[i].ReviewStartDate.Before(schedules[j].ReviewStartDate)
			}
		default:
			if schedules[i].ScheduleName != schedules[j].ScheduleName {
				return schedules[i].ScheduleName < schedules[j].ScheduleName
			}
		}
		return schedules[i].ScheduleID < schedules[j].ScheduleID
	}
	if desc {
		sort.Slice(schedules, func(i, j int) bool { return less(j, i) })
	} else {
		sort.Slice(schedules, less)
	}
}

func (s *ScheduleService) load(scheduleID int) (*models.ReviewSchedule, error) {
	var schedule models.ReviewSchedule
	if err := s.db.Where("schedule_id = ? AND delete_at IS NULL", scheduleID).First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "review schedule", ID: scheduleID}
		}
		return nil, fmt.Errorf("failed to load schedule %d: %w", scheduleID, err)
	}
	return &schedule, nil
}

func (s *ScheduleService) loadSemester(semesterID int) (*models.Semester, error) {
	var semester models.Semester
	if err := s.db.Where("semester_id = ?", semesterID).First(&semester).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "semester", ID: semesterID}
		}
		return nil, fmt.Errorf("failed to load semester %d: %w", semesterID, err)
	}
	return &semester, nil
}

// diffSchedule captures field-level changes for the audit trail.
func diffSchedule(old *models.ReviewSchedule, in *ScheduleInput) map[string][2]string {
	changes := make(map[string][2]string)
	record := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes[field] = [2]string{oldValue, newValue}
		}
	}
	record("schedule_name", old.ScheduleName, utils.SanitizeInput(in.ScheduleName))
	record("review_start_date", old.ReviewStartDate.String(), in.ReviewStartDate.String())
	record("l1_deadline_date", old.L1DeadlineDate.String(), in.L1DeadlineDate.String())
	record("l2_deadline_date", old.L2DeadlineDate.String(), in.L2DeadlineDate.String())
	record("final_approval_date", old.FinalApprovalDate.String(), in.FinalApprovalDate.String())
	record("alert_thresholds", old.AlertThresholds, in.ThresholdsCSV())
	record("alert_channels", old.AlertChannels, in.ChannelsCSV())
	record("alerts_enabled", fmt.Sprintf("%t", old.AlertsEnabled), fmt.Sprintf("%t", in.AlertsEnabled))
	record("send_overdue_alerts", fmt.Sprintf("%t", old.SendOverdueAlerts), fmt.Sprintf("%t", in.SendOverdueAlerts))
	return changes
}
