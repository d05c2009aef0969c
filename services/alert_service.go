package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"syllabus-review-api/models"
)

// TickSummary reports one daily evaluation pass over all enabled schedules.
type TickSummary struct {
	Date               string `json:"date"`
	SchedulesEvaluated int    `json:"schedules_evaluated"`
	AlertsSent         int    `json:"alerts_sent"`
	AlertsDeduped      int    `json:"alerts_deduped"`
	Failures           int    `json:"failures"`
}

// AlertService runs the deadline-alert engine: evaluate every enabled
// schedule against today's date and dispatch whatever the evaluation
// produced. The tick is idempotent: re-running it on the same day dedupes
// through the dispatch records and sends nothing twice.
type AlertService struct {
	db         *gorm.DB
	dispatcher *AlertDispatcher
}

func NewAlertService(db *gorm.DB) *AlertService {
	return &AlertService{
		db:         db,
		dispatcher: NewAlertDispatcher(NewGormDispatchRecorder(db), EmailChannel{}, NewInAppChannel(db)),
	}
}

// NewAlertServiceWithDispatcher allows injecting a dispatcher, used by the
// manual reminder path so both paths share one dedup gate.
func NewAlertServiceWithDispatcher(db *gorm.DB, dispatcher *AlertDispatcher) *AlertService {
	return &AlertService{db: db, dispatcher: dispatcher}
}

// RunDailyTick evaluates all enabled schedules for the given instant.
// Schedules are processed independently: one schedule's failure is logged
// and the pass continues.
func (s *AlertService) RunDailyTick(now time.Time) (*TickSummary, error) {
	today := models.NewDate(now)
	summary := &TickSummary{Date: today.String()}

	var schedules []models.ReviewSchedule
	if err := s.db.Where("alerts_enabled = ? AND delete_at IS NULL", true).Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("failed to load schedules for alert tick: %w", err)
	}

	for i := range schedules {
		schedule := &schedules[i]
		result, err := s.evaluateAndDispatch(schedule, today)
		if err != nil {
			summary.Failures++
			log.Printf("alert tick: schedule %d failed: %v", schedule.ScheduleID, err)
			continue
		}
		summary.SchedulesEvaluated++
		summary.AlertsSent += result.Sent
		summary.AlertsDeduped += result.Deduped
		summary.Failures += result.Failures
	}

	log.Printf("alert tick %s: %d schedule(s), %d sent, %d deduped, %d failure(s)",
		summary.Date, summary.SchedulesEvaluated, summary.AlertsSent, summary.AlertsDeduped, summary.Failures)
	return summary, nil
}

func (s *AlertService) evaluateAndDispatch(schedule *models.ReviewSchedule, today models.Date) (DispatchSummary, error) {
	pending, err := s.LoadPendingWork(schedule.ScheduleID)
	if err != nil {
		return DispatchSummary{}, err
	}

	intents := EvaluateSchedule(schedule, today, pending)
	if len(intents) == 0 {
		return DispatchSummary{}, nil
	}

	reviewers, err := s.loadReviewers(intents)
	if err != nil {
		return DispatchSummary{}, err
	}

	result := s.dispatcher.Dispatch(schedule, intents, reviewers, today, uuid.NewString())

	if result.Sent > 0 {
		if err := s.recordDispatchAudit(schedule.ScheduleID, result, today); err != nil {
			// The alerts themselves went out and are dedup-recorded; only
			// the trail entry is missing. Surface the error.
			return result, err
		}
	}
	return result, nil
}

// LoadPendingWork builds the stage -> reviewer -> outstanding-count map
// from the schedule's review records.
func (s *AlertService) LoadPendingWork(scheduleID int) (PendingWork, error) {
	var rows []struct {
		Stage      models.ReviewStage `gorm:"column:stage"`
		ReviewerID int                `gorm:"column:reviewer_id"`
		Total      int                `gorm:"column:total"`
	}
	err := s.db.Model(&models.SyllabusReview{}).
		Select("stage, reviewer_id, COUNT(*) AS total").
		Where("schedule_id = ? AND status IN ?", scheduleID, []string{models.ReviewPending, models.ReviewOverdue}).
		Group("stage, reviewer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending work for schedule %d: %w", scheduleID, err)
	}

	pending := make(PendingWork)
	for _, row := range rows {
		if pending[row.Stage] == nil {
			pending[row.Stage] = make(map[int]int)
		}
		pending[row.Stage][row.ReviewerID] = row.Total
	}
	return pending, nil
}

func (s *AlertService) loadReviewers(intents []AlertIntent) (map[int]*models.User, error) {
	ids := make([]int, 0, len(intents))
	seen := make(map[int]bool, len(intents))
	for _, intent := range intents {
		if !seen[intent.ReviewerID] {
			seen[intent.ReviewerID] = true
			ids = append(ids, intent.ReviewerID)
		}
	}

	var users []models.User
	if err := s.db.Where("user_id IN ? AND delete_at IS NULL", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load reviewers: %w", err)
	}

	byID := make(map[int]*models.User, len(users))
	for i := range users {
		byID[users[i].UserID] = &users[i]
	}
	return byID, nil
}

func (s *AlertService) recordDispatchAudit(scheduleID int, result DispatchSummary, today models.Date) error {
	detail, _ := json.Marshal(result)
	entry := &models.AuditTrailEntry{
		ScheduleID:  scheduleID,
		Action:      models.AuditActionAlertDispatch,
		NewValue:    auditString(string(detail)),
		PerformedBy: 0, // system
		Reason:      auditString("daily alert tick " + today.String()),
	}
	return RecordAudit(s.db, entry)
}
