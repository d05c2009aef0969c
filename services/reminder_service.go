package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"syllabus-review-api/models"
)

// ReminderResult reports an operator-triggered reminder dispatch.
type ReminderResult struct {
	BatchID  string `json:"batch_id"`
	Targeted int    `json:"targeted"`
	Sent     int    `json:"sent"`
	Deduped  int    `json:"deduped"`
	Failures int    `json:"failures"`
}

// ReminderService handles manual "send reminder" requests. Manual dispatch
// bypasses threshold matching but shares the dispatch-record dedup window
// with the daily tick, so an operator firing reminders on the same day an
// automatic alert already went out does not double up on any reviewer.
type ReminderService struct {
	db         *gorm.DB
	alerts     *AlertService
	dispatcher *AlertDispatcher
}

func NewReminderService(db *gorm.DB) *ReminderService {
	dispatcher := NewAlertDispatcher(NewGormDispatchRecorder(db), EmailChannel{}, NewInAppChannel(db))
	return &ReminderService{
		db:         db,
		alerts:     NewAlertServiceWithDispatcher(db, dispatcher),
		dispatcher: dispatcher,
	}
}

// Send dispatches reminders immediately to every assigned reviewer with
// outstanding work, or to the given subset. Writes one audit trail entry
// for the operation (not one per recipient) plus one dispatch record per
// recipient actually alerted.
func (s *ReminderService) Send(scheduleID int, reviewerIDs []int, performedBy int) (*ReminderResult, error) {
	var schedule models.ReviewSchedule
	if err := s.db.Where("schedule_id = ? AND delete_at IS NULL", scheduleID).First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "review schedule", ID: scheduleID}
		}
		return nil, fmt.Errorf("failed to load schedule %d: %w", scheduleID, err)
	}

	today := models.NewDate(time.Now())
	pending, err := s.alerts.LoadPendingWork(scheduleID)
	if err != nil {
		return nil, err
	}

	intents := BuildManualIntents(&schedule, today, pending, reviewerIDs)
	result := &ReminderResult{BatchID: uuid.NewString(), Targeted: len(intents)}
	if len(intents) == 0 {
		return result, nil
	}

	reviewers, err := s.alerts.loadReviewers(intents)
	if err != nil {
		return nil, err
	}

	summary := s.dispatcher.Dispatch(&schedule, intents, reviewers, today, result.BatchID)
	result.Sent = summary.Sent
	result.Deduped = summary.Deduped
	result.Failures = summary.Failures

	detail, _ := json.Marshal(result)
	entry := &models.AuditTrailEntry{
		ScheduleID:  scheduleID,
		Action:      models.AuditActionSendReminder,
		NewValue:    auditString(string(detail)),
		PerformedBy: performedBy,
	}
	if err := RecordAudit(s.db, entry); err != nil {
		return result, err
	}
	return result, nil
}
