package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"syllabus-review-api/config"
	"syllabus-review-api/models"
	"syllabus-review-api/utils"
)

// DispatchRecorder is the dedup gate. TryRecord must be an atomic
// insert-if-absent on the (schedule, stage, reviewer, day) key: it returns
// false when a record for that tuple already exists, in which case no alert
// may be sent. Both the daily tick and manual reminders go through the same
// recorder, which is what keeps the two paths from compounding.
type DispatchRecorder interface {
	TryRecord(record *models.AlertDispatchRecord) (bool, error)
}

// GormDispatchRecorder backs the dedup gate with the unique key on
// alert_dispatch_records. INSERT ... ON CONFLICT DO NOTHING keeps the check
// and the write atomic under concurrent workers.
type GormDispatchRecorder struct {
	db *gorm.DB
}

func NewGormDispatchRecorder(db *gorm.DB) *GormDispatchRecorder {
	return &GormDispatchRecorder{db: db}
}

func (r *GormDispatchRecorder) TryRecord(record *models.AlertDispatchRecord) (bool, error) {
	if record.CreateAt.IsZero() {
		record.CreateAt = time.Now()
	}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(record)
	if result.Error != nil {
		return false, fmt.Errorf("failed to record alert dispatch: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// AlertChannel delivers one alert to one reviewer. A channel failure never
// blocks other channels or other recipients.
type AlertChannel interface {
	Name() string
	Deliver(schedule *models.ReviewSchedule, intent AlertIntent, reviewer *models.User) error
}

// EmailChannel delivers through SMTP.
type EmailChannel struct{}

func (EmailChannel) Name() string { return models.ChannelEmail }

func (EmailChannel) Deliver(schedule *models.ReviewSchedule, intent AlertIntent, reviewer *models.User) error {
	if !utils.ValidateEmail(reviewer.Email) {
		return fmt.Errorf("reviewer %d has no usable email address", reviewer.UserID)
	}
	subject, body := alertMessage(schedule, intent, reviewer)
	return config.SendMail([]string{reviewer.Email}, subject, body)
}

// InAppChannel delivers by inserting a notification row.
type InAppChannel struct {
	db *gorm.DB
}

func NewInAppChannel(db *gorm.DB) *InAppChannel {
	return &InAppChannel{db: db}
}

func (InAppChannel) Name() string { return models.ChannelInApp }

func (ch InAppChannel) Deliver(schedule *models.ReviewSchedule, intent AlertIntent, reviewer *models.User) error {
	subject, body := alertMessage(schedule, intent, reviewer)
	notifType := "warning"
	if intent.Trigger == models.TriggerOverdue {
		notifType = "error"
	}
	scheduleID := schedule.ScheduleID
	notification := models.Notification{
		UserID:            reviewer.UserID,
		Title:             subject,
		Message:           body,
		Type:              notifType,
		RelatedScheduleID: &scheduleID,
		CreateAt:          time.Now(),
	}
	if err := ch.db.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create in-app notification: %w", err)
	}
	return nil
}

func alertMessage(schedule *models.ReviewSchedule, intent AlertIntent, reviewer *models.User) (string, string) {
	deadline := schedule.DeadlineFor(intent.Stage)
	stageLabel := stageLabel(intent.Stage)

	var subject, lead string
	switch intent.Trigger {
	case models.TriggerOverdue:
		overdueDays := -intent.DaysUntil
		subject = fmt.Sprintf("Overdue: %s for %s", stageLabel, schedule.ScheduleName)
		lead = fmt.Sprintf("The %s deadline (%s) passed %d day(s) ago and you still have reviews outstanding.",
			stageLabel, deadline, overdueDays)
	case models.TriggerManual:
		subject = fmt.Sprintf("Reminder: %s for %s", stageLabel, schedule.ScheduleName)
		lead = fmt.Sprintf("You have outstanding reviews for the %s stage. The deadline is %s.", stageLabel, deadline)
	default:
		subject = fmt.Sprintf("Reminder: %s due in %d day(s) for %s", stageLabel, intent.DaysUntil, schedule.ScheduleName)
		lead = fmt.Sprintf("The %s deadline is %s, %d day(s) from today, and you still have reviews outstanding.",
			stageLabel, deadline, intent.DaysUntil)
	}

	body := fmt.Sprintf("<p>Dear %s,</p><p>%s</p><p>Please complete your reviews in the syllabus system.</p>",
		reviewer.FullName(), lead)
	return subject, body
}

func stageLabel(stage models.ReviewStage) string {
	switch stage {
	case models.StageL1:
		return "L1 review"
	case models.StageL2:
		return "L2 review"
	default:
		return "final approval"
	}
}

// DispatchSummary reports one dispatch pass over a set of intents.
type DispatchSummary struct {
	Sent     int `json:"sent"`
	Deduped  int `json:"deduped"`
	Failures int `json:"failures"`
}

// AlertDispatcher turns intents into recorded, delivered alerts. The
// dispatch record is written before delivery: once a tuple is recorded as
// sent it is never re-sent, even if a channel fails afterwards. A recorder
// failure leaves no record, so that intent is retried on the next tick.
type AlertDispatcher struct {
	recorder DispatchRecorder
	channels map[string]AlertChannel
}

func NewAlertDispatcher(recorder DispatchRecorder, channels ...AlertChannel) *AlertDispatcher {
	byName := make(map[string]AlertChannel, len(channels))
	for _, ch := range channels {
		byName[ch.Name()] = ch
	}
	return &AlertDispatcher{recorder: recorder, channels: byName}
}

// Dispatch processes intents independently: one reviewer's failure never
// blocks the rest.
func (d *AlertDispatcher) Dispatch(schedule *models.ReviewSchedule, intents []AlertIntent, reviewers map[int]*models.User, today models.Date, batchID string) DispatchSummary {
	var summary DispatchSummary

	for _, intent := range intents {
		record := &models.AlertDispatchRecord{
			ScheduleID: intent.ScheduleID,
			Stage:      intent.Stage,
			ReviewerID: intent.ReviewerID,
			SentOn:     today,
			Trigger:    intent.Trigger,
			Channels:   schedule.AlertChannels,
			BatchID:    batchID,
		}

		inserted, err := d.recorder.TryRecord(record)
		if err != nil {
			summary.Failures++
			log.Printf("alert dispatch: recording failed for schedule %d stage %s reviewer %d: %v",
				intent.ScheduleID, intent.Stage, intent.ReviewerID, err)
			continue
		}
		if !inserted {
			// Already alerted today for this stage, by either path.
			summary.Deduped++
			continue
		}

		reviewer := reviewers[intent.ReviewerID]
		if reviewer == nil {
			summary.Failures++
			log.Printf("alert dispatch: reviewer %d not loaded for schedule %d", intent.ReviewerID, intent.ScheduleID)
			continue
		}

		delivered := false
		for _, name := range schedule.Channels() {
			ch, ok := d.channels[name]
			if !ok {
				log.Printf("alert dispatch: channel %s not configured", name)
				continue
			}
			if err := ch.Deliver(schedule, intent, reviewer); err != nil {
				summary.Failures++
				log.Printf("alert dispatch: %s delivery to reviewer %d failed: %v", name, intent.ReviewerID, err)
				continue
			}
			delivered = true
		}
		if delivered {
			summary.Sent++
		}
	}

	return summary
}
