package models

import "time"

// Alert triggers. Automatic threshold alerts store the threshold in days
// ("7", "3", "1"); overdue repeats and operator-triggered reminders use
// markers.
const (
	TriggerOverdue = "OVERDUE"
	TriggerManual  = "MANUAL"
)

// AlertDispatchRecord guarantees at-most-once alert delivery per reviewer,
// stage and calendar day. The composite unique key deliberately excludes
// the trigger: a manual reminder and an automatic threshold alert landing
// on the same day count against the same window, so a reviewer never gets
// two reminders for the same deadline in one day. Insert-if-absent against
// this key is the single point of serialization between the daily tick and
// manual dispatch.
type AlertDispatchRecord struct {
	RecordID   int         `gorm:"primaryKey;column:record_id" json:"record_id"`
	ScheduleID int         `gorm:"column:schedule_id;uniqueIndex:uq_dispatch_day" json:"schedule_id"`
	Stage      ReviewStage `gorm:"column:stage;uniqueIndex:uq_dispatch_day" json:"stage"`
	ReviewerID int         `gorm:"column:reviewer_id;uniqueIndex:uq_dispatch_day" json:"reviewer_id"`
	SentOn     Date        `gorm:"column:sent_on;uniqueIndex:uq_dispatch_day" json:"sent_on"`
	Trigger    string      `gorm:"column:trigger_kind" json:"trigger"`
	Channels   string      `gorm:"column:channels" json:"channels"`
	BatchID    string      `gorm:"column:batch_id" json:"batch_id"`
	CreateAt   time.Time   `gorm:"column:create_at" json:"create_at"`
}

func (AlertDispatchRecord) TableName() string { return "alert_dispatch_records" }

// Notification is the in-app delivery target for the IN_APP channel.
type Notification struct {
	NotificationID    int        `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID            int        `gorm:"column:user_id" json:"user_id"`
	Title             string     `gorm:"column:title" json:"title"`
	Message           string     `gorm:"column:message" json:"message"`
	Type              string     `gorm:"column:type" json:"type"` // info|warning|error
	RelatedScheduleID *int       `gorm:"column:related_schedule_id" json:"related_schedule_id,omitempty"`
	IsRead            bool       `gorm:"column:is_read" json:"is_read"`
	CreateAt          time.Time  `gorm:"column:create_at" json:"created_at"`
	UpdateAt          *time.Time `gorm:"column:update_at" json:"-"`
}

func (Notification) TableName() string { return "notifications" }
