package models

import "time"

// Audit action labels.
const (
	AuditActionCreate         = "create"
	AuditActionUpdate         = "update"
	AuditActionDelete         = "delete"
	AuditActionAssignReviewer = "assign_reviewer"
	AuditActionUpdateReviewer = "update_reviewer"
	AuditActionRemoveReviewer = "remove_reviewer"
	AuditActionSendReminder   = "send_reminder"
	AuditActionAlertDispatch  = "alert_dispatch"
)

// AuditTrailEntry records one state-changing operation on a schedule.
// Append-only: entries are written in the same transaction as the mutation
// they describe and are never updated or deleted. A mutation without its
// entry (or the reverse) is a bug, so audit write failure rolls the whole
// operation back.
type AuditTrailEntry struct {
	EntryID     int        `gorm:"primaryKey;column:entry_id" json:"entry_id"`
	ScheduleID  int        `gorm:"column:schedule_id" json:"schedule_id"`
	Action      string     `gorm:"column:action" json:"action"`
	Field       *string    `gorm:"column:field" json:"field,omitempty"`
	OldValue    *string    `gorm:"column:old_value" json:"old_value,omitempty"`
	NewValue    *string    `gorm:"column:new_value" json:"new_value,omitempty"`
	PerformedBy int        `gorm:"column:performed_by" json:"performed_by"`
	PerformedAt time.Time  `gorm:"column:performed_at" json:"performed_at"`
	Reason      *string    `gorm:"column:reason" json:"reason,omitempty"`

	// Relations
	Performer *User `gorm:"foreignKey:PerformedBy" json:"performer,omitempty"`
}

func (AuditTrailEntry) TableName() string { return "audit_trail" }
