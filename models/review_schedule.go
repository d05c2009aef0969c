package models

import (
	"strconv"
	"strings"
	"time"
)

// Lifecycle status of a review schedule. Always derived from the current
// date, the deadline dates and the progress counts; a stored value is at
// most a cache hint and is never trusted for permission checks.
type ScheduleStatus string

const (
	StatusUpcoming  ScheduleStatus = "UPCOMING"
	StatusActive    ScheduleStatus = "ACTIVE"
	StatusOverdue   ScheduleStatus = "OVERDUE"
	StatusCompleted ScheduleStatus = "COMPLETED"
)

// Deadline stages of the approval cycle, in order.
type ReviewStage string

const (
	StageL1    ReviewStage = "L1"
	StageL2    ReviewStage = "L2"
	StageFinal ReviewStage = "FINAL"
)

// Stages lists all deadline stages in cycle order.
func Stages() []ReviewStage {
	return []ReviewStage{StageL1, StageL2, StageFinal}
}

// Alert delivery channels.
const (
	ChannelEmail = "EMAIL"
	ChannelInApp = "IN_APP"
)

// DeadlineAlertConfig is embedded in ReviewSchedule and edited together with
// it. Thresholds and channels are stored as comma-separated sets.
type DeadlineAlertConfig struct {
	AlertsEnabled     bool   `gorm:"column:alerts_enabled" json:"alerts_enabled"`
	AlertThresholds   string `gorm:"column:alert_thresholds" json:"alert_thresholds"`
	AlertChannels     string `gorm:"column:alert_channels" json:"alert_channels"`
	SendOverdueAlerts bool   `gorm:"column:send_overdue_alerts" json:"send_overdue_alerts"`
}

// ThresholdDays parses the stored threshold set. Invalid entries are
// dropped; the validator guarantees they never get stored.
func (c DeadlineAlertConfig) ThresholdDays() []int {
	var days []int
	for _, part := range strings.Split(c.AlertThresholds, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil && n > 0 {
			days = append(days, n)
		}
	}
	return days
}

// Channels parses the stored channel set.
func (c DeadlineAlertConfig) Channels() []string {
	var channels []string
	for _, part := range strings.Split(c.AlertChannels, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			channels = append(channels, part)
		}
	}
	return channels
}

// ReviewSchedule defines one approval cycle for a semester: L1 review by
// department heads, L2 review by academic affairs, then final approval.
// The four dates are strictly ordered and may only be extended after
// creation, never shortened.
type ReviewSchedule struct {
	ScheduleID        int    `gorm:"primaryKey;column:schedule_id" json:"schedule_id"`
	ScheduleName      string `gorm:"column:schedule_name" json:"schedule_name"`
	SemesterID        int    `gorm:"column:semester_id;unique" json:"semester_id"`
	ReviewStartDate   Date   `gorm:"column:review_start_date" json:"review_start_date"`
	L1DeadlineDate    Date   `gorm:"column:l1_deadline_date" json:"l1_deadline_date"`
	L2DeadlineDate    Date   `gorm:"column:l2_deadline_date" json:"l2_deadline_date"`
	FinalApprovalDate Date   `gorm:"column:final_approval_date" json:"final_approval_date"`

	DeadlineAlertConfig `gorm:"embedded" json:"alert_config"`

	CreatedBy int        `gorm:"column:created_by" json:"created_by"`
	CreateAt  time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt  time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Semester    *Semester            `gorm:"foreignKey:SemesterID" json:"semester,omitempty"`
	Assignments []ReviewerAssignment `gorm:"foreignKey:ScheduleID" json:"assignments,omitempty"`

	// Derived, never stored. Populated by the service layer on read.
	Status   ScheduleStatus      `gorm:"-" json:"status"`
	Progress *ProgressStatistics `gorm:"-" json:"progress,omitempty"`
}

func (ReviewSchedule) TableName() string { return "review_schedules" }

// DeadlineFor maps a stage to its deadline date.
func (s *ReviewSchedule) DeadlineFor(stage ReviewStage) Date {
	switch stage {
	case StageL1:
		return s.L1DeadlineDate
	case StageL2:
		return s.L2DeadlineDate
	default:
		return s.FinalApprovalDate
	}
}
