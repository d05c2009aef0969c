package services

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"syllabus-review-api/models"
)

const (
	scheduleNameMinLen = 5
	scheduleNameMaxLen = 100

	// Minimum gap between review start and L1, and between L1 and L2.
	// The boundary is inclusive: a gap of exactly minStageGapDays passes.
	minStageGapDays = 7

	alertThresholdMax = 30

	// Review start this close to the submission-window end produces a
	// non-blocking warning: the schedule is legal but reviewers get almost
	// no lead time.
	shortLeadTimeDays = 2
)

// ScheduleInput is the request payload for creating or editing a schedule.
type ScheduleInput struct {
	ScheduleName      string      `json:"schedule_name"`
	SemesterID        int         `json:"semester_id"`
	ReviewStartDate   models.Date `json:"review_start_date"`
	L1DeadlineDate    models.Date `json:"l1_deadline_date"`
	L2DeadlineDate    models.Date `json:"l2_deadline_date"`
	FinalApprovalDate models.Date `json:"final_approval_date"`
	AlertsEnabled     bool        `json:"alerts_enabled"`
	AlertThresholds   []int       `json:"alert_thresholds"`
	AlertChannels     []string    `json:"alert_channels"`
	SendOverdueAlerts bool        `json:"send_overdue_alerts"`
}

// ThresholdsCSV normalizes the threshold set for storage.
func (in *ScheduleInput) ThresholdsCSV() string {
	parts := make([]string, 0, len(in.AlertThresholds))
	for _, d := range in.AlertThresholds {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

// ChannelsCSV normalizes the channel set for storage.
func (in *ScheduleInput) ChannelsCSV() string {
	return strings.Join(in.AlertChannels, ",")
}

// ValidateSchedule checks a schedule definition against a semester's
// submission window. On edit (existing != nil) it additionally enforces
// monotonic deadline extension: each date may move forward relative to the
// stored value, never back.
//
// Returns non-fatal warnings alongside a nil error when the input is legal
// but questionable (review start 1-2 days after the submission window
// closes). The returned error is a *ValidationError for field-level
// problems, or a *BusinessRuleError when an edit tries to shorten a
// deadline.
func ValidateSchedule(in *ScheduleInput, semester *models.Semester, existing *models.ReviewSchedule) ([]string, error) {
	verr := &ValidationError{}
	var warnings []string

	validateScheduleName(in.ScheduleName, verr)

	if semester == nil {
		verr.add("semester_id", "Semester is required")
	}

	for _, d := range []struct {
		field string
		value models.Date
	}{
		{"review_start_date", in.ReviewStartDate},
		{"l1_deadline_date", in.L1DeadlineDate},
		{"l2_deadline_date", in.L2DeadlineDate},
		{"final_approval_date", in.FinalApprovalDate},
	} {
		if d.value.IsZero() {
			verr.add(d.field, "Date is required")
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	// Review start must fall strictly after the submission window closes.
	daysAfterWindow := semester.SubmissionWindowEnd.DaysUntil(in.ReviewStartDate)
	if daysAfterWindow <= 0 {
		verr.add("review_start_date", "Review start must be after the semester's submission window end")
	} else if daysAfterWindow <= shortLeadTimeDays {
		warnings = append(warnings, fmt.Sprintf(
			"Review starts only %d day(s) after the submission window closes; reviewers will have very little lead time", daysAfterWindow))
	}

	// Date sequence: reviewStart < l1 < l2 < final, with a minimum gap on
	// the first two stages. No minimum gap on the final stage.
	if gap := in.ReviewStartDate.DaysUntil(in.L1DeadlineDate); gap <= 0 {
		verr.add("l1_deadline_date", "L1 deadline must be after the review start date")
	} else if gap < minStageGapDays {
		verr.add("l1_deadline_date", fmt.Sprintf("L1 deadline must be at least %d days after the review start date", minStageGapDays))
	}
	if gap := in.L1DeadlineDate.DaysUntil(in.L2DeadlineDate); gap <= 0 {
		verr.add("l2_deadline_date", "L2 deadline must be after the L1 deadline")
	} else if gap < minStageGapDays {
		verr.add("l2_deadline_date", fmt.Sprintf("L2 deadline must be at least %d days after the L1 deadline", minStageGapDays))
	}
	if gap := in.L2DeadlineDate.DaysUntil(in.FinalApprovalDate); gap <= 0 {
		verr.add("final_approval_date", "Final approval date must be after the L2 deadline")
	}

	validateAlertConfig(in, verr)

	if existing != nil {
		if err := validateMonotonicExtension(in, existing); err != nil {
			return nil, err
		}
	}

	return warnings, verr.orNil()
}

func validateScheduleName(name string, verr *ValidationError) {
	trimmed := strings.TrimSpace(name)
	length := len([]rune(trimmed))
	if length < scheduleNameMinLen || length > scheduleNameMaxLen {
		verr.add("schedule_name", fmt.Sprintf("Name must be %d-%d characters", scheduleNameMinLen, scheduleNameMaxLen))
		return
	}
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			continue
		}
		verr.add("schedule_name", "Name may only contain letters, digits, spaces, hyphens and underscores")
		return
	}
}

func validateAlertConfig(in *ScheduleInput, verr *ValidationError) {
	if len(in.AlertThresholds) == 0 {
		verr.add("alert_thresholds", "At least one alert threshold is required")
	}
	for _, d := range in.AlertThresholds {
		if d < 1 || d > alertThresholdMax {
			verr.add("alert_thresholds", fmt.Sprintf("Thresholds must be between 1 and %d days", alertThresholdMax))
			break
		}
	}

	if len(in.AlertChannels) == 0 {
		verr.add("alert_channels", "At least one alert channel is required")
	}
	for _, ch := range in.AlertChannels {
		if ch != models.ChannelEmail && ch != models.ChannelInApp {
			verr.add("alert_channels", fmt.Sprintf("Unknown alert channel %q", ch))
			break
		}
	}
}

// validateMonotonicExtension rejects any edit that moves a date earlier
// than its stored value. Deadlines may only ever be extended once a
// schedule exists.
func validateMonotonicExtension(in *ScheduleInput, existing *models.ReviewSchedule) error {
	checks := []struct {
		field  string
		stored models.Date
		edited models.Date
	}{
		{"review_start_date", existing.ReviewStartDate, in.ReviewStartDate},
		{"l1_deadline_date", existing.L1DeadlineDate, in.L1DeadlineDate},
		{"l2_deadline_date", existing.L2DeadlineDate, in.L2DeadlineDate},
		{"final_approval_date", existing.FinalApprovalDate, in.FinalApprovalDate},
	}
	for _, c := range checks {
		if c.edited.Before(c.stored) {
			return &BusinessRuleError{
				Rule:    "monotonic_extension",
				Message: fmt.Sprintf("%s can only be extended, not moved earlier", c.field),
			}
		}
	}
	return nil
}
