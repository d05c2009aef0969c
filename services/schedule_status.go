package services

import (
	"time"

	"syllabus-review-api/models"
)

// ComputeStatus derives a schedule's lifecycle state from the clock, its
// deadline dates and its progress counts. Pure and idempotent: no side
// effects, same inputs always give the same state, so it is recomputed on
// every read instead of being stored (a stored status can go stale the
// moment the clock passes a deadline).
//
// COMPLETED wins over every date condition: once all reviews are decided
// the cycle is finished no matter where the deadlines sit.
func ComputeStatus(now time.Time, schedule *models.ReviewSchedule, progress *models.ProgressStatistics) models.ScheduleStatus {
	if progress != nil && progress.TotalCount > 0 && progress.ReviewedCount == progress.TotalCount {
		return models.StatusCompleted
	}

	today := models.NewDate(now)
	if today.Before(schedule.ReviewStartDate) {
		return models.StatusUpcoming
	}
	if today.After(schedule.FinalApprovalDate) {
		return models.StatusOverdue
	}
	return models.StatusActive
}

// CanEdit gates schedule edits by lifecycle state. OVERDUE stays editable
// on purpose: extending a deadline is the recovery path out of the overdue
// condition. Policy lives here so a change touches one predicate.
func CanEdit(status models.ScheduleStatus) bool {
	return status != models.StatusCompleted
}

// CanDelete allows deletion only before the cycle starts and only while no
// review has been decided, so a cycle that already produced approvals can
// never be destroyed.
func CanDelete(status models.ScheduleStatus, reviewedCount int) bool {
	return status == models.StatusUpcoming && reviewedCount == 0
}
