package services

import (
	"testing"
	"time"

	"syllabus-review-api/models"
)

func statusFixture() *models.ReviewSchedule {
	return &models.ReviewSchedule{
		ScheduleID:        1,
		ReviewStartDate:   models.MakeDate(2030, time.September, 10),
		L1DeadlineDate:    models.MakeDate(2030, time.September, 17),
		L2DeadlineDate:    models.MakeDate(2030, time.September, 24),
		FinalApprovalDate: models.MakeDate(2030, time.September, 30),
	}
}

func atNoon(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestComputeStatusByDate(t *testing.T) {
	schedule := statusFixture()
	partial := &models.ProgressStatistics{TotalCount: 10, ReviewedCount: 4}

	cases := []struct {
		name string
		now  time.Time
		want models.ScheduleStatus
	}{
		{"before review start", atNoon(2030, time.September, 1), models.StatusUpcoming},
		{"on review start", atNoon(2030, time.September, 10), models.StatusActive},
		{"between deadlines", atNoon(2030, time.September, 20), models.StatusActive},
		{"on final approval date", atNoon(2030, time.September, 30), models.StatusActive},
		{"after final approval date", atNoon(2030, time.October, 1), models.StatusOverdue},
	}

	for _, tc := range cases {
		if got := ComputeStatus(tc.now, schedule, partial); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestComputeStatusCompletedWinsOverDates(t *testing.T) {
	schedule := statusFixture()
	done := &models.ProgressStatistics{TotalCount: 10, ReviewedCount: 10}

	// Even well past the final approval date a fully reviewed schedule is
	// COMPLETED, never OVERDUE.
	for _, now := range []time.Time{
		atNoon(2030, time.September, 1),
		atNoon(2030, time.September, 20),
		atNoon(2031, time.January, 15),
	} {
		if got := ComputeStatus(now, schedule, done); got != models.StatusCompleted {
			t.Errorf("at %s: got %s, want %s", now, got, models.StatusCompleted)
		}
	}
}

func TestComputeStatusEmptyScheduleIsNeverCompleted(t *testing.T) {
	schedule := statusFixture()
	empty := &models.ProgressStatistics{TotalCount: 0, ReviewedCount: 0}

	if got := ComputeStatus(atNoon(2030, time.September, 20), schedule, empty); got != models.StatusActive {
		t.Errorf("schedule with no reviews: got %s, want %s", got, models.StatusActive)
	}
	if got := ComputeStatus(atNoon(2030, time.September, 20), schedule, nil); got != models.StatusActive {
		t.Errorf("schedule with nil progress: got %s, want %s", got, models.StatusActive)
	}
}

func TestCanEdit(t *testing.T) {
	cases := []struct {
		status models.ScheduleStatus
		want   bool
	}{
		{models.StatusUpcoming, true},
		{models.StatusActive, true},
		{models.StatusOverdue, true},
		{models.StatusCompleted, false},
	}
	for _, tc := range cases {
		if got := CanEdit(tc.status); got != tc.want {
			t.Errorf("CanEdit(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestCanDelete(t *testing.T) {
	cases := []struct {
		name     string
		status   models.ScheduleStatus
		reviewed int
		want     bool
	}{
		{"upcoming and untouched", models.StatusUpcoming, 0, true},
		{"upcoming with a decided review", models.StatusUpcoming, 1, false},
		{"active", models.StatusActive, 0, false},
		{"overdue", models.StatusOverdue, 0, false},
		{"completed", models.StatusCompleted, 10, false},
	}
	for _, tc := range cases {
		if got := CanDelete(tc.status, tc.reviewed); got != tc.want {
			t.Errorf("%s: CanDelete = %v, want %v", tc.name, got, tc.want)
		}
	}
}
