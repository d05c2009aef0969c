package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"syllabus-review-api/models"
)

func alertFixture() *models.ReviewSchedule {
	return &models.ReviewSchedule{
		ScheduleID:        1,
		ScheduleName:      "2030-1 Review Cycle",
		ReviewStartDate:   models.MakeDate(2030, time.September, 10),
		L1DeadlineDate:    models.MakeDate(2030, time.September, 17),
		L2DeadlineDate:    models.MakeDate(2030, time.September, 24),
		FinalApprovalDate: models.MakeDate(2030, time.September, 30),
		DeadlineAlertConfig: models.DeadlineAlertConfig{
			AlertsEnabled:     true,
			AlertThresholds:   "7,3,1",
			AlertChannels:     models.ChannelEmail,
			SendOverdueAlerts: true,
		},
	}
}

func TestEvaluateScheduleThresholdMatch(t *testing.T) {
	schedule := alertFixture()
	pending := PendingWork{
		models.StageL1: {100: 3, 101: 1},
	}

	// Seven days before the L1 deadline: both L1 reviewers get an intent.
	today := models.MakeDate(2030, time.September, 10)
	intents := EvaluateSchedule(schedule, today, pending)

	if len(intents) != 2 {
		t.Fatalf("expected 2 intents, got %d: %+v", len(intents), intents)
	}
	for i, want := range []int{100, 101} {
		got := intents[i]
		if got.ReviewerID != want || got.Stage != models.StageL1 || got.Trigger != "7" || got.DaysUntil != 7 {
			t.Errorf("intent %d = %+v, want reviewer %d at threshold 7", i, got, want)
		}
	}
}

func TestEvaluateScheduleOffThresholdDaysAreQuiet(t *testing.T) {
	schedule := alertFixture()
	pending := PendingWork{models.StageL1: {100: 2}}

	// 6, 5, 4 and 2 days out are not configured thresholds.
	for _, day := range []int{11, 12, 13, 15} {
		today := models.MakeDate(2030, time.September, day)
		if intents := EvaluateSchedule(schedule, today, pending); len(intents) != 0 {
			t.Errorf("on %s: expected no intents, got %+v", today, intents)
		}
	}

	// 3 and 1 days out fire again.
	for day, trigger := range map[int]string{14: "3", 16: "1"} {
		today := models.MakeDate(2030, time.September, day)
		intents := EvaluateSchedule(schedule, today, pending)
		if len(intents) != 1 || intents[0].Trigger != trigger {
			t.Errorf("on %s: expected one intent with trigger %s, got %+v", today, trigger, intents)
		}
	}
}

func TestEvaluateScheduleDisabled(t *testing.T) {
	schedule := alertFixture()
	schedule.AlertsEnabled = false
	pending := PendingWork{models.StageL1: {100: 2}}

	today := models.MakeDate(2030, time.September, 10)
	if intents := EvaluateSchedule(schedule, today, pending); intents != nil {
		t.Fatalf("disabled schedule must produce no intents, got %+v", intents)
	}
}

func TestEvaluateScheduleOverdueRepeatsDaily(t *testing.T) {
	schedule := alertFixture()
	pending := PendingWork{models.StageL1: {100: 2}}

	// Every day after the L1 deadline keeps producing an overdue intent for
	// the reviewer while work is outstanding.
	for _, day := range []int{18, 19, 25} {
		today := models.MakeDate(2030, time.September, day)
		intents := EvaluateSchedule(schedule, today, pending)
		if len(intents) != 1 || intents[0].Trigger != models.TriggerOverdue {
			t.Fatalf("on %s: expected one overdue intent, got %+v", today, intents)
		}
	}

	// Once the reviewer's outstanding count reaches zero the repeats stop.
	drained := PendingWork{models.StageL1: {100: 0}}
	today := models.MakeDate(2030, time.September, 18)
	if intents := EvaluateSchedule(schedule, today, drained); len(intents) != 0 {
		t.Fatalf("drained reviewer must not be alerted, got %+v", intents)
	}

	// With overdue alerts switched off, nothing fires after the deadline.
	schedule.SendOverdueAlerts = false
	if intents := EvaluateSchedule(schedule, today, pending); len(intents) != 0 {
		t.Fatalf("overdue alerts disabled, got %+v", intents)
	}
}

func TestEvaluateScheduleOnDeadlineDay(t *testing.T) {
	schedule := alertFixture()
	schedule.AlertThresholds = "7,3,1,0"
	pending := PendingWork{models.StageL1: {100: 1}}

	// The deadline day itself is not overdue, and the zero threshold is
	// dropped by the config parser, so nothing fires.
	today := schedule.L1DeadlineDate
	if intents := EvaluateSchedule(schedule, today, pending); len(intents) != 0 {
		t.Fatalf("on the deadline day: got %+v", intents)
	}
}

func TestEvaluateScheduleStagesAreIndependent(t *testing.T) {
	schedule := alertFixture()
	pending := PendingWork{
		models.StageL1: {100: 1}, // deadline Sep 17, already past
		models.StageL2: {200: 2}, // deadline Sep 24, 3 days out
	}

	today := models.MakeDate(2030, time.September, 21)
	intents := EvaluateSchedule(schedule, today, pending)

	if len(intents) != 2 {
		t.Fatalf("expected 2 intents, got %+v", intents)
	}
	// Sorted by stage order: L1 overdue first, then the L2 threshold alert.
	if intents[0].Stage != models.StageL1 || intents[0].Trigger != models.TriggerOverdue {
		t.Errorf("first intent should be the L1 overdue repeat, got %+v", intents[0])
	}
	if intents[1].Stage != models.StageL2 || intents[1].Trigger != "3" {
		t.Errorf("second intent should be the L2 threshold alert, got %+v", intents[1])
	}
}

func TestBuildManualIntents(t *testing.T) {
	schedule := alertFixture()
	pending := PendingWork{
		models.StageL1: {100: 1, 101: 2},
		models.StageL2: {200: 1},
	}
	// A date that matches no threshold: manual reminders ignore thresholds.
	today := models.MakeDate(2030, time.September, 12)

	all := BuildManualIntents(schedule, today, pending, nil)
	if len(all) != 3 {
		t.Fatalf("expected 3 intents for all reviewers, got %+v", all)
	}
	for _, in := range all {
		if in.Trigger != models.TriggerManual {
			t.Fatalf("manual intent with trigger %q", in.Trigger)
		}
	}

	subset := BuildManualIntents(schedule, today, pending, []int{101})
	if len(subset) != 1 || subset[0].ReviewerID != 101 {
		t.Fatalf("expected only reviewer 101, got %+v", subset)
	}
}

// memoryRecorder implements the dedup unique key in memory: one record per
// (schedule, stage, reviewer, day), first writer wins.
type memoryRecorder struct {
	seen    map[string]bool
	records []*models.AlertDispatchRecord
	fail    bool
}

func newMemoryRecorder() *memoryRecorder {
	return &memoryRecorder{seen: make(map[string]bool)}
}

func (r *memoryRecorder) TryRecord(record *models.AlertDispatchRecord) (bool, error) {
	if r.fail {
		return false, errors.New("storage unavailable")
	}
	key := fmt.Sprintf("%d|%s|%d|%s", record.ScheduleID, record.Stage, record.ReviewerID, record.SentOn)
	if r.seen[key] {
		return false, nil
	}
	r.seen[key] = true
	r.records = append(r.records, record)
	return true, nil
}

type captureChannel struct {
	name      string
	delivered []AlertIntent
	err       error
}

func (c *captureChannel) Name() string { return c.name }

func (c *captureChannel) Deliver(_ *models.ReviewSchedule, intent AlertIntent, _ *models.User) error {
	if c.err != nil {
		return c.err
	}
	c.delivered = append(c.delivered, intent)
	return nil
}

func testReviewers(ids ...int) map[int]*models.User {
	out := make(map[int]*models.User, len(ids))
	for _, id := range ids {
		out[id] = &models.User{UserID: id, UserFname: fmt.Sprintf("Reviewer%d", id), Email: fmt.Sprintf("r%d@example.edu", id), Role: models.RoleHOD}
	}
	return out
}

func TestDispatchIsIdempotentWithinADay(t *testing.T) {
	schedule := alertFixture()
	recorder := newMemoryRecorder()
	email := &captureChannel{name: models.ChannelEmail}
	dispatcher := NewAlertDispatcher(recorder, email)

	today := models.MakeDate(2030, time.September, 10)
	pending := PendingWork{models.StageL1: {100: 3, 101: 1}}
	intents := EvaluateSchedule(schedule, today, pending)

	first := dispatcher.Dispatch(schedule, intents, testReviewers(100, 101), today, "batch-1")
	if first.Sent != 2 || first.Deduped != 0 || first.Failures != 0 {
		t.Fatalf("first run: %+v", first)
	}

	// The tick re-running the same day delivers nothing new.
	second := dispatcher.Dispatch(schedule, intents, testReviewers(100, 101), today, "batch-2")
	if second.Sent != 0 || second.Deduped != 2 {
		t.Fatalf("second run: %+v", second)
	}
	if len(email.delivered) != 2 {
		t.Fatalf("expected exactly 2 deliveries, got %d", len(email.delivered))
	}

	// The next calendar day opens a fresh window.
	tomorrow := today.AddDays(1)
	manual := BuildManualIntents(schedule, tomorrow, pending, nil)
	next := dispatcher.Dispatch(schedule, manual, testReviewers(100, 101), tomorrow, "batch-3")
	if next.Sent != 2 || next.Deduped != 0 {
		t.Fatalf("next day: %+v", next)
	}
}

func TestManualReminderSharesDailyWindowWithAutomaticAlerts(t *testing.T) {
	schedule := alertFixture()
	recorder := newMemoryRecorder()
	email := &captureChannel{name: models.ChannelEmail}
	dispatcher := NewAlertDispatcher(recorder, email)

	today := models.MakeDate(2030, time.September, 10)
	pending := PendingWork{models.StageL1: {100: 3}}

	auto := dispatcher.Dispatch(schedule, EvaluateSchedule(schedule, today, pending), testReviewers(100), today, "tick")
	if auto.Sent != 1 {
		t.Fatalf("automatic run: %+v", auto)
	}

	// A manager firing a manual reminder later the same day reaches the same
	// window and is suppressed.
	manual := dispatcher.Dispatch(schedule, BuildManualIntents(schedule, today, pending, nil), testReviewers(100), today, "manual")
	if manual.Sent != 0 || manual.Deduped != 1 {
		t.Fatalf("manual run: %+v", manual)
	}
	if len(email.delivered) != 1 {
		t.Fatalf("reviewer alerted %d times in one day", len(email.delivered))
	}
}

func TestDispatchRecordsBeforeDelivering(t *testing.T) {
	schedule := alertFixture()
	recorder := newMemoryRecorder()
	email := &captureChannel{name: models.ChannelEmail, err: errors.New("smtp down")}
	dispatcher := NewAlertDispatcher(recorder, email)

	today := models.MakeDate(2030, time.September, 10)
	pending := PendingWork{models.StageL1: {100: 1}}
	intents := EvaluateSchedule(schedule, today, pending)

	failed := dispatcher.Dispatch(schedule, intents, testReviewers(100), today, "batch-1")
	if failed.Sent != 0 || failed.Failures != 1 {
		t.Fatalf("failed delivery run: %+v", failed)
	}
	if len(recorder.records) != 1 {
		t.Fatalf("record must be written before delivery, got %d records", len(recorder.records))
	}

	// The tuple was recorded, so the alert is not re-sent once the channel
	// recovers.
	email.err = nil
	retry := dispatcher.Dispatch(schedule, intents, testReviewers(100), today, "batch-2")
	if retry.Sent != 0 || retry.Deduped != 1 {
		t.Fatalf("retry run: %+v", retry)
	}
}

func TestDispatchRecorderFailureLeavesIntentRetryable(t *testing.T) {
	schedule := alertFixture()
	recorder := newMemoryRecorder()
	recorder.fail = true
	email := &captureChannel{name: models.ChannelEmail}
	dispatcher := NewAlertDispatcher(recorder, email)

	today := models.MakeDate(2030, time.September, 10)
	intents := EvaluateSchedule(schedule, today, PendingWork{models.StageL1: {100: 1}})

	down := dispatcher.Dispatch(schedule, intents, testReviewers(100), today, "batch-1")
	if down.Failures != 1 || down.Sent != 0 {
		t.Fatalf("recorder-down run: %+v", down)
	}

	// No record was written, so the next tick delivers normally.
	recorder.fail = false
	up := dispatcher.Dispatch(schedule, intents, testReviewers(100), today, "batch-2")
	if up.Sent != 1 || up.Deduped != 0 {
		t.Fatalf("recovery run: %+v", up)
	}
}

func TestDispatchFansOutToConfiguredChannelsOnly(t *testing.T) {
	schedule := alertFixture()
	schedule.AlertChannels = models.ChannelEmail + "," + models.ChannelInApp

	recorder := newMemoryRecorder()
	email := &captureChannel{name: models.ChannelEmail}
	inApp := &captureChannel{name: models.ChannelInApp}
	dispatcher := NewAlertDispatcher(recorder, email, inApp)

	today := models.MakeDate(2030, time.September, 10)
	intents := EvaluateSchedule(schedule, today, PendingWork{models.StageL1: {100: 1}})

	summary := dispatcher.Dispatch(schedule, intents, testReviewers(100), today, "batch-1")
	if summary.Sent != 1 {
		t.Fatalf("summary: %+v", summary)
	}
	if len(email.delivered) != 1 || len(inApp.delivered) != 1 {
		t.Fatalf("both channels should deliver once: email=%d in_app=%d", len(email.delivered), len(inApp.delivered))
	}

	// Email-only config never touches the in-app channel.
	schedule.AlertChannels = models.ChannelEmail
	tomorrow := today.AddDays(1)
	dispatcher.Dispatch(schedule, BuildManualIntents(schedule, tomorrow, PendingWork{models.StageL1: {100: 1}}, nil), testReviewers(100), tomorrow, "batch-2")
	if len(inApp.delivered) != 1 {
		t.Fatalf("in-app channel used despite not being configured: %d", len(inApp.delivered))
	}
}
