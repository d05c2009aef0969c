package services

import (
	"sort"
	"strconv"

	"syllabus-review-api/models"
)

// PendingWork maps stage -> reviewer id -> outstanding review count for one
// schedule. Built from the syllabus review records before each evaluation.
type PendingWork map[models.ReviewStage]map[int]int

// AlertIntent is one reminder that should reach one reviewer. Evaluation
// produces intents only; recording and delivery are the dispatcher's
// problem, so the threshold logic stays free of I/O.
type AlertIntent struct {
	ScheduleID int
	Stage      models.ReviewStage
	Trigger    string // threshold in days, "OVERDUE" or "MANUAL"
	ReviewerID int
	DaysUntil  int
}

// EvaluateSchedule computes which reviewers should be alerted today for a
// schedule. For each future deadline stage, an alert fires when the number
// of days until the deadline equals a configured threshold; after a
// deadline passes and overdue alerts are enabled, one alert per reviewer
// with outstanding work fires every day until their count reaches zero.
//
// Pure: re-running with the same inputs yields the same intents. Dedup
// against earlier runs on the same day happens at dispatch time.
func EvaluateSchedule(schedule *models.ReviewSchedule, today models.Date, pending PendingWork) []AlertIntent {
	if !schedule.AlertsEnabled {
		return nil
	}

	thresholds := schedule.ThresholdDays()
	var intents []AlertIntent

	for _, stage := range models.Stages() {
		reviewers := pending[stage]
		if len(reviewers) == 0 {
			continue
		}

		daysUntil := today.DaysUntil(schedule.DeadlineFor(stage))

		var trigger string
		switch {
		case daysUntil >= 0:
			matched := false
			for _, t := range thresholds {
				if daysUntil == t {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			trigger = strconv.Itoa(daysUntil)
		case schedule.SendOverdueAlerts:
			trigger = models.TriggerOverdue
		default:
			continue
		}

		for reviewerID, count := range reviewers {
			if count <= 0 {
				continue
			}
			intents = append(intents, AlertIntent{
				ScheduleID: schedule.ScheduleID,
				Stage:      stage,
				Trigger:    trigger,
				ReviewerID: reviewerID,
				DaysUntil:  daysUntil,
			})
		}
	}

	sortIntents(intents)
	return intents
}

// BuildManualIntents converts an operator-triggered reminder into intents,
// bypassing threshold matching. Targets every reviewer with outstanding
// work, or only the given subset when one is provided.
func BuildManualIntents(schedule *models.ReviewSchedule, today models.Date, pending PendingWork, reviewerIDs []int) []AlertIntent {
	var subset map[int]bool
	if len(reviewerIDs) > 0 {
		subset = make(map[int]bool, len(reviewerIDs))
		for _, id := range reviewerIDs {
			subset[id] = true
		}
	}

	var intents []AlertIntent
	for _, stage := range models.Stages() {
		daysUntil := today.DaysUntil(schedule.DeadlineFor(stage))
		for reviewerID, count := range pending[stage] {
			if count <= 0 {
				continue
			}
			if subset != nil && !subset[reviewerID] {
				continue
			}
			intents = append(intents, AlertIntent{
				ScheduleID: schedule.ScheduleID,
				Stage:      stage,
				Trigger:    models.TriggerManual,
				ReviewerID: reviewerID,
				DaysUntil:  daysUntil,
			})
		}
	}

	sortIntents(intents)
	return intents
}

func sortIntents(intents []AlertIntent) {
	stageOrder := map[models.ReviewStage]int{models.StageL1: 0, models.StageL2: 1, models.StageFinal: 2}
	sort.Slice(intents, func(i, j int) bool {
		if intents[i].Stage != intents[j].Stage {
			return stageOrder[intents[i].Stage] < stageOrder[intents[j].Stage]
		}
		return intents[i].ReviewerID < intents[j].ReviewerID
	})
}
