package scheduler

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"syllabus-review-api/services"
	"syllabus-review-api/utils"
)

// DefaultTickHour is when the daily alert evaluation runs (institution
// local time).
const DefaultTickHour = 7

// Scheduler runs the daily deadline-alert tick in-process. Deployments
// that prefer external cron can run cmd/alert-tick instead; both paths
// dedupe through the same dispatch records, so running both is safe.
type Scheduler struct {
	scheduler *gocron.Scheduler
	alerts    *services.AlertService
}

func New(alerts *services.AlertService) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(utils.InstitutionLocation()),
		alerts:    alerts,
	}
}

// Start schedules the daily tick and begins running it asynchronously.
func (s *Scheduler) Start() {
	hour := DefaultTickHour
	if raw := os.Getenv("ALERT_TICK_HOUR"); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h <= 23 {
			hour = h
		}
	}

	at := fmt.Sprintf("%02d:00", hour)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.runTick); err != nil {
		log.Printf("Warning: failed to schedule daily alert tick: %v", err)
		return
	}
	s.scheduler.StartAsync()
	log.Printf("Daily alert tick scheduled at %s (%s)", at, utils.InstitutionLocation())
}

// Stop terminates the scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runTick() {
	if _, err := s.alerts.RunDailyTick(time.Now()); err != nil {
		log.Printf("Daily alert tick failed: %v", err)
	}
}
