package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"syllabus-review-api/config"
	"syllabus-review-api/models"
	"syllabus-review-api/services"
	"syllabus-review-api/utils"
)

// One-shot daily alert evaluation, intended for external cron. Safe to
// re-run: dispatch records dedupe anything already sent today.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.ReloadMailerConfig()
	config.InitDB()

	var asOf string
	flag.StringVar(&asOf, "as-of", "", "evaluate as of this date (YYYY-MM-DD, default today)")
	flag.Parse()

	now := time.Now().In(utils.InstitutionLocation())
	if asOf != "" {
		date, err := models.ParseDate(asOf)
		if err != nil {
			log.Fatalf("invalid -as-of date: %v", err)
		}
		now = date.Time
	}

	summary, err := services.NewAlertService(config.DB).RunDailyTick(now)
	if err != nil {
		log.Fatalf("alert tick failed: %v", err)
	}

	fmt.Printf("Evaluated %d schedule(s) for %s\n", summary.SchedulesEvaluated, summary.Date)
	fmt.Printf("Alerts sent: %d, deduped: %d, failures: %d\n",
		summary.AlertsSent, summary.AlertsDeduped, summary.Failures)
}
