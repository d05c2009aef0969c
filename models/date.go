package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"syllabus-review-api/utils"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day component. Review deadlines
// cross the API boundary as ISO-8601 dates and all day-difference arithmetic
// runs in the institution time zone, so the value is always normalized to
// midnight institution-local time.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in the institution time zone.
func NewDate(t time.Time) Date {
	loc := utils.InstitutionLocation()
	local := t.In(loc)
	return Date{time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)}
}

// MakeDate builds a Date from explicit year/month/day.
func MakeDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, utils.InstitutionLocation())}
}

// ParseDate parses an ISO-8601 calendar date ("2006-01-02").
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), utils.InstitutionLocation())
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected format %s", s, dateLayout)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// AddDays returns the calendar date n days after d.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Time.AddDate(0, 0, n))
}

// DaysUntil returns the number of whole calendar days from d to other.
// Negative when other is in the past. Computed over UTC midnights so DST
// shifts in the institution zone cannot produce off-by-one results.
func (d Date) DaysUntil(other Date) int {
	a := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(other.Year(), other.Month(), other.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

func (d Date) Before(other Date) bool { return d.DaysUntil(other) > 0 }

func (d Date) After(other Date) bool { return d.DaysUntil(other) < 0 }

func (d Date) Equal(other Date) bool { return d.DaysUntil(other) == 0 }

// MarshalJSON serializes as a bare ISO date, never a timestamp.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer so GORM stores a DATE column.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(dateLayout), nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v)
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}
