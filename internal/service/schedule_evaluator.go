package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-finder/internal/domain/entity"
	"clinic-finder/pkg/metrics"

	"github.com/sirupsen/logrus"
)

var ErrScheduleParse = errors.New("invalid availability schedule")

// FailOpenPolicy names the permissive defaults applied when availability data
// is missing or a lookup fails.
type FailOpenPolicy struct {
	// EmptyScheduleAvailable treats a doctor with no schedule as always available
	EmptyScheduleAvailable bool
	// ConflictErrorMeansFree treats a failed appointment conflict check as no conflict
	ConflictErrorMeansFree bool
}

var DefaultFailOpenPolicy = FailOpenPolicy{
	EmptyScheduleAvailable: true,
	ConflictErrorMeansFree: true,
}

// scheduleEntry is the stored form of one weekly slot
type scheduleEntry struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ScheduleEvaluator answers whether a doctor's weekly schedule covers an instant
type ScheduleEvaluator struct {
	log     *logrus.Logger
	metrics *metrics.Collector
	policy  FailOpenPolicy
}

func NewScheduleEvaluator(log *logrus.Logger, collector *metrics.Collector, policy FailOpenPolicy) *ScheduleEvaluator {
	return &ScheduleEvaluator{
		log:     log,
		metrics: collector,
		policy:  policy,
	}
}

// ParseSchedule decodes a stored weekly schedule. Blank input is an empty schedule.
func ParseSchedule(raw string) ([]entity.AvailabilitySlot, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	var entries []scheduleEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduleParse, err)
	}

	slots := make([]entity.AvailabilitySlot, 0, len(entries))
	for i, e := range entries {
		day, ok := weekdays[strings.ToLower(strings.TrimSpace(e.DayOfWeek))]
		if !ok {
			return nil, fmt.Errorf("%w: entry %d: unknown day %q", ErrScheduleParse, i, e.DayOfWeek)
		}
		start, err := parseClock(e.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: start_time: %v", ErrScheduleParse, i, err)
		}
		end, err := parseClock(e.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: end_time: %v", ErrScheduleParse, i, err)
		}
		slots = append(slots, entity.AvailabilitySlot{Day: day, Start: start, End: end})
	}

	return slots, nil
}

// parseClock reads "HH:MM" or "HH:MM:SS" on a 24 hour clock
func parseClock(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	layout := "15:04"
	if strings.Count(value, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return 0, fmt.Errorf("bad time %q", value)
	}
	return entity.TimeOfDay(t), nil
}

// IsAvailableAt reports whether some slot covers instant. An empty schedule
// follows the policy.
func (e *ScheduleEvaluator) IsAvailableAt(slots []entity.AvailabilitySlot, instant time.Time) bool {
	if len(slots) == 0 {
		return e.policy.EmptyScheduleAvailable
	}
	for _, s := range slots {
		if s.Contains(instant) {
			return true
		}
	}
	return false
}

// SlotsForDate returns the slots falling on date's weekday
func (e *ScheduleEvaluator) SlotsForDate(slots []entity.AvailabilitySlot, date time.Time) []entity.AvailabilitySlot {
	day := date.Weekday()
	result := make([]entity.AvailabilitySlot, 0, len(slots))
	for _, s := range slots {
		if s.Day == day {
			result = append(result, s)
		}
	}
	return result
}

// ScheduleFor returns the doctor's parsed schedule, or an empty one if it
// cannot be parsed.
func (e *ScheduleEvaluator) ScheduleFor(doctor *entity.Doctor) []entity.AvailabilitySlot {
	slots, err := ParseSchedule(doctor.Schedule())
	if err != nil {
		e.log.WithField("doctor_id", doctor.ID).Warnf("Failed to parse availability schedule, treating as empty: %+v", err)
		e.metrics.ScheduleParseFailed()
		return nil
	}
	return slots
}
