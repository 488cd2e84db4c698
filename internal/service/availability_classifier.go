package service

import (
	"context"
	"time"

	"clinic-finder/internal/domain/entity"
	"clinic-finder/internal/domain/repository"
	"clinic-finder/pkg/metrics"

	"github.com/sirupsen/logrus"
)

// DefaultConflictTolerance is the window either side of a preferred time in
// which an existing appointment counts as a conflict
const DefaultConflictTolerance = 30 * time.Minute

// AvailabilityFacts are the resolved inputs of a classification
type AvailabilityFacts struct {
	Status           entity.DoctorStatus
	SpecMatch        bool
	HasPreferredTime bool
	ScheduleMatch    bool
	Conflict         bool
}

// ClassifyAvailability applies the classification rules in order. Schedule
// and conflict facts are ignored when no preferred time was given.
func ClassifyAvailability(f AvailabilityFacts) entity.Classification {
	if f.Status != entity.DoctorStatusAvailable {
		return entity.ClassificationRed
	}

	if !f.HasPreferredTime {
		if f.SpecMatch {
			return entity.ClassificationGreen
		}
		return entity.ClassificationYellow
	}

	if f.Conflict {
		return entity.ClassificationRed
	}

	switch {
	case f.SpecMatch && f.ScheduleMatch:
		return entity.ClassificationGreen
	case f.SpecMatch || f.ScheduleMatch:
		return entity.ClassificationYellow
	default:
		return entity.ClassificationRed
	}
}

// AvailabilityClassifier resolves the facts for one doctor and classifies them
type AvailabilityClassifier struct {
	appointmentRepo repository.AppointmentRepository
	schedules       *ScheduleEvaluator
	log             *logrus.Logger
	metrics         *metrics.Collector
	policy          FailOpenPolicy
	tolerance       time.Duration
}

func NewAvailabilityClassifier(
	appointmentRepo repository.AppointmentRepository,
	schedules *ScheduleEvaluator,
	log *logrus.Logger,
	collector *metrics.Collector,
	policy FailOpenPolicy,
	tolerance time.Duration,
) *AvailabilityClassifier {
	if tolerance <= 0 {
		tolerance = DefaultConflictTolerance
	}
	return &AvailabilityClassifier{
		appointmentRepo: appointmentRepo,
		schedules:       schedules,
		log:             log,
		metrics:         collector,
		policy:          policy,
		tolerance:       tolerance,
	}
}

// Classify classifies doctor for filter and an optional preferred time. The
// schedule and the appointment store are only consulted for an available
// doctor with a preferred time.
func (c *AvailabilityClassifier) Classify(ctx context.Context, doctor *entity.Doctor, filter entity.SpecializationFilter, preferredAt *time.Time) entity.Classification {
	facts := AvailabilityFacts{
		Status:           doctor.Status,
		SpecMatch:        filter.Matches(doctor.SpecializationIDs()),
		HasPreferredTime: preferredAt != nil,
	}

	if facts.Status == entity.DoctorStatusAvailable && preferredAt != nil {
		facts.Conflict = c.hasConflict(ctx, doctor.ID, *preferredAt)
		if !facts.Conflict {
			facts.ScheduleMatch = c.schedules.IsAvailableAt(c.schedules.ScheduleFor(doctor), *preferredAt)
		}
	}

	classification := ClassifyAvailability(facts)
	c.metrics.Classified(string(classification))
	return classification
}

func (c *AvailabilityClassifier) hasConflict(ctx context.Context, doctorID int, at time.Time) bool {
	conflict, err := c.appointmentRepo.HasConflict(ctx, doctorID, at, c.tolerance)
	if err != nil {
		c.log.WithField("doctor_id", doctorID).Warnf("Failed to check appointment conflict: %+v", err)
		c.metrics.ConflictCheckFailed()
		return !c.policy.ConflictErrorMeansFree
	}
	return conflict
}
