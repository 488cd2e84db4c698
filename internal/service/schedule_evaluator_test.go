package service

import (
	"errors"
	"testing"
	"time"

	"clinic-finder/internal/domain/entity"
)

// 2024-01-01 is a Monday
func monday(hour, min, sec int) time.Time {
	return time.Date(2024, time.January, 1, hour, min, sec, 0, time.UTC)
}

func TestDefaultFailOpenPolicy(t *testing.T) {
	if !DefaultFailOpenPolicy.EmptyScheduleAvailable {
		t.Error("expected empty schedule to mean available by default")
	}
	if !DefaultFailOpenPolicy.ConflictErrorMeansFree {
		t.Error("expected a failed conflict check to mean no conflict by default")
	}
}

func TestParseSchedule(t *testing.T) {
	slots, err := ParseSchedule(`[
		{"day_of_week":"Monday","start_time":"09:00","end_time":"17:00"},
		{"day_of_week":"saturday","start_time":"08:30","end_time":"12:15:30"}
	]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}

	want := entity.AvailabilitySlot{Day: time.Monday, Start: 9 * time.Hour, End: 17 * time.Hour}
	if slots[0] != want {
		t.Errorf("expected %v, got %v", want, slots[0])
	}
	if slots[1].Day != time.Saturday || slots[1].End != 12*time.Hour+15*time.Minute+30*time.Second {
		t.Errorf("unexpected second slot %+v", slots[1])
	}
}

func TestParseSchedule_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "null", "[]"} {
		slots, err := ParseSchedule(raw)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", raw, err)
		}
		if len(slots) != 0 {
			t.Errorf("%q: expected empty schedule, got %v", raw, slots)
		}
	}
}

func TestParseSchedule_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "Mon 9-5"},
		{"object instead of array", `{"day_of_week":"Monday"}`},
		{"unknown day", `[{"day_of_week":"Funday","start_time":"09:00","end_time":"17:00"}]`},
		{"bad start", `[{"day_of_week":"Monday","start_time":"9am","end_time":"17:00"}]`},
		{"hour out of range", `[{"day_of_week":"Monday","start_time":"09:00","end_time":"25:00"}]`},
		{"missing end", `[{"day_of_week":"Monday","start_time":"09:00"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchedule(tt.raw)
			if !errors.Is(err, ErrScheduleParse) {
				t.Fatalf("expected ErrScheduleParse, got %v", err)
			}
		})
	}
}

func TestIsAvailableAt_InclusiveBoundaries(t *testing.T) {
	e := NewScheduleEvaluator(quietLogger(), nil, DefaultFailOpenPolicy)
	slots := []entity.AvailabilitySlot{{Day: time.Monday, Start: 9 * time.Hour, End: 17 * time.Hour}}

	tests := []struct {
		name     string
		at       time.Time
		expected bool
	}{
		{"monday 09:00", monday(9, 0, 0), true},
		{"monday 12:30", monday(12, 30, 0), true},
		{"monday 17:00", monday(17, 0, 0), true},
		{"monday 08:59", monday(8, 59, 0), false},
		{"monday 17:01", monday(17, 1, 0), false},
		{"monday 17:00:30", monday(17, 0, 30), false},
		{"tuesday 10:00", monday(10, 0, 0).AddDate(0, 0, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.IsAvailableAt(slots, tt.at); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestIsAvailableAt_EmptyScheduleFollowsPolicy(t *testing.T) {
	open := NewScheduleEvaluator(quietLogger(), nil, DefaultFailOpenPolicy)
	closed := NewScheduleEvaluator(quietLogger(), nil, FailOpenPolicy{})

	for _, at := range []time.Time{monday(0, 0, 0), monday(3, 17, 0), monday(23, 59, 59).AddDate(0, 0, 5)} {
		if !open.IsAvailableAt(nil, at) {
			t.Errorf("expected available at %v with default policy", at)
		}
		if closed.IsAvailableAt(nil, at) {
			t.Errorf("expected unavailable at %v with closed policy", at)
		}
	}
}

func TestSlotsForDate(t *testing.T) {
	e := NewScheduleEvaluator(quietLogger(), nil, DefaultFailOpenPolicy)
	slots := []entity.AvailabilitySlot{
		{Day: time.Monday, Start: 9 * time.Hour, End: 12 * time.Hour},
		{Day: time.Tuesday, Start: 9 * time.Hour, End: 17 * time.Hour},
		{Day: time.Monday, Start: 13 * time.Hour, End: 17 * time.Hour},
	}

	got := e.SlotsForDate(slots, monday(0, 0, 0))
	if len(got) != 2 || got[0].Start != 9*time.Hour || got[1].Start != 13*time.Hour {
		t.Errorf("unexpected monday slots %v", got)
	}
	if got := e.SlotsForDate(slots, monday(0, 0, 0).AddDate(0, 0, 3)); len(got) != 0 {
		t.Errorf("expected no thursday slots, got %v", got)
	}
}

func TestScheduleFor_UnparseableFallsBackToEmpty(t *testing.T) {
	e := NewScheduleEvaluator(quietLogger(), nil, DefaultFailOpenPolicy)
	doctor := newDoctor(1, entity.DoctorStatusAvailable)
	doctor.AvailabilityRanges = strPtr("not a schedule")

	slots := e.ScheduleFor(&doctor)
	if len(slots) != 0 {
		t.Fatalf("expected empty schedule, got %v", slots)
	}
	if !e.IsAvailableAt(slots, monday(3, 0, 0)) {
		t.Error("expected unparseable schedule to read as available")
	}
}

func TestScheduleFor_NoSchedule(t *testing.T) {
	e := NewScheduleEvaluator(quietLogger(), nil, DefaultFailOpenPolicy)
	doctor := newDoctor(1, entity.DoctorStatusAvailable)

	if slots := e.ScheduleFor(&doctor); len(slots) != 0 {
		t.Errorf("expected empty schedule, got %v", slots)
	}
}
