package repository

import (
	"context"
	"errors"
	"testing"

	"clinic-finder/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

type fakeDoctorRepo struct {
	doctors []entity.Doctor
	err     error
}

func (f *fakeDoctorRepo) FindByID(_ context.Context, id int) (*entity.Doctor, error) {
	for _, d := range f.doctors {
		if d.ID == id {
			d := d
			return &d, nil
		}
	}
	return nil, f.err
}

func (f *fakeDoctorRepo) FindByBranch(_ context.Context, _ int) ([]entity.Doctor, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.Doctor, len(f.doctors))
	copy(out, f.doctors)
	return out, nil
}

func (f *fakeDoctorRepo) FindByBranchAndSpecializations(ctx context.Context, branchID int, _ []int) ([]entity.Doctor, error) {
	return f.FindByBranch(ctx, branchID)
}

type fakeStatusSource struct {
	statuses map[int]entity.DoctorStatus
	err      error
	calls    int
}

func (f *fakeStatusSource) GetStatuses(_ context.Context, _ []int) (map[int]entity.DoctorStatus, error) {
	f.calls++
	return f.statuses, f.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestLiveStatus_OverlaysCachedStatuses(t *testing.T) {
	base := &fakeDoctorRepo{doctors: []entity.Doctor{
		{ID: 1, Status: entity.DoctorStatusAvailable},
		{ID: 2, Status: entity.DoctorStatusAvailable},
	}}
	source := &fakeStatusSource{statuses: map[int]entity.DoctorStatus{2: entity.DoctorStatusBusy}}
	repo := NewLiveStatusDoctorRepository(base, source, quietLogger())

	doctors, err := repo.FindByBranch(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doctors[0].Status != entity.DoctorStatusAvailable {
		t.Errorf("doctor 1: expected stored status, got %s", doctors[0].Status)
	}
	if doctors[1].Status != entity.DoctorStatusBusy {
		t.Errorf("doctor 2: expected live status busy, got %s", doctors[1].Status)
	}
	if base.doctors[1].Status != entity.DoctorStatusAvailable {
		t.Error("overlay must not mutate the underlying snapshot")
	}
}

func TestLiveStatus_SourceFailureKeepsStoredStatuses(t *testing.T) {
	base := &fakeDoctorRepo{doctors: []entity.Doctor{{ID: 1, Status: entity.DoctorStatusOffDuty}}}
	source := &fakeStatusSource{err: errors.New("redis down")}
	repo := NewLiveStatusDoctorRepository(base, source, quietLogger())

	doctors, err := repo.FindByBranchAndSpecializations(context.Background(), 10, []int{3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doctors) != 1 || doctors[0].Status != entity.DoctorStatusOffDuty {
		t.Errorf("expected stored status off_duty, got %+v", doctors)
	}
}

func TestLiveStatus_EmptyResultSkipsSource(t *testing.T) {
	source := &fakeStatusSource{}
	repo := NewLiveStatusDoctorRepository(&fakeDoctorRepo{}, source, quietLogger())

	if _, err := repo.FindByBranch(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.calls != 0 {
		t.Errorf("expected no status lookups, got %d", source.calls)
	}
}

func TestLiveStatus_BaseErrorPropagates(t *testing.T) {
	base := &fakeDoctorRepo{err: errors.New("db down")}
	repo := NewLiveStatusDoctorRepository(base, &fakeStatusSource{}, quietLogger())

	if _, err := repo.FindByBranch(context.Background(), 1); err == nil {
		t.Fatal("expected error from base repository")
	}
}

func TestLiveStatus_FindByID(t *testing.T) {
	base := &fakeDoctorRepo{doctors: []entity.Doctor{{ID: 7, Status: entity.DoctorStatusAvailable}}}
	source := &fakeStatusSource{statuses: map[int]entity.DoctorStatus{7: entity.DoctorStatusOffDuty}}
	repo := NewLiveStatusDoctorRepository(base, source, quietLogger())

	doctor, err := repo.FindByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doctor.Status != entity.DoctorStatusOffDuty {
		t.Errorf("expected off_duty, got %s", doctor.Status)
	}

	missing, err := repo.FindByID(context.Background(), 99)
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing doctor, got %v, %v", missing, err)
	}
}

func TestNormalizeDoctorStatus(t *testing.T) {
	tests := map[entity.DoctorStatus]entity.DoctorStatus{
		"":            entity.DoctorStatusAvailable,
		"Available":   entity.DoctorStatusAvailable,
		"unavailable": entity.DoctorStatusOffDuty,
		"busy":        entity.DoctorStatusBusy,
		"on_leave":    entity.DoctorStatusOffDuty,
	}
	for in, expected := range tests {
		d := entity.Doctor{Status: in}
		normalizeDoctorStatus(&d)
		if d.Status != expected {
			t.Errorf("%q: expected %s, got %s", in, expected, d.Status)
		}
	}
}
