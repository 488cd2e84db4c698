package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"clinic-finder/internal/domain/entity"
	"clinic-finder/pkg/geo"
)

var origin = geo.Coordinate{Latitude: 0, Longitude: 0}

func newTestSearchService(branches *fakeBranchRepo, doctors *fakeDoctorRepo, appointments *fakeAppointmentRepo) *BranchSearchService {
	if appointments == nil {
		appointments = &fakeAppointmentRepo{}
	}
	classifier := newTestClassifier(appointments, DefaultFailOpenPolicy)
	return NewBranchSearchService(branches, doctors, classifier, quietLogger(), nil, 4, time.Second)
}

func branchIDs(candidates []entity.BranchCandidate) []int {
	ids := make([]int, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Branch.ID
	}
	return ids
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSearch_RanksByDistanceThenGreenCount(t *testing.T) {
	branches := &fakeBranchRepo{branches: []entity.Branch{
		branchNorthOf(1, 0, 0, 5),
		branchNorthOf(2, 0, 0, 5),
		branchNorthOf(3, 0, 0, 2),
	}}
	doctors := &fakeDoctorRepo{byBranch: map[int][]entity.Doctor{
		1: {newDoctor(10, entity.DoctorStatusAvailable, 1), newDoctor(11, entity.DoctorStatusBusy, 1)},
		2: {
			newDoctor(20, entity.DoctorStatusAvailable, 1),
			newDoctor(21, entity.DoctorStatusAvailable, 1),
			newDoctor(22, entity.DoctorStatusAvailable, 1),
		},
		3: {newDoctor(30, entity.DoctorStatusOffDuty, 1)},
	}}

	svc := newTestSearchService(branches, doctors, nil)
	got, err := svc.Search(context.Background(), SearchCriteria{
		Location:       origin,
		Specialization: 1,
		MaxResults:     10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ids := branchIDs(got); !equalInts(ids, []int{3, 2, 1}) {
		t.Fatalf("expected order [3 2 1], got %v", ids)
	}
	if greens := []int{got[0].GreenCount(), got[1].GreenCount(), got[2].GreenCount()}; !equalInts(greens, []int{0, 3, 1}) {
		t.Errorf("unexpected green counts %v", greens)
	}
	if math.Abs(got[0].DistanceKm-2) > 1e-6 {
		t.Errorf("expected 2km, got %v", got[0].DistanceKm)
	}
}

func TestSearch_FullTieKeepsStoreOrder(t *testing.T) {
	var list []entity.Branch
	byBranch := map[int][]entity.Doctor{}
	for id := 1; id <= 6; id++ {
		list = append(list, branchNorthOf(id, 0, 0, 4))
		byBranch[id] = []entity.Doctor{newDoctor(id*10, entity.DoctorStatusAvailable)}
	}

	svc := newTestSearchService(&fakeBranchRepo{branches: list}, &fakeDoctorRepo{byBranch: byBranch}, nil)
	for i := 0; i < 5; i++ {
		got, err := svc.Search(context.Background(), SearchCriteria{Location: origin, MaxResults: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ids := branchIDs(got); !equalInts(ids, []int{1, 2, 3, 4, 5, 6}) {
			t.Fatalf("expected store order, got %v", ids)
		}
	}
}

func TestSearch_Capping(t *testing.T) {
	var list []entity.Branch
	byBranch := map[int][]entity.Doctor{}
	for id := 1; id <= 5; id++ {
		list = append(list, branchNorthOf(id, 0, 0, float64(10-id)))
		byBranch[id] = []entity.Doctor{newDoctor(id*10, entity.DoctorStatusAvailable)}
	}
	branches := &fakeBranchRepo{branches: list}
	svc := newTestSearchService(branches, &fakeDoctorRepo{byBranch: byBranch}, nil)

	got, err := svc.Search(context.Background(), SearchCriteria{Location: origin, MaxResults: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := branchIDs(got); !equalInts(ids, []int{5, 4}) {
		t.Errorf("expected the two nearest branches [5 4], got %v", ids)
	}

	calls := branches.calls
	for _, limit := range []int{0, -3} {
		got, err := svc.Search(context.Background(), SearchCriteria{Location: origin, MaxResults: limit})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("max results %d: expected empty non-nil list, got %v", limit, got)
		}
	}
	if branches.calls != calls {
		t.Errorf("expected no store access when nothing is requested")
	}
}

func TestSearch_Exclusions(t *testing.T) {
	noCoordinate := entity.Branch{ID: 1, Name: "Nowhere"}
	halfCoordinate := entity.Branch{ID: 2, Latitude: floatPtr(1)}
	badCoordinate := entity.Branch{ID: 3, Latitude: floatPtr(95), Longitude: floatPtr(0)}

	branches := &fakeBranchRepo{branches: []entity.Branch{
		noCoordinate,
		halfCoordinate,
		badCoordinate,
		branchNorthOf(4, 0, 0, 1), // no doctors
		branchNorthOf(5, 0, 0, 2), // only other specialization
		branchNorthOf(6, 0, 0, 3), // doctor query fails
		branchNorthOf(7, 0, 0, 4),
	}}
	doctor := newDoctor(99, entity.DoctorStatusAvailable, 3)
	doctors := &fakeDoctorRepo{
		byBranch: map[int][]entity.Doctor{
			1: {doctor},
			2: {doctor},
			3: {doctor},
			5: {newDoctor(50, entity.DoctorStatusAvailable, 8)},
			6: {doctor},
			7: {doctor},
		},
		errs: map[int]error{6: errStore},
	}

	svc := newTestSearchService(branches, doctors, nil)
	got, err := svc.Search(context.Background(), SearchCriteria{Location: origin, Specialization: 3, MaxResults: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := branchIDs(got); !equalInts(ids, []int{7}) {
		t.Errorf("expected only branch 7, got %v", ids)
	}
	if doctors.unfiltered != 0 {
		t.Errorf("expected filtered doctor queries for a specific specialization")
	}
}

func TestSearch_AnySpecializationUsesUnfilteredQuery(t *testing.T) {
	branches := &fakeBranchRepo{branches: []entity.Branch{branchNorthOf(1, 0, 0, 1)}}
	doctors := &fakeDoctorRepo{byBranch: map[int][]entity.Doctor{
		1: {newDoctor(1, entity.DoctorStatusAvailable, 2), newDoctor(2, entity.DoctorStatusAvailable, 5)},
	}}

	svc := newTestSearchService(branches, doctors, nil)
	got, err := svc.Search(context.Background(), SearchCriteria{Location: origin, Specialization: entity.AnySpecialization, MaxResults: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || len(got[0].Doctors) != 2 || got[0].GreenCount() != 2 {
		t.Fatalf("expected one branch with two GREEN doctors, got %+v", got)
	}
	if doctors.filtered != 0 || doctors.unfiltered != 1 {
		t.Errorf("expected one unfiltered query, got filtered=%d unfiltered=%d", doctors.filtered, doctors.unfiltered)
	}
}

func TestSearch_InvalidLocation(t *testing.T) {
	branches := &fakeBranchRepo{}
	svc := newTestSearchService(branches, &fakeDoctorRepo{}, nil)

	_, err := svc.Search(context.Background(), SearchCriteria{
		Location:   geo.Coordinate{Latitude: 91, Longitude: 0},
		MaxResults: 5,
	})
	if !errors.Is(err, geo.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if branches.calls != 0 {
		t.Error("expected validation before any store access")
	}
}

func TestSearch_BranchListFailure(t *testing.T) {
	svc := newTestSearchService(&fakeBranchRepo{err: errStore}, &fakeDoctorRepo{}, nil)

	_, err := svc.Search(context.Background(), SearchCriteria{Location: origin, MaxResults: 5})
	if !errors.Is(err, ErrBranchListUnavailable) {
		t.Fatalf("expected ErrBranchListUnavailable, got %v", err)
	}
}

func TestSearch_SlowBranchIsSkipped(t *testing.T) {
	branches := &fakeBranchRepo{branches: []entity.Branch{
		branchNorthOf(1, 0, 0, 1),
		branchNorthOf(2, 0, 0, 2),
	}}
	doctors := &fakeDoctorRepo{
		byBranch: map[int][]entity.Doctor{2: {newDoctor(20, entity.DoctorStatusAvailable)}},
		block:    map[int]bool{1: true},
	}
	classifier := newTestClassifier(&fakeAppointmentRepo{}, DefaultFailOpenPolicy)
	svc := NewBranchSearchService(branches, doctors, classifier, quietLogger(), nil, 2, 20*time.Millisecond)

	got, err := svc.Search(context.Background(), SearchCriteria{Location: origin, MaxResults: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := branchIDs(got); !equalInts(ids, []int{2}) {
		t.Errorf("expected only branch 2, got %v", ids)
	}
}

func TestSearch_PreferredTimeWithConflicts(t *testing.T) {
	schedule := strPtr(`[{"day_of_week":"Monday","start_time":"09:00","end_time":"17:00"}]`)
	free := newDoctor(1, entity.DoctorStatusAvailable, 3)
	free.AvailabilityRanges = schedule
	booked := newDoctor(2, entity.DoctorStatusAvailable, 3)
	booked.AvailabilityRanges = schedule

	branches := &fakeBranchRepo{branches: []entity.Branch{branchNorthOf(1, 0, 0, 1)}}
	doctors := &fakeDoctorRepo{byBranch: map[int][]entity.Doctor{1: {free, booked}}}
	appointments := &fakeAppointmentRepo{conflicts: map[int]bool{2: true}}

	svc := newTestSearchService(branches, doctors, appointments)
	got, err := svc.Search(context.Background(), SearchCriteria{
		Location:       origin,
		Specialization: 3,
		PreferredAt:    timePtr(monday(10, 0, 0)),
		MaxResults:     5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || len(got[0].Doctors) != 2 {
		t.Fatalf("unexpected result %+v", got)
	}
	if c := got[0].Doctors[0].Classification; c != entity.ClassificationGreen {
		t.Errorf("expected free doctor GREEN, got %s", c)
	}
	if c := got[0].Doctors[1].Classification; c != entity.ClassificationRed {
		t.Errorf("expected booked doctor RED, got %s", c)
	}
}

func TestSearch_ManilaCardiology(t *testing.T) {
	const cardiology = 3
	patient := geo.Coordinate{Latitude: 14.60, Longitude: 121.00}

	branchA := branchNorthOf(1, patient.Latitude, patient.Longitude, 3)
	branchA.Name = "Branch A"
	branchB := branchNorthOf(2, patient.Latitude, patient.Longitude, 1)
	branchB.Name = "Branch B"

	branches := &fakeBranchRepo{branches: []entity.Branch{branchA, branchB}}
	doctors := &fakeDoctorRepo{byBranch: map[int][]entity.Doctor{
		1: {newDoctor(100, entity.DoctorStatusAvailable, cardiology)},
		2: {newDoctor(200, entity.DoctorStatusBusy, cardiology)},
	}}

	svc := newTestSearchService(branches, doctors, nil)
	got, err := svc.Search(context.Background(), SearchCriteria{
		Location:       patient,
		Specialization: cardiology,
		MaxResults:     5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}

	first, second := got[0], got[1]
	if first.Branch.Name != "Branch B" || math.Abs(first.DistanceKm-1) > 1e-6 {
		t.Errorf("expected Branch B at 1km first, got %s at %v", first.Branch.Name, first.DistanceKm)
	}
	if len(first.Doctors) != 1 || first.Doctors[0].Classification != entity.ClassificationRed {
		t.Errorf("expected Branch B doctor RED, got %+v", first.Doctors)
	}
	if second.Branch.Name != "Branch A" || math.Abs(second.DistanceKm-3) > 1e-6 {
		t.Errorf("expected Branch A at 3km second, got %s at %v", second.Branch.Name, second.DistanceKm)
	}
	if len(second.Doctors) != 1 || second.Doctors[0].Classification != entity.ClassificationGreen {
		t.Errorf("expected Branch A doctor GREEN, got %+v", second.Doctors)
	}
}
