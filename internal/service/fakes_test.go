package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"clinic-finder/internal/domain/entity"
	"clinic-finder/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

var errStore = errors.New("store unavailable")

// kmPerDegreeLat is one degree of latitude along a meridian at R = 6371 km
const kmPerDegreeLat = 111.19492664455873

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// branchNorthOf places a branch distanceKm due north of (lat, lon)
func branchNorthOf(id int, lat, lon, distanceKm float64) entity.Branch {
	return entity.Branch{
		ID:        id,
		Name:      "Branch",
		Latitude:  floatPtr(lat + distanceKm/kmPerDegreeLat),
		Longitude: floatPtr(lon),
	}
}

func newDoctor(id int, status entity.DoctorStatus, specializationIDs ...int) entity.Doctor {
	d := entity.Doctor{ID: id, FirstName: "Doc", LastName: "Tor", Status: status}
	for _, sid := range specializationIDs {
		d.Specializations = append(d.Specializations, entity.Specialization{ID: sid})
	}
	return d
}

type fakeBranchRepo struct {
	mu       sync.Mutex
	branches []entity.Branch
	err      error
	calls    int
}

func (f *fakeBranchRepo) FindAll(_ context.Context) ([]entity.Branch, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.branches, nil
}

func (f *fakeBranchRepo) FindByID(_ context.Context, id int) (*entity.Branch, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.branches {
		if f.branches[i].ID == id {
			b := f.branches[i]
			return &b, nil
		}
	}
	return nil, nil
}

type fakeDoctorRepo struct {
	mu         sync.Mutex
	byBranch   map[int][]entity.Doctor
	errs       map[int]error
	block      map[int]bool // branches whose query waits for ctx cancellation
	filtered   int
	unfiltered int
}

func (f *fakeDoctorRepo) FindByID(_ context.Context, id int) (*entity.Doctor, error) {
	for _, doctors := range f.byBranch {
		for i := range doctors {
			if doctors[i].ID == id {
				d := doctors[i]
				return &d, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeDoctorRepo) FindByBranch(ctx context.Context, branchID int) ([]entity.Doctor, error) {
	f.mu.Lock()
	f.unfiltered++
	f.mu.Unlock()
	return f.lookup(ctx, branchID, nil)
}

func (f *fakeDoctorRepo) FindByBranchAndSpecializations(ctx context.Context, branchID int, specializationIDs []int) ([]entity.Doctor, error) {
	f.mu.Lock()
	f.filtered++
	f.mu.Unlock()
	return f.lookup(ctx, branchID, specializationIDs)
}

func (f *fakeDoctorRepo) lookup(ctx context.Context, branchID int, specializationIDs []int) ([]entity.Doctor, error) {
	if f.block[branchID] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := f.errs[branchID]; err != nil {
		return nil, err
	}

	var result []entity.Doctor
	for _, d := range f.byBranch[branchID] {
		if len(specializationIDs) == 0 || holdsAny(d, specializationIDs) {
			result = append(result, d)
		}
	}
	return result, nil
}

func holdsAny(d entity.Doctor, ids []int) bool {
	for _, held := range d.SpecializationIDs() {
		for _, id := range ids {
			if held == id {
				return true
			}
		}
	}
	return false
}

type fakeAppointmentRepo struct {
	mu        sync.Mutex
	conflicts map[int]bool
	err       error
	calls     int
	tolerance time.Duration
}

func (f *fakeAppointmentRepo) HasConflict(_ context.Context, doctorID int, _ time.Time, tolerance time.Duration) (bool, error) {
	f.mu.Lock()
	f.calls++
	f.tolerance = tolerance
	f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.conflicts[doctorID], nil
}

func (f *fakeAppointmentRepo) FindByDoctorAndRange(_ context.Context, _ int, _, _ time.Time) ([]entity.Appointment, error) {
	return nil, nil
}

type fakeStatusRepo struct {
	statuses  map[int]entity.DoctorStatus
	updateErr error
	listErr   error
	updates   int
}

func (f *fakeStatusRepo) UpdateStatus(_ context.Context, doctorID int, status entity.DoctorStatus) (int64, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	if _, ok := f.statuses[doctorID]; !ok {
		return 0, nil
	}
	f.statuses[doctorID] = status
	f.updates++
	return 1, nil
}

func (f *fakeStatusRepo) ListStatuses(_ context.Context, afterID int, limit int) ([]repository.DoctorStatusRow, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make([]int, 0, len(f.statuses))
	for id := range f.statuses {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	rows := make([]repository.DoctorStatusRow, len(ids))
	for i, id := range ids {
		rows[i] = repository.DoctorStatusRow{ID: id, Status: f.statuses[id]}
	}
	return rows, nil
}

type fakeStatusCache struct {
	values  map[int]entity.DoctorStatus
	pingErr error
	setErr  error
	batches int
	deleted []int
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{values: map[int]entity.DoctorStatus{}}
}

func (f *fakeStatusCache) SetStatus(_ context.Context, doctorID int, status entity.DoctorStatus) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[doctorID] = status
	return nil
}

func (f *fakeStatusCache) SetStatuses(_ context.Context, statuses map[int]entity.DoctorStatus) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.batches++
	for id, s := range statuses {
		f.values[id] = s
	}
	return nil
}

func (f *fakeStatusCache) DeleteStatus(_ context.Context, doctorID int) error {
	delete(f.values, doctorID)
	f.deleted = append(f.deleted, doctorID)
	return nil
}

func (f *fakeStatusCache) Ping(_ context.Context) error {
	return f.pingErr
}

type fakeAuditRepo struct {
	logs []entity.AuditLog
	err  error
}

func (f *fakeAuditRepo) Create(_ context.Context, log *entity.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeAuditRepo) FindByAction(_ context.Context, action string, limit int) ([]entity.AuditLog, error) {
	var result []entity.AuditLog
	for _, l := range f.logs {
		if l.Action == action {
			result = append(result, l)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
