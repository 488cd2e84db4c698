package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"clinic-finder/internal/domain/entity"
	"clinic-finder/internal/domain/repository"
	"clinic-finder/pkg/geo"
	"clinic-finder/pkg/metrics"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

var ErrBranchListUnavailable = errors.New("branch list unavailable")

const (
	defaultMaxWorkers = 8

	skipNoCoordinate = "no_coordinate"
	skipNoDoctors    = "no_doctors"
	skipQueryFailed  = "query_failed"
)

// SearchCriteria describes one branch search
type SearchCriteria struct {
	Location       geo.Coordinate
	Specialization entity.SpecializationFilter
	PreferredAt    *time.Time
	MaxResults     int
}

type BranchSearchService struct {
	branchRepo    repository.BranchRepository
	doctorRepo    repository.DoctorRepository
	classifier    *AvailabilityClassifier
	log           *logrus.Logger
	metrics       *metrics.Collector
	maxWorkers    int
	branchTimeout time.Duration
}

func NewBranchSearchService(
	branchRepo repository.BranchRepository,
	doctorRepo repository.DoctorRepository,
	classifier *AvailabilityClassifier,
	log *logrus.Logger,
	collector *metrics.Collector,
	maxWorkers int,
	branchTimeout time.Duration,
) *BranchSearchService {
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	return &BranchSearchService{
		branchRepo:    branchRepo,
		doctorRepo:    doctorRepo,
		classifier:    classifier,
		log:           log,
		metrics:       collector,
		maxWorkers:    maxWorkers,
		branchTimeout: branchTimeout,
	}
}

// branchOutcome is the result of processing one branch. Skipped branches
// have ok == false.
type branchOutcome struct {
	index     int
	candidate entity.BranchCandidate
	ok        bool
}

// Search ranks branches that have at least one doctor matching the
// specialization filter. Branches are ordered by distance, then by the number
// of GREEN doctors, then by their order in the branch store.
func (s *BranchSearchService) Search(ctx context.Context, criteria SearchCriteria) ([]entity.BranchCandidate, error) {
	if err := geo.Validate(criteria.Location); err != nil {
		return nil, err
	}
	if criteria.MaxResults <= 0 {
		return []entity.BranchCandidate{}, nil
	}

	branches, err := s.branchRepo.FindAll(ctx)
	if err != nil {
		s.log.Errorf("Failed to list branches: %+v", err)
		return nil, fmt.Errorf("%w: %v", ErrBranchListUnavailable, err)
	}

	p := pool.NewWithResults[branchOutcome]().WithMaxGoroutines(s.maxWorkers)
	for i := range branches {
		index, branch := i, branches[i]
		p.Go(func() branchOutcome {
			candidate, ok := s.evaluateBranch(ctx, branch, criteria)
			return branchOutcome{index: index, candidate: candidate, ok: ok}
		})
	}
	outcomes := p.Wait()

	kept := make([]branchOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.ok {
			kept = append(kept, o)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		a, b := &kept[i], &kept[j]
		if a.candidate.DistanceKm != b.candidate.DistanceKm {
			return a.candidate.DistanceKm < b.candidate.DistanceKm
		}
		if ga, gb := a.candidate.GreenCount(), b.candidate.GreenCount(); ga != gb {
			return ga > gb
		}
		return a.index < b.index
	})

	if len(kept) > criteria.MaxResults {
		kept = kept[:criteria.MaxResults]
	}

	candidates := make([]entity.BranchCandidate, len(kept))
	for i, o := range kept {
		candidates[i] = o.candidate
	}
	return candidates, nil
}

func (s *BranchSearchService) evaluateBranch(ctx context.Context, branch entity.Branch, criteria SearchCriteria) (entity.BranchCandidate, bool) {
	distance, ok := branchDistance(s.log, s.metrics, branch, criteria.Location)
	if !ok {
		return entity.BranchCandidate{}, false
	}

	ctx, cancel := withBranchTimeout(ctx, s.branchTimeout)
	defer cancel()

	doctors, err := fetchDoctors(ctx, s.doctorRepo, branch.ID, criteria.Specialization)
	if err != nil {
		s.log.WithField("branch_id", branch.ID).Warnf("Failed to fetch doctors, skipping branch: %+v", err)
		s.metrics.BranchSkipped(skipQueryFailed)
		return entity.BranchCandidate{}, false
	}
	if len(doctors) == 0 {
		s.metrics.BranchSkipped(skipNoDoctors)
		return entity.BranchCandidate{}, false
	}

	classified := make([]entity.DoctorAvailability, len(doctors))
	for i := range doctors {
		classified[i] = entity.DoctorAvailability{
			Doctor:         doctors[i],
			Classification: s.classifier.Classify(ctx, &doctors[i], criteria.Specialization, criteria.PreferredAt),
		}
	}

	return entity.BranchCandidate{
		Branch:     branch,
		DistanceKm: distance,
		Doctors:    classified,
	}, true
}

// branchDistance returns the distance to a branch with a valid coordinate
func branchDistance(log *logrus.Logger, collector *metrics.Collector, branch entity.Branch, from geo.Coordinate) (float64, bool) {
	to, ok := branch.Coordinate()
	if !ok {
		collector.BranchSkipped(skipNoCoordinate)
		return 0, false
	}
	if err := geo.Validate(to); err != nil {
		log.WithField("branch_id", branch.ID).Warnf("Skipping branch with invalid coordinate: %+v", err)
		collector.BranchSkipped(skipNoCoordinate)
		return 0, false
	}
	return geo.DistanceKm(from, to), true
}

// fetchDoctors reads the doctors at a branch, narrowed to one specialization
// unless the filter accepts any.
func fetchDoctors(ctx context.Context, repo repository.DoctorRepository, branchID int, filter entity.SpecializationFilter) ([]entity.Doctor, error) {
	if filter.IsAny() {
		return repo.FindByBranch(ctx, branchID)
	}
	return repo.FindByBranchAndSpecializations(ctx, branchID, []int{filter.ID()})
}

func withBranchTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
