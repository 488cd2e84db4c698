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

// NoLimit returns every qualifying branch
const NoLimit = -1

var ErrBranchNotFound = errors.New("branch not found")

type RecommendCriteria struct {
	Location       geo.Coordinate
	Specialization entity.SpecializationFilter
	// Limit caps the result. Negative means no cap, zero yields nothing.
	Limit int
}

// BranchRecommendationService ranks branches by distance and the number of
// doctors whose live status is available. Schedules and appointments are not
// consulted.
type BranchRecommendationService struct {
	branchRepo    repository.BranchRepository
	doctorRepo    repository.DoctorRepository
	log           *logrus.Logger
	metrics       *metrics.Collector
	maxWorkers    int
	branchTimeout time.Duration
}

func NewBranchRecommendationService(
	branchRepo repository.BranchRepository,
	doctorRepo repository.DoctorRepository,
	log *logrus.Logger,
	collector *metrics.Collector,
	maxWorkers int,
	branchTimeout time.Duration,
) *BranchRecommendationService {
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	return &BranchRecommendationService{
		branchRepo:    branchRepo,
		doctorRepo:    doctorRepo,
		log:           log,
		metrics:       collector,
		maxWorkers:    maxWorkers,
		branchTimeout: branchTimeout,
	}
}

type recommendationOutcome struct {
	index          int
	recommendation entity.Recommendation
	ok             bool
}

func (s *BranchRecommendationService) Recommend(ctx context.Context, criteria RecommendCriteria) ([]entity.Recommendation, error) {
	if err := geo.Validate(criteria.Location); err != nil {
		return nil, err
	}
	if criteria.Limit == 0 {
		return []entity.Recommendation{}, nil
	}

	branches, err := s.branchRepo.FindAll(ctx)
	if err != nil {
		s.log.Errorf("Failed to list branches: %+v", err)
		return nil, fmt.Errorf("%w: %v", ErrBranchListUnavailable, err)
	}

	p := pool.NewWithResults[recommendationOutcome]().WithMaxGoroutines(s.maxWorkers)
	for i := range branches {
		index, branch := i, branches[i]
		p.Go(func() recommendationOutcome {
			rec, ok := s.evaluateBranch(ctx, branch, criteria)
			return recommendationOutcome{index: index, recommendation: rec, ok: ok}
		})
	}
	outcomes := p.Wait()

	kept := make([]recommendationOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.ok {
			kept = append(kept, o)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		a, b := &kept[i].recommendation, &kept[j].recommendation
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if a.AvailableDoctorCount != b.AvailableDoctorCount {
			return a.AvailableDoctorCount > b.AvailableDoctorCount
		}
		return kept[i].index < kept[j].index
	})

	if criteria.Limit > 0 && len(kept) > criteria.Limit {
		kept = kept[:criteria.Limit]
	}

	recommendations := make([]entity.Recommendation, len(kept))
	for i, o := range kept {
		recommendations[i] = o.recommendation
	}
	return recommendations, nil
}

func (s *BranchRecommendationService) evaluateBranch(ctx context.Context, branch entity.Branch, criteria RecommendCriteria) (entity.Recommendation, bool) {
	distance, ok := branchDistance(s.log, s.metrics, branch, criteria.Location)
	if !ok {
		return entity.Recommendation{}, false
	}

	ctx, cancel := withBranchTimeout(ctx, s.branchTimeout)
	defer cancel()

	available, err := s.availableDoctors(ctx, branch.ID, criteria.Specialization)
	if err != nil {
		s.log.WithField("branch_id", branch.ID).Warnf("Failed to count available doctors, skipping branch: %+v", err)
		s.metrics.BranchSkipped(skipQueryFailed)
		return entity.Recommendation{}, false
	}
	if len(available) == 0 {
		s.metrics.BranchSkipped(skipNoDoctors)
		return entity.Recommendation{}, false
	}

	return entity.Recommendation{
		Branch:               branch,
		DistanceKm:           distance,
		AvailableDoctorCount: len(available),
	}, true
}

// AvailableDoctorsAtBranch lists doctors at a branch matching filter whose
// live status is available
func (s *BranchRecommendationService) AvailableDoctorsAtBranch(ctx context.Context, branchID int, filter entity.SpecializationFilter) ([]entity.Doctor, error) {
	branch, err := s.branchRepo.FindByID(ctx, branchID)
	if err != nil {
		s.log.Warnf("Failed to find branch %d: %+v", branchID, err)
		return nil, err
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}

	doctors, err := s.availableDoctors(ctx, branchID, filter)
	if err != nil {
		s.log.WithField("branch_id", branchID).Warnf("Failed to fetch doctors: %+v", err)
		return nil, err
	}
	return doctors, nil
}

func (s *BranchRecommendationService) availableDoctors(ctx context.Context, branchID int, filter entity.SpecializationFilter) ([]entity.Doctor, error) {
	doctors, err := fetchDoctors(ctx, s.doctorRepo, branchID, filter)
	if err != nil {
		return nil, err
	}

	available := make([]entity.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if d.IsAvailable() {
			available = append(available, d)
		}
	}
	return available, nil
}
