package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-finder/config"
	"clinic-finder/internal/converter"
	"clinic-finder/internal/delivery/dto"
	"clinic-finder/internal/domain/entity"
	"clinic-finder/internal/service"
	"clinic-finder/pkg/geo"
	"clinic-finder/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidPreferredAt = errors.New("invalid preferred_at format, use RFC3339 or YYYY-MM-DDTHH:MM")
)

const (
	searchKindFull      = "search"
	searchKindRecommend = "recommend"

	preferredAtLocalLayout = "2006-01-02T15:04"
)

type BranchSearchUsecase interface {
	SearchBranches(ctx context.Context, req *dto.BranchSearchRequest) (*dto.BranchSearchResponse, error)
	RecommendBranches(ctx context.Context, req *dto.BranchRecommendationRequest) (*dto.RecommendationListResponse, error)
	GetAvailableDoctors(ctx context.Context, branchID int, specializationID int) (*dto.DoctorListResponse, error)
}

type branchSearchUsecase struct {
	log            *logrus.Logger
	metrics        *metrics.Collector
	searchService  *service.BranchSearchService
	recommendation *service.BranchRecommendationService
	cfg            config.SearchConfig
}

func NewBranchSearchUsecase(
	log *logrus.Logger,
	collector *metrics.Collector,
	searchService *service.BranchSearchService,
	recommendation *service.BranchRecommendationService,
	cfg config.SearchConfig,
) BranchSearchUsecase {
	return &branchSearchUsecase{
		log:            log,
		metrics:        collector,
		searchService:  searchService,
		recommendation: recommendation,
		cfg:            cfg,
	}
}

func (u *branchSearchUsecase) SearchBranches(ctx context.Context, req *dto.BranchSearchRequest) (*dto.BranchSearchResponse, error) {
	location, err := geo.NewCoordinate(*req.Latitude, *req.Longitude)
	if err != nil {
		return nil, err
	}

	preferredAt, err := ParsePreferredAt(req.PreferredAt)
	if err != nil {
		return nil, err
	}

	maxResults := u.cfg.DefaultMaxResults
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
	}

	searchID := uuid.New().String()
	ctx, cancel := u.withSearchTimeout(ctx)
	defer cancel()

	start := time.Now()
	candidates, err := u.searchService.Search(ctx, service.SearchCriteria{
		Location:       location,
		Specialization: entity.SpecializationFilter(req.SpecializationID),
		PreferredAt:    preferredAt,
		MaxResults:     maxResults,
	})
	if err != nil {
		u.metrics.ObserveSearch(searchKindFull, "error", time.Since(start))
		u.log.WithField("search_id", searchID).Warnf("Failed to search branches: %+v", err)
		return nil, err
	}
	u.metrics.ObserveSearch(searchKindFull, "ok", time.Since(start))

	u.log.WithFields(logrus.Fields{
		"search_id":         searchID,
		"specialization_id": req.SpecializationID,
		"results":           len(candidates),
		"elapsed":           time.Since(start),
	}).Debug("Branch search completed")

	return &dto.BranchSearchResponse{
		SearchID: searchID,
		Results:  converter.BranchCandidatesToResponses(candidates),
		Total:    len(candidates),
	}, nil
}

func (u *branchSearchUsecase) RecommendBranches(ctx context.Context, req *dto.BranchRecommendationRequest) (*dto.RecommendationListResponse, error) {
	location, err := geo.NewCoordinate(*req.Latitude, *req.Longitude)
	if err != nil {
		return nil, err
	}

	limit := service.NoLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	searchID := uuid.New().String()
	ctx, cancel := u.withSearchTimeout(ctx)
	defer cancel()

	start := time.Now()
	recs, err := u.recommendation.Recommend(ctx, service.RecommendCriteria{
		Location:       location,
		Specialization: entity.SpecializationFilter(req.SpecializationID),
		Limit:          limit,
	})
	if err != nil {
		u.metrics.ObserveSearch(searchKindRecommend, "error", time.Since(start))
		u.log.WithField("search_id", searchID).Warnf("Failed to recommend branches: %+v", err)
		return nil, err
	}
	u.metrics.ObserveSearch(searchKindRecommend, "ok", time.Since(start))

	return &dto.RecommendationListResponse{
		SearchID: searchID,
		Results:  converter.RecommendationsToResponses(recs),
		Total:    len(recs),
	}, nil
}

func (u *branchSearchUsecase) GetAvailableDoctors(ctx context.Context, branchID int, specializationID int) (*dto.DoctorListResponse, error) {
	doctors, err := u.recommendation.AvailableDoctorsAtBranch(ctx, branchID, entity.SpecializationFilter(specializationID))
	if err != nil {
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *branchSearchUsecase) withSearchTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.cfg.Timeout)
}

// ParsePreferredAt accepts RFC3339 or a local "YYYY-MM-DDTHH:MM". Empty means
// no preferred time.
func ParsePreferredAt(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(preferredAtLocalLayout, value, time.Local)
	if err != nil {
		return nil, ErrInvalidPreferredAt
	}
	return &t, nil
}
