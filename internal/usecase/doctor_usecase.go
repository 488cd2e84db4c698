package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-finder/internal/converter"
	"clinic-finder/internal/delivery/dto"
	"clinic-finder/internal/domain/entity"
	"clinic-finder/internal/domain/repository"
	"clinic-finder/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrInvalidDate    = errors.New("invalid date format, use YYYY-MM-DD")
)

type DoctorUsecase interface {
	GetDoctorSlots(ctx context.Context, doctorID int, date string) (*dto.DoctorSlotsResponse, error)
	UpdateDoctorStatus(ctx context.Context, actorID *uuid.UUID, doctorID int, req *dto.UpdateDoctorStatusRequest) (*dto.DoctorResponse, error)
}

type doctorUsecase struct {
	log        *logrus.Logger
	doctorRepo repository.DoctorRepository
	schedules  *service.ScheduleEvaluator
	statuses   *service.DoctorStatusService
}

func NewDoctorUsecase(
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	schedules *service.ScheduleEvaluator,
	statuses *service.DoctorStatusService,
) DoctorUsecase {
	return &doctorUsecase{
		log:        log,
		doctorRepo: doctorRepo,
		schedules:  schedules,
		statuses:   statuses,
	}
}

func (u *doctorUsecase) GetDoctorSlots(ctx context.Context, doctorID int, date string) (*dto.DoctorSlotsResponse, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	doctor, err := u.doctorRepo.FindByID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	slots := u.schedules.SlotsForDate(u.schedules.ScheduleFor(doctor), day)

	return &dto.DoctorSlotsResponse{
		DoctorID: doctor.ID,
		Date:     day.Format("2006-01-02"),
		Slots:    converter.SlotsToResponses(slots),
	}, nil
}

func (u *doctorUsecase) UpdateDoctorStatus(ctx context.Context, actorID *uuid.UUID, doctorID int, req *dto.UpdateDoctorStatusRequest) (*dto.DoctorResponse, error) {
	status, err := entity.ParseDoctorStatus(req.Status)
	if err != nil {
		return nil, service.ErrInvalidDoctorStatus
	}

	doctor, err := u.statuses.SetStatus(ctx, actorID, doctorID, status)
	if err != nil {
		if errors.Is(err, service.ErrDoctorNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	response := converter.DoctorToResponse(doctor)
	return &response, nil
}
