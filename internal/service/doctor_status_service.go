package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"clinic-finder/internal/domain/entity"
	"clinic-finder/internal/domain/repository"
	"clinic-finder/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrInvalidDoctorStatus = errors.New("invalid doctor status")
)

const (
	// Batch size for startup sync
	statusSyncBatchSize = 500

	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// StatusCache is the live status store read by the search path
type StatusCache interface {
	SetStatus(ctx context.Context, doctorID int, status entity.DoctorStatus) error
	SetStatuses(ctx context.Context, statuses map[int]entity.DoctorStatus) error
	DeleteStatus(ctx context.Context, doctorID int) error
	Ping(ctx context.Context) error
}

// DoctorStatusService owns writes of live doctor statuses. PostgreSQL is the
// source of truth and Redis mirrors it for the search path.
//
// Lock ordering: acquire the doctor mutex first, then touch DB and Redis.
type DoctorStatusService struct {
	doctorRepo repository.DoctorRepository
	statusRepo repository.DoctorStatusRepository
	cache      StatusCache
	audit      AuditService
	log        *logrus.Logger
	metrics    *metrics.Collector

	doctorMu sync.Map // map[int]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewDoctorStatusService starts a background mutex cleanup goroutine.
// Call Stop during graceful shutdown.
func NewDoctorStatusService(
	doctorRepo repository.DoctorRepository,
	statusRepo repository.DoctorStatusRepository,
	cache StatusCache,
	audit AuditService,
	log *logrus.Logger,
	collector *metrics.Collector,
) *DoctorStatusService {
	svc := &DoctorStatusService{
		doctorRepo: doctorRepo,
		statusRepo: statusRepo,
		cache:      cache,
		audit:      audit,
		log:        log,
		metrics:    collector,
		stopChan:   make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Stop is safe to call multiple times
func (s *DoctorStatusService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("DoctorStatusService stopped")
	}
}

// SyncOnStartup copies every stored doctor status into Redis, one pipeline
// per batch. Should run before accepting traffic.
func (s *DoctorStatusService) SyncOnStartup(ctx context.Context) error {
	s.log.Info("Starting doctor status sync from database...")
	startTime := time.Now()

	if err := s.cache.Ping(ctx); err != nil {
		s.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	afterID := 0
	totalSynced := 0

	for {
		rows, err := s.statusRepo.ListStatuses(ctx, afterID, statusSyncBatchSize)
		if err != nil {
			s.log.Errorf("Failed to query doctor statuses after id %d: %+v", afterID, err)
			return fmt.Errorf("query doctor statuses after id %d: %w", afterID, err)
		}

		if len(rows) == 0 {
			if afterID == 0 {
				s.log.Info("No doctors found for sync")
			}
			break
		}

		batch := make(map[int]entity.DoctorStatus, len(rows))
		for _, row := range rows {
			batch[row.ID] = row.Status
		}

		if err := s.cache.SetStatuses(ctx, batch); err != nil {
			s.log.Errorf("Failed to write status batch after id %d: %+v", afterID, err)
			return fmt.Errorf("write status batch after id %d: %w", afterID, err)
		}

		totalSynced += len(rows)
		afterID = rows[len(rows)-1].ID
		s.log.Debugf("Synced batch: %d doctors", len(rows))

		if len(rows) < statusSyncBatchSize {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	elapsed := time.Since(startTime)
	s.log.Infof("Doctor status sync completed: %d doctors synced in %v", totalSynced, elapsed)

	if err := s.audit.LogAction(ctx, nil, entity.AuditActionStatusResync, entity.JSON{"synced": totalSynced}); err != nil {
		s.log.Warnf("Failed to audit status sync: %+v", err)
	}

	return nil
}

// SetStatus persists a doctor's live status and mirrors it to Redis. If the
// Redis write fails the cached key is dropped so reads fall back to the
// database.
func (s *DoctorStatusService) SetStatus(ctx context.Context, actorID *uuid.UUID, doctorID int, status entity.DoctorStatus) (*entity.Doctor, error) {
	if !status.IsValid() {
		return nil, ErrInvalidDoctorStatus
	}

	mt := s.getDoctorMutex(doctorID)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	doctor, err := s.doctorRepo.FindByID(ctx, doctorID)
	if err != nil {
		s.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	oldStatus := doctor.Status

	affected, err := s.statusRepo.UpdateStatus(ctx, doctorID, status)
	if err != nil {
		s.log.Warnf("Failed to update status for doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrDoctorNotFound
	}

	if err := s.cache.SetStatus(ctx, doctorID, status); err != nil {
		s.log.Warnf("Failed to cache status for doctor %d: %+v", doctorID, err)
		if err := s.cache.DeleteStatus(ctx, doctorID); err != nil {
			s.log.Errorf("Failed to drop stale cached status for doctor %d: %+v", doctorID, err)
		}
	}

	if err := s.audit.LogUpdate(ctx, actorID, entity.AuditActionDoctorStatusUpdate, "doctor", strconv.Itoa(doctorID), oldStatus, status); err != nil {
		s.log.Warnf("Failed to audit status update for doctor %d: %+v", doctorID, err)
	}

	s.metrics.StatusUpdated(string(status))
	s.log.WithFields(logrus.Fields{
		"doctor_id": doctorID,
		"from":      oldStatus,
		"to":        status,
	}).Info("Doctor status updated")

	doctor.Status = status
	return doctor, nil
}

// getDoctorMutex returns the mutex for a doctor ID
func (s *DoctorStatusService) getDoctorMutex(doctorID int) *mutexWithTimestamp {
	mt, _ := s.doctorMu.LoadOrStore(doctorID, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (s *DoctorStatusService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStaleMutexes(time.Now().Add(-mutexStaleThreshold))
		}
	}
}

// cleanupStaleMutexes removes mutexes unused since cutoff. lastUsed is checked
// under the lock so a concurrent getDoctorMutex is not lost.
func (s *DoctorStatusService) cleanupStaleMutexes(cutoff time.Time) int {
	cutoffUnix := cutoff.Unix()
	var cleaned int

	s.doctorMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffUnix {
				s.doctorMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale mutexes", cleaned)
	}
	return cleaned
}
