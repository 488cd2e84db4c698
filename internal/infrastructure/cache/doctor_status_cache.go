package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"clinic-finder/config"
	"clinic-finder/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// DoctorStatusKeyPrefix prefixes the live status key of each doctor
const DoctorStatusKeyPrefix = "doctor:status:"

// DoctorStatusCache keeps live doctor statuses in Redis. Reads go through a
// circuit breaker so a failing Redis is not hit on every search.
type DoctorStatusCache struct {
	client  *redis.Client
	log     *logrus.Logger
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[map[int]entity.DoctorStatus]
}

func NewDoctorStatusCache(client *redis.Client, log *logrus.Logger, redisCfg config.RedisConfig, breakerCfg config.BreakerConfig) *DoctorStatusCache {
	c := &DoctorStatusCache{
		client: client,
		log:    log,
		ttl:    redisCfg.StatusTTL,
	}

	threshold := breakerCfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	c.breaker = gobreaker.NewCircuitBreaker[map[int]entity.DoctorStatus](gobreaker.Settings{
		Name:        "doctor-status-cache",
		MaxRequests: 1,
		Interval:    breakerCfg.Interval,
		Timeout:     breakerCfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("Circuit breaker %s changed state: %s -> %s", name, from, to)
		},
	})

	return c
}

// StatusKey returns the Redis key holding a doctor's live status
func StatusKey(doctorID int) string {
	return DoctorStatusKeyPrefix + strconv.Itoa(doctorID)
}

// GetStatuses returns the cached statuses of the given doctors. Doctors with
// no cached (or unreadable) status are absent from the map.
func (c *DoctorStatusCache) GetStatuses(ctx context.Context, doctorIDs []int) (map[int]entity.DoctorStatus, error) {
	if len(doctorIDs) == 0 {
		return map[int]entity.DoctorStatus{}, nil
	}

	return c.breaker.Execute(func() (map[int]entity.DoctorStatus, error) {
		keys := make([]string, len(doctorIDs))
		for i, id := range doctorIDs {
			keys[i] = StatusKey(id)
		}

		values, err := c.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("mget doctor statuses: %w", err)
		}

		return decodeStatuses(doctorIDs, values), nil
	})
}

// SetStatus stores one doctor's live status
func (c *DoctorStatusCache) SetStatus(ctx context.Context, doctorID int, status entity.DoctorStatus) error {
	if err := c.client.Set(ctx, StatusKey(doctorID), string(status), c.ttl).Err(); err != nil {
		return fmt.Errorf("set status for doctor %d: %w", doctorID, err)
	}
	return nil
}

// SetStatuses writes a batch of statuses in one transaction pipeline
func (c *DoctorStatusCache) SetStatuses(ctx context.Context, statuses map[int]entity.DoctorStatus) error {
	if len(statuses) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	for id, status := range statuses {
		pipe.Set(ctx, StatusKey(id), string(status), c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline set doctor statuses: %w", err)
	}
	return nil
}

// DeleteStatus drops a doctor's cached status so reads fall back to the database
func (c *DoctorStatusCache) DeleteStatus(ctx context.Context, doctorID int) error {
	if err := c.client.Del(ctx, StatusKey(doctorID)).Err(); err != nil {
		return fmt.Errorf("delete status for doctor %d: %w", doctorID, err)
	}
	return nil
}

// Ping checks Redis availability
func (c *DoctorStatusCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func decodeStatuses(doctorIDs []int, values []interface{}) map[int]entity.DoctorStatus {
	statuses := make(map[int]entity.DoctorStatus, len(values))
	for i, v := range values {
		if i >= len(doctorIDs) {
			break
		}
		raw, ok := v.(string)
		if !ok {
			continue
		}
		status, err := entity.ParseDoctorStatus(raw)
		if err != nil || raw == "" {
			continue
		}
		statuses[doctorIDs[i]] = status
	}
	return statuses
}
