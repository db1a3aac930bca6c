package services

import (
	"context"
	"strings"
	"sync"

	"github.com/huangang/geoconfig/internal/metrics"
	"github.com/huangang/geoconfig/internal/models"
	"github.com/huangang/geoconfig/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

func observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = strings.ToLower(string(KindOf(err)))
	}
	metrics.RegistryOperations.WithLabelValues(operation, result).Inc()
}

// StoreStats is a point-in-time count of stored records.
type StoreStats struct {
	Params            int64 `json:"params"`
	Overrides         int64 `json:"overrides"`
	OrphanedOverrides int64 `json:"orphaned_overrides"`
}

// StatsService periodically publishes StoreStats as prometheus gauges. It
// only reads: orphaned overrides are counted, never purged.
type StatsService struct {
	db *gorm.DB

	mu            sync.Mutex
	cronScheduler *cron.Cron
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// Collect counts params, overrides and overrides without a parent param.
func (s *StatsService) Collect(ctx context.Context) (*StoreStats, error) {
	db := s.db.WithContext(ctx)
	stats := &StoreStats{}

	if err := db.Model(&models.Param{}).Count(&stats.Params).Error; err != nil {
		return nil, internalError(err, "count config params")
	}
	if err := db.Model(&models.Override{}).Count(&stats.Overrides).Error; err != nil {
		return nil, internalError(err, "count overrides")
	}

	params := db.Model(&models.Param{}).Select("id")
	if err := db.Model(&models.Override{}).Where("param_id NOT IN (?)", params).Count(&stats.OrphanedOverrides).Error; err != nil {
		return nil, internalError(err, "count orphaned overrides")
	}

	return stats, nil
}

// Refresh collects the stats and updates the gauges.
func (s *StatsService) Refresh(ctx context.Context) (*StoreStats, error) {
	stats, err := s.Collect(ctx)
	if err != nil {
		return nil, err
	}

	metrics.ParamsTotal.Set(float64(stats.Params))
	metrics.OverridesTotal.Set(float64(stats.Overrides))
	metrics.OrphanedOverrides.Set(float64(stats.OrphanedOverrides))
	return stats, nil
}

// StartScheduler runs Refresh once and then on the given cron schedule.
func (s *StatsService) StartScheduler(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cronScheduler != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, s.runRefresh); err != nil {
		return err
	}
	s.cronScheduler = c

	s.runRefresh()
	c.Start()
	logger.Info().Str("schedule", schedule).Msg("[Stats] Scheduler started")
	return nil
}

func (s *StatsService) StopScheduler() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cronScheduler == nil {
		return
	}
	<-s.cronScheduler.Stop().Done()
	s.cronScheduler = nil
	logger.Info().Msg("[Stats] Scheduler stopped")
}

func (s *StatsService) runRefresh() {
	stats, err := s.Refresh(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("[Stats] Failed to refresh store stats")
		return
	}
	if stats.OrphanedOverrides > 0 {
		logger.Debug().Int64("orphaned", stats.OrphanedOverrides).Msg("[Stats] Orphaned overrides present")
	}
}
