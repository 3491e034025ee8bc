package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"healteex/api/internal/config"
	"healteex/api/internal/ids"
	"healteex/api/internal/models"
	"healteex/api/internal/repository"
)

const syncStream = "inventory:sync"

type Scheduler struct {
	cron         *cron.Cron
	queue        *redis.Client
	snapshots    *repository.SnapshotRepository
	alerts       *repository.AlertRepository
	integrations *repository.IntegrationRepository
	cfg          *config.AppConfig
	log          zerolog.Logger
}

func NewScheduler(
	queue *redis.Client,
	snapshots *repository.SnapshotRepository,
	alerts *repository.AlertRepository,
	integrations *repository.IntegrationRepository,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:         c,
		queue:        queue,
		snapshots:    snapshots,
		alerts:       alerts,
		integrations: integrations,
		cfg:          cfg,
		log:          log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.scanStockLevels); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 */1 * * *", s.enqueueIntegrationSync); err != nil { // hourly tick
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for in-flight jobs, but not longer than five seconds.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

// scanStockLevels walks the latest snapshot per (facility, medicine) pair and
// opens stock_out and low_stock alerts. Pairs with an open alert of the same
// type are skipped so a persistent shortage raises one alert, not one per day.
func (s *Scheduler) scanStockLevels() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	latest, err := s.snapshots.Latest(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("stock scan failed")
		return
	}

	opened := 0
	for _, snap := range latest {
		alertType, message := classifySnapshot(snap, s.cfg.Inventory.LowStockDays)
		if alertType == "" {
			continue
		}

		hasOpen, err := s.alerts.HasOpen(ctx, snap.FacilityID, snap.MedicineID, alertType)
		if err != nil {
			s.log.Error().Err(err).Msg("open alert lookup failed")
			continue
		}
		if hasOpen {
			continue
		}

		alert := models.Alert{
			ID:          ids.New(),
			FacilityID:  snap.FacilityID,
			MedicineID:  snap.MedicineID,
			AlertType:   alertType,
			Status:      models.AlertStatusOpen,
			Message:     message,
			TriggeredAt: time.Now().UTC(),
		}
		if err := s.alerts.Create(ctx, alert); err != nil {
			s.log.Error().Err(err).Str("facility_id", snap.FacilityID).Str("medicine_id", snap.MedicineID).Msg("alert create failed")
			continue
		}
		opened++
	}

	s.log.Info().Int("snapshots", len(latest)).Int("alerts_opened", opened).Msg("stock scan complete")
}

func classifySnapshot(snap models.StockSnapshot, lowStockDays int) (models.AlertType, string) {
	switch {
	case snap.StockOnHand <= 0:
		return models.AlertTypeStockOut, "Stock out: no stock on hand."
	case snap.DaysOfStock < lowStockDays:
		return models.AlertTypeLowStock, fmt.Sprintf("Low stock: %d days of stock remaining.", snap.DaysOfStock)
	default:
		return "", ""
	}
}

// enqueueIntegrationSync pushes one sync task per active integration config.
// Consumption happens out of process; failures here only lose a tick.
func (s *Scheduler) enqueueIntegrationSync() {
	if s.queue == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	configs, err := s.integrations.ListActive(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("active integration lookup failed")
		return
	}

	for _, cfg := range configs {
		_, err := s.queue.XAdd(ctx, &redis.XAddArgs{
			Stream: syncStream,
			Values: map[string]any{
				"type":        "integration_sync",
				"config_id":   cfg.ID,
				"system_name": cfg.SystemName,
			},
		}).Result()
		if err != nil {
			s.log.Error().Err(err).Str("system_name", cfg.SystemName).Msg("enqueue integration sync failed")
		}
	}
}
