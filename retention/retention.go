package retention

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dengueguard/monitor/attention"
	"github.com/dengueguard/monitor/config"
	"github.com/dengueguard/monitor/metrics"
	"github.com/dengueguard/monitor/notifications"
)

const TaskName = "retention"

type Result struct {
	Notifications int64 `json:"notifications"`
	Attention     int64 `json:"attention"`
}

// Cleaner removes expired notifications and attention records
type Cleaner struct {
	notifications         notifications.Repository
	attention             attention.Repository
	notificationRetention time.Duration
	attentionRetention    time.Duration
	logger                *zap.SugaredLogger
	metrics               *metrics.Metrics
}

func NewCleaner(cfg *config.Config, notificationsRepo notifications.Repository, attentionRepo attention.Repository, logger *zap.SugaredLogger, m *metrics.Metrics) *Cleaner {
	return &Cleaner{
		notifications:         notificationsRepo,
		attention:             attentionRepo,
		notificationRetention: cfg.NotificationRetention,
		attentionRetention:    cfg.AttentionRetention,
		logger:                logger,
		metrics:               m,
	}
}

func (c *Cleaner) Run(ctx context.Context) (Result, error) {
	return c.RunAt(ctx, time.Now())
}

// RunAt deletes everything that expired before now. Both collections are always
// cleaned, a failure of one doesn't prevent cleaning the other.
func (c *Cleaner) RunAt(ctx context.Context, now time.Time) (Result, error) {
	var result Result
	var errs []error

	deleted, err := c.notifications.DeleteBefore(ctx, now.Add(-c.notificationRetention))
	if err != nil {
		c.logger.Errorw("unable to delete expired notifications", "error", err)
		errs = append(errs, err)
	} else {
		result.Notifications = deleted
		c.metrics.RecordsDeleted.WithLabelValues(notifications.CollectionName).Add(float64(deleted))
	}

	deleted, err = c.attention.DeleteBefore(ctx, now.Add(-c.attentionRetention))
	if err != nil {
		c.logger.Errorw("unable to delete expired attention records", "error", err)
		errs = append(errs, err)
	} else {
		result.Attention = deleted
		c.metrics.RecordsDeleted.WithLabelValues(attention.CollectionName).Add(float64(deleted))
	}

	c.logger.Infow("retention cleanup completed", "notifications", result.Notifications, "attention", result.Attention)
	return result, errors.Join(errs...)
}
