package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dengueguard/monitor/events"
	"github.com/dengueguard/monitor/metrics"
	"github.com/dengueguard/monitor/patients"
	"github.com/dengueguard/monitor/vitals"
)

const TaskName = "reminders"

// Poller finds admitted patients with overdue measurements and reminds the ward
type Poller struct {
	patients  patients.Repository
	vitals    vitals.Repository
	publisher events.Publisher
	logger    *zap.SugaredLogger
	metrics   *metrics.Metrics
}

func NewPoller(patientsRepo patients.Repository, vitalsRepo vitals.Repository, publisher events.Publisher, logger *zap.SugaredLogger, m *metrics.Metrics) *Poller {
	return &Poller{
		patients:  patientsRepo,
		vitals:    vitalsRepo,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

// Collect returns the overdue reminders of every admitted patient. Patients whose
// latest reading can't be loaded are logged and skipped.
func (p *Poller) Collect(ctx context.Context, now time.Time) ([]Reminder, error) {
	admitted, err := p.patients.ListAdmitted(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list admitted patients: %w", err)
	}

	var reminders []Reminder
	for _, patient := range admitted {
		latest, err := p.vitals.Latest(ctx, patient.UserId)
		if errors.Is(err, vitals.ErrNotFound) {
			latest = nil
		} else if err != nil {
			p.logger.Errorw("unable to load latest vitals reading", "patientUserId", patient.UserId, "error", err)
			continue
		}

		reminders = append(reminders, Overdue(*patient, latest, now)...)
	}

	return reminders, nil
}

// Sweep publishes every overdue reminder. Reminders are sent again on every sweep until the measurement is taken.
func (p *Poller) Sweep(ctx context.Context) error {
	reminders, err := p.Collect(ctx, time.Now())
	if err != nil {
		return err
	}

	published := 0
	for _, reminder := range reminders {
		payload := events.ReminderPayload{
			Message:   reminder.Message,
			VitalType: reminder.VitalType,
			PatientId: reminder.PatientUserId,
			Timestamp: reminder.Timestamp,
		}
		if err := p.publisher.Publish(ctx, events.EventReminder, payload); err != nil {
			p.logger.Warnw("unable to publish reminder", "patientUserId", reminder.PatientUserId, "vitalType", reminder.VitalType, "error", err)
			continue
		}
		p.metrics.RemindersPublished.WithLabelValues(reminder.VitalType).Inc()
		published++
	}

	p.logger.Debugw("reminder sweep completed", "overdue", len(reminders), "published", published)
	return nil
}
