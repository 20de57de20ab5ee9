package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dengueguard/monitor/attention"
	"github.com/dengueguard/monitor/events"
	"github.com/dengueguard/monitor/metrics"
	"github.com/dengueguard/monitor/notifications"
	"github.com/dengueguard/monitor/patients"
	"github.com/dengueguard/monitor/store"
	"github.com/dengueguard/monitor/vitals"
)

type service struct {
	repository    vitals.Repository
	patients      patients.Directory
	notifications notifications.Repository
	attention     attention.Repository
	publisher     events.Publisher
	metrics       *metrics.Metrics
	logger        *zap.SugaredLogger
}

var _ vitals.Service = &service{}

type Params struct {
	fx.In

	Repository    vitals.Repository
	Patients      patients.Directory
	Notifications notifications.Repository
	Attention     attention.Repository
	Publisher     events.Publisher
	Metrics       *metrics.Metrics
	Logger        *zap.SugaredLogger
}

func NewService(p Params) (vitals.Service, error) {
	return &service{
		repository:    p.Repository,
		patients:      p.Patients,
		notifications: p.Notifications,
		attention:     p.Attention,
		publisher:     p.Publisher,
		metrics:       p.Metrics,
		logger:        p.Logger,
	}, nil
}

// Submit persists the reading and raises alerts for every breached threshold.
// Only a failure to persist the reading is returned, alerting failures are logged.
func (s *service) Submit(ctx context.Context, submission vitals.Submission) (*vitals.Reading, error) {
	now := time.Now()
	reading := vitals.Reading{
		PatientUserId:   submission.PatientUserId,
		EnteredByUserId: submission.EnteredByUserId,
		Measurements:    submission.Measurements,
		Timestamp:       now,
	}
	if submission.Timestamp != nil {
		// Future readings would hold off reminders until the clock catches up
		if vitals.IsFuture(*submission.Timestamp, now) {
			return nil, vitals.ErrFutureTimestamp
		}
		reading.Timestamp = *submission.Timestamp
	}

	created, err := s.repository.Create(ctx, reading)
	if err != nil {
		return nil, err
	}

	if breaches := vitals.Evaluate(created.Measurements); len(breaches) > 0 {
		s.alert(context.WithoutCancel(ctx), created, breaches)
	}

	return created, nil
}

func (s *service) List(ctx context.Context, patientUserId string, pagination store.Pagination) ([]*vitals.Reading, error) {
	return s.repository.List(ctx, patientUserId, pagination)
}

func (s *service) Latest(ctx context.Context, patientUserId string) (*vitals.Reading, error) {
	return s.repository.Latest(ctx, patientUserId)
}

func (s *service) alert(ctx context.Context, reading *vitals.Reading, breaches []vitals.Breach) {
	logger := s.logger.With("patientUserId", reading.PatientUserId)
	if reading.Id != nil {
		logger = logger.With("readingId", reading.Id.Hex())
	}

	for _, breach := range breaches {
		s.metrics.BreachesDetected.WithLabelValues(breach.Condition).Inc()
	}
	logger.Infow("vitals breached thresholds", "breaches", len(breaches))

	patient, err := s.patients.Get(ctx, reading.PatientUserId)
	if err != nil {
		logger.Errorw("unable to resolve patient, skipping alerts", "error", err)
		return
	}

	var errs []error
	created := make([]events.NotificationPayload, 0, len(breaches))
	for _, breach := range breaches {
		notification, err := s.notifications.Create(ctx, notifications.Notification{
			PatientUserId: reading.PatientUserId,
			Message:       vitals.BreachMessage(patient.FullName, breach),
			Condition:     breach.Condition,
			Timestamp:     time.Now(),
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.metrics.NotificationsCreated.Inc()

		created = append(created, events.NotificationPayload{
			Patient:   patient.UserId,
			Name:      patient.FullName,
			BedNumber: patient.BedNumber,
			Vital:     breach.Field,
			Value:     breach.Value,
			Condition: breach.Condition,
			Message:   notification.Message,
			Timestamp: notification.Timestamp,
		})
	}

	if _, err := s.attention.Upsert(ctx, reading.PatientUserId, reading.Timestamp); err != nil {
		errs = append(errs, err)
	}

	for _, payload := range created {
		if err := s.publisher.Publish(ctx, events.EventNewNotification, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		logger.Errorw("unable to complete vitals alerts", "error", err)
	}
}
