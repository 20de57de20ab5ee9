package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/dengueguard/monitor/attention"
	attentionTest "github.com/dengueguard/monitor/attention/test"
	"github.com/dengueguard/monitor/events"
	eventsTest "github.com/dengueguard/monitor/events/test"
	"github.com/dengueguard/monitor/metrics"
	"github.com/dengueguard/monitor/notifications"
	notificationsTest "github.com/dengueguard/monitor/notifications/test"
	"github.com/dengueguard/monitor/patients"
	patientsTest "github.com/dengueguard/monitor/patients/test"
	"github.com/dengueguard/monitor/pointer"
	"github.com/dengueguard/monitor/test"
	"github.com/dengueguard/monitor/vitals"
	"github.com/dengueguard/monitor/vitals/service"
	vitalsTest "github.com/dengueguard/monitor/vitals/test"
)

var _ = Describe("Vitals Service", func() {
	var ctrl *gomock.Controller
	var repo *vitalsTest.MockRepository
	var directory *patientsTest.MockDirectory
	var notificationsRepo *notificationsTest.MockRepository
	var attentionRepo *attentionTest.MockRepository
	var publisher *eventsTest.RecordingPublisher
	var m *metrics.Metrics
	var svc vitals.Service
	var patient patients.Patient

	BeforeEach(func() {
		var err error
		ctrl = gomock.NewController(GinkgoT())
		repo = vitalsTest.NewMockRepository(ctrl)
		directory = patientsTest.NewMockDirectory(ctrl)
		notificationsRepo = notificationsTest.NewMockRepository(ctrl)
		attentionRepo = attentionTest.NewMockRepository(ctrl)
		publisher = eventsTest.NewRecordingPublisher()
		m = metrics.New(prometheus.NewRegistry())

		svc, err = service.NewService(service.Params{
			Repository:    repo,
			Patients:      directory,
			Notifications: notificationsRepo,
			Attention:     attentionRepo,
			Publisher:     publisher,
			Metrics:       m,
			Logger:        zap.NewNop().Sugar(),
		})
		Expect(err).ToNot(HaveOccurred())

		patient = patientsTest.RandomPatient()
		patient.FullName = "Jane Doe"
		patient.BedNumber = "A-12"
	})

	persisted := func() {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, reading vitals.Reading) (*vitals.Reading, error) {
			id := primitive.NewObjectID()
			reading.Id = &id
			return &reading, nil
		})
	}

	echoNotification := func(_ context.Context, n notifications.Notification) (*notifications.Notification, error) {
		id := primitive.NewObjectID()
		n.Id = &id
		return &n, nil
	}

	submission := func(measurements vitals.Measurements) vitals.Submission {
		return vitals.Submission{
			PatientUserId:   patient.UserId,
			EnteredByUserId: pointer.FromAny("nurse-1"),
			Measurements:    measurements,
		}
	}

	Describe("Submit", func() {
		It("persists a normal reading without alerts", func() {
			persisted()

			reading, err := svc.Submit(context.Background(), submission(vitalsTest.NormalMeasurements()))
			Expect(err).ToNot(HaveOccurred())
			Expect(reading.Id).ToNot(BeNil())
			Expect(reading.PatientUserId).To(Equal(patient.UserId))
			Expect(*reading.EnteredByUserId).To(Equal("nurse-1"))
			Expect(reading.Timestamp).To(BeTemporally("~", time.Now(), time.Second))
			Expect(publisher.Events()).To(BeEmpty())
		})

		It("keeps the submitted timestamp", func() {
			persisted()
			timestamp := time.Now().Add(-time.Hour)
			s := submission(vitals.Measurements{})
			s.Timestamp = &timestamp

			reading, err := svc.Submit(context.Background(), s)
			Expect(err).ToNot(HaveOccurred())
			Expect(reading.Timestamp).To(BeTemporally("==", timestamp))
		})

		It("rejects a timestamp in the future without storing the reading", func() {
			timestamp := time.Now().Add(365 * 24 * time.Hour)
			s := submission(vitals.Measurements{BodyTemperature: pointer.FromAny(39.0)})
			s.Timestamp = &timestamp

			_, err := svc.Submit(context.Background(), s)
			Expect(err).To(MatchError(vitals.ErrFutureTimestamp))
			Expect(publisher.Events()).To(BeEmpty())
		})

		It("tolerates a timestamp slightly ahead of the server clock", func() {
			persisted()
			timestamp := time.Now().Add(vitals.MaxClockSkew / 2)
			s := submission(vitals.Measurements{})
			s.Timestamp = &timestamp

			reading, err := svc.Submit(context.Background(), s)
			Expect(err).ToNot(HaveOccurred())
			Expect(reading.Timestamp).To(BeTemporally("==", timestamp))
		})

		It("returns the error when the reading cannot be persisted", func() {
			repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

			_, err := svc.Submit(context.Background(), submission(vitals.Measurements{BodyTemperature: pointer.FromAny(39.0)}))
			Expect(err).To(MatchError("connection refused"))
			Expect(publisher.Events()).To(BeEmpty())
		})

		It("raises a notification per breach, flags the patient and publishes", func() {
			persisted()
			measurements := vitalsTest.NormalMeasurements()
			measurements.BodyTemperature = pointer.FromAny(38.2)
			measurements.Plt = pointer.FromAny(90000.0)

			directory.EXPECT().Get(gomock.Any(), patient.UserId).Return(&patient, nil)
			var created []notifications.Notification
			notificationsRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(func(ctx context.Context, n notifications.Notification) (*notifications.Notification, error) {
				created = append(created, n)
				return echoNotification(ctx, n)
			})
			var lastCritical time.Time
			attentionRepo.EXPECT().Upsert(gomock.Any(), patient.UserId, gomock.Any()).DoAndReturn(func(_ context.Context, patientUserId string, t time.Time) (*attention.Record, error) {
				lastCritical = t
				return &attention.Record{PatientUserId: patientUserId, LastCritical: t}, nil
			})

			reading, err := svc.Submit(context.Background(), submission(measurements))
			Expect(err).ToNot(HaveOccurred())

			Expect(created).To(HaveLen(2))
			Expect(created[0].Message).To(Equal("Jane Doe's body temperature is abnormal - 38.2"))
			Expect(created[0].Condition).To(Equal("body temperature"))
			Expect(created[1].Message).To(Equal("Jane Doe's PLT is abnormal - 90000"))
			Expect(lastCritical).To(BeTemporally("==", reading.Timestamp))

			published := publisher.Events()
			Expect(published).To(HaveLen(2))
			Expect(published[0].Name).To(Equal(events.EventNewNotification))
			payload := published[0].Payload.(events.NotificationPayload)
			Expect(payload.Patient).To(Equal(patient.UserId))
			Expect(payload.Name).To(Equal("Jane Doe"))
			Expect(payload.BedNumber).To(Equal("A-12"))
			Expect(payload.Vital).To(Equal("bodyTemperature"))
			Expect(payload.Value).To(Equal(38.2))
			Expect(payload.Condition).To(Equal("body temperature"))
			Expect(payload.Message).To(Equal(created[0].Message))

			Expect(testutil.ToFloat64(m.BreachesDetected.WithLabelValues("PLT"))).To(Equal(1.0))
			Expect(testutil.ToFloat64(m.NotificationsCreated)).To(Equal(2.0))
		})

		It("keeps the reading when the patient cannot be resolved", func() {
			persisted()
			directory.EXPECT().Get(gomock.Any(), patient.UserId).Return(nil, patients.ErrNotFound)

			reading, err := svc.Submit(context.Background(), submission(vitals.Measurements{PulseRate: pointer.FromAny(120.0)}))
			Expect(err).ToNot(HaveOccurred())
			Expect(reading).ToNot(BeNil())
			Expect(publisher.Events()).To(BeEmpty())
			Expect(testutil.ToFloat64(m.BreachesDetected.WithLabelValues("Pulse Rate"))).To(Equal(1.0))
		})

		It("continues alerting when a notification cannot be stored", func() {
			persisted()
			measurements := vitals.Measurements{
				BodyTemperature: pointer.FromAny(38.0),
				PulseRate:       pointer.FromAny(120.0),
			}
			directory.EXPECT().Get(gomock.Any(), patient.UserId).Return(&patient, nil)
			gomock.InOrder(
				notificationsRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("write conflict")),
				notificationsRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoNotification),
			)
			attentionRepo.EXPECT().Upsert(gomock.Any(), patient.UserId, gomock.Any()).Return(&attention.Record{}, nil)

			_, err := svc.Submit(context.Background(), submission(measurements))
			Expect(err).ToNot(HaveOccurred())

			published := publisher.Events()
			Expect(published).To(HaveLen(1))
			Expect(published[0].Payload.(events.NotificationPayload).Condition).To(Equal("Pulse Rate"))
		})

		It("does not fail the submission when flagging or publishing fails", func() {
			persisted()
			publisher.Err = errors.New("no subscribers")
			directory.EXPECT().Get(gomock.Any(), patient.UserId).Return(&patient, nil)
			notificationsRepo.EXPECT().Create(gomock.Any(), test.Match(func(n notifications.Notification) bool {
				return n.PatientUserId == patient.UserId && n.Condition == "WBC"
			})).DoAndReturn(echoNotification)
			attentionRepo.EXPECT().Upsert(gomock.Any(), patient.UserId, test.Match(func(t time.Time) bool {
				return !t.IsZero()
			})).Return(nil, errors.New("timeout"))

			_, err := svc.Submit(context.Background(), submission(vitals.Measurements{Wbc: pointer.FromAny(3000.0)}))
			Expect(err).ToNot(HaveOccurred())
		})

		It("completes alerting when the request context is cancelled", func() {
			persisted()
			ctx, cancel := context.WithCancel(context.Background())
			directory.EXPECT().Get(gomock.Any(), patient.UserId).DoAndReturn(func(ctx context.Context, _ string) (*patients.Patient, error) {
				Expect(ctx.Err()).ToNot(HaveOccurred())
				return &patient, nil
			})
			notificationsRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoNotification)
			attentionRepo.EXPECT().Upsert(gomock.Any(), patient.UserId, gomock.Any()).Return(&attention.Record{}, nil)

			cancel()
			_, err := svc.Submit(ctx, submission(vitals.Measurements{HctPvc: pointer.FromAny(25.0)}))
			Expect(err).ToNot(HaveOccurred())
			Expect(publisher.Events()).To(HaveLen(1))
		})
	})

	Describe("Latest", func() {
		It("delegates to the repository", func() {
			reading := vitalsTest.RandomReading(patient.UserId)
			repo.EXPECT().Latest(gomock.Any(), patient.UserId).Return(&reading, nil)

			latest, err := svc.Latest(context.Background(), patient.UserId)
			Expect(err).ToNot(HaveOccurred())
			Expect(latest).To(Equal(&reading))
		})
	})
})
