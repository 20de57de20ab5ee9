package reminders_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/dengueguard/monitor/events"
	eventsTest "github.com/dengueguard/monitor/events/test"
	"github.com/dengueguard/monitor/metrics"
	"github.com/dengueguard/monitor/patients"
	patientsTest "github.com/dengueguard/monitor/patients/test"
	"github.com/dengueguard/monitor/reminders"
	"github.com/dengueguard/monitor/vitals"
	vitalsTest "github.com/dengueguard/monitor/vitals/test"
)

var _ = Describe("Poller", func() {
	var ctrl *gomock.Controller
	var patientsRepo *patientsTest.MockRepository
	var vitalsRepo *vitalsTest.MockRepository
	var publisher *eventsTest.RecordingPublisher
	var m *metrics.Metrics
	var poller *reminders.Poller

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		patientsRepo = patientsTest.NewMockRepository(ctrl)
		vitalsRepo = vitalsTest.NewMockRepository(ctrl)
		publisher = eventsTest.NewRecordingPublisher()
		m = metrics.New(prometheus.NewRegistry())
		poller = reminders.NewPoller(patientsRepo, vitalsRepo, publisher, zap.NewNop().Sugar(), m)
	})

	Describe("Collect", func() {
		It("returns the reminders of every admitted patient", func() {
			first := patientsTest.RandomPatient()
			second := patientsTest.RandomPatient()
			patientsRepo.EXPECT().ListAdmitted(gomock.Any()).Return([]*patients.Patient{&first, &second}, nil)

			recent := vitalsTest.RandomReading(second.UserId)
			recent.Timestamp = time.Now().Add(-time.Minute)
			vitalsRepo.EXPECT().Latest(gomock.Any(), first.UserId).Return(nil, vitals.ErrNotFound)
			vitalsRepo.EXPECT().Latest(gomock.Any(), second.UserId).Return(&recent, nil)

			list, err := poller.Collect(context.Background(), time.Now())
			Expect(err).ToNot(HaveOccurred())
			Expect(list).To(HaveLen(4))
			for _, r := range list {
				Expect(r.PatientUserId).To(Equal(first.UserId))
			}
		})

		It("skips patients whose reading cannot be loaded", func() {
			first := patientsTest.RandomPatient()
			second := patientsTest.RandomPatient()
			patientsRepo.EXPECT().ListAdmitted(gomock.Any()).Return([]*patients.Patient{&first, &second}, nil)
			vitalsRepo.EXPECT().Latest(gomock.Any(), first.UserId).Return(nil, errors.New("cursor killed"))
			vitalsRepo.EXPECT().Latest(gomock.Any(), second.UserId).Return(nil, vitals.ErrNotFound)

			list, err := poller.Collect(context.Background(), time.Now())
			Expect(err).ToNot(HaveOccurred())
			Expect(list).To(HaveLen(4))
			Expect(list[0].PatientUserId).To(Equal(second.UserId))
		})

		It("fails when admitted patients cannot be listed", func() {
			patientsRepo.EXPECT().ListAdmitted(gomock.Any()).Return(nil, errors.New("not primary"))

			_, err := poller.Collect(context.Background(), time.Now())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Sweep", func() {
		It("publishes a reminder event per overdue measurement", func() {
			patient := patientsTest.RandomPatient()
			patientsRepo.EXPECT().ListAdmitted(gomock.Any()).Return([]*patients.Patient{&patient}, nil)
			vitalsRepo.EXPECT().Latest(gomock.Any(), patient.UserId).Return(nil, vitals.ErrNotFound)

			Expect(poller.Sweep(context.Background())).To(Succeed())

			published := publisher.Events()
			Expect(published).To(HaveLen(4))
			Expect(published[0].Name).To(Equal(events.EventReminder))
			payload := published[0].Payload.(events.ReminderPayload)
			Expect(payload.PatientId).To(Equal(patient.UserId))
			Expect(payload.VitalType).To(Equal("bodyTemperature"))
			Expect(payload.Message).To(Equal(patient.FullName + " (" + patient.BedNumber + "): Time to measure body temperature."))
			Expect(payload.Timestamp).To(BeTemporally("~", time.Now(), time.Second))
			Expect(testutil.ToFloat64(m.RemindersPublished.WithLabelValues("pulseRate"))).To(Equal(1.0))
		})

		It("repeats reminders on every sweep", func() {
			patient := patientsTest.RandomPatient()
			patientsRepo.EXPECT().ListAdmitted(gomock.Any()).Return([]*patients.Patient{&patient}, nil).Times(2)
			vitalsRepo.EXPECT().Latest(gomock.Any(), patient.UserId).Return(nil, vitals.ErrNotFound).Times(2)

			Expect(poller.Sweep(context.Background())).To(Succeed())
			Expect(poller.Sweep(context.Background())).To(Succeed())
			Expect(publisher.Events()).To(HaveLen(8))
		})

		It("keeps sweeping when publishing fails", func() {
			patient := patientsTest.RandomPatient()
			patientsRepo.EXPECT().ListAdmitted(gomock.Any()).Return([]*patients.Patient{&patient}, nil)
			vitalsRepo.EXPECT().Latest(gomock.Any(), patient.UserId).Return(nil, vitals.ErrNotFound)
			publisher.Err = errors.New("redis unavailable")

			Expect(poller.Sweep(context.Background())).To(Succeed())
			Expect(testutil.ToFloat64(m.RemindersPublished.WithLabelValues("pulseRate"))).To(BeZero())
		})
	})
})
