package repository_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/dengueguard/monitor/patients"
	"github.com/dengueguard/monitor/patients/repository"
	patientsTest "github.com/dengueguard/monitor/patients/test"
	dbTest "github.com/dengueguard/monitor/store/test"
)

var _ = Describe("Patients Repository", func() {
	var database *mongo.Database
	var repo patients.Repository

	BeforeEach(func() {
		var err error
		database = dbTest.GetTestDatabase()
		lifecycle := fxtest.NewLifecycle(GinkgoT())
		repo, err = repository.NewRepository(database, zap.NewNop().Sugar(), lifecycle)
		Expect(err).ToNot(HaveOccurred())
		Expect(repo).ToNot(BeNil())
		lifecycle.RequireStart()
	})

	AfterEach(func() {
		_, err := database.Collection(patients.CollectionName).DeleteMany(context.Background(), bson.M{})
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("Create", func() {
		It("persists the patient", func() {
			patient := patientsTest.RandomPatient()

			created, err := repo.Create(context.Background(), patient)
			Expect(err).ToNot(HaveOccurred())
			Expect(created.Id).ToNot(BeNil())
			Expect(created.UserId).To(Equal(patient.UserId))
			Expect(created.FullName).To(Equal(patient.FullName))
			Expect(created.BedNumber).To(Equal(patient.BedNumber))
			Expect(created.AdmissionDate).To(BeTemporally("==", patient.AdmissionDate))
			Expect(created.IsAdmitted()).To(BeTrue())
		})

		It("defaults the admission date", func() {
			patient := patientsTest.RandomPatient()
			patient.AdmissionDate = time.Time{}

			created, err := repo.Create(context.Background(), patient)
			Expect(err).ToNot(HaveOccurred())
			Expect(created.AdmissionDate).To(BeTemporally("~", time.Now(), time.Second))
		})

		It("returns a duplicate error for an existing user id", func() {
			patient := patientsTest.RandomPatient()
			_, err := repo.Create(context.Background(), patient)
			Expect(err).ToNot(HaveOccurred())

			_, err = repo.Create(context.Background(), patient)
			Expect(err).To(MatchError(patients.ErrDuplicate))
		})
	})

	Describe("Get", func() {
		It("returns not found for an unknown patient", func() {
			_, err := repo.Get(context.Background(), patientsTest.RandomPatient().UserId)
			Expect(err).To(MatchError(patients.ErrNotFound))
		})
	})

	Describe("ListAdmitted", func() {
		It("excludes discharged patients", func() {
			list := patientsTest.RandomPatients(3)
			for _, patient := range list {
				_, err := repo.Create(context.Background(), patient)
				Expect(err).ToNot(HaveOccurred())
			}
			_, err := repo.Discharge(context.Background(), list[1].UserId, time.Now())
			Expect(err).ToNot(HaveOccurred())

			admitted, err := repo.ListAdmitted(context.Background())
			Expect(err).ToNot(HaveOccurred())

			userIds := make([]string, 0, len(admitted))
			for _, patient := range admitted {
				userIds = append(userIds, patient.UserId)
			}
			Expect(userIds).To(ConsistOf(list[0].UserId, list[2].UserId))
		})

		It("returns an empty list when nobody is admitted", func() {
			admitted, err := repo.ListAdmitted(context.Background())
			Expect(err).ToNot(HaveOccurred())
			Expect(admitted).To(BeEmpty())
		})
	})

	Describe("Discharge", func() {
		It("sets the discharge date", func() {
			patient := patientsTest.RandomPatient()
			_, err := repo.Create(context.Background(), patient)
			Expect(err).ToNot(HaveOccurred())

			dischargeDate := time.Now().UTC().Truncate(time.Millisecond)
			discharged, err := repo.Discharge(context.Background(), patient.UserId, dischargeDate)
			Expect(err).ToNot(HaveOccurred())
			Expect(discharged.DischargeDate).ToNot(BeNil())
			Expect(*discharged.DischargeDate).To(BeTemporally("==", dischargeDate))
			Expect(discharged.IsAdmitted()).To(BeFalse())
		})

		It("returns not found for an unknown patient", func() {
			_, err := repo.Discharge(context.Background(), patientsTest.RandomPatient().UserId, time.Now())
			Expect(err).To(MatchError(patients.ErrNotFound))
		})
	})
})
