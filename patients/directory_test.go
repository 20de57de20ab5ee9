package patients_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/dengueguard/monitor/patients"
	patientsTest "github.com/dengueguard/monitor/patients/test"
)

var _ = Describe("CachingDirectory", func() {
	var ctrl *gomock.Controller
	var repo *patientsTest.MockRepository
	var directory *patients.CachingDirectory
	var patient patients.Patient

	BeforeEach(func() {
		var err error
		ctrl = gomock.NewController(GinkgoT())
		repo = patientsTest.NewMockRepository(ctrl)
		directory, err = patients.NewCachingDirectory(10, time.Minute, repo)
		Expect(err).ToNot(HaveOccurred())
		patient = patientsTest.RandomPatient()
	})

	It("returns the patient from the repository", func() {
		repo.EXPECT().Get(gomock.Any(), patient.UserId).Return(&patient, nil)

		result, err := directory.Get(context.Background(), patient.UserId)
		Expect(err).ToNot(HaveOccurred())
		Expect(result.FullName).To(Equal(patient.FullName))
		Expect(result.BedNumber).To(Equal(patient.BedNumber))
	})

	It("serves repeated lookups from the cache", func() {
		repo.EXPECT().Get(gomock.Any(), patient.UserId).Return(&patient, nil).Times(1)

		for i := 0; i < 3; i++ {
			result, err := directory.Get(context.Background(), patient.UserId)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.UserId).To(Equal(patient.UserId))
		}
	})

	It("does not cache misses", func() {
		repo.EXPECT().Get(gomock.Any(), patient.UserId).Return(nil, patients.ErrNotFound).Times(2)

		_, err := directory.Get(context.Background(), patient.UserId)
		Expect(err).To(MatchError(patients.ErrNotFound))
		_, err = directory.Get(context.Background(), patient.UserId)
		Expect(err).To(MatchError(patients.ErrNotFound))
	})

	It("fetches the patient again after invalidation", func() {
		repo.EXPECT().Get(gomock.Any(), patient.UserId).Return(&patient, nil).Times(2)

		_, err := directory.Get(context.Background(), patient.UserId)
		Expect(err).ToNot(HaveOccurred())
		directory.Invalidate(patient.UserId)
		_, err = directory.Get(context.Background(), patient.UserId)
		Expect(err).ToNot(HaveOccurred())
	})

	It("fetches the patient again once the entry expires", func() {
		var err error
		directory, err = patients.NewCachingDirectory(10, time.Millisecond, repo)
		Expect(err).ToNot(HaveOccurred())
		repo.EXPECT().Get(gomock.Any(), patient.UserId).Return(&patient, nil).Times(2)

		_, err = directory.Get(context.Background(), patient.UserId)
		Expect(err).ToNot(HaveOccurred())
		time.Sleep(5 * time.Millisecond)
		_, err = directory.Get(context.Background(), patient.UserId)
		Expect(err).ToNot(HaveOccurred())
	})

	It("rejects a non-positive cache size", func() {
		_, err := patients.NewCachingDirectory(0, time.Minute, repo)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Patient", func() {
	It("is admitted until a discharge date is set", func() {
		patient := patientsTest.RandomPatient()
		Expect(patient.IsAdmitted()).To(BeTrue())

		now := time.Now()
		patient.DischargeDate = &now
		Expect(patient.IsAdmitted()).To(BeFalse())
	})
})
