package reminders_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dengueguard/monitor/patients"
	"github.com/dengueguard/monitor/pointer"
	"github.com/dengueguard/monitor/reminders"
	"github.com/dengueguard/monitor/vitals"
	vitalsTest "github.com/dengueguard/monitor/vitals/test"
)

func vitalTypes(list []reminders.Reminder) []string {
	result := make([]string, 0, len(list))
	for _, r := range list {
		result = append(result, r.VitalType)
	}
	return result
}

var _ = Describe("Overdue", func() {
	var patient patients.Patient
	var now time.Time

	BeforeEach(func() {
		patient = patients.Patient{UserId: "patient-1", FullName: "Jane Doe", BedNumber: "A-12"}
		now = time.Now()
	})

	It("reminds about every measurement when there is no reading", func() {
		list := reminders.Overdue(patient, nil, now)
		Expect(vitalTypes(list)).To(Equal([]string{"bodyTemperature", "hctPvc", "pulseRate", "bloodPressure"}))
		for _, r := range list {
			Expect(r.LastMeasured).To(BeNil())
			Expect(r.Timestamp).To(Equal(now))
			Expect(r.PatientUserId).To(Equal("patient-1"))
		}
		Expect(list[0].Message).To(Equal("Jane Doe (A-12): Time to measure body temperature."))
		Expect(list[1].Message).To(Equal("Jane Doe (A-12): Time to measure HCT/PVC."))
		Expect(list[2].Message).To(Equal("Jane Doe (A-12): Time to measure pulse rate."))
		Expect(list[3].Message).To(Equal("Jane Doe (A-12): Time to measure blood pressure."))
	})

	It("does not remind about measurements taken recently", func() {
		reading := vitalsTest.RandomReading(patient.UserId)
		reading.Timestamp = now.Add(-time.Hour)

		Expect(reminders.Overdue(patient, &reading, now)).To(BeEmpty())
	})

	It("reminds about pulse rate after three hours", func() {
		reading := vitals.Reading{
			PatientUserId: patient.UserId,
			Timestamp:     now.Add(-3*time.Hour - time.Minute),
			Measurements: vitals.Measurements{
				BodyTemperature: pointer.FromAny(37.0),
				HctPvc:          pointer.FromAny(15.0),
				PulseRate:       pointer.FromAny(80.0),
				BloodPressureSupine: &vitals.SupineBloodPressure{
					Systolic:  pointer.FromAny(110.0),
					Diastolic: pointer.FromAny(70.0),
				},
			},
		}

		Expect(vitalTypes(reminders.Overdue(patient, &reading, now))).To(Equal([]string{"pulseRate", "bloodPressure"}))
	})

	It("does not remind about pulse rate before three hours", func() {
		reading := vitals.Reading{
			PatientUserId: patient.UserId,
			Timestamp:     now.Add(-2*time.Hour - 59*time.Minute),
			Measurements: vitals.Measurements{
				BodyTemperature: pointer.FromAny(37.0),
				HctPvc:          pointer.FromAny(15.0),
				PulseRate:       pointer.FromAny(80.0),
				BloodPressureSupine: &vitals.SupineBloodPressure{
					Systolic: pointer.FromAny(110.0),
				},
			},
		}

		Expect(reminders.Overdue(patient, &reading, now)).To(BeEmpty())
	})

	It("treats an interval that has exactly elapsed as overdue", func() {
		reading := vitals.Reading{
			Timestamp:    now.Add(-4 * time.Hour),
			Measurements: vitals.Measurements{BodyTemperature: pointer.FromAny(37.0)},
		}

		list := reminders.Overdue(patient, &reading, now)
		Expect(vitalTypes(list)).To(ContainElement("bodyTemperature"))
		Expect(*list[0].LastMeasured).To(Equal(reading.Timestamp))
	})

	It("reminds about measurements missing from the latest reading", func() {
		reading := vitals.Reading{
			Timestamp: now.Add(-time.Minute),
			Measurements: vitals.Measurements{
				BodyTemperature:     pointer.FromAny(37.0),
				BloodPressureSupine: &vitals.SupineBloodPressure{PulsePressure: pointer.FromAny(40.0)},
			},
		}

		Expect(vitalTypes(reminders.Overdue(patient, &reading, now))).To(Equal([]string{"hctPvc", "pulseRate", "bloodPressure"}))
	})

	It("reminds about hct after six hours", func() {
		reading := vitals.Reading{
			Timestamp:    now.Add(-5*time.Hour - 59*time.Minute),
			Measurements: vitals.Measurements{HctPvc: pointer.FromAny(15.0)},
		}
		Expect(vitalTypes(reminders.Overdue(patient, &reading, now))).ToNot(ContainElement("hctPvc"))

		reading.Timestamp = now.Add(-6*time.Hour - time.Minute)
		Expect(vitalTypes(reminders.Overdue(patient, &reading, now))).To(ContainElement("hctPvc"))
	})
})
