package test

import (
	"time"

	"github.com/dengueguard/monitor/pointer"
	"github.com/dengueguard/monitor/test"
	"github.com/dengueguard/monitor/vitals"
)

// NormalMeasurements returns a complete set of measurements inside every safe range
func NormalMeasurements() vitals.Measurements {
	return vitals.Measurements{
		BodyTemperature: pointer.FromAny(test.RandomFloat(36.1, 37.5)),
		PulseRate:       pointer.FromAny(test.RandomFloat(60, 100)),
		HctPvc:          pointer.FromAny(test.RandomFloat(10, 20)),
		BloodPressureSupine: &vitals.SupineBloodPressure{
			Systolic:             pointer.FromAny(test.RandomFloat(100, 130)),
			Diastolic:            pointer.FromAny(test.RandomFloat(65, 80)),
			PulsePressure:        pointer.FromAny(test.RandomFloat(30, 50)),
			MeanArterialPressure: pointer.FromAny(test.RandomFloat(70, 95)),
		},
		BloodPressureSitting: &vitals.BloodPressure{
			Systolic:  pointer.FromAny(test.RandomFloat(100, 130)),
			Diastolic: pointer.FromAny(test.RandomFloat(65, 80)),
		},
		RespiratoryRate:     pointer.FromAny(test.RandomFloat(10, 15)),
		CapillaryRefillTime: pointer.FromAny(test.RandomFloat(1, 2.5)),
		Wbc:                 pointer.FromAny(test.RandomFloat(5000, 10000)),
		Plt:                 pointer.FromAny(test.RandomFloat(150000, 400000)),
		Observation:         pointer.FromAny(test.Faker.Lorem().Sentence(6)),
	}
}

func RandomReading(patientUserId string) vitals.Reading {
	return vitals.Reading{
		PatientUserId:   patientUserId,
		EnteredByUserId: pointer.FromAny(test.Faker.UUID().V4()),
		Timestamp:       test.RandomTimeWithin(6 * time.Hour).UTC(),
		Measurements:    NormalMeasurements(),
	}
}
