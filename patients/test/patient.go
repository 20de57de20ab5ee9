package test

import (
	"fmt"
	"time"

	"github.com/dengueguard/monitor/patients"
	"github.com/dengueguard/monitor/test"
)

func RandomPatient() patients.Patient {
	return patients.Patient{
		UserId:        test.Faker.UUID().V4(),
		FullName:      test.Faker.Person().Name(),
		BedNumber:     fmt.Sprintf("W%d-%02d", test.Faker.IntBetween(1, 9), test.Faker.IntBetween(1, 40)),
		AdmissionDate: test.RandomTimeWithin(72 * time.Hour).UTC(),
	}
}

func RandomPatients(count int) []patients.Patient {
	list := make([]patients.Patient, count)
	for i := range list {
		list[i] = RandomPatient()
	}
	return list
}
