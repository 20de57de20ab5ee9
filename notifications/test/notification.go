package test

import (
	"time"

	"github.com/dengueguard/monitor/notifications"
	"github.com/dengueguard/monitor/test"
)

var conditions = []string{"body temperature", "WBC", "PLT", "HCT PVC", "Supine Systolic BP", "MAP", "Pulse Pressure", "Pulse Rate", "Respiratory Rate", "CRFT"}

func RandomNotification() notifications.Notification {
	name := test.Faker.Person().Name()
	condition := test.Faker.RandomStringElement(conditions)
	return notifications.Notification{
		PatientUserId: test.Faker.UUID().V4(),
		Message:       name + "'s " + condition + " is abnormal - " + test.Faker.Numerify("##"),
		Condition:     condition,
		Timestamp:     test.RandomTimeWithin(12 * time.Hour).UTC(),
	}
}
