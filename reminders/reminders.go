package reminders

import (
	"fmt"
	"time"

	"github.com/dengueguard/monitor/patients"
	"github.com/dengueguard/monitor/vitals"
)

// Schedule is the maximum time allowed between two measurements of a vital
type Schedule struct {
	VitalType string
	Interval  time.Duration
	Text      string
	measured  func(m vitals.Measurements) bool
}

var Schedules = []Schedule{
	{
		VitalType: "bodyTemperature",
		Interval:  4 * time.Hour,
		Text:      "Time to measure body temperature.",
		measured:  func(m vitals.Measurements) bool { return m.BodyTemperature != nil },
	},
	{
		VitalType: "hctPvc",
		Interval:  6 * time.Hour,
		Text:      "Time to measure HCT/PVC.",
		measured:  func(m vitals.Measurements) bool { return m.HctPvc != nil },
	},
	{
		VitalType: "pulseRate",
		Interval:  3 * time.Hour,
		Text:      "Time to measure pulse rate.",
		measured:  func(m vitals.Measurements) bool { return m.PulseRate != nil },
	},
	{
		VitalType: "bloodPressure",
		Interval:  3 * time.Hour,
		Text:      "Time to measure blood pressure.",
		measured:  vitals.Measurements.HasSupineBloodPressure,
	},
}

type Reminder struct {
	PatientUserId string
	Name          string
	BedNumber     string
	VitalType     string
	Message       string
	// LastMeasured is nil when the latest reading doesn't contain the measurement
	LastMeasured *time.Time
	Timestamp    time.Time
}

// Overdue returns a reminder for every measurement missing from the latest reading
// or taken at least its interval ago. A nil reading makes every measurement overdue.
func Overdue(patient patients.Patient, latest *vitals.Reading, now time.Time) []Reminder {
	var reminders []Reminder
	for _, schedule := range Schedules {
		var lastMeasured *time.Time
		if latest != nil && schedule.measured(latest.Measurements) {
			timestamp := latest.Timestamp
			lastMeasured = &timestamp
		}

		if lastMeasured != nil && now.Sub(*lastMeasured) < schedule.Interval {
			continue
		}

		reminders = append(reminders, Reminder{
			PatientUserId: patient.UserId,
			Name:          patient.FullName,
			BedNumber:     patient.BedNumber,
			VitalType:     schedule.VitalType,
			Message:       fmt.Sprintf("%s (%s): %s", patient.FullName, patient.BedNumber, schedule.Text),
			LastMeasured:  lastMeasured,
			Timestamp:     now,
		})
	}
	return reminders
}
