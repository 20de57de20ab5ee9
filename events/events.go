package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	EventNewNotification = "newNotification"
	EventReminder        = "reminder"
)

//go:generate go tool mockgen -source=./events.go -destination=./test/mock_events.go -package test

// Publisher delivers named events to connected dashboards. Delivery is at-most-once.
type Publisher interface {
	Publish(ctx context.Context, name string, payload any) error
}

type Event struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func NewEvent(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("unable to marshal %s payload: %w", name, err)
	}

	return Event{
		Type:      name,
		Timestamp: time.Now(),
		Data:      data,
	}, nil
}

type NotificationPayload struct {
	Patient   string    `json:"patient"`
	Name      string    `json:"name"`
	BedNumber string    `json:"bedNumber"`
	Vital     string    `json:"vital"`
	Value     float64   `json:"value"`
	Condition string    `json:"condition"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type ReminderPayload struct {
	Message   string    `json:"message"`
	VitalType string    `json:"vitalType"`
	PatientId string    `json:"patientId"`
	Timestamp time.Time `json:"timestamp"`
}
