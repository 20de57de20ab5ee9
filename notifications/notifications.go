package notifications

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dengueguard/monitor/store"
)

const CollectionName = "notifications"

//go:generate go tool mockgen -source=./notifications.go -destination=./test/mock_notifications.go -package test

type Repository interface {
	Create(ctx context.Context, notification Notification) (*Notification, error)
	List(ctx context.Context, filter Filter, pagination store.Pagination) ([]*Notification, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Notification records a single breached condition of a vitals reading
type Notification struct {
	Id            *primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PatientUserId string              `json:"patientUserId" bson:"patientUserId"`
	Message       string              `json:"message" bson:"message"`
	Condition     string              `json:"condition" bson:"condition"`
	Timestamp     time.Time           `json:"timestamp" bson:"timestamp"`
}

type Filter struct {
	PatientUserId *string
	Since         *time.Time
}
