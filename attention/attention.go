package attention

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dengueguard/monitor/store"
)

const CollectionName = "attentionNeeded"

var ErrNotFound = errors.New("attention record not found")

//go:generate go tool mockgen -source=./attention.go -destination=./test/mock_attention.go -package test

type Repository interface {
	// Upsert creates the record for the patient or refreshes its last critical time
	Upsert(ctx context.Context, patientUserId string, lastCritical time.Time) (*Record, error)
	Get(ctx context.Context, patientUserId string) (*Record, error)
	List(ctx context.Context, pagination store.Pagination) ([]*Record, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Record flags a patient whose vitals breached a threshold. There is at most one per patient.
type Record struct {
	Id            *primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PatientUserId string              `json:"patientUserId" bson:"patientUserId"`
	LastCritical  time.Time           `json:"lastCritical" bson:"lastCritical"`
}
