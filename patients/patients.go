package patients

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CollectionName = "patients"

var ErrNotFound = errors.New("patient not found")
var ErrDuplicate = errors.New("patient is already registered")

//go:generate go tool mockgen -source=./patients.go -destination=./test/mock_patients.go -package test

type Repository interface {
	Get(ctx context.Context, userId string) (*Patient, error)
	ListAdmitted(ctx context.Context) ([]*Patient, error)
	Create(ctx context.Context, patient Patient) (*Patient, error)
	Discharge(ctx context.Context, userId string, dischargeDate time.Time) (*Patient, error)
}

// Directory resolves the display details of a patient
type Directory interface {
	Get(ctx context.Context, userId string) (*Patient, error)
	Invalidate(userId string)
}

type Patient struct {
	Id            *primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserId        string              `json:"userId" bson:"userId" validate:"required"`
	FullName      string              `json:"fullName" bson:"fullName" validate:"required"`
	BedNumber     string              `json:"bedNumber" bson:"bedNumber"`
	AdmissionDate time.Time           `json:"admissionDate" bson:"admissionDate"`
	DischargeDate *time.Time          `json:"dischargeDate,omitempty" bson:"dischargeDate,omitempty"`
}

// IsAdmitted returns true while no discharge date is recorded
func (p Patient) IsAdmitted() bool {
	return p.DischargeDate == nil
}
