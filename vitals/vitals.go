package vitals

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dengueguard/monitor/store"
)

const CollectionName = "vitals"

var ErrNotFound = errors.New("vitals reading not found")
var ErrFutureTimestamp = errors.New("vitals reading timestamp is in the future")

// MaxClockSkew is how far ahead of the server clock a submitted timestamp may be
const MaxClockSkew = time.Minute

//go:generate go tool mockgen -source=./vitals.go -destination=./test/mock_vitals.go -package test

type Service interface {
	Submit(ctx context.Context, submission Submission) (*Reading, error)
	List(ctx context.Context, patientUserId string, pagination store.Pagination) ([]*Reading, error)
	Latest(ctx context.Context, patientUserId string) (*Reading, error)
}

// Repository stores readings. Readings are append-only.
type Repository interface {
	Create(ctx context.Context, reading Reading) (*Reading, error)
	List(ctx context.Context, patientUserId string, pagination store.Pagination) ([]*Reading, error)
	Latest(ctx context.Context, patientUserId string) (*Reading, error)
}

type Submission struct {
	PatientUserId   string     `json:"patientUserId" validate:"required"`
	EnteredByUserId *string    `json:"enteredByUserId,omitempty"`
	Timestamp       *time.Time `json:"timestamp,omitempty" validate:"omitempty,notfuture"`
	Measurements
}

type Reading struct {
	Id              *primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PatientUserId   string              `json:"patientUserId" bson:"patientUserId"`
	EnteredByUserId *string             `json:"enteredByUserId,omitempty" bson:"enteredByUserId,omitempty"`
	Timestamp       time.Time           `json:"timestamp" bson:"timestamp"`
	Measurements    `bson:",inline"`
}

type Measurements struct {
	BodyTemperature      *float64             `json:"bodyTemperature,omitempty" bson:"bodyTemperature,omitempty" validate:"omitempty,gte=0"`
	PulseRate            *float64             `json:"pulseRate,omitempty" bson:"pulseRate,omitempty" validate:"omitempty,gte=0"`
	HctPvc               *float64             `json:"hctPvc,omitempty" bson:"hctPvc,omitempty" validate:"omitempty,gte=0"`
	BloodPressureSupine  *SupineBloodPressure `json:"bloodPressureSupine,omitempty" bson:"bloodPressureSupine,omitempty"`
	BloodPressureSitting *BloodPressure       `json:"bloodPressureSitting,omitempty" bson:"bloodPressureSitting,omitempty"`
	RespiratoryRate      *float64             `json:"respiratoryRate,omitempty" bson:"respiratoryRate,omitempty" validate:"omitempty,gte=0"`
	CapillaryRefillTime  *float64             `json:"capillaryRefillTime,omitempty" bson:"capillaryRefillTime,omitempty" validate:"omitempty,gte=0"`
	Wbc                  *float64             `json:"wbc,omitempty" bson:"wbc,omitempty" validate:"omitempty,gte=0"`
	Plt                  *float64             `json:"plt,omitempty" bson:"plt,omitempty" validate:"omitempty,gte=0"`
	Observation          *string              `json:"observation,omitempty" bson:"observation,omitempty"`
}

type BloodPressure struct {
	Systolic  *float64 `json:"systolic,omitempty" bson:"systolic,omitempty" validate:"omitempty,gte=0"`
	Diastolic *float64 `json:"diastolic,omitempty" bson:"diastolic,omitempty" validate:"omitempty,gte=0"`
}

type SupineBloodPressure struct {
	Systolic             *float64 `json:"systolic,omitempty" bson:"systolic,omitempty" validate:"omitempty,gte=0"`
	Diastolic            *float64 `json:"diastolic,omitempty" bson:"diastolic,omitempty" validate:"omitempty,gte=0"`
	PulsePressure        *float64 `json:"pulsePressure,omitempty" bson:"pulsePressure,omitempty" validate:"omitempty,gte=0"`
	MeanArterialPressure *float64 `json:"meanArterialPressure,omitempty" bson:"meanArterialPressure,omitempty" validate:"omitempty,gte=0"`
}

// HasSupineBloodPressure returns true when a supine systolic or diastolic pressure was recorded
func (m Measurements) HasSupineBloodPressure() bool {
	return m.BloodPressureSupine != nil &&
		(m.BloodPressureSupine.Systolic != nil || m.BloodPressureSupine.Diastolic != nil)
}

// IsFuture returns true when t is ahead of now by more than the allowed clock skew
func IsFuture(t time.Time, now time.Time) bool {
	return t.After(now.Add(MaxClockSkew))
}
