package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dengueguard/monitor/patients"
	"github.com/dengueguard/monitor/store"
)

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (patients.Repository, error) {
	repo := &repository{
		collection: db.Collection(patients.CollectionName),
		logger:     logger,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return repo.Initialize(ctx)
		},
	})

	return repo, nil
}

type repository struct {
	collection *mongo.Collection
	logger     *zap.SugaredLogger
}

func (r *repository) Initialize(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("UniquePatient"),
		},
		{
			Keys: bson.D{
				{Key: "dischargeDate", Value: 1},
				{Key: "bedNumber", Value: 1},
			},
			Options: options.Index().
				SetName("Admitted"),
		},
	})
	return err
}

func (r *repository) Get(ctx context.Context, userId string) (*patients.Patient, error) {
	selector := bson.M{
		"userId": userId,
	}

	patient := &patients.Patient{}
	err := r.collection.FindOne(ctx, selector).Decode(patient)
	if store.IsNotFoundError(err) {
		return nil, patients.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error fetching patient: %w", err)
	}

	return patient, nil
}

func (r *repository) ListAdmitted(ctx context.Context) ([]*patients.Patient, error) {
	// nil matches both missing and explicitly null discharge dates
	selector := bson.M{
		"dischargeDate": nil,
	}
	opts := options.Find().SetSort(bson.D{{Key: "bedNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, selector, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing admitted patients: %w", err)
	}

	list := make([]*patients.Patient, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("error decoding admitted patients: %w", err)
	}

	return list, nil
}

func (r *repository) Create(ctx context.Context, patient patients.Patient) (*patients.Patient, error) {
	if patient.AdmissionDate.IsZero() {
		patient.AdmissionDate = time.Now()
	}
	patient.Id = nil

	if _, err := r.collection.InsertOne(ctx, patient); err != nil {
		if store.IsDuplicateKeyError(err) {
			return nil, patients.ErrDuplicate
		}
		return nil, fmt.Errorf("error creating patient: %w", err)
	}

	r.logger.Infow("patient admitted", "userId", patient.UserId, "bedNumber", patient.BedNumber)
	return r.Get(ctx, patient.UserId)
}

func (r *repository) Discharge(ctx context.Context, userId string, dischargeDate time.Time) (*patients.Patient, error) {
	selector := bson.M{
		"userId": userId,
	}
	update := bson.M{
		"$set": bson.M{
			"dischargeDate": dischargeDate,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	patient := &patients.Patient{}
	err := r.collection.FindOneAndUpdate(ctx, selector, update, opts).Decode(patient)
	if store.IsNotFoundError(err) {
		return nil, patients.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error discharging patient: %w", err)
	}

	r.logger.Infow("patient discharged", "userId", userId)
	return patient, nil
}
