package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dengueguard/monitor/store"
	"github.com/dengueguard/monitor/vitals"
)

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (vitals.Repository, error) {
	repo := &repository{
		collection: db.Collection(vitals.CollectionName),
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
				{Key: "patientUserId", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().
				SetName("PatientReadings"),
		},
	})
	return err
}

func (r *repository) Create(ctx context.Context, reading vitals.Reading) (*vitals.Reading, error) {
	reading.Id = nil
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now()
	}

	res, err := r.collection.InsertOne(ctx, reading)
	if err != nil {
		return nil, fmt.Errorf("error creating vitals reading: %w", err)
	}

	id := res.InsertedID.(primitive.ObjectID)
	reading.Id = &id
	return &reading, nil
}

func (r *repository) List(ctx context.Context, patientUserId string, pagination store.Pagination) ([]*vitals.Reading, error) {
	pagination = pagination.Normalize()
	selector := bson.M{
		"patientUserId": patientUserId,
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(pagination.Offset)).
		SetLimit(int64(pagination.Limit))

	cursor, err := r.collection.Find(ctx, selector, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing vitals readings: %w", err)
	}

	list := make([]*vitals.Reading, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("error decoding vitals readings: %w", err)
	}

	return list, nil
}

func (r *repository) Latest(ctx context.Context, patientUserId string) (*vitals.Reading, error) {
	selector := bson.M{
		"patientUserId": patientUserId,
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})

	reading := &vitals.Reading{}
	err := r.collection.FindOne(ctx, selector, opts).Decode(reading)
	if store.IsNotFoundError(err) {
		return nil, vitals.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error fetching latest vitals reading: %w", err)
	}

	return reading, nil
}
