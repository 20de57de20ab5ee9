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

	"github.com/dengueguard/monitor/attention"
	"github.com/dengueguard/monitor/store"
)

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (attention.Repository, error) {
	repo := &repository{
		collection: db.Collection(attention.CollectionName),
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
			},
			Options: options.Index().
				SetUnique(true).
				SetName("UniquePatient"),
		},
		{
			Keys: bson.D{
				{Key: "lastCritical", Value: 1},
			},
			Options: options.Index().
				SetName("Retention"),
		},
	})
	return err
}

func (r *repository) Upsert(ctx context.Context, patientUserId string, lastCritical time.Time) (*attention.Record, error) {
	record, err := r.upsert(ctx, patientUserId, lastCritical)
	if store.IsDuplicateKeyError(err) {
		// A concurrent first insert for the same patient won the race, the retry matches it
		r.logger.Debugw("retrying attention upsert after duplicate key error", "patientUserId", patientUserId)
		record, err = r.upsert(ctx, patientUserId, lastCritical)
	}
	if err != nil {
		return nil, fmt.Errorf("error upserting attention record: %w", err)
	}

	return record, nil
}

func (r *repository) upsert(ctx context.Context, patientUserId string, lastCritical time.Time) (*attention.Record, error) {
	selector := bson.M{
		"patientUserId": patientUserId,
	}
	// Late entered readings never move the flag back in time
	update := bson.M{
		"$max": bson.M{
			"lastCritical": lastCritical,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	record := &attention.Record{}
	if err := r.collection.FindOneAndUpdate(ctx, selector, update, opts).Decode(record); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *repository) Get(ctx context.Context, patientUserId string) (*attention.Record, error) {
	selector := bson.M{
		"patientUserId": patientUserId,
	}

	record := &attention.Record{}
	err := r.collection.FindOne(ctx, selector).Decode(record)
	if store.IsNotFoundError(err) {
		return nil, attention.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error fetching attention record: %w", err)
	}

	return record, nil
}

func (r *repository) List(ctx context.Context, pagination store.Pagination) ([]*attention.Record, error) {
	pagination = pagination.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "lastCritical", Value: -1}}).
		SetSkip(int64(pagination.Offset)).
		SetLimit(int64(pagination.Limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing attention records: %w", err)
	}

	list := make([]*attention.Record, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("error decoding attention records: %w", err)
	}

	return list, nil
}

// DeleteBefore removes records whose last critical time is strictly older than the cutoff
func (r *repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	selector := bson.M{
		"lastCritical": bson.M{"$lt": cutoff},
	}

	res, err := r.collection.DeleteMany(ctx, selector)
	if err != nil {
		return 0, fmt.Errorf("error deleting attention records: %w", err)
	}

	return res.DeletedCount, nil
}
