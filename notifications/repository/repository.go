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

	"github.com/dengueguard/monitor/notifications"
	"github.com/dengueguard/monitor/store"
)

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (notifications.Repository, error) {
	repo := &repository{
		collection: db.Collection(notifications.CollectionName),
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
				SetName("PatientNotifications"),
		},
		{
			Keys: bson.D{
				{Key: "timestamp", Value: 1},
			},
			Options: options.Index().
				SetName("Retention"),
		},
	})
	return err
}

func (r *repository) Create(ctx context.Context, notification notifications.Notification) (*notifications.Notification, error) {
	notification.Id = nil
	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now()
	}

	res, err := r.collection.InsertOne(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("error creating notification: %w", err)
	}

	id := res.InsertedID.(primitive.ObjectID)
	notification.Id = &id
	return &notification, nil
}

func (r *repository) List(ctx context.Context, filter notifications.Filter, pagination store.Pagination) ([]*notifications.Notification, error) {
	pagination = pagination.Normalize()

	selector := bson.M{}
	if filter.PatientUserId != nil {
		selector["patientUserId"] = *filter.PatientUserId
	}
	if filter.Since != nil {
		selector["timestamp"] = bson.M{"$gte": *filter.Since}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(pagination.Offset)).
		SetLimit(int64(pagination.Limit))

	cursor, err := r.collection.Find(ctx, selector, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}

	list := make([]*notifications.Notification, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("error decoding notifications: %w", err)
	}

	return list, nil
}

// DeleteBefore removes notifications strictly older than the cutoff
func (r *repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	selector := bson.M{
		"timestamp": bson.M{"$lt": cutoff},
	}

	res, err := r.collection.DeleteMany(ctx, selector)
	if err != nil {
		return 0, fmt.Errorf("error deleting notifications: %w", err)
	}

	return res.DeletedCount, nil
}
