package tracking

import (
	"context"
	"time"

	"inteldesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TrackingRepository interface {
	CreateRecord(ctx context.Context, rec *EmailTracking) error
	GetByTrackingID(ctx context.Context, trackingID string) (*EmailTracking, error)
	ListRecords(ctx context.Context, limit int64) ([]EmailTracking, error)

	// RecordOpen bumps open counters on the tracking record. Returns
	// false when no record exists for the tracking id.
	RecordOpen(ctx context.Context, trackingID string, at time.Time) (bool, error)
	RecordClick(ctx context.Context, trackingID string) (bool, error)

	InsertEvent(ctx context.Context, event *TrackingEvent) error
	ListEvents(ctx context.Context, trackingID string, limit int64) ([]TrackingEvent, error)

	Stats(ctx context.Context) (*TrackingStats, error)
	EnsureIndexes(ctx context.Context) error
}

type TrackingRepositoryImpl struct {
	records *mongo.Collection
	events  *mongo.Collection
}

func NewTrackingRepository(db *database.MongodbDB) TrackingRepository {
	return &TrackingRepositoryImpl{
		records: db.DB.Collection("email_tracking"),
		events:  db.DB.Collection("tracking_events"),
	}
}

func (r *TrackingRepositoryImpl) CreateRecord(ctx context.Context, rec *EmailTracking) error {
	rec.ID = primitive.NewObjectID()
	_, err := r.records.InsertOne(ctx, rec)
	return err
}

func (r *TrackingRepositoryImpl) GetByTrackingID(ctx context.Context, trackingID string) (*EmailTracking, error) {
	var rec EmailTracking
	err := r.records.FindOne(ctx, bson.M{"tracking_id": trackingID}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *TrackingRepositoryImpl) ListRecords(ctx context.Context, limit int64) ([]EmailTracking, error) {
	if limit <= 0 {
		limit = 100
	}

	var recs []EmailTracking
	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.records.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []EmailTracking{}
	}
	return recs, nil
}

func (r *TrackingRepositoryImpl) RecordOpen(ctx context.Context, trackingID string, at time.Time) (bool, error) {
	// First open sets first_opened_at; every open bumps the counter.
	_, err := r.records.UpdateOne(ctx,
		bson.M{"tracking_id": trackingID, "first_opened_at": nil},
		bson.M{"$set": bson.M{"first_opened_at": at.UTC()}})
	if err != nil {
		return false, err
	}

	result, err := r.records.UpdateOne(ctx,
		bson.M{"tracking_id": trackingID},
		bson.M{
			"$set": bson.M{"last_opened_at": at.UTC()},
			"$inc": bson.M{"open_count": 1},
		})
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *TrackingRepositoryImpl) RecordClick(ctx context.Context, trackingID string) (bool, error) {
	result, err := r.records.UpdateOne(ctx,
		bson.M{"tracking_id": trackingID},
		bson.M{"$inc": bson.M{"click_count": 1}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *TrackingRepositoryImpl) InsertEvent(ctx context.Context, event *TrackingEvent) error {
	event.ID = primitive.NewObjectID()
	event.CreatedAt = time.Now().UTC()
	_, err := r.events.InsertOne(ctx, event)
	return err
}

func (r *TrackingRepositoryImpl) ListEvents(ctx context.Context, trackingID string, limit int64) ([]TrackingEvent, error) {
	if limit <= 0 {
		limit = 200
	}

	var events []TrackingEvent
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.events.Find(ctx, bson.M{"tracking_id": trackingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []TrackingEvent{}
	}
	return events, nil
}

func (r *TrackingRepositoryImpl) Stats(ctx context.Context) (*TrackingStats, error) {
	cursor, err := r.records.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"total_sent":   bson.M{"$sum": 1},
			"total_opened": bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$gt": bson.A{"$open_count", 0}}, 1, 0}}},
			"total_opens":  bson.M{"$sum": "$open_count"},
			"total_clicks": bson.M{"$sum": "$click_count"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []TrackingStats
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &TrackingStats{}, nil
	}
	return &results[0], nil
}

func (r *TrackingRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.records.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tracking_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = r.events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tracking_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
