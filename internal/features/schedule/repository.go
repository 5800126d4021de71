package schedule

import (
	"context"
	"time"

	"inteldesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ScheduleRepository persists ScheduledEmail records. Every status
// transition out of pending is a conditional update filtered on
// status=="pending" so overlapping dispatch triggers cannot both
// claim the same record.
type ScheduleRepository interface {
	Create(ctx context.Context, email *ScheduledEmail) error
	GetByID(ctx context.Context, id string) (*ScheduledEmail, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*ScheduledEmail, error)
	List(ctx context.Context, status *Status) ([]ScheduledEmail, error)
	FindDue(ctx context.Context, now time.Time) ([]ScheduledEmail, error)

	// ReplacePending overwrites the mutable fields while the record is
	// still pending. Returns false when the record was not pending.
	ReplacePending(ctx context.Context, email *ScheduledEmail) (bool, error)

	// CancelPending transitions pending -> cancelled.
	CancelPending(ctx context.Context, id string) (bool, error)

	// MarkSent transitions pending -> sent, recording sentAt and the
	// tracking id minted at send time.
	MarkSent(ctx context.Context, id string, sentAt time.Time, trackingID string) (bool, error)

	// MarkFailed transitions pending -> failed, capturing the transport
	// error and incrementing retry_count.
	MarkFailed(ctx context.Context, id string, errMsg string) (bool, error)

	Delete(ctx context.Context, id string) error

	// Open/click bookkeeping, keyed by tracking id. Append-only from
	// the record's perspective; unknown tracking ids are a no-op.
	MarkOpened(ctx context.Context, trackingID string, at time.Time) error
	IncrementClicks(ctx context.Context, trackingID string) error

	EnsureIndexes(ctx context.Context) error
}

type ScheduleRepositoryImpl struct {
	collection *mongo.Collection
}

func NewScheduleRepository(db *database.MongodbDB) ScheduleRepository {
	return &ScheduleRepositoryImpl{
		collection: db.DB.Collection("scheduled_emails"),
	}
}

func (r *ScheduleRepositoryImpl) Create(ctx context.Context, email *ScheduledEmail) error {
	email.ID = primitive.NewObjectID()
	email.Status = StatusPending
	email.CreatedAt = time.Now().UTC()
	email.UpdatedAt = email.CreatedAt

	_, err := r.collection.InsertOne(ctx, email)
	return err
}

func (r *ScheduleRepositoryImpl) GetByID(ctx context.Context, id string) (*ScheduledEmail, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var email ScheduledEmail
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

func (r *ScheduleRepositoryImpl) GetByTrackingID(ctx context.Context, trackingID string) (*ScheduledEmail, error) {
	var email ScheduledEmail
	err := r.collection.FindOne(ctx, bson.M{"tracking_id": trackingID}).Decode(&email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

func (r *ScheduleRepositoryImpl) List(ctx context.Context, status *Status) ([]ScheduledEmail, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = *status
	}

	var emails []ScheduledEmail
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &emails); err != nil {
		return nil, err
	}
	if emails == nil {
		emails = []ScheduledEmail{}
	}
	return emails, nil
}

func (r *ScheduleRepositoryImpl) FindDue(ctx context.Context, now time.Time) ([]ScheduledEmail, error) {
	filter := bson.M{
		"status":       StatusPending,
		"scheduled_at": bson.M{"$lte": now.UTC()},
	}

	var emails []ScheduledEmail
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &emails); err != nil {
		return nil, err
	}
	if emails == nil {
		emails = []ScheduledEmail{}
	}
	return emails, nil
}

func (r *ScheduleRepositoryImpl) ReplacePending(ctx context.Context, email *ScheduledEmail) (bool, error) {
	update := bson.M{"$set": bson.M{
		"to":             email.To,
		"cc":             email.Cc,
		"bcc":            email.Bcc,
		"subject":        email.Subject,
		"custom_message": email.CustomMessage,
		"scheduled_at":   email.ScheduledAt,
		"bulk_mode":      email.BulkMode,
		"updated_at":     time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": email.ID, "status": StatusPending}, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *ScheduleRepositoryImpl) CancelPending(ctx context.Context, id string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": StatusPending},
		bson.M{"$set": bson.M{
			"status":     StatusCancelled,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *ScheduleRepositoryImpl) MarkSent(ctx context.Context, id string, sentAt time.Time, trackingID string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": StatusPending},
		bson.M{"$set": bson.M{
			"status":      StatusSent,
			"sent_at":     sentAt.UTC(),
			"tracking_id": trackingID,
			"updated_at":  time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *ScheduleRepositoryImpl) MarkFailed(ctx context.Context, id string, errMsg string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": StatusPending},
		bson.M{
			"$set": bson.M{
				"status":        StatusFailed,
				"error_message": errMsg,
				"updated_at":    time.Now().UTC(),
			},
			"$inc": bson.M{"retry_count": 1},
		})
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *ScheduleRepositoryImpl) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}

func (r *ScheduleRepositoryImpl) MarkOpened(ctx context.Context, trackingID string, at time.Time) error {
	// First open sets opened_at; later opens only bump the counter.
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"tracking_id": trackingID, "is_opened": false},
		bson.M{"$set": bson.M{
			"is_opened": true,
			"opened_at": at.UTC(),
		}})
	if err != nil {
		return err
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"tracking_id": trackingID},
		bson.M{"$inc": bson.M{"open_count": 1}})
	return err
}

func (r *ScheduleRepositoryImpl) IncrementClicks(ctx context.Context, trackingID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"tracking_id": trackingID},
		bson.M{"$inc": bson.M{"click_count": 1}})
	return err
}

func (r *ScheduleRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "scheduled_at", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
		{Keys: bson.D{{Key: "tracking_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	return err
}
