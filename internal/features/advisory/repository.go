package advisory

import (
	"context"
	"time"

	"inteldesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AdvisoryRepository interface {
	Create(ctx context.Context, adv *Advisory) error
	GetByID(ctx context.Context, id string) (*Advisory, error)
	List(ctx context.Context, limit int64) ([]Advisory, error)
	Update(ctx context.Context, adv *Advisory) error
}

type AdvisoryRepositoryImpl struct {
	collection *mongo.Collection
}

func NewAdvisoryRepository(db *database.MongodbDB) AdvisoryRepository {
	return &AdvisoryRepositoryImpl{
		collection: db.DB.Collection("advisories"),
	}
}

func (r *AdvisoryRepositoryImpl) Create(ctx context.Context, adv *Advisory) error {
	adv.ID = primitive.NewObjectID()
	adv.CreatedAt = time.Now()
	adv.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, adv)
	return err
}

func (r *AdvisoryRepositoryImpl) GetByID(ctx context.Context, id string) (*Advisory, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var adv Advisory
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&adv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &adv, nil
}

func (r *AdvisoryRepositoryImpl) List(ctx context.Context, limit int64) ([]Advisory, error) {
	var advisories []Advisory

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &advisories); err != nil {
		return nil, err
	}
	if advisories == nil {
		advisories = []Advisory{}
	}
	return advisories, nil
}

func (r *AdvisoryRepositoryImpl) Update(ctx context.Context, adv *Advisory) error {
	adv.UpdatedAt = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": adv.ID}, bson.M{"$set": adv})
	return err
}
