package client

import (
	"context"
	"time"

	"inteldesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ClientRepository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, id string) (*Client, error)
	GetByClientID(ctx context.Context, clientID string) (*Client, error)
	List(ctx context.Context, activeOnly bool) ([]Client, error)
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id string) error
}

type ClientRepositoryImpl struct {
	collection *mongo.Collection
}

func NewClientRepository(db *database.MongodbDB) ClientRepository {
	return &ClientRepositoryImpl{
		collection: db.DB.Collection("clients"),
	}
}

func (r *ClientRepositoryImpl) Create(ctx context.Context, client *Client) error {
	client.ID = primitive.NewObjectID()
	client.CreatedAt = time.Now()
	client.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, client)
	return err
}

func (r *ClientRepositoryImpl) GetByID(ctx context.Context, id string) (*Client, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var c Client
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepositoryImpl) GetByClientID(ctx context.Context, clientID string) (*Client, error) {
	var c Client
	err := r.collection.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]Client, error) {
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}

	var clients []Client
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []Client{}
	}
	return clients, nil
}

func (r *ClientRepositoryImpl) Update(ctx context.Context, client *Client) error {
	client.UpdatedAt = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": client.ID}, bson.M{"$set": client})
	return err
}

func (r *ClientRepositoryImpl) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}
