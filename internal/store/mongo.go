package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weatherapp/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

type Mongo struct {
	client *mongo.Client
	users  *mongo.Collection
}

// NewMongo connects to uri, checks the connection and makes sure the
// unique email index exists
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB, %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB, %w", err)
	}

	users := client.Database(database).Collection(usersCollection)

	_, err = users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "verify_token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "reset_token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user indexes, %w", err)
	}

	return &Mongo{client: client, users: users}, nil
}

func (s *Mongo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, "email", email)
}

func (s *Mongo) FindByVerifyToken(ctx context.Context, token string) (*model.User, error) {
	return s.findOne(ctx, "verify_token", token)
}

func (s *Mongo) FindByResetToken(ctx context.Context, token string) (*model.User, error) {
	return s.findOne(ctx, "reset_token", token)
}

func (s *Mongo) findOne(ctx context.Context, field, value string) (*model.User, error) {
	if value == "" {
		return nil, ErrNotFound
	}

	var user model.User

	err := s.users.FindOne(ctx, bson.M{field: value}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (s *Mongo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}

	return err
}

// Save replaces the whole document so cleared tokens disappear from it
func (s *Mongo) Save(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now().UTC()

	r, err := s.users.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}

		return err
	}

	if r.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Mongo) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	r, err := s.users.UpdateMany(ctx,
		bson.M{"reset_token_expires": bson.M{"$lte": now}},
		bson.M{
			"$unset": bson.M{"reset_token": "", "reset_token_expires": ""},
			"$set":   bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return 0, err
	}

	return r.ModifiedCount, nil
}

func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
