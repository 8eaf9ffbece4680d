package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"phrasebook/internal/util"
)

type mongoCategory struct {
	ID     string `bson:"_id"`
	UserID string `bson:"user_id"`
	Name   string `bson:"name"`
	Emoji  string `bson:"emoji"`
}

type mongoPhrase struct {
	ID         string `bson:"_id"`
	UserID     string `bson:"user_id"`
	CategoryID string `bson:"category_id"`
	Text       string `bson:"text"`
}

// MongoStore maps the hierarchy onto two collections keyed by user id and category id.
type MongoStore struct {
	client     *mongo.Client
	categories *mongo.Collection
	phrases    *mongo.Collection
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := NewMongoStore(client, database)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:     client,
		categories: db.Collection("categories"),
		phrases:    db.Collection("phrases"),
	}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	if _, err := s.categories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create category index: %w", err)
	}
	if _, err := s.phrases.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "category_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create phrase index: %w", err)
	}
	return nil
}

func (s *MongoStore) AddCategory(ctx context.Context, userID, name, emoji string) (string, error) {
	doc := mongoCategory{ID: util.NewID("cat"), UserID: userID, Name: name, Emoji: emoji}
	if _, err := s.categories.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert category: %w", err)
	}
	return doc.ID, nil
}

func (s *MongoStore) Categories(ctx context.Context, userID string) iter.Seq2[Category, error] {
	return func(yield func(Category, error) bool) {
		cursor, err := s.categories.Find(ctx, bson.M{"user_id": userID})
		if err != nil {
			yield(Category{}, fmt.Errorf("list categories: %w", err))
			return
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var doc mongoCategory
			if err := cursor.Decode(&doc); err != nil {
				yield(Category{}, fmt.Errorf("decode category: %w", err))
				return
			}
			if !yield(Category{ID: doc.ID, Name: doc.Name, Emoji: doc.Emoji}, nil) {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			yield(Category{}, fmt.Errorf("list categories: %w", err))
		}
	}
}

func (s *MongoStore) AddPhrase(ctx context.Context, userID, categoryID, text string) (string, error) {
	err := s.categories.FindOne(ctx, bson.M{"_id": categoryID, "user_id": userID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup category: %w", err)
	}

	doc := mongoPhrase{ID: util.NewID("phr"), UserID: userID, CategoryID: categoryID, Text: text}
	if _, err := s.phrases.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert phrase: %w", err)
	}
	return doc.ID, nil
}

func (s *MongoStore) Phrases(ctx context.Context, userID, categoryID string) iter.Seq2[Phrase, error] {
	return func(yield func(Phrase, error) bool) {
		cursor, err := s.phrases.Find(ctx, bson.M{"user_id": userID, "category_id": categoryID})
		if err != nil {
			yield(Phrase{}, fmt.Errorf("list phrases: %w", err))
			return
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var doc mongoPhrase
			if err := cursor.Decode(&doc); err != nil {
				yield(Phrase{}, fmt.Errorf("decode phrase: %w", err))
				return
			}
			if !yield(Phrase{ID: doc.ID, Text: doc.Text}, nil) {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			yield(Phrase{}, fmt.Errorf("list phrases: %w", err))
		}
	}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
