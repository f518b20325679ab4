package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
)

// MongoRepository persists session state in MongoDB. One document per chat
// in the per-chat collections; the cache collection holds the global sets
// keyed by name.
type MongoRepository struct {
	assistants *mongo.Collection
	playModes  *mongo.Collection
	auth       *mongo.Collection
	chats      *mongo.Collection
	users      *mongo.Collection
	cache      *mongo.Collection

	client *mongo.Client
}

// ConnectMongo dials the MongoDB deployment at uri and returns a repository
// over the named database.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	db := client.Database(database)
	return &MongoRepository{
		assistants: db.Collection("assistants"),
		playModes:  db.Collection("playmodes"),
		auth:       db.Collection("authusers"),
		chats:      db.Collection("chats"),
		users:      db.Collection("users"),
		cache:      db.Collection("cache"),
		client:     client,
	}, nil
}

// Close disconnects the underlying client.
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepository) AssistantNum(ctx context.Context, chatID int64) (int, error) {
	var doc struct {
		Num int `bson:"num"`
	}
	err := r.assistants.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read assistant assignment: %w", err)
	}
	return doc.Num, nil
}

func (r *MongoRepository) SetAssistantNum(ctx context.Context, chatID int64, num int) error {
	_, err := r.assistants.UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{"$set": bson.M{"num": num}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store assistant assignment: %w", err)
	}
	return nil
}

func (r *MongoRepository) PlayMode(ctx context.Context, chatID int64) (string, error) {
	var doc struct {
		Mode string `bson:"mode"`
	}
	err := r.playModes.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read play mode: %w", err)
	}
	return doc.Mode, nil
}

func (r *MongoRepository) SetPlayMode(ctx context.Context, chatID int64, mode string) error {
	_, err := r.playModes.UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{"$set": bson.M{"mode": mode}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store play mode: %w", err)
	}
	return nil
}

func (r *MongoRepository) AuthUsers(ctx context.Context, chatID int64) ([]int64, error) {
	var doc struct {
		Users []int64 `bson:"users"`
	}
	err := r.auth.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read auth users: %w", err)
	}
	return doc.Users, nil
}

func (r *MongoRepository) AddAuthUser(ctx context.Context, chatID, userID int64) error {
	_, err := r.auth.UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{"$addToSet": bson.M{"users": userID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to add auth user: %w", err)
	}
	return nil
}

func (r *MongoRepository) RemoveAuthUser(ctx context.Context, chatID, userID int64) error {
	_, err := r.auth.UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{"$pull": bson.M{"users": userID}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove auth user: %w", err)
	}
	return nil
}

func (r *MongoRepository) Chats(ctx context.Context) ([]int64, error) {
	return r.scanIDs(ctx, r.chats, "chat_id")
}

func (r *MongoRepository) AddChat(ctx context.Context, chatID int64) error {
	_, err := r.chats.UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{"$set": bson.M{"chat_id": chatID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to add chat: %w", err)
	}
	return nil
}

func (r *MongoRepository) RemoveChat(ctx context.Context, chatID int64) error {
	_, err := r.chats.DeleteOne(ctx, bson.M{"chat_id": chatID})
	if err != nil {
		return fmt.Errorf("failed to remove chat: %w", err)
	}
	return nil
}

func (r *MongoRepository) Users(ctx context.Context) ([]int64, error) {
	return r.scanIDs(ctx, r.users, "user_id")
}

func (r *MongoRepository) AddUser(ctx context.Context, userID int64) error {
	_, err := r.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"user_id": userID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	return nil
}

func (r *MongoRepository) CacheSet(ctx context.Context, id string) ([]int64, error) {
	var doc struct {
		Values []int64 `bson:"values"`
	}
	err := r.cache.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache set %s: %w", id, err)
	}
	return doc.Values, nil
}

func (r *MongoRepository) AddToCacheSet(ctx context.Context, id string, value int64) error {
	_, err := r.cache.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"values": value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to add to cache set %s: %w", id, err)
	}
	return nil
}

func (r *MongoRepository) RemoveFromCacheSet(ctx context.Context, id string, value int64) error {
	_, err := r.cache.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"values": value}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove from cache set %s: %w", id, err)
	}
	return nil
}

func (r *MongoRepository) LoggerEnabled(ctx context.Context) (bool, error) {
	var doc struct {
		Enabled bool `bson:"enabled"`
	}
	err := r.cache.FindOne(ctx, bson.M{"_id": ports.CacheLogger}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read logger flag: %w", err)
	}
	return doc.Enabled, nil
}

func (r *MongoRepository) SetLoggerEnabled(ctx context.Context, enabled bool) error {
	_, err := r.cache.UpdateOne(ctx,
		bson.M{"_id": ports.CacheLogger},
		bson.M{"$set": bson.M{"enabled": enabled}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store logger flag: %w", err)
	}
	return nil
}

func (r *MongoRepository) scanIDs(ctx context.Context, coll *mongo.Collection, field string) ([]int64, error) {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var ids []int64
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", coll.Name(), err)
		}
		switch v := doc[field].(type) {
		case int64:
			ids = append(ids, v)
		case int32:
			ids = append(ids, int64(v))
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", coll.Name(), err)
	}
	return ids, nil
}
