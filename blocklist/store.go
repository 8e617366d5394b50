package blocklist

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store persists block entries.
type Store interface {
	Put(ctx context.Context, b Blocked) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]Blocked, error)
}

// MemoryStore is the in-memory Store used by tests and one-shot runs.
type MemoryStore struct {
	mu     sync.RWMutex
	blocks map[string]Blocked
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blocks: make(map[string]Blocked)}
}

func (s *MemoryStore) Put(_ context.Context, b Blocked) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[b.ID] = b
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blocks[id]; !ok {
		return false, nil
	}
	delete(s.blocks, id)
	return true, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Blocked, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Blocked, 0, len(s.blocks))
	for _, b := range s.blocks {
		out = append(out, b)
	}
	return out, nil
}

// MongoStore keeps the blocklist in MongoDB. The id already encodes the
// (normalized name, scope) uniqueness invariant.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		coll: client.Database(database).Collection(Blocked{}.CollectionName()),
	}
}

func (s *MongoStore) Put(ctx context.Context, b Blocked) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": b.ID}, b, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Blocked, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	var blocks []Blocked
	if err := cur.All(ctx, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}
