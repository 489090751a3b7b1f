package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/espalier/pkg/domain"
)

// Store implements ports.SceneStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored scenes.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for scenes.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "espalier:scene:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(sceneID string) string {
	return s.prefix + sceneID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the scene document to Redis: the JSON payload under its key
// and the scene ID into the ZSET index, in one pipeline.
func (s *Store) Save(ctx context.Context, sceneID string, doc *domain.SceneDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(sceneID), data, s.ttl)

	// Index score is the expiry instant, so List can prune lazily. With no
	// TTL the score parks far in the future (2100-01-01).
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: sceneID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the scene document from Redis.
func (s *Store) Load(ctx context.Context, sceneID string) (*domain.SceneDocument, error) {
	val, err := s.client.Get(ctx, s.key(sceneID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrSceneNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var doc domain.SceneDocument
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scene: %w", err)
	}
	return &doc, nil
}

// Delete removes the scene and its index entry.
func (s *Store) Delete(ctx context.Context, sceneID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(sceneID))
	pipe.ZRem(ctx, s.indexKey(), sceneID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns stored scene IDs, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	// Lazy cleanup: keys with a TTL expire on their own, their index
	// entries score below now and get swept here.
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired scenes: %w", err)
	}

	scenes, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}
	return scenes, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
