package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aanand-mishra/ugs-portal/internal/storage"
)

var _ storage.Storage = (*Store)(nil)

// Store keeps local-storage items in Redis so several portal instances
// can share browser profiles.
type Store struct {
	client *goredis.Client
	prefix string
}

// New connects to Redis and pings it before returning.
func New(addr, password string, db int) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return NewWithClient(client), nil
}

func NewWithClient(client *goredis.Client) *Store {
	return &Store{
		client: client,
		prefix: "ls:",
	}
}

func (s *Store) key(profile, key string) string {
	return s.prefix + profile + ":" + key
}

func (s *Store) GetItem(ctx context.Context, profile, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(profile, key)).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("GetItem: %w", err)
	}
	return val, true, nil
}

// SetItem stores without expiry: like browser local storage, a token
// lives until it is removed.
func (s *Store) SetItem(ctx context.Context, profile, key, value string) error {
	if err := s.client.Set(ctx, s.key(profile, key), value, 0).Err(); err != nil {
		return fmt.Errorf("SetItem: %w", err)
	}
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, profile, key string) error {
	if err := s.client.Del(ctx, s.key(profile, key)).Err(); err != nil {
		return fmt.Errorf("RemoveItem: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
