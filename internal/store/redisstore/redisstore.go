// Package redisstore is a small CRUD layer over redis string keys, used
// to keep one raw system-prompt per bot identifier.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound = errors.New("redisstore: key not found")
	ErrExists   = errors.New("redisstore: key already exists")
)

type Store struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(k string) string { return s.prefix + k }

// Create sets the key only if it does not exist yet.
func (s *Store) Create(ctx context.Context, key, value string) error {
	set, err := s.rdb.SetNX(ctx, s.key(key), value, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", key, err)
	}
	if !set {
		return ErrExists
	}
	return nil
}

func (s *Store) Read(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}

// Update overwrites an existing key; it fails if the key is absent.
func (s *Store) Update(ctx context.Context, key, value string) error {
	set, err := s.rdb.SetXX(ctx, s.key(key), value, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", key, err)
	}
	if !set {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	n, err := s.rdb.Del(ctx, s.key(key)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return n > 0, nil
}

// List returns the keys matching the glob pattern, with the store prefix
// stripped.
func (s *Store) List(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.key(pattern), 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(s.prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}
