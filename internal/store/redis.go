package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"minesweeper_webapp/internal/domain"
	"minesweeper_webapp/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

const (
	redisDocPrefix = "minesweeper:doc:"
	redisVerPrefix = "minesweeper:ver:"
)

// RedisStore persists each document as JSON next to a sibling version
// counter. Conditional saves run as a WATCH transaction on the version
// key, so a concurrent writer aborts the MULTI and surfaces as
// ErrVersionConflict.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect redis store", "addr", addr, "error", err)
	}

	logger.Info("redis store connected", "addr", addr)
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, key string) (*domain.GameDocument, int64, error) {
	vals, err := s.client.MGet(ctx, redisDocPrefix+key, redisVerPrefix+key).Result()
	if err != nil {
		return nil, 0, err
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, 0, ErrNotFound
	}

	var version int64
	if vs, ok := vals[1].(string); ok {
		version, _ = strconv.ParseInt(vs, 10, 64)
	}

	var doc domain.GameDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, 0, err
	}
	return &doc, version, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, doc *domain.GameDocument, expectVersion int64) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	docKey := redisDocPrefix + key
	verKey := redisVerPrefix + key

	txn := func(tx *redis.Tx) error {
		var current int64
		vs, err := tx.Get(ctx, verKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			current, _ = strconv.ParseInt(vs, 10, 64)
		}
		if current != expectVersion {
			return ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, docKey, data, 0)
			pipe.Set(ctx, verKey, strconv.FormatInt(current+1, 10), 0)
			return nil
		})
		return err
	}

	err = s.client.Watch(ctx, txn, verKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	return err
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() {
	_ = s.client.Close()
}
