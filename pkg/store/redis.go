package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/7eVeNcO/semtk/pkg/errors"
)

// DefaultRedisPrefix namespaces the keys written by RedisStore.
const DefaultRedisPrefix = "semtk:"

// RedisStore keeps each record as a JSON string under <prefix>record:<id>
// and the set of ids under <prefix>records.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore wraps an existing client. An empty prefix uses DefaultRedisPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// DialRedis connects to the server at url (redis://...) and checks it responds.
func DialRedis(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, prefix), nil
}

func (s *RedisStore) key(id string) string { return s.prefix + "record:" + id }
func (s *RedisStore) indexKey() string     { return s.prefix + "records" }

func (s *RedisStore) Put(ctx context.Context, r *Record) error {
	if err := r.validate(); err != nil {
		return err
	}
	data, err := r.encode()
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(r.ID), data, 0)
		pipe.SAdd(ctx, s.indexKey(), r.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store record %s: %w", r.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", id, err)
	}
	return &r, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateRecordID(id); err != nil {
		return err
	}
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if del.Val() == 0 {
		return notFound(id)
	}
	return nil
}

// List drops ids whose record has disappeared.
func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list record ids: %w", err)
	}
	recs := []Record{}
	if len(ids) == 0 {
		return recs, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			continue
		}
		r.Data = nil
		recs = append(recs, r)
	}
	sortRecords(recs)
	return recs, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
