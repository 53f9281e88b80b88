// internal/payments/redis.go
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"abiturbot/internal/common/database"
	"abiturbot/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	recordKeyPrefix = "payment:record:"

	// Stale unpaid records expire on their own; a day comfortably covers
	// the longest plausible pay-later window.
	recordTTL = 24 * time.Hour
)

// RedisStore is the shared Store used when the conversation process and
// the webhook listener are deployed separately. Redis is the arbiter of
// concurrent updates: the paid transition runs under WATCH so a racing
// webhook and poll can never tear a record.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(db *database.RedisClient) *RedisStore {
	return &RedisStore{client: db.GetClient()}
}

func recordKey(sessionKey string) string {
	return recordKeyPrefix + sessionKey
}

func (s *RedisStore) Create(ctx context.Context, record *models.PaymentRecord) error {
	key := recordKey(record.SessionKey)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		existing, err := readRecord(ctx, tx, key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if existing != nil && existing.Status == models.PaymentStatusPaid {
			return ErrAlreadyPaid
		}

		clone := *record
		clone.Status = models.PaymentStatusCreated
		if clone.CreatedAt.IsZero() {
			clone.CreatedAt = time.Now().UTC()
		}
		data, err := json.Marshal(&clone)
		if err != nil {
			return fmt.Errorf("marshal payment record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, recordTTL)
			return nil
		})
		return err
	}, key)

	return err
}

func (s *RedisStore) MarkPaid(ctx context.Context, sessionKey string) error {
	key := recordKey(sessionKey)

	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		record, err := readRecord(ctx, tx, key)
		if err != nil {
			return err
		}
		if record.Status == models.PaymentStatusPaid {
			return nil
		}

		now := time.Now().UTC()
		record.Status = models.PaymentStatusPaid
		record.PaidAt = &now
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal payment record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, recordTTL)
			return nil
		})
		return err
	}, key)
}

func (s *RedisStore) Get(ctx context.Context, sessionKey string) (*models.PaymentRecord, error) {
	return readRecord(ctx, s.client, recordKey(sessionKey))
}

func (s *RedisStore) ReadAndClear(ctx context.Context, sessionKey string) (*models.PaymentRecord, error) {
	val, err := s.client.GetDel(ctx, recordKey(sessionKey)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var record models.PaymentRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, fmt.Errorf("decode payment record: %w", err)
	}
	return &record, nil
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readRecord(ctx context.Context, c redisGetter, key string) (*models.PaymentRecord, error) {
	val, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var record models.PaymentRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, fmt.Errorf("decode payment record: %w", err)
	}
	return &record, nil
}
