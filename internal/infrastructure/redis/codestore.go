package redisinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-phone-auth/internal/config"
	"github.com/go-phone-auth/internal/domain"
	"github.com/go-phone-auth/internal/pkg/otp"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "verification:"

// Each pending verification is a hash: "code" holds the bare code so the
// consume script can compare it without decoding, "data" holds the JSON record.
const (
	fieldCode = "code"
	fieldData = "data"
)

// consumeScript compares and deletes in one step.
// Returns {0} when absent, {1} on mismatch, {2, data} on success.
var consumeScript = redis.NewScript(`
local code = redis.call('HGET', KEYS[1], 'code')
if not code then
	return {0}
end
if code ~= ARGV[1] then
	return {1}
end
local data = redis.call('HGET', KEYS[1], 'data')
redis.call('DEL', KEYS[1])
return {2, data}
`)

// NewClient creates a go-redis client from config.
func NewClient(cfg *config.Config) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// CodeStore keeps pending verifications in Redis; Redis key expiry enforces the TTL.
type CodeStore struct {
	client redis.UniversalClient
}

func NewCodeStore(client redis.UniversalClient) *CodeStore {
	return &CodeStore{client: client}
}

func key(phone string) string { return keyPrefix + phone }

func (s *CodeStore) Put(ctx context.Context, v *domain.PendingVerification, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	k := key(v.PhoneNumber)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, fieldCode, v.Code, fieldData, payload)
		pipe.Expire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist verification: %w", err)
	}
	return nil
}

func (s *CodeStore) Get(ctx context.Context, phone string) (*domain.PendingVerification, error) {
	data, err := s.client.HGet(ctx, key(phone), fieldData).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("load verification: %w", err)
	}
	return decode(data)
}

func (s *CodeStore) Delete(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, key(phone)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete verification: %w", err)
	}
	return nil
}

func (s *CodeStore) Consume(ctx context.Context, phone, code string) (*domain.PendingVerification, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{key(phone)}, otp.Normalize(code)).Slice()
	if err != nil {
		return nil, fmt.Errorf("consume verification: %w", err)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("consume verification: empty script reply")
	}
	switch res[0] {
	case int64(0):
		return nil, domain.ErrCodeNotFound
	case int64(1):
		return nil, domain.ErrCodeMismatch
	}
	if len(res) < 2 {
		return nil, fmt.Errorf("consume verification: missing payload")
	}
	data, ok := res[1].(string)
	if !ok {
		return nil, fmt.Errorf("consume verification: unexpected payload type %T", res[1])
	}
	return decode([]byte(data))
}

func decode(data []byte) (*domain.PendingVerification, error) {
	var v domain.PendingVerification
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode verification: %w", err)
	}
	return &v, nil
}
