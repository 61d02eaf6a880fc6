package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"matha-service/internal/app"
	"matha-service/internal/domain"
)

// OTPStore keeps pending login codes under otp:phone:{phone}; Redis expiry
// enforces the code TTL.
type OTPStore struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

func (s *OTPStore) Save(ctx context.Context, record app.OTPRecord, ttl time.Duration) error {
	if ttl <= 0 {
		return domain.ErrOTPExpired
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode otp: %w", err)
	}
	return s.client.Set(ctx, otpKey(record.PhoneNumber), payload, ttl).Err()
}

func (s *OTPStore) Get(ctx context.Context, phoneNumber string) (app.OTPRecord, error) {
	raw, err := s.client.Get(ctx, otpKey(phoneNumber)).Bytes()
	if isNil(err) {
		return app.OTPRecord{}, domain.ErrOTPNotFound
	}
	if err != nil {
		return app.OTPRecord{}, err
	}
	var record app.OTPRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return app.OTPRecord{}, fmt.Errorf("decode otp: %w", err)
	}
	return record, nil
}

func (s *OTPStore) Delete(ctx context.Context, phoneNumber string) error {
	return s.client.Del(ctx, otpKey(phoneNumber)).Err()
}

func otpKey(phoneNumber string) string {
	return "otp:phone:" + phoneNumber
}
