package app

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"matha-service/internal/domain"
	"matha-service/internal/logger"
)

// AuthSettings tunes OTP issuance.
type AuthSettings struct {
	CodeTTL        time.Duration
	ResendCooldown time.Duration
	MaxAttempts    int
}

func (s AuthSettings) withDefaults() AuthSettings {
	if s.CodeTTL <= 0 {
		s.CodeTTL = 5 * time.Minute
	}
	if s.ResendCooldown <= 0 {
		s.ResendCooldown = time.Minute
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = 5
	}
	return s
}

// VerifyRequest identifies who is verifying. UserID is optional; without it
// the user is looked up by phone number.
type VerifyRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Code        string `json:"otp"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// AuthService issues and verifies one-time login codes.
type AuthService struct {
	codes     OTPStore
	sender    OTPSender
	store     DocumentStore
	publisher EventPublisher
	metrics   Metrics
	settings  AuthSettings
	log       *logger.Logger
	now       func() time.Time
	generate  func() (string, error)
}

func NewAuthService(codes OTPStore, sender OTPSender, store DocumentStore, publisher EventPublisher, metrics Metrics, settings AuthSettings, log *logger.Logger) *AuthService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &AuthService{
		codes:     codes,
		sender:    sender,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		settings:  settings.withDefaults(),
		log:       log,
		now:       time.Now,
		generate:  randomCode,
	}
}

// SendOTP issues a fresh code for the phone number and hands it to the sender.
func (a *AuthService) SendOTP(ctx context.Context, phoneNumber string) (bool, error) {
	phone, err := domain.NormalizePhone(phoneNumber)
	if err != nil {
		return false, err
	}
	now := a.now()

	existing, err := a.codes.Get(ctx, phone)
	switch {
	case err == nil:
		if now.Sub(existing.CreatedAt) < a.settings.ResendCooldown {
			return false, domain.ErrOTPCooldown
		}
	case !errors.Is(err, domain.ErrOTPNotFound):
		return false, fmt.Errorf("load otp: %w", err)
	}

	code, err := a.generate()
	if err != nil {
		return false, fmt.Errorf("generate otp: %w", err)
	}
	record := OTPRecord{
		PhoneNumber: phone,
		CodeHash:    hashCode(phone, code),
		CreatedAt:   now,
		ExpiresAt:   now.Add(a.settings.CodeTTL),
	}
	if err := a.codes.Save(ctx, record, a.settings.CodeTTL); err != nil {
		return false, fmt.Errorf("store otp: %w", err)
	}
	if err := a.sender.SendOTP(ctx, phone, code); err != nil {
		_ = a.codes.Delete(ctx, phone)
		return false, fmt.Errorf("deliver otp: %w", err)
	}
	a.metrics.OTPIssued()
	a.log.Info("otp issued", "phone", logger.MaskPhone(phone), "expiresAt", record.ExpiresAt)
	return true, nil
}

// VerifyOTP checks the code and returns the signed-in user, creating the user
// on first successful verification.
func (a *AuthService) VerifyOTP(ctx context.Context, req VerifyRequest) (domain.User, error) {
	phone, err := domain.NormalizePhone(req.PhoneNumber)
	if err != nil {
		return domain.User{}, err
	}
	if err := domain.ValidateOTPCode(req.Code); err != nil {
		return domain.User{}, err
	}

	record, err := a.codes.Get(ctx, phone)
	if err != nil {
		return domain.User{}, err
	}
	now := a.now()
	if now.After(record.ExpiresAt) {
		_ = a.codes.Delete(ctx, phone)
		return domain.User{}, domain.ErrOTPExpired
	}
	if record.Attempts >= a.settings.MaxAttempts {
		_ = a.codes.Delete(ctx, phone)
		return domain.User{}, domain.ErrOTPAttemptsExceeded
	}

	if subtle.ConstantTimeCompare([]byte(record.CodeHash), []byte(hashCode(phone, req.Code))) != 1 {
		record.Attempts++
		if record.Attempts >= a.settings.MaxAttempts {
			_ = a.codes.Delete(ctx, phone)
			return domain.User{}, domain.ErrOTPAttemptsExceeded
		}
		if err := a.codes.Save(ctx, record, record.ExpiresAt.Sub(now)); err != nil {
			a.log.Warn("otp attempt not persisted", "phone", logger.MaskPhone(phone), "error", err)
		}
		return domain.User{}, domain.ErrOTPInvalid
	}
	if err := a.codes.Delete(ctx, phone); err != nil {
		a.log.Warn("otp not cleared after verification", "phone", logger.MaskPhone(phone), "error", err)
	}

	return a.signIn(ctx, phone, req)
}

func (a *AuthService) signIn(ctx context.Context, phone string, req VerifyRequest) (domain.User, error) {
	if req.UserID != "" {
		var user domain.User
		err := a.store.Get(ctx, domain.CollectionUsers, req.UserID, &user)
		if err == nil {
			if user.PhoneNumber != phone {
				return domain.User{}, fmt.Errorf("%w: user %s is registered with another phone number", domain.ErrValidation, req.UserID)
			}
			return user, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, fmt.Errorf("load user: %w", err)
		}
	} else {
		var users []domain.User
		err := a.store.Find(ctx, domain.CollectionUsers, Query{
			Filters: []Filter{Eq("phoneNumber", phone)},
			Limit:   1,
		}, &users)
		if err != nil {
			return domain.User{}, fmt.Errorf("find user: %w", err)
		}
		if len(users) > 0 {
			return users[0], nil
		}
	}

	now := a.now().UTC()
	user := domain.User{
		ID:          req.UserID,
		DisplayName: strings.TrimSpace(req.DisplayName),
		PhoneNumber: phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.DisplayName == "" {
		user.DisplayName = "User"
	}
	if err := a.store.Upsert(ctx, domain.CollectionUsers, user.ID, user); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	a.log.Info("user registered", "userId", user.ID)
	if err := a.publisher.PublishUserRegistered(ctx, user); err != nil {
		a.log.Warn("publish user registered", "userId", user.ID, "error", err)
	}
	return user, nil
}

// LogSender writes codes to the log instead of sending an SMS.
type LogSender struct {
	Log *logger.Logger
}

func (s LogSender) SendOTP(_ context.Context, phoneNumber, code string) error {
	s.Log.Info("otp delivery", "phone", logger.MaskPhone(phoneNumber), "code", code)
	return nil
}

func hashCode(phone, code string) string {
	sum := sha256.Sum256([]byte(phone + ":" + code))
	return hex.EncodeToString(sum[:])
}

func randomCode() (string, error) {
	var b strings.Builder
	for i := 0; i < domain.OTPDigits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
