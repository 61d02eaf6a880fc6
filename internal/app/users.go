package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"matha-service/internal/domain"
)

// ProfileUpdate carries the user-editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName"`
	Email       *string `json:"email"`
	PhotoURL    *string `json:"photoURL"`
}

type UserService struct {
	store DocumentStore
	now   func() time.Time
}

func NewUserService(store DocumentStore) *UserService {
	return &UserService{store: store, now: time.Now}
}

func (u *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	var user domain.User
	if err := u.store.Get(ctx, domain.CollectionUsers, id, &user); err != nil {
		return domain.User{}, fmt.Errorf("user %s: %w", id, err)
	}
	return user, nil
}

// UpdateProfile changes profile fields without touching the quiz aggregates.
func (u *UserService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (domain.User, error) {
	set := map[string]any{"updatedAt": u.now().UTC()}
	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		if name == "" {
			return domain.User{}, fmt.Errorf("%w: display name cannot be empty", domain.ErrValidation)
		}
		set["displayName"] = name
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email != "" && !strings.Contains(email, "@") {
			return domain.User{}, fmt.Errorf("%w: invalid email", domain.ErrValidation)
		}
		set["email"] = email
	}
	if update.PhotoURL != nil {
		set["photoURL"] = strings.TrimSpace(*update.PhotoURL)
	}

	if err := u.store.Increment(ctx, domain.CollectionUsers, id, nil, set); err != nil {
		return domain.User{}, fmt.Errorf("update user %s: %w", id, err)
	}
	return u.Get(ctx, id)
}
