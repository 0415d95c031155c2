package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"hisab/internal/core"
)

// New users start with these preferences.
const (
	DefaultLanguage = "en"
	DefaultCurrency = "BDT"
	DefaultTimezone = "Asia/Dhaka"
)

// Profile returns the user with settings attached when they exist.
func (l *Ledger) Profile(ctx context.Context, userID string) (core.User, error) {
	if userID == "" {
		return core.User{}, core.ErrUnauthorized
	}
	return l.store.GetUser(ctx, userID)
}

// UpdateProfile applies the non-empty fields of upd.
func (l *Ledger) UpdateProfile(ctx context.Context, userID string, upd core.ProfileUpdate) (core.User, error) {
	u, err := l.Profile(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	upd.Apply(&u)
	u.UpdatedAt = l.timestamp()
	if err := l.store.UpdateUser(ctx, u); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// Settings returns nil when the user has no settings row.
func (l *Ledger) Settings(ctx context.Context, userID string) (*core.UserSettings, error) {
	if userID == "" {
		return nil, core.ErrUnauthorized
	}
	s, err := l.store.GetSettings(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSettings applies upd, starting from the defaults when no row exists yet.
func (l *Ledger) UpdateSettings(ctx context.Context, userID string, upd core.SettingsUpdate) (core.UserSettings, error) {
	current, err := l.Settings(ctx, userID)
	if err != nil {
		return core.UserSettings{}, err
	}
	s := core.DefaultSettings(userID)
	if current != nil {
		s = *current
	}
	upd.Apply(&s)
	s.UpdatedAt = l.timestamp()
	if err := l.store.SaveSettings(ctx, s); err != nil {
		return core.UserSettings{}, err
	}
	return s, nil
}

// CreateUser registers a user with default preferences and settings.
func (l *Ledger) CreateUser(ctx context.Context, email, name string) (core.User, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return core.User{}, &core.ValidationError{Field: "email", Reason: "invalid address"}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return core.User{}, &core.ValidationError{Field: "name", Reason: "required"}
	}

	now := l.timestamp()
	u := core.User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(addr.Address),
		Name:      name,
		Language:  DefaultLanguage,
		Currency:  DefaultCurrency,
		Timezone:  DefaultTimezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s := core.DefaultSettings(u.ID)
	s.UpdatedAt = now
	if err := l.store.CreateUser(ctx, u, s); err != nil {
		return core.User{}, fmt.Errorf("create user %s: %w", u.Email, err)
	}
	u.Settings = &s
	l.logger.InfoContext(ctx, "User created", "user_id", u.ID)
	return u, nil
}
