package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hisab/internal/core"
)

const userColumns = `u.id, u.email, u.name, u.phone, u.profile_image, u.language, u.currency, u.timezone,
	u.created_at, u.updated_at`

// CreateUser inserts the user together with its settings row.
func (r *Repository) CreateUser(ctx context.Context, u core.User, s core.UserSettings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.rebind(`INSERT INTO users
		(id, email, name, phone, profile_image, language, currency, timezone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Email, u.Name, u.Phone, u.ProfileImage, u.Language, u.Currency, u.Timezone,
		u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, r.rebind(`INSERT INTO user_settings
		(user_id, dark_mode, email_notifications, two_factor_enabled, updated_at)
		VALUES (?, ?, ?, ?, ?)`),
		u.ID, s.DarkMode, s.EmailNotifications, s.TwoFactorEnabled, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user: %w", err)
	}
	return nil
}

// GetUser returns the user and, when present, its settings.
func (r *Repository) GetUser(ctx context.Context, id string) (core.User, error) {
	var (
		u                           core.User
		sUserID                     sql.NullString
		darkMode, emailNotif, twoFA sql.NullBool
		sUpdated                    sql.NullTime
	)
	err := r.queryRow(ctx, `SELECT `+userColumns+`,
			s.user_id, s.dark_mode, s.email_notifications, s.two_factor_enabled, s.updated_at
		FROM users u LEFT JOIN user_settings s ON s.user_id = u.id
		WHERE u.id = ?`, id).Scan(
		&u.ID, &u.Email, &u.Name, &u.Phone, &u.ProfileImage, &u.Language, &u.Currency, &u.Timezone,
		&u.CreatedAt, &u.UpdatedAt,
		&sUserID, &darkMode, &emailNotif, &twoFA, &sUpdated)
	if err != nil {
		return core.User{}, fmt.Errorf("get user %s: %w", id, notFound(err))
	}
	if sUserID.Valid {
		u.Settings = &core.UserSettings{
			UserID:             sUserID.String,
			DarkMode:           darkMode.Bool,
			EmailNotifications: emailNotif.Bool,
			TwoFactorEnabled:   twoFA.Bool,
			UpdatedAt:          sUpdated.Time,
		}
	}
	return u, nil
}

func (r *Repository) UpdateUser(ctx context.Context, u core.User) error {
	err := r.execOne(ctx, `UPDATE users SET
		name = ?, phone = ?, language = ?, currency = ?, timezone = ?, updated_at = ?
		WHERE id = ?`,
		u.Name, u.Phone, u.Language, u.Currency, u.Timezone, u.UpdatedAt, u.ID)
	if err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	return nil
}

// GetSettings returns core.ErrNotFound when the user has no settings row.
func (r *Repository) GetSettings(ctx context.Context, userID string) (core.UserSettings, error) {
	var s core.UserSettings
	err := r.queryRow(ctx, `SELECT user_id, dark_mode, email_notifications, two_factor_enabled, updated_at
		FROM user_settings WHERE user_id = ?`, userID).Scan(
		&s.UserID, &s.DarkMode, &s.EmailNotifications, &s.TwoFactorEnabled, &s.UpdatedAt)
	if err != nil {
		return core.UserSettings{}, fmt.Errorf("get settings %s: %w", userID, notFound(err))
	}
	return s, nil
}

// SaveSettings inserts or replaces the settings row of s.UserID.
func (r *Repository) SaveSettings(ctx context.Context, s core.UserSettings) error {
	_, err := r.exec(ctx, `INSERT INTO user_settings
		(user_id, dark_mode, email_notifications, two_factor_enabled, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			dark_mode = excluded.dark_mode,
			email_notifications = excluded.email_notifications,
			two_factor_enabled = excluded.two_factor_enabled,
			updated_at = excluded.updated_at`,
		s.UserID, s.DarkMode, s.EmailNotifications, s.TwoFactorEnabled, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save settings %s: %w", s.UserID, err)
	}
	return nil
}

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var coded interface{ SQLState() string }
	if errors.As(err, &coded) {
		return coded.SQLState() == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
