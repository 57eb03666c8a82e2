package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userSelect = `
		SELECT id, name, email, phone, password_hash, status,
		       profile_visibility, contact_visibility, notifications,
		       plan_id, plan_name, plan_price, subscription_expires_at,
		       created_at, updated_at
		FROM users
`

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := userSelect + `
		WHERE id = ?
	`

	item, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name string, phone *string) error {
	query := `
		UPDATE users
		SET name = ?, phone = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	return r.execExpectingRow(ctx, query, name, nullableStringValue(phone), time.Now().UTC(), id, entity.UserStatusActive)
}

func (r *UserRepository) UpdatePrivacySettings(ctx context.Context, id string, settings entity.PrivacySettings) error {
	query := `
		UPDATE users
		SET profile_visibility = ?, contact_visibility = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	return r.execExpectingRow(ctx, query, settings.ProfileVisibility, settings.ContactVisibility, time.Now().UTC(), id, entity.UserStatusActive)
}

func (r *UserRepository) UpdateNotificationSettings(ctx context.Context, id string, settings entity.NotificationSettings) error {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET notifications = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	return r.execExpectingRow(ctx, query, string(encoded), time.Now().UTC(), id, entity.UserStatusActive)
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	return r.execExpectingRow(ctx, query, passwordHash, time.Now().UTC(), id, entity.UserStatusActive)
}

func (r *UserRepository) UpdateSubscription(ctx context.Context, id string, snapshot entity.SubscriptionSnapshot) error {
	query := `
		UPDATE users
		SET plan_id = ?, plan_name = ?, plan_price = ?, subscription_expires_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	return r.execExpectingRow(ctx, query,
		snapshot.PlanID,
		snapshot.PlanName,
		snapshot.Price,
		nullableTimeValue(snapshot.ExpiresAt),
		time.Now().UTC(),
		id,
		entity.UserStatusActive,
	)
}

func (r *UserRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	return r.execExpectingRow(ctx, query, entity.UserStatusDeleted, time.Now().UTC(), id, entity.UserStatusActive)
}

func (r *UserRepository) execExpectingRow(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func scanUser(scanner rowScanner) (*entity.User, error) {
	item := &entity.User{}
	var phone sql.NullString
	var notifications string
	var planID sql.NullInt64
	var planName sql.NullString
	var planPrice sql.NullFloat64
	var expiresAt sql.NullTime

	err := scanner.Scan(
		&item.ID,
		&item.Name,
		&item.Email,
		&phone,
		&item.PasswordHash,
		&item.Status,
		&item.Privacy.ProfileVisibility,
		&item.Privacy.ContactVisibility,
		&notifications,
		&planID,
		&planName,
		&planPrice,
		&expiresAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		item.Phone = &phone.String
	}
	if notifications != "" {
		if err := json.Unmarshal([]byte(notifications), &item.Notifications); err != nil {
			return nil, err
		}
	}
	if planID.Valid {
		snapshot := &entity.SubscriptionSnapshot{
			PlanID:   uint64(planID.Int64),
			PlanName: planName.String,
			Price:    planPrice.Float64,
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			snapshot.ExpiresAt = &t
		}
		item.Subscription = snapshot
	}

	return item, nil
}
