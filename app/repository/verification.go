package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
)

type VerificationRepository struct {
	db DBTX
}

func NewVerificationRepository(db DBTX) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Create(ctx context.Context, record *entity.VerificationRecord) error {
	query := `
		INSERT INTO verification_records (
			subscriber_id, document_type, storage_path, mime_type, size_bytes,
			status, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		record.SubscriberID,
		record.DocumentType,
		record.StoragePath,
		record.MimeType,
		record.SizeBytes,
		record.Status,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = uint64(id)
	return nil
}

func (r *VerificationRepository) FindLatestBySubscriber(ctx context.Context, subscriberID string) (*entity.VerificationRecord, error) {
	query := `
		SELECT id, subscriber_id, document_type, storage_path, mime_type, size_bytes,
		       status, created_at, updated_at
		FROM verification_records
		WHERE subscriber_id = ?
		ORDER BY id DESC
		LIMIT 1
	`

	item := &entity.VerificationRecord{}
	err := r.db.QueryRowContext(ctx, query, subscriberID).Scan(
		&item.ID,
		&item.SubscriberID,
		&item.DocumentType,
		&item.StoragePath,
		&item.MimeType,
		&item.SizeBytes,
		&item.Status,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item, nil
}
