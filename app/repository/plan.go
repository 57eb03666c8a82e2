package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
)

type PlanRepository struct {
	db DBTX
}

func NewPlanRepository(db DBTX) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) List(ctx context.Context) ([]*entity.Plan, error) {
	query := `
		SELECT id, code, name, price, currency, duration_label, duration_days, features,
		       created_at, updated_at
		FROM plans
		ORDER BY price ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Plan, 0)
	for rows.Next() {
		item, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *PlanRepository) FindByID(ctx context.Context, id uint64) (*entity.Plan, error) {
	query := `
		SELECT id, code, name, price, currency, duration_label, duration_days, features,
		       created_at, updated_at
		FROM plans
		WHERE id = ?
	`

	item, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item, nil
}

func scanPlan(scanner rowScanner) (*entity.Plan, error) {
	item := &entity.Plan{}
	var features string

	err := scanner.Scan(
		&item.ID,
		&item.Code,
		&item.Name,
		&item.Price,
		&item.Currency,
		&item.DurationLabel,
		&item.DurationDays,
		&features,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Features, err = parseStringSlice(features)
	if err != nil {
		return nil, err
	}
	return item, nil
}
