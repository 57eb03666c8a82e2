package entity

import "time"

type Plan struct {
	ID            uint64
	Code          string
	Name          string
	Price         float64
	Currency      string
	DurationLabel string
	DurationDays  int32
	Features      []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
