package model

import "time"

type Product struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"-"`
	Name        string    `json:"name"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}
