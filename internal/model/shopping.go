package model

import "time"

type ShoppingItem struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"-"`
	ProductID   int64     `json:"product_id"`
	Quantity    string    `json:"quantity"`
	Note        string    `json:"note"`
	Checked     bool      `json:"is_checked"`
	CreatedAt   time.Time `json:"created_at"`
}

// ShoppingItemDetail is a ShoppingItem joined with its product's name and
// sort order — the shape clients render the list from.
type ShoppingItemDetail struct {
	ShoppingItem
	ProductName      string `json:"product_name"`
	ProductSortOrder int    `json:"product_sort_order"`
}
