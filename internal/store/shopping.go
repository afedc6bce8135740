package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/bywater/internal/model"
)

type ShoppingStore struct {
	db *sql.DB
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db}
}

func scanItemDetail(scanner interface{ Scan(...any) error }) (*model.ShoppingItemDetail, error) {
	var d model.ShoppingItemDetail
	var checked int
	err := scanner.Scan(
		&d.ID, &d.HouseholdID, &d.ProductID, &d.Quantity, &d.Note,
		&checked, &d.CreatedAt, &d.ProductName, &d.ProductSortOrder,
	)
	if err != nil {
		return nil, err
	}
	d.Checked = checked != 0
	return &d, nil
}

const itemDetailCols = `si.id, si.household_id, si.product_id, si.quantity, si.note, si.checked, si.created_at, p.name, p.sort_order`

const itemDetailFrom = ` FROM shopping_items si JOIN products p ON p.id = si.product_id`

// ListByHousehold returns the shopping list in catalog order: the list has no
// ordering of its own, it follows the product sort positions.
func (s *ShoppingStore) ListByHousehold(householdID int64) ([]model.ShoppingItemDetail, error) {
	rows, err := s.db.Query(
		`SELECT `+itemDetailCols+itemDetailFrom+` WHERE si.household_id = ? ORDER BY p.sort_order ASC, p.id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingItemDetail
	for rows.Next() {
		d, err := scanItemDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

func (s *ShoppingStore) GetByID(householdID, id int64) (*model.ShoppingItemDetail, error) {
	row := s.db.QueryRow(
		`SELECT `+itemDetailCols+itemDetailFrom+` WHERE si.id = ? AND si.household_id = ?`,
		id, householdID,
	)
	d, err := scanItemDetail(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return d, nil
}

// AddItem puts a product on the shopping list. Either productID or
// customName identifies the product; with a customName that matches no
// existing product, a new one is created at the end of the catalog. The
// whole resolve-create-check-insert sequence runs in one transaction so the
// at-most-one-item-per-product invariant holds with no race window.
//
// The returned bool reports whether a product was implicitly created.
func (s *ShoppingStore) AddItem(householdID, productID int64, customName, quantity, note string) (*model.ShoppingItemDetail, bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created := false
	pid := productID

	if pid == 0 {
		err = tx.QueryRow(
			`SELECT id FROM products WHERE household_id = ? AND name = ?`,
			householdID, customName,
		).Scan(&pid)
		if err == sql.ErrNoRows {
			order, err := nextSortOrder(tx, householdID)
			if err != nil {
				return nil, false, err
			}
			result, err := tx.Exec(
				`INSERT INTO products (household_id, name, sort_order) VALUES (?, ?, ?)`,
				householdID, customName, order,
			)
			if err != nil {
				return nil, false, fmt.Errorf("insert product: %w", err)
			}
			pid, err = result.LastInsertId()
			if err != nil {
				return nil, false, fmt.Errorf("last insert id: %w", err)
			}
			created = true
		} else if err != nil {
			return nil, false, fmt.Errorf("get product by name: %w", err)
		}
	} else {
		var exists int64
		err = tx.QueryRow(
			`SELECT id FROM products WHERE id = ? AND household_id = ?`,
			pid, householdID,
		).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, false, fmt.Errorf("%w: product %d", ErrNotFound, pid)
		}
		if err != nil {
			return nil, false, fmt.Errorf("get product: %w", err)
		}
	}

	var dup int64
	err = tx.QueryRow(
		`SELECT id FROM shopping_items WHERE household_id = ? AND product_id = ?`,
		householdID, pid,
	).Scan(&dup)
	if err == nil {
		return nil, false, fmt.Errorf("%w: product %d is already on the shopping list", ErrConflict, pid)
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("check duplicate item: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO shopping_items (household_id, product_id, quantity, note) VALUES (?, ?, ?, ?)`,
		householdID, pid, quantity, note,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}

	item, err := s.GetByID(householdID, id)
	if err != nil {
		return nil, false, err
	}
	return item, created, nil
}

// UpdateItem applies a partial update: nil fields keep their current value.
func (s *ShoppingStore) UpdateItem(householdID, id int64, quantity, note *string) (*model.ShoppingItemDetail, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var curQuantity, curNote string
	err = tx.QueryRow(
		`SELECT quantity, note FROM shopping_items WHERE id = ? AND household_id = ?`,
		id, householdID,
	).Scan(&curQuantity, &curNote)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if quantity != nil {
		curQuantity = *quantity
	}
	if note != nil {
		curNote = *note
	}

	if _, err := tx.Exec(
		`UPDATE shopping_items SET quantity = ?, note = ? WHERE id = ? AND household_id = ?`,
		curQuantity, curNote, id, householdID,
	); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(householdID, id)
}

// SetChecked sets the checked flag. Setting the flag to its current value is
// a no-op that still succeeds.
func (s *ShoppingStore) SetChecked(householdID, id int64, checked bool) (*model.ShoppingItemDetail, error) {
	c := 0
	if checked {
		c = 1
	}
	result, err := s.db.Exec(
		`UPDATE shopping_items SET checked = ? WHERE id = ? AND household_id = ?`,
		c, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("set checked: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	return s.GetByID(householdID, id)
}

func (s *ShoppingStore) Delete(householdID, id int64) error {
	result, err := s.db.Exec(
		`DELETE FROM shopping_items WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	return nil
}

// Clear deletes the household's shopping items: all of them, or only the
// checked ones when keepUnchecked is set. Returns the number deleted.
func (s *ShoppingStore) Clear(householdID int64, keepUnchecked bool) (int64, error) {
	query := `DELETE FROM shopping_items WHERE household_id = ?`
	if keepUnchecked {
		query += ` AND checked = 1`
	}
	result, err := s.db.Exec(query, householdID)
	if err != nil {
		return 0, fmt.Errorf("clear items: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
