package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/bywater/internal/model"
)

type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

func scanProduct(scanner interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	err := scanner.Scan(&p.ID, &p.HouseholdID, &p.Name, &p.SortOrder, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const productCols = `id, household_id, name, sort_order, created_at`

func (s *ProductStore) ListByHousehold(householdID int64) ([]model.Product, error) {
	rows, err := s.db.Query(
		`SELECT `+productCols+` FROM products WHERE household_id = ? ORDER BY sort_order ASC, id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *ProductStore) GetByID(householdID, id int64) (*model.Product, error) {
	row := s.db.QueryRow(
		`SELECT `+productCols+` FROM products WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) GetByName(householdID int64, name string) (*model.Product, error) {
	row := s.db.QueryRow(
		`SELECT `+productCols+` FROM products WHERE household_id = ? AND name = ?`,
		householdID, name,
	)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product by name: %w", err)
	}
	return p, nil
}

// Create adds a product at the end of the catalog. The duplicate-name check
// and the sort-order assignment run in one transaction.
func (s *ProductStore) Create(householdID int64, name string) (*model.Product, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRow(
		`SELECT id FROM products WHERE household_id = ? AND name = ?`,
		householdID, name,
	).Scan(&existing)
	if err == nil {
		return nil, fmt.Errorf("%w: product %q already exists", ErrConflict, name)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("check product name: %w", err)
	}

	order, err := nextSortOrder(tx, householdID)
	if err != nil {
		return nil, err
	}

	result, err := tx.Exec(
		`INSERT INTO products (household_id, name, sort_order) VALUES (?, ?, ?)`,
		householdID, name, order,
	)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(householdID, id)
}

// Rename changes a product's name, rejecting names already taken by another
// product of the same household.
func (s *ProductStore) Rename(householdID, id int64, name string) (*model.Product, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRow(
		`SELECT name FROM products WHERE id = ? AND household_id = ?`,
		id, householdID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	var other int64
	err = tx.QueryRow(
		`SELECT id FROM products WHERE household_id = ? AND name = ? AND id != ?`,
		householdID, name, id,
	).Scan(&other)
	if err == nil {
		return nil, fmt.Errorf("%w: product %q already exists", ErrConflict, name)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("check product name: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE products SET name = ? WHERE id = ? AND household_id = ?`,
		name, id, householdID,
	); err != nil {
		return nil, fmt.Errorf("rename product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(householdID, id)
}

// Delete removes a product from the catalog. A product still referenced by a
// shopping item cannot be deleted — it has to leave the list first.
func (s *ProductStore) Delete(householdID, id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRow(
		`SELECT id FROM products WHERE id = ? AND household_id = ?`,
		id, householdID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	var refs int
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM shopping_items WHERE product_id = ?`, id,
	).Scan(&refs); err != nil {
		return fmt.Errorf("count references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: product %d is on the shopping list", ErrConflict, id)
	}

	if _, err := tx.Exec(
		`DELETE FROM products WHERE id = ? AND household_id = ?`,
		id, householdID,
	); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	return tx.Commit()
}

// Reorder assigns each product named in ids the sort position matching its
// 1-based rank in the sequence. Ids outside the household are skipped; absent
// products keep their prior position. Returns the re-sorted catalog.
func (s *ProductStore) Reorder(householdID int64, ids []int64) ([]model.Product, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.Exec(
			`UPDATE products SET sort_order = ? WHERE id = ? AND household_id = ?`,
			i+1, id, householdID,
		); err != nil {
			return nil, fmt.Errorf("reorder product %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.ListByHousehold(householdID)
}

// nextSortOrder returns max(sort_order)+1 for the household's catalog,
// starting at 1 when the catalog is empty.
func nextSortOrder(tx *sql.Tx, householdID int64) (int, error) {
	var max int
	err := tx.QueryRow(
		`SELECT COALESCE(MAX(sort_order), 0) FROM products WHERE household_id = ?`,
		householdID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}
	return max + 1, nil
}
