package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/bywater/internal/model"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	err := scanner.Scan(&h.ID, &h.AccessKeyHash, &h.Name, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

const householdCols = `id, access_key_hash, name, created_at`

func (s *HouseholdStore) Create(name, accessKeyHash string) (*model.Household, error) {
	existing, err := s.GetByAccessKeyHash(accessKeyHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: a household with this access key already exists", ErrConflict)
	}

	result, err := s.db.Exec(
		`INSERT INTO households (access_key_hash, name) VALUES (?, ?)`,
		accessKeyHash, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) GetByID(id int64) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByAccessKeyHash(hash string) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE access_key_hash = ?`, hash)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household by key: %w", err)
	}
	return h, nil
}

// Delete removes a household. Products, shopping items, and push
// subscriptions go with it via ON DELETE CASCADE.
func (s *HouseholdStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM households WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	return nil
}

// SeedProducts inserts a starter catalog for a new household in a single
// transaction, assigning sort positions 1..n in the given order.
func (s *HouseholdStore) SeedProducts(householdID int64, names []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i, name := range names {
		if _, err := tx.Exec(
			`INSERT INTO products (household_id, name, sort_order) VALUES (?, ?, ?)`,
			householdID, name, i+1,
		); err != nil {
			return fmt.Errorf("seed product %q: %w", name, err)
		}
	}

	return tx.Commit()
}
