package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/bywater/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := scanner.Scan(&sub.ID, &sub.HouseholdID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

const subscriptionCols = `id, household_id, endpoint, p256dh_key, auth_key, created_at`

// Create registers a push endpoint. Re-registering an existing endpoint
// (browser refreshed its subscription) replaces its keys and household.
func (s *PushStore) Create(householdID int64, endpoint, p256dhKey, authKey string) (*model.PushSubscription, error) {
	_, err := s.db.Exec(
		`INSERT INTO push_subscriptions (household_id, endpoint, p256dh_key, auth_key) VALUES (?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET household_id = excluded.household_id, p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key`,
		householdID, endpoint, p256dhKey, authKey,
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT `+subscriptionCols+` FROM push_subscriptions WHERE endpoint = ?`,
		endpoint,
	)
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (s *PushStore) ListByHousehold(householdID int64) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(
		`SELECT `+subscriptionCols+` FROM push_subscriptions WHERE household_id = ?`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (s *PushStore) Delete(householdID, id int64) error {
	result, err := s.db.Exec(
		`DELETE FROM push_subscriptions WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: subscription %d", ErrNotFound, id)
	}
	return nil
}

// DeleteByEndpoint removes a subscription the push service reported as gone.
func (s *PushStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete subscription by endpoint: %w", err)
	}
	return nil
}
