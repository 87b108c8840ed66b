package database

import (
	"database/sql"
	"fmt"
	"strconv"

	"cajabooks/internal/models"
)

func (db *DB) ListStores() ([]models.Store, error) {
	rows, err := db.Query(`
		SELECT id, name, created_at
		FROM stores
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query stores: %w", err)
	}
	defer rows.Close()

	var stores []models.Store
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// ListStoreRefs returns the stores in the id/name shape the matcher works
// against.
func (db *DB) ListStoreRefs() ([]models.StoreRef, error) {
	stores, err := db.ListStores()
	if err != nil {
		return nil, err
	}
	refs := make([]models.StoreRef, 0, len(stores))
	for _, s := range stores {
		refs = append(refs, models.StoreRef{ID: strconv.FormatInt(s.ID, 10), Name: s.Name})
	}
	return refs, nil
}

func (db *DB) CreateStore(name string) (int64, error) {
	result, err := db.Exec(`INSERT INTO stores (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert store: %w", err)
	}
	return result.LastInsertId()
}

// GetStoreIDByName resolves a store display name to its id.
func (db *DB) GetStoreIDByName(name string) (int64, error) {
	var id int64
	err := db.QueryRow(`SELECT id FROM stores WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("store not found: %s", name)
	}
	if err != nil {
		return 0, fmt.Errorf("query store id: %w", err)
	}
	return id, nil
}
