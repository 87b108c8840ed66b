package database

import (
	"database/sql"
	"fmt"

	"cajabooks/internal/models"
)

func (db *DB) ListCashiers() ([]models.Cashier, error) {
	rows, err := db.Query(`
		SELECT id, name, created_at
		FROM cashiers
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query cashiers: %w", err)
	}
	defer rows.Close()

	var cashiers []models.Cashier
	for rows.Next() {
		var c models.Cashier
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cashier: %w", err)
		}
		cashiers = append(cashiers, c)
	}
	return cashiers, rows.Err()
}

func (db *DB) CreateCashier(name string) (int64, error) {
	result, err := db.Exec(`INSERT INTO cashiers (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert cashier: %w", err)
	}
	return result.LastInsertId()
}

// GetCashierIDByName resolves a cashier display name to its id.
func (db *DB) GetCashierIDByName(name string) (int64, error) {
	var id int64
	err := db.QueryRow(`SELECT id FROM cashiers WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("cashier not found: %s", name)
	}
	if err != nil {
		return 0, fmt.Errorf("query cashier id: %w", err)
	}
	return id, nil
}
