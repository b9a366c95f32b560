package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/idover/idover/internal/domain"
)

// TeamStore handles tenant persistence operations.
type TeamStore struct {
	store *Store
}

// Create creates a new team and returns it.
func (ts *TeamStore) Create(name string) (*domain.Team, error) {
	res, err := ts.store.db.Exec(`
		INSERT INTO teams (name, api_token) VALUES (?, ?)
	`, name, uuid.NewString())
	if err != nil {
		return nil, classify(opCreateTeam, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get team id: %w", err)
	}
	return ts.Get(id)
}

// Get retrieves a team by ID.
func (ts *TeamStore) Get(id int64) (*domain.Team, error) {
	team := &domain.Team{}
	var createdAt string
	err := ts.store.db.QueryRow(`
		SELECT id, name, api_token, created_at FROM teams WHERE id = ?
	`, id).Scan(&team.ID, &team.Name, &team.APIToken, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("team not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if team.CreatedAt, err = domain.ParseEventTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return team, nil
}

// List returns all teams ordered by ID.
func (ts *TeamStore) List() ([]domain.Team, error) {
	rows, err := ts.store.db.Query(`SELECT id, name, api_token, created_at FROM teams ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var team domain.Team
		var createdAt string
		if err := rows.Scan(&team.ID, &team.Name, &team.APIToken, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		if team.CreatedAt, err = domain.ParseEventTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}
