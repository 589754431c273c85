package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cardflow-backend/internal/db"
)

// SavedConfig is an opaque keyed configuration record. The config blob is
// whatever the caller serialized (AI provider or Jira settings); no schema
// is imposed here.
type SavedConfig struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Config    json.RawMessage `json:"config"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ConfigStore persists saved configurations in PostgreSQL.
type ConfigStore struct {
	db *db.DB
}

func NewConfigStore(database *db.DB) *ConfigStore {
	return &ConfigStore{db: database}
}

// Save inserts a new configuration record and returns it with its id.
func (cs *ConfigStore) Save(name string, config json.RawMessage) (SavedConfig, error) {
	if name == "" || len(config) == 0 {
		return SavedConfig{}, fmt.Errorf("name and config are required")
	}
	rec := SavedConfig{
		ID:     uuid.NewString(),
		Name:   name,
		Config: config,
	}
	query := `
		INSERT INTO saved_configs (id, name, config, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`
	if err := cs.db.QueryRow(query, rec.ID, rec.Name, []byte(rec.Config)).Scan(&rec.CreatedAt); err != nil {
		return SavedConfig{}, fmt.Errorf("failed to save config: %w", err)
	}
	return rec, nil
}

// List returns all saved configurations, newest first.
func (cs *ConfigStore) List() ([]SavedConfig, error) {
	rows, err := cs.db.Query(`
		SELECT id, name, config, created_at
		FROM saved_configs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}
	defer rows.Close()

	var out []SavedConfig
	for rows.Next() {
		var rec SavedConfig
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.Name, &blob, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan config: %w", err)
		}
		rec.Config = json.RawMessage(blob)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns a saved configuration by id, or nil when absent.
func (cs *ConfigStore) Get(id string) (*SavedConfig, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	var rec SavedConfig
	var blob []byte
	err := cs.db.QueryRow(`
		SELECT id, name, config, created_at
		FROM saved_configs
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Name, &blob, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	rec.Config = json.RawMessage(blob)
	return &rec, nil
}

// Delete removes a saved configuration by id.
func (cs *ConfigStore) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if _, err := cs.db.Exec(`DELETE FROM saved_configs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete config: %w", err)
	}
	return nil
}
