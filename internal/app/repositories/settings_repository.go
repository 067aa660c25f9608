package repositories

import (
	"context"
	"fmt"
	"sort"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/db"
)

// SettingsRepository stores runtime library settings as key/value rows
type SettingsRepository struct {
	base
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(pool db.Querier) *SettingsRepository {
	return &SettingsRepository{base: newBase(pool)}
}

// All returns every stored setting
func (r *SettingsRepository) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.query(ctx, r.sb.Select("key", "value").From("settings"))
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Upsert writes values, inserting missing keys
func (r *SettingsRepository) Upsert(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := r.sb.Insert("settings").Columns("key", "value")
	for _, k := range keys {
		q = q.Values(k, values[k])
	}
	q = q.Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()")

	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
