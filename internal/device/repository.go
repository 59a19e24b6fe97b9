package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// SQLiteRepository is a registry client backed by the device database.
// It implements the calls the registrar makes and a few used by device
// servers themselves (ExportDevice) and by tooling (GetDeviceProperties).
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed registry client.
// The db parameter should be an open, migrated SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// PutDeviceProperties stores the given properties for a device name.
// Each listed property replaces any previous values; other properties of
// the device are left alone. The device does not need to exist yet.
func (r *SQLiteRepository) PutDeviceProperties(ctx context.Context, name string, props Properties) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidDevice)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	now := time.Now().UTC().Format(time.RFC3339)

	for _, key := range sortedKeys(props) {
		value := props[key]

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM device_properties WHERE device = ? AND name = ?",
			name, key,
		); err != nil {
			return fmt.Errorf("clearing property %s: %w", key, err)
		}

		for idx, v := range value.Values() {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO device_properties (device, name, idx, value, is_list, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				name, key, idx, v, boolToInt(value.IsList()), now,
			); err != nil {
				return fmt.Errorf("inserting property %s: %w", key, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing properties: %w", err)
	}
	return nil
}

// GetDeviceProperties reads back every property stored for a device name.
func (r *SQLiteRepository) GetDeviceProperties(ctx context.Context, name string) (Properties, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, value, is_list
		FROM device_properties
		WHERE device = ?
		ORDER BY name, idx`, name)
	if err != nil {
		return nil, fmt.Errorf("querying properties: %w", err)
	}
	defer rows.Close()

	values := make(map[string][]string)
	lists := make(map[string]bool)
	for rows.Next() {
		var key, value string
		var isList int
		if err := rows.Scan(&key, &value, &isList); err != nil {
			return nil, fmt.Errorf("scanning property row: %w", err)
		}
		values[key] = append(values[key], value)
		lists[key] = isList != 0
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}

	props := make(Properties, len(values))
	for key, vals := range values {
		if lists[key] {
			props[key] = List(vals...)
		} else {
			props[key] = String(vals[0])
		}
	}
	return props, nil
}

// AddDevice registers a device under its server.
// Returns ErrDeviceExists if the name is already registered.
func (r *SQLiteRepository) AddDevice(ctx context.Context, desc Descriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (name, class, server, exported, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)`,
		desc.Name, desc.Class, desc.Server, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrDeviceExists, desc.Name)
		}
		return fmt.Errorf("inserting device: %w", err)
	}
	return nil
}

// DeleteServer removes every device registered under server.
// Returns ErrServerNotFound if the server owns no devices.
func (r *SQLiteRepository) DeleteServer(ctx context.Context, server string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE server = ?", server)
	if err != nil {
		return fmt.Errorf("deleting server: %w", err)
	}
	return requireRows(result, fmt.Errorf("%w: %s", ErrServerNotFound, server))
}

// UnexportServer marks every device of server as not exported.
// Returns ErrServerNotFound if the server owns no devices.
func (r *SQLiteRepository) UnexportServer(ctx context.Context, server string) error {
	return r.setExported(ctx, "server", server, false, fmt.Errorf("%w: %s", ErrServerNotFound, server))
}

// ExportDevice marks a device as exported. Device servers do this when
// they start; the registrar itself never calls it.
func (r *SQLiteRepository) ExportDevice(ctx context.Context, name string) error {
	return r.setExported(ctx, "name", name, true, fmt.Errorf("%w: %s", ErrDeviceNotFound, name))
}

// ImportDevice returns the registry record for a device name.
// Returns ErrDeviceNotFound if the name is not registered.
func (r *SQLiteRepository) ImportDevice(ctx context.Context, name string) (DeviceInfo, error) {
	var info DeviceInfo
	var exported int

	err := r.db.QueryRowContext(ctx,
		"SELECT name, class, server, exported FROM devices WHERE name = ?", name,
	).Scan(&info.Name, &info.Class, &info.Server, &exported)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DeviceInfo{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, name)
		}
		return DeviceInfo{}, fmt.Errorf("querying device: %w", err)
	}

	info.Exported = exported != 0
	return info, nil
}

// setExported updates the exported flag of the devices matching column = value.
func (r *SQLiteRepository) setExported(ctx context.Context, column, value string, exported bool, notFound error) error {
	// column is one of two constants chosen by the callers above.
	query := fmt.Sprintf("UPDATE devices SET exported = ?, updated_at = ? WHERE %s = ?", column)

	result, err := r.db.ExecContext(ctx, query,
		boolToInt(exported),
		time.Now().UTC().Format(time.RFC3339),
		value,
	)
	if err != nil {
		return fmt.Errorf("updating export state: %w", err)
	}
	return requireRows(result, notFound)
}

// requireRows returns notFound when the statement touched no rows.
func requireRows(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

func sortedKeys(props Properties) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}
