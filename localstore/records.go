package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Record is anything the store will hold: the only shape requirement is a
// non-empty identifying key. The store never inspects the rest.
type Record interface {
	RecordID() string
}

// Put inserts or replaces a record keyed by its id.
func Put[T Record](ctx context.Context, s *Store, collection string, rec T) error {
	id := rec.RecordID()
	if id == "" {
		return ErrInvalidRecord
	}
	table, err := s.tableName(collection)
	if err != nil {
		return err
	}
	db, err := s.handle()
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("localstore: encode record %q: %w", id, err)
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (id, data) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data",
		table,
	), id, string(data))
	return err
}

// GetByID fetches one record. An absent id is not an error: the second
// return value reports presence.
func GetByID[T Record](ctx context.Context, s *Store, collection, id string) (T, bool, error) {
	var zero T
	table, err := s.tableName(collection)
	if err != nil {
		return zero, false, err
	}
	db, err := s.handle()
	if err != nil {
		return zero, false, err
	}

	var data string
	err = db.QueryRowContext(ctx, fmt.Sprintf("SELECT data FROM %s WHERE id = ?", table), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}

	var rec T
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return zero, false, fmt.Errorf("localstore: decode record %q: %w", id, err)
	}
	return rec, true, nil
}

// GetAll returns every record in a collection. Order is unspecified.
func GetAll[T Record](ctx context.Context, s *Store, collection string) ([]T, error) {
	table, err := s.tableName(collection)
	if err != nil {
		return nil, err
	}
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT data FROM %s", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec T
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("localstore: decode record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// BulkPut applies Put for each record inside one transaction: either every
// record lands or none do. Records without ids fail the whole batch before
// anything is written.
func BulkPut[T Record](ctx context.Context, s *Store, collection string, recs []T) error {
	for _, rec := range recs {
		if rec.RecordID() == "" {
			return ErrInvalidRecord
		}
	}
	table, err := s.tableName(collection)
	if err != nil {
		return err
	}
	db, err := s.handle()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt := fmt.Sprintf(
		"INSERT INTO %s (id, data) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data",
		table,
	)
	for _, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("localstore: encode record %q: %w", rec.RecordID(), err)
		}
		if _, err := tx.ExecContext(ctx, stmt, rec.RecordID(), string(data)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
