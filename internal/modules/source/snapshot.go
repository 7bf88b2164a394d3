package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/brillante-joyas/catalog-api/internal/modules/catalog"
)

// SnapshotStore persists the last successfully fetched raw record set in a
// local SQLite file, so the storefront keeps serving its catalog while the
// primary source is down.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(dbPath string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS raw_products (
			slug TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			saved_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SnapshotStore{db: db}, nil
}

// Save replaces the snapshot with the given record set.
func (s *SnapshotStore) Save(ctx context.Context, records []catalog.RawRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM raw_products`); err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, r := range records {
		slug := r.Slug
		if slug == "" {
			slug = string(r.ID)
		}
		if slug == "" {
			continue
		}
		data, err := json.Marshal(r)
		if err != nil {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO raw_products (slug, data, saved_at) VALUES (?, ?, ?)
			 ON CONFLICT(slug) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
			slug, string(data), now)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SnapshotStore) ListAll(ctx context.Context) ([]catalog.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM raw_products ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []catalog.RawRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r catalog.RawRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SnapshotStore) GetBySlug(ctx context.Context, slug string) (*catalog.RawRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM raw_products WHERE slug = ?`, slug).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var r catalog.RawRecord
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
