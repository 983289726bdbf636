package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/7eVeNcO/semtk/pkg/errors"
)

// Fixed width so that text order matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps records in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		comments TEXT NOT NULL DEFAULT '',
		creator TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		hash TEXT NOT NULL,
		data BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_created ON records(created_at, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Put(ctx context.Context, r *Record) error {
	if err := r.validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (id, name, comments, creator, created_at, hash, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			comments = excluded.comments,
			creator = excluded.creator,
			created_at = excluded.created_at,
			hash = excluded.hash,
			data = excluded.data
	`, r.ID, r.Name, r.Comments, r.Creator, r.CreatedAt.UTC().Format(sqliteTimeLayout), r.Hash, []byte(r.Data))
	if err != nil {
		return fmt.Errorf("insert record %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, err
	}
	var (
		r       Record
		created string
		data    []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, comments, creator, created_at, hash, data
		FROM records WHERE id = ?
	`, id).Scan(&r.ID, &r.Name, &r.Comments, &r.Creator, &created, &r.Hash, &data)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("query record %s: %w", id, err)
	}
	if r.CreatedAt, err = time.Parse(sqliteTimeLayout, created); err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", id, err)
	}
	r.Data = data
	return &r, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateRecordID(id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, comments, creator, created_at, hash
		FROM records ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		var (
			r       Record
			created string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Comments, &r.Creator, &created, &r.Hash); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if r.CreatedAt, err = time.Parse(sqliteTimeLayout, created); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", r.ID, err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return recs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
