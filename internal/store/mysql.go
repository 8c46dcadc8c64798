package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	intdb "github.com/ZiyadBin/rain-system/internal/db"
)

const recordsTable = "collection_records"

type sqlRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MySQLStore keeps every collection in one table of JSON bodies, ordered by insertion.
// Unlike FileStore it can run a group of mutations in a single transaction.
type MySQLStore struct {
	DB *sql.DB

	q    sqlRunner
	inTx bool
}

// NewMySQLStore wraps db and creates the records table when it is missing.
func NewMySQLStore(ctx context.Context, db *sql.DB) (*MySQLStore, error) {
	s := &MySQLStore{DB: db, q: db}
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MySQLStore) ensureTable(ctx context.Context) error {
	if intdb.HasTable(ctx, s.DB, recordsTable) {
		return nil
	}
	ddl := `
CREATE TABLE IF NOT EXISTS collection_records (
	seq BIGINT AUTO_INCREMENT PRIMARY KEY,
	collection VARCHAR(64) NOT NULL,
	id VARCHAR(64) NOT NULL,
	body JSON NOT NULL,
	UNIQUE KEY uniq_collection_id (collection, id),
	KEY idx_collection (collection)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`
	if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", recordsTable, err)
	}
	return nil
}

func (s *MySQLStore) Read(ctx context.Context, collection string) ([]Record, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT body FROM collection_records WHERE collection=? ORDER BY seq ASC`, collection)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		var rec Record
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *MySQLStore) Write(ctx context.Context, collection string, records []Record) error {
	if err := validCollection(collection); err != nil {
		return err
	}
	if s.inTx {
		return s.replace(ctx, collection, records)
	}
	return s.WithinTx(ctx, func(tx Store) error {
		return tx.(*MySQLStore).replace(ctx, collection, records)
	})
}

func (s *MySQLStore) replace(ctx context.Context, collection string, records []Record) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM collection_records WHERE collection=?`, collection); err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	for _, rec := range records {
		if err := s.insert(ctx, collection, rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *MySQLStore) Add(ctx context.Context, collection string, record Record) error {
	if err := validCollection(collection); err != nil {
		return err
	}
	return s.insert(ctx, collection, record)
}

func (s *MySQLStore) insert(ctx context.Context, collection string, rec Record) error {
	id := rec.ID()
	if id == "" {
		return fmt.Errorf("insert %s: record without id", collection)
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	if _, err := s.q.ExecContext(ctx,
		`INSERT INTO collection_records (collection, id, body) VALUES (?, ?, ?)`,
		collection, id, body); err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MySQLStore) Update(ctx context.Context, collection, id string, fields Record) (bool, error) {
	if err := validCollection(collection); err != nil {
		return false, err
	}
	var body []byte
	err := s.q.QueryRowContext(ctx,
		`SELECT body FROM collection_records WHERE collection=? AND id=? LIMIT 1`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s/%s: %w", collection, id, err)
	}
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	merged, err := json.Marshal(rec.Merge(fields))
	if err != nil {
		return false, fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	if _, err := s.q.ExecContext(ctx,
		`UPDATE collection_records SET body=? WHERE collection=? AND id=?`, merged, collection, id); err != nil {
		return false, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return true, nil
}

func (s *MySQLStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	if err := validCollection(collection); err != nil {
		return false, err
	}
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM collection_records WHERE collection=? AND id=?`, collection, id)
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return n > 0, nil
}

// WithinTx runs fn against a store bound to one transaction. Nested calls reuse it.
func (s *MySQLStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := &MySQLStore{DB: s.DB, q: tx, inTx: true}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
