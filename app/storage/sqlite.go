package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	e "nuclight.org/upload-tg-bot/pkg/entities"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(ctx context.Context, filePath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite3 database: %w", err)
	}

	client := &SQLite{
		db: db,
	}

	err = client.init(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing sqlite3 database: %w", err)
	}

	return client, nil
}

func (c *SQLite) Close() error {
	return c.db.Close()
}

// SaveTransfer appends rec to the journal and returns the row ID.
// A zero CreatedAt is replaced with the current time.
func (c *SQLite) SaveTransfer(ctx context.Context, rec e.TransferRecord) (int64, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := c.db.ExecContext(
		ctx,
		`INSERT INTO transfers (
			request_id, chat_id, user_id, url, filename, size, outcome, error, created_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?
		)`,
		rec.RequestID, rec.ChatID, rec.UserID, rec.URL, rec.Filename, rec.Size,
		string(rec.Outcome), rec.Error, createdAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting transfer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return id, nil
}

// ListTransfers returns up to limit most recent records, newest first.
func (c *SQLite) ListTransfers(ctx context.Context, limit int) ([]e.TransferRecord, error) {
	rows, err := c.db.QueryContext(
		ctx,
		`SELECT id, request_id, chat_id, user_id, url, filename, size, outcome, error, created_at
			FROM transfers
			ORDER BY id DESC
			LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying transfers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []e.TransferRecord
	for rows.Next() {
		var (
			rec     e.TransferRecord
			outcome string
		)

		err = rows.Scan(
			&rec.ID, &rec.RequestID, &rec.ChatID, &rec.UserID, &rec.URL,
			&rec.Filename, &rec.Size, &outcome, &rec.Error, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}

		rec.Outcome = e.Outcome(outcome)
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transfers: %w", err)
	}

	return records, nil
}

//go:embed init.sql
var initQuery string

func (c *SQLite) init(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, initQuery)
	return err
}
