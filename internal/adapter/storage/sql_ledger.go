package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

// SQLLedger keeps the listing ledger in the posts table. Rows are keyed by
// (chat_id, post_id, goods_id); recording the same pair twice keeps the latest
// message.
type SQLLedger struct {
	db     *sql.DB
	driver string
}

func NewSQLLedger(db *sql.DB, driver string) *SQLLedger {
	return &SQLLedger{db: db, driver: driver}
}

func (l *SQLLedger) upsertQuery() string {
	if l.driver == DriverSQLite {
		return `
		INSERT INTO posts (chat_id, post_id, goods_id, message_id) VALUES (?, ?, ?, ?)
		ON CONFLICT (chat_id, post_id, goods_id) DO UPDATE SET message_id = excluded.message_id`
	}
	return `
		INSERT INTO posts (chat_id, post_id, goods_id, message_id) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE message_id = VALUES(message_id)`
}

func (l *SQLLedger) RecordListing(ctx context.Context, listing domain.ListingKey, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, l.upsertQuery())
	if err != nil {
		return fmt.Errorf("prepare posts: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, listing.ChatID, listing.MessageID, e.GoodsID, e.MessageID); err != nil {
			return fmt.Errorf("insert post %s/%d: %w", listing, e.GoodsID, err)
		}
	}

	return tx.Commit()
}

func (l *SQLLedger) ResolveMessage(ctx context.Context, listing domain.ListingKey, goodsID int64) (int64, bool, error) {
	var messageID int64
	err := l.db.QueryRowContext(ctx, `
		SELECT message_id FROM posts WHERE chat_id = ? AND post_id = ? AND goods_id = ?`,
		listing.ChatID, listing.MessageID, goodsID,
	).Scan(&messageID)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query post: %w", err)
	}
	return messageID, true, nil
}

// Prune deletes ledger rows older than maxAge and returns how many went.
func (l *SQLLedger) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	seconds := int64(maxAge / time.Second)

	query := `DELETE FROM posts WHERE created_at < NOW() - INTERVAL ? SECOND`
	arg := any(seconds)
	if l.driver == DriverSQLite {
		query = `DELETE FROM posts WHERE created_at < datetime('now', ?)`
		arg = fmt.Sprintf("-%d seconds", seconds)
	}

	result, err := l.db.ExecContext(ctx, query, arg)
	if err != nil {
		return 0, fmt.Errorf("prune posts: %w", err)
	}
	return affectedRows(result, "prune posts")
}
