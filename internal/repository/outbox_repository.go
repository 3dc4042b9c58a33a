package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/seathive/seathive-server/internal/model"
)

// OutboxRepo persists staged domain events.  Producers insert rows inside
// their own business transaction (via insertOutboxTx); the dispatcher
// claims rows with FOR UPDATE SKIP LOCKED so two replicas never publish
// the same row concurrently.
type OutboxRepo struct {
	db *sql.DB
}

// NewOutboxRepo returns an OutboxRepo bound to the given database.
func NewOutboxRepo(db *sql.DB) *OutboxRepo { return &OutboxRepo{db: db} }

// insertOutboxTx stages one event inside the caller's transaction.  This
// is the write path of the transactional outbox: the row commits or rolls
// back together with the business change.
func insertOutboxTx(ctx context.Context, tx *sql.Tx, m *model.OutboxMessage) error {
	const q = `INSERT INTO outbox_messages (id, event_type, payload, created_at, retry_count)
	           VALUES (?, ?, ?, ?, 0)`
	if _, err := tx.ExecContext(ctx, q, m.ID, m.EventType, m.Payload, m.CreatedAt); err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// ResetStuck clears the processing sentinel on rows claimed before the
// given instant but never finished, returning them to the claimable pool.
// It substitutes for a lease on storage without native lease support.
func (r *OutboxRepo) ResetStuck(ctx context.Context, before time.Time) (int64, error) {
	const q = `UPDATE outbox_messages
	           SET processing_at = NULL
	           WHERE processing_at IS NOT NULL AND processed_at IS NULL AND processing_at < ?`
	res, err := r.db.ExecContext(ctx, q, before)
	if err != nil {
		return 0, fmt.Errorf("reset stuck outbox messages: %w", err)
	}
	return res.RowsAffected()
}

// ClaimBatch atomically claims up to limit unprocessed rows, oldest first.
// SKIP LOCKED makes concurrent dispatchers pass over each other's rows
// instead of blocking or double-claiming.
func (r *OutboxRepo) ClaimBatch(ctx context.Context, limit, maxRetries int) ([]model.OutboxMessage, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const sel = `SELECT id, event_type, payload, created_at, retry_count
	             FROM outbox_messages
	             WHERE processed_at IS NULL AND processing_at IS NULL AND retry_count < ?
	             ORDER BY created_at
	             LIMIT ?
	             FOR UPDATE SKIP LOCKED`
	rows, err := tx.QueryContext(ctx, sel, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("select claimable outbox messages: %w", err)
	}
	claimed := make([]model.OutboxMessage, 0, limit)
	for rows.Next() {
		var m model.OutboxMessage
		if err := rows.Scan(&m.ID, &m.EventType, &m.Payload, &m.CreatedAt, &m.RetryCount); err != nil {
			rows.Close()
			return nil, err
		}
		claimed = append(claimed, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(claimed) == 0 {
		_ = tx.Rollback()
		committed = true
		return nil, nil
	}

	now := time.Now().UTC()
	const upd = `UPDATE outbox_messages SET processing_at = ? WHERE id = ?`
	for i := range claimed {
		if _, err := tx.ExecContext(ctx, upd, now, claimed[i].ID); err != nil {
			return nil, fmt.Errorf("mark outbox message processing: %w", err)
		}
		t := now
		claimed[i].ProcessingAt = &t
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim tx: %w", err)
	}
	committed = true
	return claimed, nil
}

// MarkProcessed finalizes a successfully published row and clears any
// error left by earlier attempts.
func (r *OutboxRepo) MarkProcessed(ctx context.Context, id string) error {
	const q = `UPDATE outbox_messages
	           SET processed_at = ?, processing_at = NULL, error_message = NULL
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("mark outbox message processed: %w", err)
	}
	return nil
}

// MarkFailed records a failed publish: the retry counter advances, the
// error is kept for auditing and the claim is released.  When poison is
// set the row is parked terminally by stamping processed_at so it is never
// claimed again.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id, errMsg string, poison bool) error {
	if poison {
		const q = `UPDATE outbox_messages
		           SET retry_count = retry_count + 1, error_message = ?, processing_at = NULL, processed_at = ?
		           WHERE id = ?`
		if _, err := r.db.ExecContext(ctx, q, errMsg, time.Now().UTC(), id); err != nil {
			return fmt.Errorf("poison outbox message: %w", err)
		}
		return nil
	}
	const q = `UPDATE outbox_messages
	           SET retry_count = retry_count + 1, error_message = ?, processing_at = NULL
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, errMsg, id); err != nil {
		return fmt.Errorf("mark outbox message failed: %w", err)
	}
	return nil
}
