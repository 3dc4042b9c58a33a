package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/seathive/seathive-server/internal/model"
)

// The audit cross-cut lives here so that timestamps, who-did-what fields
// and logical deletion are stamped by one hook instead of being scattered
// through the services.  Every repository routes its writes through these
// helpers; hard deletes are rewritten to soft deletes.

// newAudit stamps the audit fields for a fresh row.
func newAudit(actor string) model.Audit {
	now := time.Now().UTC()
	return model.Audit{CreatedAt: now, CreatedBy: actor, UpdatedAt: now, UpdatedBy: actor}
}

// touchAudit advances the update stamp before a persisted mutation.
func touchAudit(a *model.Audit, actor string) {
	a.UpdatedAt = time.Now().UTC()
	a.UpdatedBy = actor
}

// execer is satisfied by both *sql.DB and *sql.Tx so the soft-delete hook
// can run standalone or inside a larger transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// softDelete marks a row logically deleted.  It affects only live rows;
// deleting an already-deleted or missing row reports ErrNotFound so
// handlers can answer 404 consistently.
func softDelete(ctx context.Context, e execer, table, id, actor string) error {
	now := time.Now().UTC()
	q := fmt.Sprintf(`UPDATE %s
	                  SET is_deleted = 1, deleted_at = ?, deleted_by = ?, updated_at = ?, updated_by = ?
	                  WHERE id = ? AND is_deleted = 0`, table)
	res, err := e.ExecContext(ctx, q, now, actor, now, actor, id)
	if err != nil {
		return fmt.Errorf("soft delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
