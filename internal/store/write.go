package store

import (
	"context"
	"fmt"

	"github.com/roach88/jsgraph/internal/graph"
)

// Apply writes a batch in one transaction: every put is upserted, then every
// delete is applied. Either the whole batch lands or none of it does.
//
// A row keeps the user that first wrote it. Loads are not user scoped, so
// another user may save an entity it touched, but that never moves the row
// out of the original user's listings or DeleteUser.
func (s *Store) Apply(ctx context.Context, b graph.Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, row := range b.Puts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO objects
			(id, owner_id, user_id, name, kind, entity_type, ts, body)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				owner_id = excluded.owner_id,
				name = excluded.name,
				kind = excluded.kind,
				entity_type = excluded.entity_type,
				ts = excluded.ts,
				body = excluded.body
		`,
			row.ID.String(),
			ownerColumn(row),
			row.User,
			row.Name,
			row.Kind,
			string(row.Type),
			row.Timestamp.UnixNano(),
			compressBody(row.Body),
		)
		if err != nil {
			return fmt.Errorf("apply: put %s: %w", row.ID, err)
		}
	}

	for _, id := range b.Deletes {
		if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, id.String()); err != nil {
			return fmt.Errorf("apply: delete %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply: commit: %w", err)
	}
	return nil
}

// DeleteUser removes every row of the user and returns the count.
func (s *Store) DeleteUser(ctx context.Context, user string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM objects WHERE user_id = ?`, user)
	if err != nil {
		return 0, fmt.Errorf("delete user %q: %w", user, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete user %q: %w", user, err)
	}
	return int(n), nil
}

func ownerColumn(row graph.Row) string {
	if row.OwnerID.IsNil() {
		return ""
	}
	return row.OwnerID.String()
}
