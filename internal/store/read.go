package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/jsgraph/internal/graph"
	"github.com/roach88/jsgraph/internal/jid"
)

const selectColumns = `SELECT id, owner_id, user_id, name, kind, entity_type, ts, body FROM objects`

// Load returns the row for id, or a NOT_FOUND graph error.
func (s *Store) Load(ctx context.Context, id jid.ID) (graph.Row, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id.String())
	r, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return graph.Row{}, graph.NewNotFound(id)
	}
	if err != nil {
		return graph.Row{}, fmt.Errorf("load %s: %w", id, err)
	}
	return r, nil
}

// ListByUser returns the user's rows ordered by timestamp, then id.
//
// Returns an empty slice (not nil) if the user has no rows.
func (s *Store) ListByUser(ctx context.Context, user string) ([]graph.Row, error) {
	return s.list(ctx, `WHERE user_id = ?`, user)
}

// ListByType returns the user's rows of one entity type, same order.
func (s *Store) ListByType(ctx context.Context, user string, t graph.EntityType) ([]graph.Row, error) {
	return s.list(ctx, `WHERE user_id = ? AND entity_type = ?`, user, string(t))
}

// FindByName returns the user's rows with an exact name, same order.
func (s *Store) FindByName(ctx context.Context, user, name string) ([]graph.Row, error) {
	return s.list(ctx, `WHERE user_id = ? AND name = ?`, user, name)
}

// Count returns the number of rows the user owns.
func (s *Store) Count(ctx context.Context, user string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM objects WHERE user_id = ?`, user).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", user, err)
	}
	return n, nil
}

func (s *Store) list(ctx context.Context, where string, args ...any) ([]graph.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+" "+where+` ORDER BY ts ASC, id COLLATE BINARY ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}
	defer rows.Close()

	out := []graph.Row{}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate objects: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(sc scanner) (graph.Row, error) {
	var (
		id, owner, user, name, kind, typ string
		ts                               int64
		body                             []byte
	)
	if err := sc.Scan(&id, &owner, &user, &name, &kind, &typ, &ts, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return graph.Row{}, err
		}
		return graph.Row{}, fmt.Errorf("scan object: %w", err)
	}

	r := graph.Row{
		User:      user,
		Name:      name,
		Kind:      kind,
		Type:      graph.EntityType(typ),
		Timestamp: time.Unix(0, ts).UTC(),
	}
	var err error
	if r.ID, err = jid.Parse(id); err != nil {
		return graph.Row{}, fmt.Errorf("scan object: %w", err)
	}
	if owner != "" {
		if r.OwnerID, err = jid.Parse(owner); err != nil {
			return graph.Row{}, fmt.Errorf("scan object %s: owner: %w", id, err)
		}
	}
	if r.Body, err = decompressBody(body); err != nil {
		return graph.Row{}, fmt.Errorf("scan object %s: %w", id, err)
	}
	return r, nil
}
