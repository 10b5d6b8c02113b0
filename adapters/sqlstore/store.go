package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	workflow "github.com/lucasmqar/vercflow-sub003"
)

const defaultListLimit = 25

// EntityStore is the SQLite-backed workflow.EntityStore. Entity rows carry a
// version column; transitions live in an append-only side table written in
// the same transaction as the row update.
type EntityStore struct {
	db *sql.DB
}

func NewEntityStore(db *sql.DB) *EntityStore {
	return &EntityStore{db: db}
}

var _ workflow.EntityStore = (*EntityStore)(nil)

func (s *EntityStore) Save(ctx context.Context, e *workflow.Entity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if e.Version == 1 {
		err = s.create(ctx, tx, e)
	} else {
		err = s.update(ctx, tx, e)
	}
	if err != nil {
		return err
	}

	err = s.appendTransitions(ctx, tx, e)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *EntityStore) create(ctx context.Context, tx *sql.Tx, e *workflow.Entity) error {
	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO workflow_entities
		(id, kind, status, priority, owner_id, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), string(e.Status), int(e.Priority), e.OwnerID, e.Version, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert entity: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		// The id already exists: another writer created it first.
		return errors.Wrap(workflow.ErrConcurrentModification, "", j.KV("entity_id", e.ID))
	}

	return nil
}

func (s *EntityStore) update(ctx context.Context, tx *sql.Tx, e *workflow.Entity) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE workflow_entities
		SET status = ?, priority = ?, owner_id = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?`,
		string(e.Status), int(e.Priority), e.OwnerID, e.Version, e.UpdatedAt, e.ID, e.Version-1,
	)
	if err != nil {
		return fmt.Errorf("update entity: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 1 {
		return nil
	}

	// Distinguish a missing row from a stale version.
	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM workflow_entities WHERE id = ?", e.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check entity exists: %w", err)
	}

	if exists == 0 {
		return errors.Wrap(workflow.ErrEntityNotFound, "", j.KV("entity_id", e.ID))
	}

	return errors.Wrap(workflow.ErrConcurrentModification, "", j.KV("entity_id", e.ID))
}

func (s *EntityStore) appendTransitions(ctx context.Context, tx *sql.Tx, e *workflow.Entity) error {
	// History is append-only and rows are keyed by (entity_id, idx), so
	// re-inserting already persisted entries is a no-op.
	for idx, t := range e.History {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO workflow_transitions
			(entity_id, idx, from_status, to_status, actor_id, reason, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, idx, string(t.From), string(t.To), t.ActorID, t.Reason, t.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert transition: %w", err)
		}
	}

	return nil
}

func (s *EntityStore) Lookup(ctx context.Context, id string) (*workflow.Entity, error) {
	e, err := entityScan(s.db.QueryRowContext(ctx, `
		SELECT id, kind, status, priority, owner_id, version, created_at, updated_at
		FROM workflow_entities WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	e.History, err = s.history(ctx, id)
	if err != nil {
		return nil, err
	}

	return e, nil
}

func (s *EntityStore) history(ctx context.Context, id string) ([]workflow.Transition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT from_status, to_status, actor_id, reason, timestamp
		FROM workflow_transitions WHERE entity_id = ? ORDER BY idx ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var history []workflow.Transition
	for rows.Next() {
		var t workflow.Transition
		err := rows.Scan(&t.From, &t.To, &t.ActorID, &t.Reason, &t.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}

		history = append(history, t)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return history, nil
}

func (s *EntityStore) List(
	ctx context.Context,
	kind workflow.Kind,
	offset int64,
	limit int,
	order workflow.OrderType,
	filters ...workflow.EntityFilter,
) ([]workflow.Entity, error) {
	filter := workflow.MakeFilter(filters...)

	var (
		conds  []string
		params []any
	)

	if kind != "" {
		conds = append(conds, "kind = ?")
		params = append(params, string(kind))
	}

	if filter.ByOwnerID().Enabled {
		conds = append(conds, "owner_id = ?")
		params = append(params, filter.ByOwnerID().Value)
	}

	if filter.ByStatus().Enabled {
		conds = append(conds, "status = ?")
		params = append(params, filter.ByStatus().Value)
	}

	if filter.ByCreatedBefore().Enabled {
		conds = append(conds, "created_at < ?")
		params = append(params, filter.ByCreatedBefore().Value)
	}

	where := "1=1"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}

	direction := "ASC"
	if order == workflow.OrderTypeDescending {
		direction = "DESC"
	}

	if limit == 0 {
		limit = defaultListLimit
	}

	params = append(params, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, kind, status, priority, owner_id, version, created_at, updated_at
		FROM workflow_entities WHERE %s
		ORDER BY created_at %s, id %s LIMIT ? OFFSET ?`, where, direction, direction)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var res []workflow.Entity
	for rows.Next() {
		e, err := entityScan(rows)
		if err != nil {
			return nil, err
		}

		res = append(res, *e)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	for i := range res {
		res[i].History, err = s.history(ctx, res[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func entityScan(row scannable) (*workflow.Entity, error) {
	var (
		e        workflow.Entity
		priority int
	)
	err := row.Scan(
		&e.ID,
		&e.Kind,
		&e.Status,
		&priority,
		&e.OwnerID,
		&e.Version,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, workflow.ErrEntityNotFound
	} else if err != nil {
		return nil, fmt.Errorf("scan entity: %w", err)
	}

	e.Priority = workflow.Priority(priority)
	return &e, nil
}
