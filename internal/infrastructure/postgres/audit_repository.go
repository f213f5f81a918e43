package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
	"github.com/jhoicas/tenant-stock-api/internal/domain/schema"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo log de auditoría sobre PostgreSQL. Fuera de la transacción de la operación:
// se escribe después del commit con su propia transacción corta.
type AuditRepo struct {
	pool *pgxpool.Pool
	caps schema.AuditColumns
}

// NewAuditRepository construye el adaptador con las columnas presentes en audit_entries.
func NewAuditRepository(pool *pgxpool.Pool, caps schema.AuditColumns) *AuditRepo {
	return &AuditRepo{pool: pool, caps: caps}
}

// Append inserta la entrada. Con chained, un advisory lock por negocio serializa la lectura
// del último hash y el insert.
func (r *AuditRepo) Append(ctx context.Context, e *entity.AuditEntry, chained bool) error {
	chained = chained && r.caps.HashChain
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if chained {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('audit:' || $1))`, e.BusinessID); err != nil {
			return fmt.Errorf("lock audit chain: %w", err)
		}
		prev, err := r.lastHash(ctx, tx, e.BusinessID)
		if err != nil {
			return err
		}
		e.PrevHash = prev
		e.Hash = e.ComputeHash(prev)
	}

	names := []string{"id", "entity_type", "action", "at", "details"}
	args := []any{e.ID, e.EntityType, e.Action, e.At, e.Details}
	add := func(ok bool, name string, v any) {
		if ok {
			names = append(names, name)
			args = append(args, v)
		}
	}
	add(r.caps.BusinessID, "business_id", e.BusinessID)
	add(r.caps.EntityID, "entity_id", e.EntityID)
	add(r.caps.Actor, "actor_id", e.ActorID)
	add(r.caps.Diff, "diff", e.Diff)
	add(chained, "prev_hash", e.PrevHash)
	add(chained, "hash", e.Hash)

	placeholders := make([]string, len(names))
	for i := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := `INSERT INTO audit_entries (` + strings.Join(names, ", ") + `) VALUES (` + strings.Join(placeholders, ", ") + `)`
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *AuditRepo) lastHash(ctx context.Context, q Querier, businessID string) (string, error) {
	query := `SELECT hash FROM audit_entries WHERE hash <> ''`
	args := []any{}
	if r.caps.BusinessID {
		query += ` AND business_id = $1`
		args = append(args, businessID)
	}
	query += ` ORDER BY seq DESC LIMIT 1`
	var hash string
	if err := q.QueryRow(ctx, query, args...).Scan(&hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get last audit hash: %w", err)
	}
	return hash, nil
}

// ListByBusiness entradas del negocio en orden de inserción; limit <= 0 = todas.
// Sin columna business_id no hay forma de filtrar y se devuelve vacío.
func (r *AuditRepo) ListByBusiness(ctx context.Context, businessID string, limit int) ([]*entity.AuditEntry, error) {
	if !r.caps.BusinessID {
		return nil, nil
	}
	cols := "id, business_id, entity_type, action, at, details"
	if r.caps.EntityID {
		cols += ", entity_id"
	}
	if r.caps.Actor {
		cols += ", actor_id"
	}
	if r.caps.Diff {
		cols += ", diff"
	}
	if r.caps.HashChain {
		cols += ", prev_hash, hash"
	}
	query := `SELECT ` + cols + ` FROM (
		SELECT seq, ` + cols + ` FROM audit_entries WHERE business_id = $1 ORDER BY seq DESC`
	args := []any{businessID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	query += `) recent ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		targets := []any{&e.ID, &e.BusinessID, &e.EntityType, &e.Action, &e.At, &e.Details}
		if r.caps.EntityID {
			targets = append(targets, &e.EntityID)
		}
		if r.caps.Actor {
			targets = append(targets, &e.ActorID)
		}
		if r.caps.Diff {
			targets = append(targets, &e.Diff)
		}
		if r.caps.HashChain {
			targets = append(targets, &e.PrevHash, &e.Hash)
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return out, nil
}
