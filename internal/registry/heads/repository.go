package heads

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Repository persists account heads.
type Repository interface {
	Insert(ctx context.Context, head Head) (Head, error)
	Get(ctx context.Context, id uuid.UUID) (Head, error)
	List(ctx context.Context, kind *Kind) ([]Head, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the Postgres-backed head repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// account_heads carries a unique index on (kind, lower(name)).
const uqHeadName = "uq_account_heads_kind_name"

func (r *repository) Insert(ctx context.Context, head Head) (Head, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `INSERT INTO account_heads (id, name, kind, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4) RETURNING id`, head.ID, head.Name, head.Kind, now).Scan(&head.ID)
	if err != nil {
		if isUniqueViolation(err, uqHeadName) {
			return Head{}, shared.InvalidArgument("name", "head name already used within kind")
		}
		return Head{}, err
	}
	head.CreatedAt = now
	head.UpdatedAt = now
	return head, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Head, error) {
	var h Head
	err := r.db.QueryRow(ctx, `SELECT id, name, kind, created_at, updated_at FROM account_heads WHERE id = $1`, id).
		Scan(&h.ID, &h.Name, &h.Kind, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Head{}, shared.NotFound("head", "id")
	}
	return h, err
}

func (r *repository) List(ctx context.Context, kind *Kind) ([]Head, error) {
	query := `SELECT id, name, kind, created_at, updated_at FROM account_heads`
	args := []any{}
	if kind != nil {
		query += ` WHERE kind = $1`
		args = append(args, *kind)
	}
	query += ` ORDER BY kind, lower(name)`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var heads []Head
	for rows.Next() {
		var h Head
		if err := rows.Scan(&h.ID, &h.Name, &h.Kind, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		heads = append(heads, h)
	}
	return heads, rows.Err()
}

func (r *repository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE account_heads SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
	if err != nil {
		if isUniqueViolation(err, uqHeadName) {
			return shared.InvalidArgument("name", "head name already used within kind")
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("head", "id")
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM account_heads WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return shared.ReferentialIntegrity("head")
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("head", "id")
	}
	return nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
