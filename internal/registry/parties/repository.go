package parties

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

// Repository persists parties.
type Repository interface {
	Insert(ctx context.Context, party Party) (Party, error)
	Get(ctx context.Context, id uuid.UUID) (Party, error)
	List(ctx context.Context) ([]Party, error)
	Update(ctx context.Context, party Party) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the Postgres-backed party repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, party Party) (Party, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `INSERT INTO parties (id, name, phone, address, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`, party.ID, party.Name, party.Phone, party.Address, now).Scan(&party.ID)
	if err != nil {
		return Party{}, err
	}
	party.CreatedAt = now
	party.UpdatedAt = now
	return party, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Party, error) {
	var p Party
	err := r.db.QueryRow(ctx, `SELECT id, name, phone, address, created_at, updated_at FROM parties WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Phone, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Party{}, shared.NotFound("party", "id")
	}
	return p, err
}

func (r *repository) List(ctx context.Context) ([]Party, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, phone, address, created_at, updated_at FROM parties ORDER BY lower(name)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var parties []Party
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Address, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func (r *repository) Update(ctx context.Context, party Party) error {
	cmd, err := r.db.Exec(ctx, `UPDATE parties SET name = $2, phone = $3, address = $4, updated_at = NOW() WHERE id = $1`,
		party.ID, party.Name, party.Phone, party.Address)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("party", "id")
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM parties WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return shared.ReferentialIntegrity("party")
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("party", "id")
	}
	return nil
}
