package ledger

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/db"
	"github.com/meridian-erp/meridian-erp/internal/registry/heads"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// PGRepository persists vouchers in Postgres. Voucher numbers come from the
// voucher_number_seq sequence, so they are unique and ordered by creation
// even across concurrent inserts.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs the Postgres voucher repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const voucherColumns = `id, number, date, voucher_type, party_id, from_head_kind, from_head_id, to_head_kind, to_head_id, description, amount, status, created_by, created_at`

func (r *PGRepository) Insert(ctx context.Context, v Voucher) (Voucher, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var toKind *heads.Kind
		var toID *uuid.UUID
		if v.To != nil {
			toKind = &v.To.Kind
			toID = &v.To.ID
		}
		row := tx.QueryRow(ctx, `INSERT INTO vouchers (id, date, voucher_type, party_id, from_head_kind, from_head_id, to_head_kind, to_head_id, description, amount, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING number, created_at`,
			v.ID, v.Date.Time(), v.Type, v.PartyID, v.From.Kind, v.From.ID, toKind, toID, v.Description, v.Amount, StatusActive, v.CreatedBy)
		if err := row.Scan(&v.Number, &v.CreatedAt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return insertReferenceError(pgErr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return Voucher{}, err
	}
	v.Status = StatusActive
	v.VoucherNo = FormatVoucherNo(v.Number)
	return v, nil
}

func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (Voucher, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id = $1`, id)
	v, err := scanVoucher(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Voucher{}, shared.NotFound("voucher", "id")
	}
	return v, err
}

func (r *PGRepository) Update(ctx context.Context, v Voucher) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE vouchers SET date = $2, description = $3, amount = $4, party_id = $5 WHERE id = $1`,
		v.ID, v.Date.Time(), v.Description, v.Amount, v.PartyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("voucher", "id")
	}
	return nil
}

func (r *PGRepository) SetStatus(ctx context.Context, id uuid.UUID, status VoucherStatus) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE vouchers SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepository) List(ctx context.Context, f Filter) ([]Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE 1=1`
	args := []any{}
	argCount := 0
	next := func() string {
		argCount++
		return "$" + strconv.Itoa(argCount)
	}
	if f.FromDate != nil {
		query += ` AND date >= ` + next()
		args = append(args, f.FromDate.Time())
	}
	if f.ToDate != nil {
		query += ` AND date <= ` + next()
		args = append(args, f.ToDate.Time())
	}
	if f.Type != nil {
		query += ` AND voucher_type = ` + next()
		args = append(args, *f.Type)
	}
	if f.HeadKind != nil {
		ph := next()
		query += ` AND (from_head_kind = ` + ph + ` OR to_head_kind = ` + ph + `)`
		args = append(args, *f.HeadKind)
	}
	if f.HeadID != nil {
		ph := next()
		query += ` AND (from_head_id = ` + ph + ` OR to_head_id = ` + ph + `)`
		args = append(args, *f.HeadID)
	}
	if f.PartyID != nil {
		query += ` AND party_id = ` + next()
		args = append(args, *f.PartyID)
	}
	if f.Status != nil {
		query += ` AND status = ` + next()
		args = append(args, *f.Status)
	}
	query += ` ORDER BY date DESC, number DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var vouchers []Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}

func (r *PGRepository) HeadReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vouchers WHERE from_head_id = $1 OR to_head_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *PGRepository) PartyReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vouchers WHERE party_id = $1)`, id).Scan(&exists)
	return exists, err
}

// insertReferenceError attributes a 23503 violation on insert to the field
// whose foreign key failed. The service validates references up front, so
// hitting one of these means the row vanished between lookup and insert.
func insertReferenceError(pgErr *pgconn.PgError) error {
	switch pgErr.ConstraintName {
	case "vouchers_to_head_id_fkey":
		return shared.NotFound("head", "toHeadId")
	case "vouchers_party_id_fkey":
		return shared.NotFound("party", "partyId")
	}
	return shared.NotFound("head", "fromHeadId")
}

func scanVoucher(row pgx.Row) (Voucher, error) {
	var v Voucher
	var date time.Time
	var toKind *heads.Kind
	var toID *uuid.UUID
	err := row.Scan(&v.ID, &v.Number, &date, &v.Type, &v.PartyID, &v.From.Kind, &v.From.ID, &toKind, &toID, &v.Description, &v.Amount, &v.Status, &v.CreatedBy, &v.CreatedAt)
	if err != nil {
		return Voucher{}, err
	}
	v.Date = DateOf(date)
	if toID != nil && toKind != nil {
		v.To = &HeadRef{Kind: *toKind, ID: *toID}
	}
	v.VoucherNo = FormatVoucherNo(v.Number)
	return v, nil
}
