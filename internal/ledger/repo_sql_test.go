package ledger

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

func TestInsertReferenceErrorAttributesConstraint(t *testing.T) {
	cases := []struct {
		constraint string
		field      string
		entity     string
	}{
		{"vouchers_from_head_id_fkey", "fromHeadId", "head"},
		{"vouchers_to_head_id_fkey", "toHeadId", "head"},
		{"vouchers_party_id_fkey", "partyId", "party"},
		{"", "fromHeadId", "head"},
	}
	for _, tc := range cases {
		err := insertReferenceError(&pgconn.PgError{Code: "23503", ConstraintName: tc.constraint})
		require.True(t, shared.IsKind(err, shared.KindNotFound), "constraint %q", tc.constraint)
		var typed *shared.Error
		require.ErrorAs(t, err, &typed)
		require.Equal(t, tc.field, typed.Field, "constraint %q", tc.constraint)
		require.Equal(t, tc.entity+" not found", typed.Msg, "constraint %q", tc.constraint)
	}
}
