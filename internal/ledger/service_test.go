package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/registry/heads"
	"github.com/meridian-erp/meridian-erp/internal/registry/parties"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

type testEnv struct {
	repo    *MemoryRepository
	heads   *heads.Service
	parties *parties.Service
	svc     *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := NewMemoryRepository()
	headSvc := heads.NewService(heads.NewMemoryRepository(), repo, nil)
	partySvc := parties.NewService(parties.NewMemoryRepository(), repo, nil)
	return &testEnv{
		repo:    repo,
		heads:   headSvc,
		parties: partySvc,
		svc:     NewService(repo, headSvc, partySvc, nil, nil),
	}
}

func (e *testEnv) head(t *testing.T, name string, kind heads.Kind) HeadRef {
	t.Helper()
	head, err := e.heads.Create(context.Background(), name, kind)
	require.NoError(t, err)
	return HeadRef{Kind: head.Kind, ID: head.ID}
}

func (e *testEnv) party(t *testing.T, name string) parties.Party {
	t.Helper()
	party, err := e.parties.Create(context.Background(), name, "", "")
	require.NoError(t, err)
	return party
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	date, err := ParseDate(s)
	require.NoError(t, err)
	return date
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	income := env.head(t, "Sales Income", heads.KindIncome)
	bank := env.head(t, "Main Bank", heads.KindBank)

	first, err := env.svc.Create(ctx, CreateInput{
		Date:   mustDate(t, "2025-03-10"),
		Type:   TypeReceive,
		From:   income,
		To:     &bank,
		Amount: d("500"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), first.Number)
	require.Equal(t, "VCH-000001", first.VoucherNo)
	require.Equal(t, StatusActive, first.Status)

	second, err := env.svc.Create(ctx, CreateInput{
		Date:   mustDate(t, "2025-03-11"),
		Type:   TypePayment,
		From:   bank,
		Amount: d("75"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), second.Number)
	require.Equal(t, "VCH-000002", second.VoucherNo)
}

func TestCreateValidationFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bank := env.head(t, "Main Bank", heads.KindBank)
	expense := env.head(t, "Office Rent", heads.KindExpense)

	cases := []struct {
		name  string
		in    CreateInput
		kind  shared.ErrorKind
		field string
	}{
		{
			name:  "unknown type",
			in:    CreateInput{Date: mustDate(t, "2025-03-10"), Type: "refund", From: bank, Amount: d("10")},
			kind:  shared.KindInvalidArgument,
			field: "voucherType",
		},
		{
			name:  "missing date",
			in:    CreateInput{Type: TypePayment, From: bank, Amount: d("10")},
			kind:  shared.KindInvalidArgument,
			field: "date",
		},
		{
			name:  "zero amount",
			in:    CreateInput{Date: mustDate(t, "2025-03-10"), Type: TypePayment, From: bank, Amount: decimal.Zero},
			kind:  shared.KindInvalidArgument,
			field: "amount",
		},
		{
			name:  "negative amount",
			in:    CreateInput{Date: mustDate(t, "2025-03-10"), Type: TypePayment, From: bank, Amount: d("-5")},
			kind:  shared.KindInvalidArgument,
			field: "amount",
		},
		{
			name:  "transfer without to head",
			in:    CreateInput{Date: mustDate(t, "2025-03-10"), Type: TypeJournal, From: bank, Amount: d("10")},
			kind:  shared.KindInvalidArgument,
			field: "toHeadId",
		},
		{
			name:  "self transfer",
			in:    CreateInput{Date: mustDate(t, "2025-03-10"), Type: TypeContra, From: bank, To: &HeadRef{Kind: bank.Kind, ID: bank.ID}, Amount: d("10")},
			kind:  shared.KindInvalidArgument,
			field: "toHeadId",
		},
		{
			name:  "kind mismatch",
			in:    CreateInput{Date: mustDate(t, "2025-03-10"), Type: TypePayment, From: HeadRef{Kind: heads.KindBank, ID: expense.ID}, Amount: d("10")},
			kind:  shared.KindInvalidArgument,
			field: "fromHeadType",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Create(ctx, tc.in)
			require.Error(t, err)
			require.Equal(t, tc.kind, shared.KindOf(err))
			var engineErr *shared.Error
			require.ErrorAs(t, err, &engineErr)
			require.Equal(t, tc.field, engineErr.Field)
		})
	}
}

func TestCreateUnknownHeadAndParty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bank := env.head(t, "Main Bank", heads.KindBank)

	_, err := env.svc.Create(ctx, CreateInput{
		Date:   mustDate(t, "2025-03-10"),
		Type:   TypePayment,
		From:   HeadRef{Kind: heads.KindBank, ID: uuid.New()},
		Amount: d("10"),
	})
	require.True(t, shared.IsKind(err, shared.KindNotFound))

	phantom := uuid.New()
	_, err = env.svc.Create(ctx, CreateInput{
		Date:    mustDate(t, "2025-03-10"),
		Type:    TypePayment,
		From:    bank,
		PartyID: &phantom,
		Amount:  d("10"),
	})
	require.True(t, shared.IsKind(err, shared.KindNotFound))
}

func TestUpdateMutableFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bank := env.head(t, "Main Bank", heads.KindBank)
	vendor := env.party(t, "Acme Supplies")

	voucher, err := env.svc.Create(ctx, CreateInput{
		Date:        mustDate(t, "2025-03-10"),
		Type:        TypePayment,
		From:        bank,
		Amount:      d("100"),
		Description: "rent",
	})
	require.NoError(t, err)

	newDate := mustDate(t, "2025-03-12")
	newDesc := "march rent"
	newAmount := d("110")
	updated, err := env.svc.Update(ctx, voucher.ID, UpdateInput{
		Date:        &newDate,
		Description: &newDesc,
		Amount:      &newAmount,
		PartyID:     &vendor.ID,
	})
	require.NoError(t, err)
	require.True(t, updated.Date.Equal(newDate))
	require.Equal(t, "march rent", updated.Description)
	require.True(t, updated.Amount.Equal(d("110")))
	require.NotNil(t, updated.PartyID)
	require.Equal(t, vendor.ID, *updated.PartyID)

	// identity fields survive the edit
	require.Equal(t, voucher.VoucherNo, updated.VoucherNo)
	require.Equal(t, voucher.Type, updated.Type)
	require.Equal(t, voucher.From, updated.From)
}

func TestUpdateRejectsLockedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bank := env.head(t, "Main Bank", heads.KindBank)
	expense := env.head(t, "Office Rent", heads.KindExpense)

	voucher, err := env.svc.Create(ctx, CreateInput{
		Date:   mustDate(t, "2025-03-10"),
		Type:   TypePayment,
		From:   bank,
		Amount: d("100"),
	})
	require.NoError(t, err)

	otherType := TypeReceive
	_, err = env.svc.Update(ctx, voucher.ID, UpdateInput{Type: &otherType})
	require.True(t, shared.IsKind(err, shared.KindImmutable))

	_, err = env.svc.Update(ctx, voucher.ID, UpdateInput{FromHeadID: &expense.ID})
	require.True(t, shared.IsKind(err, shared.KindImmutable))

	_, err = env.svc.Update(ctx, voucher.ID, UpdateInput{ToHeadID: &expense.ID})
	require.True(t, shared.IsKind(err, shared.KindImmutable))

	// restating the stored value is not a change
	sameType := voucher.Type
	_, err = env.svc.Update(ctx, voucher.ID, UpdateInput{Type: &sameType, FromHeadID: &bank.ID})
	require.NoError(t, err)

	bad := d("-1")
	_, err = env.svc.Update(ctx, voucher.ID, UpdateInput{Amount: &bad})
	require.True(t, shared.IsKind(err, shared.KindInvalidArgument))
}

func TestSoftDeletePartialSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bank := env.head(t, "Main Bank", heads.KindBank)

	first, err := env.svc.Create(ctx, CreateInput{Date: mustDate(t, "2025-03-10"), Type: TypePayment, From: bank, Amount: d("10")})
	require.NoError(t, err)
	second, err := env.svc.Create(ctx, CreateInput{Date: mustDate(t, "2025-03-11"), Type: TypePayment, From: bank, Amount: d("20")})
	require.NoError(t, err)
	unknown := uuid.New()

	result, err := env.svc.SoftDelete(ctx, []uuid.UUID{first.ID, second.ID, unknown})
	require.NoError(t, err)
	require.Equal(t, 2, result.DeletedCount)
	require.Equal(t, []uuid.UUID{unknown}, result.FailedIDs)

	got, err := env.svc.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, StatusInactive, got.Status)

	// deleting again is a no-op, not an error
	again, err := env.svc.SoftDelete(ctx, []uuid.UUID{first.ID})
	require.NoError(t, err)
	require.Equal(t, 1, again.DeletedCount)
	require.Empty(t, again.FailedIDs)
}

func TestSoftDeleteCorrectsDerivedFigures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	income := env.head(t, "Sales Income", heads.KindIncome)
	bank := env.head(t, "Main Bank", heads.KindBank)

	_, err := env.svc.Create(ctx, CreateInput{Date: mustDate(t, "2025-03-10"), Type: TypeReceive, From: income, To: &bank, Amount: d("500")})
	require.NoError(t, err)
	mistake, err := env.svc.Create(ctx, CreateInput{Date: mustDate(t, "2025-03-10"), Type: TypeReceive, From: income, To: &bank, Amount: d("9000")})
	require.NoError(t, err)

	balance, err := env.svc.HeadBalance(ctx, bank.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(d("9500")))

	_, err = env.svc.SoftDelete(ctx, []uuid.UUID{mistake.ID})
	require.NoError(t, err)

	balance, err = env.svc.HeadBalance(ctx, bank.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(d("500")))

	stats, err := env.svc.Stats(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalTransactions)
	require.Equal(t, 1, stats.ActiveCount)
	require.Equal(t, 1, stats.InactiveCount)
	require.True(t, stats.TotalReceive.Equal(d("500")))
}

func TestRecreateIdenticalVoucherRestoresFigures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	income := env.head(t, "Sales Income", heads.KindIncome)
	bank := env.head(t, "Main Bank", heads.KindBank)

	input := CreateInput{
		Date:        mustDate(t, "2025-03-10"),
		Type:        TypeReceive,
		From:        income,
		To:          &bank,
		Description: "march retainer",
		Amount:      d("500"),
	}
	original, err := env.svc.Create(ctx, input)
	require.NoError(t, err)

	before, err := env.svc.Stats(ctx, Filter{})
	require.NoError(t, err)
	balanceBefore, err := env.svc.HeadBalance(ctx, bank.ID)
	require.NoError(t, err)

	_, err = env.svc.SoftDelete(ctx, []uuid.UUID{original.ID})
	require.NoError(t, err)

	// recreating the same event restores every derived figure; only the
	// audit-oriented counters remember the deleted row
	_, err = env.svc.Create(ctx, input)
	require.NoError(t, err)

	after, err := env.svc.Stats(ctx, Filter{})
	require.NoError(t, err)
	require.True(t, after.TotalReceive.Equal(before.TotalReceive))
	require.True(t, after.TotalPayment.Equal(before.TotalPayment))
	require.True(t, after.TotalAmount.Equal(before.TotalAmount))
	require.Equal(t, before.ActiveCount, after.ActiveCount)
	require.Equal(t, before.InactiveCount+1, after.InactiveCount)

	balanceAfter, err := env.svc.HeadBalance(ctx, bank.ID)
	require.NoError(t, err)
	require.True(t, balanceAfter.Equal(balanceBefore))
}

func TestUpdateRejectsInactiveVoucher(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bank := env.head(t, "Main Bank", heads.KindBank)

	voucher, err := env.svc.Create(ctx, CreateInput{
		Date:   mustDate(t, "2025-03-10"),
		Type:   TypePayment,
		From:   bank,
		Amount: d("100"),
	})
	require.NoError(t, err)

	_, err = env.svc.SoftDelete(ctx, []uuid.UUID{voucher.ID})
	require.NoError(t, err)

	desc := "late correction"
	_, err = env.svc.Update(ctx, voucher.ID, UpdateInput{Description: &desc})
	require.True(t, shared.IsKind(err, shared.KindInvalidArgument))

	got, err := env.svc.Get(ctx, voucher.ID)
	require.NoError(t, err)
	require.Empty(t, got.Description)
}

func TestRegistryDeleteBlockedByInactiveVoucher(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bank := env.head(t, "Main Bank", heads.KindBank)
	vendor := env.party(t, "Acme Supplies")

	voucher, err := env.svc.Create(ctx, CreateInput{
		Date:    mustDate(t, "2025-03-10"),
		Type:    TypePayment,
		From:    bank,
		PartyID: &vendor.ID,
		Amount:  d("10"),
	})
	require.NoError(t, err)

	_, err = env.svc.SoftDelete(ctx, []uuid.UUID{voucher.ID})
	require.NoError(t, err)

	// the soft-deleted voucher still anchors history, so both registries
	// must refuse the delete
	err = env.heads.Delete(ctx, bank.ID)
	require.True(t, shared.IsKind(err, shared.KindReferentialIntegrity))

	err = env.parties.Delete(ctx, vendor.ID)
	require.True(t, shared.IsKind(err, shared.KindReferentialIntegrity))

	// an untouched head deletes fine
	spare := env.head(t, "Spare Account", heads.KindOthers)
	require.NoError(t, env.heads.Delete(ctx, spare.ID))
}

func TestQueryOrderingAndPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bank := env.head(t, "Main Bank", heads.KindBank)

	dates := []string{"2025-03-10", "2025-03-12", "2025-03-12", "2025-03-09"}
	for _, date := range dates {
		_, err := env.svc.Create(ctx, CreateInput{Date: mustDate(t, date), Type: TypePayment, From: bank, Amount: d("10")})
		require.NoError(t, err)
	}

	result, err := env.svc.Query(ctx, Filter{}, 1, 3)
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)
	require.Equal(t, 4, result.Pagination.Total)
	require.Equal(t, 2, result.Pagination.TotalPages)

	// newest date first; same-date ties resolved by number descending
	require.Equal(t, "2025-03-12", result.Rows[0].Date.String())
	require.Equal(t, "2025-03-12", result.Rows[1].Date.String())
	require.Greater(t, result.Rows[0].Number, result.Rows[1].Number)
	require.Equal(t, "2025-03-10", result.Rows[2].Date.String())

	// stats describe the full filtered set, not the page
	require.Equal(t, 4, result.Stats.TotalTransactions)
	require.True(t, result.Stats.TotalPayment.Equal(d("40")))

	second, err := env.svc.Query(ctx, Filter{}, 2, 3)
	require.NoError(t, err)
	require.Len(t, second.Rows, 1)
	require.Equal(t, "2025-03-09", second.Rows[0].Date.String())
	require.Equal(t, result.Stats, second.Stats)

	beyond, err := env.svc.Query(ctx, Filter{}, 9, 3)
	require.NoError(t, err)
	require.Empty(t, beyond.Rows)
	require.Equal(t, result.Stats, beyond.Stats)
}

func TestQueryFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	income := env.head(t, "Sales Income", heads.KindIncome)
	bank := env.head(t, "Main Bank", heads.KindBank)
	vendor := env.party(t, "Acme Supplies")

	_, err := env.svc.Create(ctx, CreateInput{Date: mustDate(t, "2025-03-01"), Type: TypeReceive, From: income, To: &bank, Amount: d("500")})
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, CreateInput{Date: mustDate(t, "2025-03-15"), Type: TypePayment, From: bank, PartyID: &vendor.ID, Amount: d("120")})
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, CreateInput{Date: mustDate(t, "2025-04-02"), Type: TypePayment, From: bank, Amount: d("60")})
	require.NoError(t, err)

	from := mustDate(t, "2025-03-01")
	to := mustDate(t, "2025-03-31")
	result, err := env.svc.Query(ctx, Filter{FromDate: &from, ToDate: &to}, 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	payment := TypePayment
	result, err = env.svc.Query(ctx, Filter{Type: &payment}, 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	require.True(t, result.Stats.TotalPayment.Equal(d("180")))

	kind := heads.KindIncome
	result, err = env.svc.Query(ctx, Filter{HeadKind: &kind}, 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	result, err = env.svc.Query(ctx, Filter{PartyID: &vendor.ID}, 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.True(t, result.Rows[0].Amount.Equal(d("120")))
}

func TestQuerySearchMatchesNamesAndNumbers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	income := env.head(t, "Consulting Revenue", heads.KindIncome)
	bank := env.head(t, "Main Bank", heads.KindBank)
	client := env.party(t, "Globex Corporation")

	first, err := env.svc.Create(ctx, CreateInput{
		Date:        mustDate(t, "2025-03-10"),
		Type:        TypeReceive,
		From:        income,
		To:          &bank,
		PartyID:     &client.ID,
		Description: "retainer for march",
		Amount:      d("800"),
	})
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, CreateInput{Date: mustDate(t, "2025-03-11"), Type: TypePayment, From: bank, Amount: d("40")})
	require.NoError(t, err)

	for _, query := range []string{"globex", "CONSULTING", "retainer", first.VoucherNo} {
		result, err := env.svc.Query(ctx, Filter{Search: query}, 1, 20)
		require.NoError(t, err, "search %q", query)
		require.Len(t, result.Rows, 1, "search %q", query)
		require.Equal(t, first.ID, result.Rows[0].ID)
		require.Equal(t, 1, result.Stats.TotalTransactions)
	}

	result, err := env.svc.Query(ctx, Filter{Search: "no such thing"}, 1, 20)
	require.NoError(t, err)
	require.Empty(t, result.Rows)
	require.Equal(t, 0, result.Stats.TotalTransactions)
}

func TestHeadBalanceUnknownHead(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.HeadBalance(context.Background(), uuid.New())
	require.True(t, shared.IsKind(err, shared.KindNotFound))
}
