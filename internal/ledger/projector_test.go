package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/registry/heads"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func activeVoucher(t VoucherType, from HeadRef, to *HeadRef, amount string) Voucher {
	return Voucher{
		ID:     uuid.New(),
		Type:   t,
		From:   from,
		To:     to,
		Amount: d(amount),
		Status: StatusActive,
		Date:   DateOf(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)),
	}
}

func TestBalancesReceiveCreditsToHead(t *testing.T) {
	income := HeadRef{Kind: heads.KindIncome, ID: uuid.New()}
	bank := HeadRef{Kind: heads.KindBank, ID: uuid.New()}

	balances := Balances([]Voucher{
		activeVoucher(TypeReceive, income, &bank, "500"),
	})

	require.True(t, balances[bank.ID].Equal(d("500")))
	require.True(t, balances[income.ID].IsZero())
}

func TestBalancesReceiveWithoutToHeadCreditsFromHead(t *testing.T) {
	income := HeadRef{Kind: heads.KindIncome, ID: uuid.New()}

	balances := Balances([]Voucher{
		activeVoucher(TypeSales, income, nil, "120.50"),
	})

	require.True(t, balances[income.ID].Equal(d("120.50")))
}

func TestBalancesPaymentDebitsFromHead(t *testing.T) {
	bank := HeadRef{Kind: heads.KindBank, ID: uuid.New()}

	balances := Balances([]Voucher{
		activeVoucher(TypePayment, bank, nil, "75.25"),
		activeVoucher(TypePurchase, bank, nil, "24.75"),
	})

	require.True(t, balances[bank.ID].Equal(d("-100")))
}

func TestBalancesTransferConservesTotal(t *testing.T) {
	bankA := HeadRef{Kind: heads.KindBank, ID: uuid.New()}
	bankB := HeadRef{Kind: heads.KindBank, ID: uuid.New()}

	balances := Balances([]Voucher{
		activeVoucher(TypeContra, bankA, &bankB, "200"),
	})

	require.True(t, balances[bankA.ID].Equal(d("-200")))
	require.True(t, balances[bankB.ID].Equal(d("200")))

	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b)
	}
	require.True(t, sum.IsZero(), "a transfer must not create or destroy money")
}

func TestBalancesSkipInactiveVouchers(t *testing.T) {
	bank := HeadRef{Kind: heads.KindBank, ID: uuid.New()}

	deleted := activeVoucher(TypeReceive, bank, nil, "999")
	deleted.Status = StatusInactive

	balances := Balances([]Voucher{
		deleted,
		activeVoucher(TypeReceive, bank, nil, "10"),
	})

	require.True(t, balances[bank.ID].Equal(d("10")))
}

func TestBalancesOrderIndependent(t *testing.T) {
	bank := HeadRef{Kind: heads.KindBank, ID: uuid.New()}
	expense := HeadRef{Kind: heads.KindExpense, ID: uuid.New()}
	income := HeadRef{Kind: heads.KindIncome, ID: uuid.New()}

	vouchers := []Voucher{
		activeVoucher(TypeReceive, income, &bank, "300"),
		activeVoucher(TypePayment, bank, nil, "80"),
		activeVoucher(TypeJournal, bank, &expense, "50"),
		activeVoucher(TypeSales, income, nil, "40.40"),
	}
	want := Balances(vouchers)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]Voucher(nil), vouchers...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got := Balances(shuffled)
		require.Len(t, got, len(want))
		for id, balance := range want {
			require.True(t, got[id].Equal(balance))
		}
	}
}

func TestComputeStatsCountsAllButTotalsActiveOnly(t *testing.T) {
	bank := HeadRef{Kind: heads.KindBank, ID: uuid.New()}
	income := HeadRef{Kind: heads.KindIncome, ID: uuid.New()}

	deleted := activeVoucher(TypePayment, bank, nil, "1000")
	deleted.Status = StatusInactive

	stats := ComputeStats([]Voucher{
		activeVoucher(TypeReceive, income, &bank, "500"),
		activeVoucher(TypePayment, bank, nil, "200"),
		deleted,
	})

	require.Equal(t, 3, stats.TotalTransactions)
	require.Equal(t, 2, stats.ActiveCount)
	require.Equal(t, 1, stats.InactiveCount)
	require.True(t, stats.TotalReceive.Equal(d("500")))
	require.True(t, stats.TotalPayment.Equal(d("200")))
	require.True(t, stats.TotalAmount.Equal(d("700")))
}

func TestComputeStatsTransfersAreNeitherReceiveNorPayment(t *testing.T) {
	bankA := HeadRef{Kind: heads.KindBank, ID: uuid.New()}
	bankB := HeadRef{Kind: heads.KindBank, ID: uuid.New()}

	stats := ComputeStats([]Voucher{
		activeVoucher(TypeContra, bankA, &bankB, "200"),
		activeVoucher(TypeJournal, bankA, &bankB, "50"),
	})

	require.True(t, stats.TotalReceive.IsZero())
	require.True(t, stats.TotalPayment.IsZero())
	require.True(t, stats.TotalAmount.Equal(d("250")))
}

func TestBalanceOfUnknownHeadIsZero(t *testing.T) {
	bank := HeadRef{Kind: heads.KindBank, ID: uuid.New()}
	vouchers := []Voucher{activeVoucher(TypeReceive, bank, nil, "10")}

	require.True(t, BalanceOf(uuid.New(), vouchers).IsZero())
}
