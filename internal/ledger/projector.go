package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The projector folds the voucher log into balances and statistics. It
// never mutates stored state, and the fold is commutative: reordering
// vouchers cannot change a result.
//
// Sign convention:
//   - receive/sales_voucher: inflow to the to head when present, otherwise
//     to the from head.
//   - payment/purchase_voucher: outflow from the from head.
//   - journal/contra: outflow from the from head, inflow to the to head,
//     with no receive/payment classification.
//
// Only active vouchers move money. Soft-deleted rows are excluded from
// every amount, so deleting a mistaken entry retroactively corrects all
// derived figures.

// Balances folds the vouchers into a net position per head.
func Balances(vouchers []Voucher) map[uuid.UUID]decimal.Decimal {
	balances := make(map[uuid.UUID]decimal.Decimal)
	add := func(id uuid.UUID, amount decimal.Decimal) {
		balances[id] = balances[id].Add(amount)
	}
	for _, v := range vouchers {
		if v.Status != StatusActive {
			continue
		}
		switch {
		case v.Type.ReceiveClass():
			if v.To != nil {
				add(v.To.ID, v.Amount)
			} else {
				add(v.From.ID, v.Amount)
			}
		case v.Type.PaymentClass():
			add(v.From.ID, v.Amount.Neg())
		case v.Type.Transfer():
			add(v.From.ID, v.Amount.Neg())
			add(v.To.ID, v.Amount)
		}
	}
	return balances
}

// BalanceOf returns the net position of a single head.
func BalanceOf(head uuid.UUID, vouchers []Voucher) decimal.Decimal {
	return Balances(vouchers)[head]
}

// ComputeStats aggregates the voucher set. Receive/payment/amount totals
// cover active vouchers only; totalTransactions and the status counts span
// the whole set so administrators can audit deletions.
func ComputeStats(vouchers []Voucher) Stats {
	stats := Stats{
		TotalReceive: decimal.Zero,
		TotalPayment: decimal.Zero,
		TotalAmount:  decimal.Zero,
	}
	for _, v := range vouchers {
		stats.TotalTransactions++
		if v.Status == StatusActive {
			stats.ActiveCount++
		} else {
			stats.InactiveCount++
			continue
		}
		stats.TotalAmount = stats.TotalAmount.Add(v.Amount)
		switch {
		case v.Type.ReceiveClass():
			stats.TotalReceive = stats.TotalReceive.Add(v.Amount)
		case v.Type.PaymentClass():
			stats.TotalPayment = stats.TotalPayment.Add(v.Amount)
		}
	}
	return stats
}
