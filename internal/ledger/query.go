package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

var searchFolder = cases.Fold()

func fold(s string) string {
	return searchFolder.String(s)
}

// sortVouchers orders rows by business date descending, ties broken by
// voucher number descending. The order is total, so results are
// deterministic.
func sortVouchers(vouchers []Voucher) {
	sort.Slice(vouchers, func(i, j int) bool {
		if !vouchers[i].Date.Equal(vouchers[j].Date) {
			return vouchers[i].Date.After(vouchers[j].Date)
		}
		return vouchers[i].Number > vouchers[j].Number
	})
}

// nameResolver memoizes registry display names for one query, so text
// search does not hit the registries once per voucher.
type nameResolver struct {
	heads      HeadDirectory
	parties    PartyDirectory
	headNames  map[uuid.UUID]string
	partyNames map[uuid.UUID]string
}

func newNameResolver(heads HeadDirectory, parties PartyDirectory) *nameResolver {
	return &nameResolver{
		heads:      heads,
		parties:    parties,
		headNames:  make(map[uuid.UUID]string),
		partyNames: make(map[uuid.UUID]string),
	}
}

func (r *nameResolver) headName(ctx context.Context, id uuid.UUID) string {
	if name, ok := r.headNames[id]; ok {
		return name
	}
	name := ""
	if r.heads != nil {
		if head, err := r.heads.Get(ctx, id); err == nil {
			name = head.Name
		}
	}
	r.headNames[id] = name
	return name
}

func (r *nameResolver) partyName(ctx context.Context, id uuid.UUID) string {
	if name, ok := r.partyNames[id]; ok {
		return name
	}
	name := ""
	if r.parties != nil {
		if party, err := r.parties.Get(ctx, id); err == nil {
			name = party.Name
		}
	}
	r.partyNames[id] = name
	return name
}

// matchesSearch performs a case-insensitive substring match over the
// voucher description, resolved head and party names, and voucher number.
func (r *nameResolver) matchesSearch(ctx context.Context, v Voucher, term string) bool {
	needle := fold(term)
	if strings.Contains(fold(v.Description), needle) {
		return true
	}
	if strings.Contains(fold(v.VoucherNo), needle) {
		return true
	}
	if strings.Contains(fold(r.headName(ctx, v.From.ID)), needle) {
		return true
	}
	if v.To != nil && strings.Contains(fold(r.headName(ctx, v.To.ID)), needle) {
		return true
	}
	if v.PartyID != nil && strings.Contains(fold(r.partyName(ctx, *v.PartyID)), needle) {
		return true
	}
	return false
}
