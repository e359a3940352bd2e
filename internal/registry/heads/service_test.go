package heads

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

type stubRefs struct {
	referenced map[uuid.UUID]bool
}

func (s stubRefs) HeadReferenced(_ context.Context, id uuid.UUID) (bool, error) {
	return s.referenced[id], nil
}

func newTestService(refs ReferenceChecker) *Service {
	return NewService(NewMemoryRepository(), refs, nil)
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	head, err := svc.Create(ctx, "  Main Bank  ", KindBank)
	require.NoError(t, err)
	require.Equal(t, "Main Bank", head.Name)
	require.Equal(t, KindBank, head.Kind)
	require.NotEqual(t, uuid.Nil, head.ID)

	got, err := svc.Get(ctx, head.ID)
	require.NoError(t, err)
	require.Equal(t, head.ID, got.ID)

	_, err = svc.Get(ctx, uuid.New())
	require.True(t, shared.IsKind(err, shared.KindNotFound))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "   ", KindBank)
	require.True(t, shared.IsKind(err, shared.KindInvalidArgument))

	_, err = svc.Create(ctx, "Petty Cash", Kind("vault"))
	require.True(t, shared.IsKind(err, shared.KindInvalidArgument))
}

func TestNameUniqueCaseInsensitiveWithinKind(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Office Rent", KindExpense)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "OFFICE RENT", KindExpense)
	require.True(t, shared.IsKind(err, shared.KindInvalidArgument))

	// the same name under a different kind is a different head
	_, err = svc.Create(ctx, "Office Rent", KindIncome)
	require.NoError(t, err)
}

func TestListFiltersByKind(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Main Bank", KindBank)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Sales Income", KindIncome)
	require.NoError(t, err)

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	bank := KindBank
	banks, err := svc.List(ctx, &bank)
	require.NoError(t, err)
	require.Len(t, banks, 1)
	require.Equal(t, "Main Bank", banks[0].Name)

	unknown := Kind("vault")
	_, err = svc.List(ctx, &unknown)
	require.True(t, shared.IsKind(err, shared.KindInvalidArgument))
}

func TestRename(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	head, err := svc.Create(ctx, "Main Bank", KindBank)
	require.NoError(t, err)
	other, err := svc.Create(ctx, "Reserve Bank", KindBank)
	require.NoError(t, err)

	require.NoError(t, svc.Rename(ctx, head.ID, "Operating Account"))
	got, err := svc.Get(ctx, head.ID)
	require.NoError(t, err)
	require.Equal(t, "Operating Account", got.Name)

	err = svc.Rename(ctx, other.ID, "operating account")
	require.True(t, shared.IsKind(err, shared.KindInvalidArgument))

	err = svc.Rename(ctx, head.ID, "  ")
	require.True(t, shared.IsKind(err, shared.KindInvalidArgument))
}

func TestDeleteBlockedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	refs := stubRefs{referenced: map[uuid.UUID]bool{}}
	svc := newTestService(refs)

	head, err := svc.Create(ctx, "Main Bank", KindBank)
	require.NoError(t, err)
	refs.referenced[head.ID] = true

	err = svc.Delete(ctx, head.ID)
	require.True(t, shared.IsKind(err, shared.KindReferentialIntegrity))

	refs.referenced[head.ID] = false
	require.NoError(t, svc.Delete(ctx, head.ID))

	_, err = svc.Get(ctx, head.ID)
	require.True(t, shared.IsKind(err, shared.KindNotFound))

	err = svc.Delete(ctx, uuid.New())
	require.True(t, shared.IsKind(err, shared.KindNotFound))
}
