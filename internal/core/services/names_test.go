package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nomina/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/nomina/internal/core/domain"
)

func newTestNameService(t *testing.T) (*NameService, *memory.ProcessingStore) {
	t.Helper()
	store := memory.NewProcessingStore()
	ctx := context.Background()
	require.NoError(t, store.Commit(ctx, ref("mateo", 4, 18), []domain.ExtractedName{
		person("Pedro"), person("Andrés"), place("Galilea"),
	}))
	require.NoError(t, store.Commit(ctx, ref("mateo", 16, 16), []domain.ExtractedName{
		person("Pedro"),
	}))
	return NewNameService(store), store
}

func TestNameService_List(t *testing.T) {
	svc, _ := newTestNameService(t)
	ctx := context.Background()

	all, err := svc.List(ctx, domain.NameFilter{})
	require.NoError(t, err)
	assert.Equal(t, []domain.ExtractedName{person("Andrés"), person("Pedro"), place("Galilea")}, all)

	places, err := svc.List(ctx, domain.NameFilter{Type: domain.NameTypePlace})
	require.NoError(t, err)
	assert.Equal(t, []domain.ExtractedName{place("Galilea")}, places)

	found, err := svc.List(ctx, domain.NameFilter{Query: "ped"})
	require.NoError(t, err)
	assert.Equal(t, []domain.ExtractedName{person("Pedro")}, found)
}

func TestNameService_List_InvalidType(t *testing.T) {
	svc, _ := newTestNameService(t)

	_, err := svc.List(context.Background(), domain.NameFilter{Type: "river"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNameService_UnitsForName(t *testing.T) {
	svc, _ := newTestNameService(t)

	refs, err := svc.UnitsForName(context.Background(), " Pedro ")

	require.NoError(t, err)
	assert.Equal(t, []domain.UnitReference{ref("mateo", 4, 18), ref("mateo", 16, 16)}, refs)

	_, err = svc.UnitsForName(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNameService_Delete_LeavesUnitsProcessed(t *testing.T) {
	svc, store := newTestNameService(t)
	ctx := context.Background()

	n, err := svc.Delete(ctx, "Pedro")

	require.NoError(t, err)
	assert.Equal(t, 2, n)

	refs, err := svc.UnitsForName(ctx, "Pedro")
	require.NoError(t, err)
	assert.Empty(t, refs)

	processed, err := store.IsProcessed(ctx, ref("mateo", 16, 16))
	require.NoError(t, err)
	assert.True(t, processed)

	remaining, err := store.GetNames(ctx, ref("mateo", 4, 18))
	require.NoError(t, err)
	assert.Equal(t, []domain.ExtractedName{person("Andrés"), place("Galilea")}, remaining)
}

func TestNameService_Delete_Empty(t *testing.T) {
	svc, _ := newTestNameService(t)

	_, err := svc.Delete(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
