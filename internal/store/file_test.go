package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psicoapp/agenda-service/internal/clock"
)

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	st, err := NewFileStore(dir, clk)
	require.NoError(t, err)

	created, err := st.Create(ctx, "psicologos", Record{"nombre": "Ana"})
	require.NoError(t, err)
	id := created["id"].(string)

	_, err = os.Stat(filepath.Join(dir, "psicologos.json"))
	require.NoError(t, err, "collection file written on create")

	// A fresh store over the same directory sees the record
	reopened, err := NewFileStore(dir, clk)
	require.NoError(t, err)

	got, err := reopened.FindByID(ctx, "psicologos", id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got["nombre"])
}

func TestFileStoreMissingCollectionIsEmpty(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir(), clock.NewFake(time.Now()))
	require.NoError(t, err)

	all, err := st.FindAll(ctx, "reservas")
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = st.FindByID(ctx, "reservas", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	st, err := NewFileStore(t.TempDir(), clk)
	require.NoError(t, err)

	created, err := st.Create(ctx, "reservas", Record{"estado": "confirmada", "hora": "09:00"})
	require.NoError(t, err)
	id := created["id"].(string)

	clk.Advance(time.Minute)
	updated, err := st.Update(ctx, "reservas", id, Record{"estado": "cancelada"})
	require.NoError(t, err)
	assert.Equal(t, "cancelada", updated["estado"])
	assert.Equal(t, "09:00", updated["hora"])
	assert.Equal(t, "2025-06-01T12:01:00Z", updated["updatedAt"])

	ok, err := st.Delete(ctx, "reservas", id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = st.Delete(ctx, "reservas", id)
	require.NoError(t, err)
	assert.False(t, ok)
}
