package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/lending/internal/config"
	"github.com/forgo/lending/internal/model"
	"github.com/forgo/lending/internal/repository"
)

func storeConfig(backend string) *config.Config {
	return &config.Config{Store: config.StoreConfig{Backend: backend}}
}

func TestOpen_Memory(t *testing.T) {
	t.Parallel()

	stores, err := repository.Open(context.Background(), storeConfig(config.BackendMemory))
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	assert.IsType(t, &repository.MemoryBookRepository{}, stores.Books)
	assert.IsType(t, &repository.MemoryReservationRepository{}, stores.Reservations)
}

func TestOpen_SQLiteFile_MigratesAndPersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := storeConfig(config.BackendSQLite)
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "nested", "lending.db")

	stores, err := repository.Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, stores.Books.Save(ctx, &model.Book{ID: "1", Title: "The Bible", CopiesAvailable: 10}))
	require.NoError(t, stores.Close())

	reopened, err := repository.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	book, err := reopened.Books.FindByID(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, 10, book.CopiesAvailable)
}

func TestOpen_BookCache_WrapsBookStore(t *testing.T) {
	t.Parallel()
	cfg := storeConfig(config.BackendMemory)
	cfg.Store.BookCacheSize = 16

	stores, err := repository.Open(context.Background(), cfg)
	require.NoError(t, err)

	assert.IsType(t, &repository.CachedBookRepository{}, stores.Books)
}

func TestOpen_UnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := repository.Open(context.Background(), storeConfig("etcd"))
	assert.ErrorContains(t, err, "etcd")
}
