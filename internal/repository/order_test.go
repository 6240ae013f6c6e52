package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/orders-intake/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	logger := testLogger()

	store, err := Open(ctx, Config{DSN: SQLiteScheme + filepath.Join(t.TempDir(), "orders.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(logger) })

	require.NoError(t, Migrate(ctx, store, logger))
	return store
}

func countRows(t *testing.T, store *Store) int {
	t.Helper()
	var n int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&n))
	return n
}

func TestCreateBatchSingleItem(t *testing.T) {
	store := newTestStore(t)
	repo := NewOrderRepository(store, testLogger())
	ctx := context.Background()

	ids, err := repo.CreateBatch(ctx, "Acme", "C-1", []entity.ConfirmedOrderItem{
		{Name: "Bolt", Quantity: 10, UnitPrice: 0.5, Total: 5.0},
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, &entity.Order{
		ID: ids[0], CustomerName: "Acme", CustomerID: "C-1",
		Name: "Bolt", Quantity: 10, Price: 0.5, Total: 5.0,
	}, orders[0])
}

func TestCreateBatchKeepsSubmissionOrder(t *testing.T) {
	store := newTestStore(t)
	repo := NewOrderRepository(store, testLogger())
	ctx := context.Background()

	items := []entity.ConfirmedOrderItem{
		{Name: "Bolt M4", Quantity: 10, UnitPrice: 0.5, Total: 5},
		{Name: "Nut M4", Quantity: 10, UnitPrice: 0.1, Total: 1},
		{Name: "Washer", Quantity: 0, UnitPrice: 0, Total: 0},
	}
	ids, err := repo.CreateBatch(ctx, "Acme", "C-1", items)
	require.NoError(t, err)
	require.Len(t, ids, len(items))
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, len(items))
	for i, o := range orders {
		assert.Equal(t, ids[i], o.ID)
		assert.Equal(t, items[i].Name, o.Name)
		assert.Equal(t, items[i].Quantity, o.Quantity)
		assert.Equal(t, items[i].UnitPrice, o.Price)
		assert.Equal(t, items[i].Total, o.Total)
	}
}

func TestCreateBatchEmptyIsNoop(t *testing.T) {
	store := newTestStore(t)
	repo := NewOrderRepository(store, testLogger())

	ids, err := repo.CreateBatch(context.Background(), "Acme", "C-1", nil)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
	assert.Equal(t, 0, countRows(t, store))
}

func TestCreateBatchRollsBackOnFailure(t *testing.T) {
	store := newTestStore(t)
	repo := NewOrderRepository(store, testLogger())
	ctx := context.Background()

	_, err := store.DB().Exec(`CREATE TRIGGER reject_marked_rows BEFORE INSERT ON orders
		WHEN NEW.name = 'reject-me'
		BEGIN SELECT RAISE(ABORT, 'rejected by trigger'); END`)
	require.NoError(t, err)

	ids, err := repo.CreateBatch(ctx, "Acme", "C-1", []entity.ConfirmedOrderItem{
		{Name: "Bolt", Quantity: 1, UnitPrice: 1, Total: 1},
		{Name: "Nut", Quantity: 2, UnitPrice: 1, Total: 2},
		{Name: "reject-me", Quantity: 3, UnitPrice: 1, Total: 3},
	})
	require.Error(t, err)
	assert.Nil(t, ids)
	assert.Equal(t, 0, countRows(t, store), "no partial order may be visible")

	// The store stays usable after the rollback.
	ids, err = repo.CreateBatch(ctx, "Acme", "C-1", []entity.ConfirmedOrderItem{
		{Name: "Bolt", Quantity: 1, UnitPrice: 1, Total: 1},
	})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Equal(t, 1, countRows(t, store))
}

func TestWithTxReleasesConnectionOnPanic(t *testing.T) {
	store := newTestStore(t)
	repo := NewOrderRepository(store, testLogger())
	store.DB().SetMaxOpenConns(1)

	require.PanicsWithValue(t, "driver exploded", func() {
		_ = withTx(context.Background(), store.Driver(), testLogger(), func(tx dialect.Tx) error {
			err := tx.Exec(context.Background(),
				`INSERT INTO orders (customer_name, customer_id, name, quantity, price, total) VALUES (?, ?, ?, ?, ?, ?)`,
				[]any{"Acme", "C-1", "Bolt", 1.0, 1.0, 1.0}, nil)
			require.NoError(t, err)
			panic("driver exploded")
		})
	})

	// With a single pooled connection this blocks until the deadline unless
	// the panicking transaction gave its connection back.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := withTx(ctx, store.Driver(), testLogger(), func(tx dialect.Tx) error {
		require.NoError(t, tx.Exec(ctx,
			`INSERT INTO orders (customer_name, customer_id, name, quantity, price, total) VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{"Acme", "C-1", "Bolt", 1.0, 1.0, 1.0}, nil))
		return errors.New("later step failed")
	})
	require.EqualError(t, err, "later step failed")
	assert.Equal(t, 0, countRows(t, store))
}

func TestCreateBatchCanceledContext(t *testing.T) {
	store := newTestStore(t)
	repo := NewOrderRepository(store, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.CreateBatch(ctx, "Acme", "C-1", []entity.ConfirmedOrderItem{
		{Name: "Bolt", Quantity: 1, UnitPrice: 1, Total: 1},
	})
	require.Error(t, err)
	assert.Equal(t, 0, countRows(t, store))
}

func TestCreateBatchResubmissionDuplicates(t *testing.T) {
	store := newTestStore(t)
	repo := NewOrderRepository(store, testLogger())
	ctx := context.Background()
	items := []entity.ConfirmedOrderItem{{Name: "Bolt", Quantity: 1, UnitPrice: 1, Total: 1}}

	first, err := repo.CreateBatch(ctx, "Acme", "C-1", items)
	require.NoError(t, err)
	second, err := repo.CreateBatch(ctx, "Acme", "C-1", items)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, countRows(t, store))
}

func TestCreateBatchConcurrentCalls(t *testing.T) {
	store := newTestStore(t)
	repo := NewOrderRepository(store, testLogger())
	ctx := context.Background()

	const callers = 4
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateBatch(ctx, "Acme", "C-1", []entity.ConfirmedOrderItem{
				{Name: "Bolt", Quantity: 1, UnitPrice: 1, Total: 1},
				{Name: "Nut", Quantity: 1, UnitPrice: 1, Total: 1},
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, callers*2, countRows(t, store))
}

func TestListOrdersEmpty(t *testing.T) {
	store := newTestStore(t)
	repo := NewOrderRepository(store, testLogger())

	orders, err := repo.ListOrders(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, Migrate(context.Background(), store, testLogger()))
}

func TestHealthCheck(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.HealthCheck(context.Background(), 0, testLogger()))
}
