package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/orders-intake/internal/entity"
)

var insertColumns = []string{
	ColumnCustomerName,
	ColumnCustomerID,
	ColumnName,
	ColumnQuantity,
	ColumnPrice,
	ColumnTotal,
}

type OrderRepository interface {
	// CreateBatch inserts one row per item inside a single transaction and
	// returns the generated ids in item order. Either every row is committed
	// or none is.
	CreateBatch(ctx context.Context, customerName, customerID string, items []entity.ConfirmedOrderItem) ([]int64, error)
	ListOrders(ctx context.Context) ([]*entity.Order, error)
}

type orderRepository struct {
	drv    *entsql.Driver
	logger *slog.Logger
}

func NewOrderRepository(store *Store, logger *slog.Logger) OrderRepository {
	return &orderRepository{
		drv:    store.Driver(),
		logger: logger,
	}
}

func (r *orderRepository) CreateBatch(ctx context.Context, customerName, customerID string, items []entity.ConfirmedOrderItem) ([]int64, error) {
	if len(items) == 0 {
		return []int64{}, nil
	}
	start := time.Now()

	ids := make([]int64, 0, len(items))
	err := withTx(ctx, r.drv, r.logger, func(tx dialect.Tx) error {
		for i, it := range items {
			query, args := entsql.Dialect(r.drv.Dialect()).
				Insert(OrdersTable.Name).
				Columns(insertColumns...).
				Values(customerName, customerID, it.Name, it.Quantity, it.UnitPrice, it.Total).
				Returning(ColumnID).
				Query()

			id, err := queryID(ctx, tx, query, args)
			if err != nil {
				r.logger.Error("failed to insert order row",
					"customer_id", customerID, "item_index", i, "error", err)
				return fmt.Errorf("insert item %d: %w", i, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("order rows committed",
		"customer_id", customerID, "rows", len(ids),
		"elapsed_ms", time.Since(start).Milliseconds())
	return ids, nil
}

// withTx runs fn inside a transaction and commits when it returns nil.
// The transaction is rolled back when fn fails or panics; a panic is re-raised.
func withTx(ctx context.Context, drv dialect.Driver, logger *slog.Logger, fn func(tx dialect.Tx) error) error {
	tx, err := drv.Tx(ctx)
	if err != nil {
		logger.Error("failed to begin transaction", "error", err)
		return fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Error("failed to roll back transaction", "error", rbErr)
		}
	}
	defer func() {
		if v := recover(); v != nil {
			rollback()
			panic(v)
		}
	}()

	if err := fn(tx); err != nil {
		rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", "error", err)
		rollback()
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// queryID runs an INSERT ... RETURNING id and closes the cursor before
// returning, so the transaction connection is free for the next statement.
func queryID(ctx context.Context, q dialect.ExecQuerier, query string, args []any) (int64, error) {
	rows := &entsql.Rows{}
	if err := q.Query(ctx, query, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, errors.New("insert returned no id")
	}
	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, err
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]*entity.Order, error) {
	query, args := entsql.Dialect(r.drv.Dialect()).
		Select(ColumnID, ColumnCustomerName, ColumnCustomerID, ColumnName, ColumnQuantity, ColumnPrice, ColumnTotal).
		From(entsql.Table(OrdersTable.Name)).
		OrderBy(ColumnID).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		r.logger.Error("failed to list orders", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Order
	for rows.Next() {
		o := &entity.Order{}
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerID, &o.Name, &o.Quantity, &o.Price, &o.Total); err != nil {
			r.logger.Error("failed to scan order row", "error", err)
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("failed to iterate orders", "error", err)
		return nil, err
	}
	if out == nil {
		out = []*entity.Order{}
	}
	return out, nil
}
