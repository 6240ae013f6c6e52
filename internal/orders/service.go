package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/orders-intake/internal/common"
	"github.com/joseph-ayodele/orders-intake/internal/entity"
	"github.com/joseph-ayodele/orders-intake/internal/repository"
)

// Service finalizes confirmed orders and lists persisted rows.
type Service struct {
	orderRepo repository.OrderRepository
	logger    *slog.Logger
}

// NewService creates a new order service.
func NewService(orderRepo repository.OrderRepository, logger *slog.Logger) *Service {
	return &Service{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// Finalize validates every item and then persists all of them atomically.
// It returns the generated ids in item order. An empty item list is a
// successful no-op that returns an empty id list without touching the store.
// Finalize is not idempotent: resubmitting the same items creates new rows.
func (s *Service) Finalize(ctx context.Context, customerName, customerID string, items []entity.ConfirmedOrderItem) ([]int64, error) {
	start := time.Now()
	if err := validateOrder(customerName, customerID, items); err != nil {
		s.logger.Warn("orders.finalize.invalid", "customer_id", customerID, "items", len(items), "error", err)
		return nil, err
	}
	if len(items) == 0 {
		s.logger.Info("orders.finalize.empty", "customer_id", customerID)
		return []int64{}, nil
	}

	ids, err := s.orderRepo.CreateBatch(ctx, customerName, customerID, items)
	if err != nil {
		s.logger.Error("orders.finalize.persist_failed",
			"customer_id", customerID, "items", len(items), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.PersistenceError("Failed to save orders", err)
	}

	s.logger.Info("orders.finalize.ok",
		"customer_id", customerID, "rows", len(ids),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ids, nil
}

// ListOrders returns every persisted order row.
func (s *Service) ListOrders(ctx context.Context) ([]*entity.Order, error) {
	recs, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		s.logger.Error("failed to list orders", "error", err)
		return nil, common.PersistenceError("Failed to load orders", err)
	}
	s.logger.Info("orders listed successfully", "count", len(recs))
	return recs, nil
}

func validateOrder(customerName, customerID string, items []entity.ConfirmedOrderItem) error {
	maxLen := common.MaxLength(repository.MaxTextLength)
	v := common.NewValidator().
		Field("customerName", customerName, maxLen).
		Field("customerId", customerID, maxLen)
	for i, it := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		v.Field(prefix+"name", it.Name, common.Required, maxLen).
			Field(prefix+"quantity", it.Quantity, common.NonNegative).
			Field(prefix+"price", it.UnitPrice, common.NonNegative).
			Field(prefix+"total", it.Total, common.NonNegative)
	}
	return common.ValidateAndReturnError(v)
}
