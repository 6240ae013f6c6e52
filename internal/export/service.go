package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/orders-intake/internal/common"
	"github.com/joseph-ayodele/orders-intake/internal/repository"
)

const sheetName = "Orders"

var headers = []string{
	"Order ID",
	"Customer Name",
	"Customer ID",
	"Item",
	"Quantity",
	"Unit Price",
	"Total",
}

// Service is a tiny façade over the order repository that produces XLSX bytes for exports.
type Service struct {
	orderRepo repository.OrderRepository
	logger    *slog.Logger
}

func NewService(orderRepo repository.OrderRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{orderRepo: orderRepo, logger: logger}
}

// ExportOrdersXLSX returns an XLSX workbook (as bytes) with one row per persisted order row.
func (s *Service) ExportOrdersXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		s.logger.Error("export.xlsx.query_failed", "error", err)
		return nil, common.PersistenceError("Failed to load orders", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()

	// Rename the default sheet so the workbook has exactly one.
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	row := 2
	for _, o := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		write(1, o.ID)
		write(2, o.CustomerName)
		write(3, o.CustomerID)
		write(4, o.Name)
		write(5, o.Quantity)
		write(6, o.Price)
		write(7, o.Total)
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheetName, "A", "A", 10) // id
	_ = f.SetColWidth(sheetName, "B", "C", 22) // customer
	_ = f.SetColWidth(sheetName, "D", "D", 40) // item
	_ = f.SetColWidth(sheetName, "E", "G", 12) // amounts

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
