package repository

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	ColumnID           = "id"
	ColumnCustomerName = "customer_name"
	ColumnCustomerID   = "customer_id"
	ColumnName         = "name"
	ColumnQuantity     = "quantity"
	ColumnPrice        = "price"
	ColumnTotal        = "total"

	// MaxTextLength bounds every text column of the orders table.
	MaxTextLength = 255
)

var (
	// OrdersColumns holds the columns for the "orders" table.
	OrdersColumns = []*schema.Column{
		{Name: ColumnID, Type: field.TypeInt64, Increment: true},
		{Name: ColumnCustomerName, Type: field.TypeString, Size: MaxTextLength},
		{Name: ColumnCustomerID, Type: field.TypeString, Size: MaxTextLength},
		{Name: ColumnName, Type: field.TypeString, Size: MaxTextLength},
		{Name: ColumnQuantity, Type: field.TypeFloat64},
		{Name: ColumnPrice, Type: field.TypeFloat64},
		{Name: ColumnTotal, Type: field.TypeFloat64},
	}
	// OrdersTable holds the schema information for the "orders" table.
	OrdersTable = &schema.Table{
		Name:       "orders",
		Columns:    OrdersColumns,
		PrimaryKey: []*schema.Column{OrdersColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "orders_customer_id",
				Unique:  false,
				Columns: []*schema.Column{OrdersColumns[2]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		OrdersTable,
	}
)

// Migrate creates missing tables, columns and indexes. It never drops anything.
func Migrate(ctx context.Context, s *Store, logger *slog.Logger) error {
	logger.Info("running schema migration", "tables", len(Tables))
	m, err := schema.NewMigrate(s.Driver())
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		logger.Error("schema migration failed", "error", err)
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("schema migration complete")
	return nil
}
