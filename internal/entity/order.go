package entity

// Order is one persisted line item of a finalized purchase. Rows sharing a
// (CustomerName, CustomerID) pair written by one finalize call form the
// business-level order; no further grouping key exists.
type Order struct {
	ID           int64   `json:"id"`
	CustomerName string  `json:"customer_name"`
	CustomerID   string  `json:"customer_id"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Price        float64 `json:"price"`
	Total        float64 `json:"total"`
}

// ConfirmedOrderItem is an operator-confirmed line item ready to be persisted.
type ConfirmedOrderItem struct {
	Name      string
	Quantity  float64
	UnitPrice float64
	Total     float64
}
