package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/orders-intake/constants"
	"github.com/joseph-ayodele/orders-intake/internal/entity"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type finalizeItem struct {
	Name     *string  `json:"name" binding:"required"`
	Quantity *float64 `json:"quantity" binding:"required"`
	Price    *float64 `json:"price" binding:"required"`
	Total    *float64 `json:"total" binding:"required"`
}

type finalizeRequest struct {
	CustomerName *string        `json:"customerName" binding:"required"`
	CustomerID   *string        `json:"customerId" binding:"required"`
	Items        []finalizeItem `json:"items" binding:"required,dive"`
}

type finalizeResponse struct {
	Status   constants.ResponseStatus `json:"status"`
	Message  string                   `json:"message"`
	OrderIDs []int64                  `json:"orderIds"`
}

func (r finalizeRequest) confirmedItems() []entity.ConfirmedOrderItem {
	items := make([]entity.ConfirmedOrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, entity.ConfirmedOrderItem{
			Name:      *it.Name,
			Quantity:  *it.Quantity,
			UnitPrice: *it.Price,
			Total:     *it.Total,
		})
	}
	return items
}

// Finalize persists the operator-confirmed items as one atomic order.
func (s *Server) Finalize(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, "finalize", bindError(err))
		return
	}

	ids, err := s.deps.Orders.Finalize(c.Request.Context(), *req.CustomerName, *req.CustomerID, req.confirmedItems())
	if err != nil {
		s.writeError(c, "finalize", err)
		return
	}
	c.JSON(http.StatusOK, finalizeResponse{
		Status:   constants.StatusSuccess,
		Message:  "Orders saved successfully",
		OrderIDs: ids,
	})
}

// ListOrders returns every persisted order row.
func (s *Server) ListOrders(c *gin.Context) {
	rows, err := s.deps.Orders.ListOrders(c.Request.Context())
	if err != nil {
		s.writeError(c, "list_orders", err)
		return
	}
	if rows == nil {
		rows = []*entity.Order{}
	}
	c.JSON(http.StatusOK, rows)
}

// ExportOrders downloads every persisted order row as an XLSX workbook.
func (s *Server) ExportOrders(c *gin.Context) {
	data, err := s.deps.Exporter.ExportOrdersXLSX(c.Request.Context())
	if err != nil {
		s.writeError(c, "export_orders", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="orders.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
