package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/orders-intake/internal/common"
	"github.com/joseph-ayodele/orders-intake/internal/entity"
)

// extractedItem is the wire shape of one extracted line item.
type extractedItem struct {
	RequestItem *string  `json:"Request_Item"`
	Amount      *float64 `json:"Amount"`
	UnitPrice   *float64 `json:"Unit_Price"`
	Total       *float64 `json:"Total"`
}

func toExtractedItems(items []entity.RawExtractedItem) []extractedItem {
	out := make([]extractedItem, 0, len(items))
	for _, it := range items {
		out = append(out, extractedItem{
			RequestItem: it.Description,
			Amount:      it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return out
}

// Extract accepts a multipart "file" upload and returns the extracted line items.
func (s *Server) Extract(c *gin.Context) {
	// Room for the multipart envelope on top of the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes+64<<10)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(c, "extract", common.InvalidInputError("Uploaded file is too large", err))
			return
		}
		s.writeError(c, "extract", common.InvalidInputError("A PDF file is required in the \"file\" form field", err))
		return
	}
	if fh.Size > s.opts.MaxUploadBytes {
		s.writeError(c, "extract", common.InvalidInputError("Uploaded file is too large", nil))
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.writeError(c, "extract", common.InvalidInputError("Could not read uploaded file", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.writeError(c, "extract", common.InvalidInputError("Could not read uploaded file", err))
		return
	}

	items, err := s.deps.Extractor.Extract(c.Request.Context(), data, fh.Filename)
	if err != nil {
		s.writeError(c, "extract", err)
		return
	}
	c.JSON(http.StatusOK, toExtractedItems(items))
}
