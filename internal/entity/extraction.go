package entity

// RawExtractedItem is one line item as recognized by the extraction service.
// Any field may be missing when the extractor could not read it.
type RawExtractedItem struct {
	Description *string
	Quantity    *float64
	UnitPrice   *float64
	Total       *float64
}
