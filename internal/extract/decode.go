package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/orders-intake/internal/entity"
	"github.com/joseph-ayodele/orders-intake/internal/upstream"
)

// responseSchema accepts an array of loosely typed records. Unknown keys are
// ignored; known keys must be null or of a usable type.
var responseSchema = upstream.MustCompileSchema("extraction_response.json", `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"Request Item": {"type": ["string", "null"]},
			"Amount":       {"type": ["number", "string", "null"]},
			"Unit Price":   {"type": ["number", "string", "null"]},
			"Total":        {"type": ["number", "string", "null"]}
		}
	}
}`)

type record struct {
	RequestItem *string   `json:"Request Item"`
	Amount      flexFloat `json:"Amount"`
	UnitPrice   flexFloat `json:"Unit Price"`
	Total       flexFloat `json:"Total"`
}

// flexFloat reads a JSON number or a finite numeric string. null and blank strings stay unset.
type flexFloat struct {
	v *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.v = &n
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", "")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("not a finite number: %q", s)
	}
	f.v = &n
	return nil
}

func decodeItems(raw []byte) ([]entity.RawExtractedItem, error) {
	var recs []record
	if err := upstream.DecodeValidated(responseSchema, raw, &recs); err != nil {
		return nil, err
	}
	items := make([]entity.RawExtractedItem, 0, len(recs))
	for _, r := range recs {
		items = append(items, entity.RawExtractedItem{
			Description: r.RequestItem,
			Quantity:    r.Amount.v,
			UnitPrice:   r.UnitPrice.v,
			Total:       r.Total.v,
		})
	}
	return items, nil
}
