package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type (
	// ReportItem is a single cost entry as it appears inside a report bucket.
	// Derived per request, never persisted.
	ReportItem struct {
		Sum         decimal.Decimal `json:"sum"`
		Description string          `json:"description"`
		Day         int             `json:"day"`
	}

	// CategoryGroup is the aggregator's intermediate: entries of one category,
	// before the fixed-category template is applied.
	CategoryGroup struct {
		Category string
		Items    []ReportItem
	}

	// CategoryBucket is one fixed category and its items. The internal model is
	// a uniform {Category, Items} pair; the wire shape is produced only at the
	// serialization boundary.
	CategoryBucket struct {
		Category string
		Items    []ReportItem
	}

	// MonthlyReport is the formatted monthly report for one user.
	MonthlyReport struct {
		UserID int64            `json:"userid"`
		Year   int              `json:"year"`
		Month  int              `json:"month"`
		Costs  []CategoryBucket `json:"costs"`
	}
)

// MarshalJSON encodes the bucket in its wire shape: a single-key object keyed
// by the category name, e.g. {"food":[{"sum":100,"description":"pizza","day":10}]}.
func (b CategoryBucket) MarshalJSON() ([]byte, error) {
	items := b.Items
	if items == nil {
		items = []ReportItem{}
	}
	return json.Marshal(map[string][]ReportItem{b.Category: items})
}

// UnmarshalJSON accepts the single-key wire shape back into the uniform model.
func (b *CategoryBucket) UnmarshalJSON(data []byte) error {
	var raw map[string][]ReportItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for category, items := range raw {
		b.Category = category
		b.Items = items
	}
	return nil
}
