package booking

import (
	"errors"
	"fmt"
	"sort"

	"studiodesk/internal/schedule"
)

const fieldCostBreakdown = "cost_breakdown"

// Keys the form ignores: assigned by storage or derived.
var readOnlyFields = map[string]bool{
	"id":          true,
	"operator_id": true,
	"created_at":  true,
	"updated_at":  true,
	"revenue":     true,
}

var costFields = []string{schedule.CostFieldLabel, schedule.CostFieldCost, schedule.CostFieldVendor}

// applyDraft feeds every request field through the form. A present
// cost_breakdown replaces the form's cost items. Returned messages describe
// fields that could not be applied at all.
func applyDraft(f *schedule.Form, req DraftRequest) map[string]string {
	errs := make(map[string]string)

	keys := make([]string, 0, len(req))
	for k := range req {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if readOnlyFields[k] {
			continue
		}
		if k == fieldCostBreakdown {
			applyCosts(f, req[k], errs)
			continue
		}
		if err := f.UpdateField(k, req[k]); err != nil {
			if errors.Is(err, schedule.ErrUnknownField) {
				errs[k] = "Unknown field"
			} else {
				errs[k] = "Invalid value"
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func applyCosts(f *schedule.Form, raw any, errs map[string]string) {
	var items []any
	if raw != nil {
		list, ok := raw.([]any)
		if !ok {
			errs[fieldCostBreakdown] = "Cost breakdown must be a list"
			return
		}
		items = list
	}

	for len(f.Draft().CostBreakdown) > 0 {
		_ = f.RemoveCostItem(0)
	}

	for i, item := range items {
		f.AddCostItem()
		m, ok := item.(map[string]any)
		if !ok {
			errs[fmt.Sprintf("%s[%d]", fieldCostBreakdown, i)] = "Invalid cost item"
			continue
		}
		for _, field := range costFields {
			v, present := m[field]
			if !present {
				continue
			}
			if err := f.UpdateCostItem(i, field, v); err != nil {
				errs[fmt.Sprintf("%s[%d].%s", fieldCostBreakdown, i, field)] = "Invalid value"
			}
		}
	}
}
