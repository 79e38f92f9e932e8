package sampler

import "github.com/menuhound/menuhound/models"

// Dedupe removes items that overlapping viewport steps parsed more than
// once. A section that stays visible across two steps is re-parsed at both,
// so duplicates are systematic; identity is the (name, price, category) key
// and the earliest occurrence wins, preserving document order.
func Dedupe(items []models.MenuItem) []models.MenuItem {
	if len(items) < 2 {
		return items
	}
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		key := item.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
