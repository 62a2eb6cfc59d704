// Package materials aggregates material usage reported in the completion
// payloads of imported orders.
package materials

import (
	"encoding/json"
	"sort"

	"optimaflow/internal/storage"
)

// Material lines appear in the completion payload under one of these keys,
// at the payload root or inside its form object.
var lineKeys = []string{"materials", "material_lines", "usedMaterials"}

// Requirements folds material lines from every order's completion payload
// into one aggregated list, sorted by material name. Orders without a
// payload or with unreadable lines contribute nothing; nothing here errors.
func Requirements(orders []storage.WorkOrder) []storage.MaterialRequirement {
	type agg struct {
		quantity float64
		orders   int
	}
	totals := make(map[string]*agg)

	for _, order := range orders {
		if len(order.CompletionResponse) == 0 {
			continue
		}

		var payload map[string]any
		if err := json.Unmarshal(order.CompletionResponse, &payload); err != nil {
			continue
		}

		seen := make(map[string]bool)
		for _, line := range materialLines(payload) {
			name, qty := parseLine(line)
			if name == "" {
				continue
			}
			entry, ok := totals[name]
			if !ok {
				entry = &agg{}
				totals[name] = entry
			}
			entry.quantity += qty
			if !seen[name] {
				entry.orders++
				seen[name] = true
			}
		}
	}

	result := make([]storage.MaterialRequirement, 0, len(totals))
	for name, entry := range totals {
		result = append(result, storage.MaterialRequirement{
			Material: name,
			Quantity: entry.quantity,
			Orders:   entry.orders,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Material < result[j].Material })

	return result
}

func materialLines(payload map[string]any) []any {
	containers := []map[string]any{payload}
	if form, ok := payload["form"].(map[string]any); ok {
		containers = append(containers, form)
	}
	if data, ok := payload["data"].(map[string]any); ok {
		containers = append(containers, data)
		if form, ok := data["form"].(map[string]any); ok {
			containers = append(containers, form)
		}
	}

	for _, container := range containers {
		for _, key := range lineKeys {
			if lines, ok := container[key].([]any); ok && len(lines) > 0 {
				return lines
			}
		}
	}

	return nil
}

func parseLine(line any) (string, float64) {
	entry, ok := line.(map[string]any)
	if !ok {
		return "", 0
	}

	var name string
	for _, key := range []string{"material", "name", "sku"} {
		if s, ok := entry[key].(string); ok && s != "" {
			name = s
			break
		}
	}

	qty := 1.0
	for _, key := range []string{"quantity", "qty", "count"} {
		if f, ok := entry[key].(float64); ok {
			qty = f
			break
		}
	}

	return name, qty
}
