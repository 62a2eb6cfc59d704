package materials

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"optimaflow/internal/storage"
)

func orderWithPayload(t *testing.T, no string, payload map[string]any) storage.WorkOrder {
	t.Helper()
	b, err := json.Marshal(payload)
	assert.NoError(t, err)
	return storage.WorkOrder{OrderNo: no, CompletionResponse: b}
}

func TestRequirements_AggregatesAcrossOrders(t *testing.T) {
	orders := []storage.WorkOrder{
		orderWithPayload(t, "A1", map[string]any{
			"form": map[string]any{
				"materials": []any{
					map[string]any{"material": "cable", "quantity": 2.0},
					map[string]any{"material": "connector", "qty": 4.0},
				},
			},
		}),
		orderWithPayload(t, "B2", map[string]any{
			"materials": []any{
				map[string]any{"name": "cable", "count": 3.0},
			},
		}),
	}

	got := Requirements(orders)

	assert.Equal(t, []storage.MaterialRequirement{
		{Material: "cable", Quantity: 5, Orders: 2},
		{Material: "connector", Quantity: 4, Orders: 1},
	}, got)
}

func TestRequirements_DefaultsQuantityToOne(t *testing.T) {
	orders := []storage.WorkOrder{
		orderWithPayload(t, "A1", map[string]any{
			"materials": []any{map[string]any{"material": "tape"}},
		}),
	}

	got := Requirements(orders)

	assert.Equal(t, []storage.MaterialRequirement{{Material: "tape", Quantity: 1, Orders: 1}}, got)
}

func TestRequirements_IgnoresBrokenPayloads(t *testing.T) {
	orders := []storage.WorkOrder{
		{OrderNo: "A1"}, // no payload
		{OrderNo: "B2", CompletionResponse: []byte("{broken")},
		orderWithPayload(t, "C3", map[string]any{
			"materials": []any{"not-an-object", map[string]any{"quantity": 2.0}},
		}),
	}

	got := Requirements(orders)

	assert.Empty(t, got)
}
