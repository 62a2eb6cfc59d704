// Package normalize maps raw order payloads from the routing API into the
// canonical WorkOrder shape. The API reports the same field under several
// names (camelCase, snake_case, different nesting), so every logical field is
// resolved through an ordered list of candidate paths. First match wins,
// missing paths fall back to a sentinel. Nothing in this package returns an
// error: malformed input degrades to defaults.
package normalize

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"optimaflow/internal/storage"
)

// RawOrder is one untyped order record as decoded from the API response.
type RawOrder map[string]any

// Candidate paths per logical field. These tables are the single source of
// truth for alias resolution; change precedence here, not at call sites.
var (
	completionDataPaths = [][]string{
		{"completionDetails", "data"},
		{"completion_details", "data"},
		{"completionDetails"},
		{"completion_details"},
		{"data"},
	}

	formPaths = [][]string{
		{"completionDetails", "form"},
		{"completion_details", "form"},
		{"data", "form"},
		{"form"},
	}

	orderNoKeys = []string{"orderNo", "order_no", "orderNumber", "order_number"}

	timestampKeys = []string{"timestamp", "endTime", "end_time", "startTime", "start_time"}

	trackingKeys = []string{"trackingUrl", "tracking_url"}
)

// Order builds one WorkOrder from a raw order and an optional search overlay
// (the same record as returned by the search endpoint, which carries the
// scheduling fields the completion endpoint omits).
func Order(raw RawOrder, search map[string]any) storage.WorkOrder {
	completion := firstMap(raw, completionDataPaths)
	form := firstMap(raw, formPaths)

	wo := storage.WorkOrder{
		ID:               orderID(raw, search),
		OrderNo:          orderNo(raw, search),
		Status:           storage.StatusImported,
		CompletionStatus: completionStatus(completion),
		HasImages:        hasImages(form, completion),
		SignatureURL:     signatureURL(form, completion),
		TrackingURL:      trackingURL(raw, completion),
		Timestamp:        timestamp(raw, completion),
		ServiceDate:      firstString(search, "date", "serviceDate", "service_date"),
		DriverName:       driverName(search),
		Location:         location(raw, search),
	}

	if wo.ServiceDate == "" {
		wo.ServiceDate = firstString(raw, "date", "serviceDate", "service_date")
	}

	if b, err := json.Marshal(map[string]any(raw)); err == nil {
		wo.CompletionResponse = b
	}
	if search != nil {
		if b, err := json.Marshal(search); err == nil {
			wo.SearchResponse = b
		}
	}

	return wo
}

func orderID(raw RawOrder, search map[string]any) string {
	if id := firstString(raw, "id"); id != "" {
		return id
	}
	if id := firstString(search, "id"); id != "" {
		return id
	}
	// Local fallback key: only used for map/list identity, not persisted
	// as a global identifier.
	return fmt.Sprintf("local-%d", rand.Uint64())
}

func orderNo(raw RawOrder, search map[string]any) string {
	if no := firstString(search, orderNoKeys...); no != "" {
		return no
	}
	return firstString(raw, orderNoKeys...)
}

// completionStatus resolves completionData.status, then
// completionData.completion_status, lower-cased. Missing yields "".
func completionStatus(completion map[string]any) string {
	return strings.ToLower(firstString(completion, "status", "completion_status"))
}

// hasImages reports whether any of the known image locations is populated.
// Checked in order: form-level image array, per-scan barcode collections,
// explicit completion flag, completion-level image array.
func hasImages(form, completion map[string]any) bool {
	if len(sliceAt(form, "images")) > 0 {
		return true
	}
	for _, key := range []string{"barcode", "barcode_collections"} {
		for _, entry := range sliceAt(form, key) {
			scan, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			info := firstMap(scan, [][]string{{"scanInfo"}, {"scan_info"}})
			if len(sliceAt(info, "images")) > 0 {
				return true
			}
		}
	}
	if b, ok := lookup(completion, "hasImages").(bool); ok && b {
		return true
	}
	return len(sliceAt(completion, "images")) > 0
}

func signatureURL(form, completion map[string]any) *string {
	if url := stringAt(form, "signature", "url"); url != "" {
		return &url
	}
	if url := stringAt(completion, "signature", "url"); url != "" {
		return &url
	}
	return nil
}

func trackingURL(raw RawOrder, completion map[string]any) *string {
	if url := firstString(completion, trackingKeys...); url != "" {
		return &url
	}
	if url := firstString(raw, trackingKeys...); url != "" {
		return &url
	}
	return nil
}

func timestamp(raw RawOrder, completion map[string]any) string {
	if ts := firstString(completion, timestampKeys...); ts != "" {
		return ts
	}
	// endTime may itself be an object carrying the UTC string.
	for _, key := range []string{"endTime", "end_time"} {
		if ts := stringAt(completion, key, "utcTime"); ts != "" {
			return ts
		}
	}
	return firstString(raw, timestampKeys...)
}

func driverName(search map[string]any) string {
	if name := firstString(search, "driverName", "driver_name"); name != "" {
		return name
	}
	return stringAt(search, "driver", "name")
}

// location resolves the winning location source, then fills address fields
// independently from the winner, the search overlay and the order root.
// Precedence for the winner: search.location object, search.location string,
// search.locationName, search.location_name, order.location (object or
// string), search.customer.name. Absent all, name degrades to "N/A".
func location(raw RawOrder, search map[string]any) *storage.Location {
	loc := &storage.Location{}
	var winner map[string]any

	switch v := lookup(search, "location").(type) {
	case map[string]any:
		winner = v
		loc.Name = firstString(v, "name", "locationName", "location_name")
	case string:
		loc.Name = v
	}

	if loc.Name == "" {
		loc.Name = firstString(search, "locationName", "location_name")
	}
	if loc.Name == "" && winner == nil {
		switch v := lookup(raw, "location").(type) {
		case map[string]any:
			winner = v
			loc.Name = firstString(v, "name", "locationName", "location_name")
		case string:
			loc.Name = v
		}
	}
	if loc.Name == "" {
		loc.Name = stringAt(search, "customer", "name")
	}
	if loc.Name == "" {
		loc.Name = "N/A"
	}

	loc.Address = fieldFrom("address", winner, search, raw)
	loc.City = fieldFrom("city", winner, search, raw)
	loc.State = fieldFrom("state", winner, search, raw)
	loc.Zip = fieldFrom("zip", winner, search, raw)

	return loc
}

// fieldFrom tries the same key in each source in order.
func fieldFrom(key string, sources ...map[string]any) string {
	for _, src := range sources {
		if v := firstString(src, key); v != "" {
			return v
		}
	}
	return ""
}
