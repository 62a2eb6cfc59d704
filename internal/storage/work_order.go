package storage

import (
	"encoding/json"
	"errors"
)

var ErrOrderNotFound = errors.New("work order not found")

// QC workflow states. CompletionStatus is independent from these: it is
// whatever the routing system reported, lower-cased.
const (
	StatusImported      = "imported"
	StatusPendingReview = "pending_review"
	StatusApproved      = "approved"
	StatusFlagged       = "flagged"
	StatusResolved      = "resolved"
	StatusRejected      = "rejected"
)

type WorkOrder struct {
	ID               string  `json:"id"`
	OrderNo          string  `json:"order_no"`
	Status           string  `json:"status"`
	CompletionStatus string  `json:"completion_status,omitempty"`
	HasImages        bool    `json:"has_images"`
	SignatureURL     *string `json:"signature_url,omitempty"`
	TrackingURL      *string `json:"tracking_url,omitempty"`
	Timestamp        string  `json:"timestamp,omitempty"`
	ServiceDate      string  `json:"service_date,omitempty"`
	DriverName       string  `json:"driver_name,omitempty"`
	QcNote           string  `json:"qc_note,omitempty"`

	Location *Location `json:"location,omitempty"`

	// Raw payloads are kept verbatim for the dashboard's detail view.
	SearchResponse     json.RawMessage `json:"search_response,omitempty"`
	CompletionResponse json.RawMessage `json:"completion_response,omitempty"`
}

type Location struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

// WorkOrderFilter narrows the dashboard list query.
type WorkOrderFilter struct {
	Status string
	From   string
	To     string
	Search string
}
