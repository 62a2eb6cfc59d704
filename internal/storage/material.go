package storage

// MaterialRequirement is an aggregated line over the completion data of
// imported orders: how much of one material the field teams reported using.
type MaterialRequirement struct {
	Material string  `json:"material"`
	Quantity float64 `json:"quantity"`
	Orders   int     `json:"orders"`
}
