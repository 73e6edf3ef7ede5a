// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "time"

// Task types.
const (
	TypeRetrain = "retrain"
	TypeIngest  = "ingest"
)

// Task represents an offline job requested through the admin API.
type Task struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	RequestedBy string    `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
	// Curate pushes cluster definitions after a retrain.
	Curate bool `json:"curate"`
}
