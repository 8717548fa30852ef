package api

import (
	"time"

	"github.com/ruche-hive/ruche/internal/lifecycle"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Nodes   int    `json:"nodes"`
}

// LogsResponse holds a node's container output.
type LogsResponse struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

// DeletionRequestResponse tells the caller how long the ticket is valid.
type DeletionRequestResponse struct {
	ID          int       `json:"id"`
	RequestedAt time.Time `json:"requested_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// BulkRequest optionally narrows a bulk operation to some containers.
type BulkRequest struct {
	Names []string `json:"names,omitempty"`
}

// BulkItem is the outcome for one container.
type BulkItem struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkResponse lists every container touched by a bulk operation.
type BulkResponse struct {
	Results []BulkItem `json:"results"`
}

func bulkResponse(results []lifecycle.BulkResult) BulkResponse {
	resp := BulkResponse{Results: make([]BulkItem, 0, len(results))}
	for _, r := range results {
		item := BulkItem{Name: r.Name, OK: r.Err == nil}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}
