// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
)

// SecurityEventResponse represents a security event in API responses.
// Archive signatures stay internal.
type SecurityEventResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	ClientID  string         `json:"client_id,omitempty"`
	SourceIP  string         `json:"source_ip,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// MapEventToResponse converts a domain security event to an API response.
func MapEventToResponse(event auditDomain.SecurityEvent) SecurityEventResponse {
	return SecurityEventResponse{
		ID:        event.ID.String(),
		Type:      string(event.Type),
		ClientID:  event.ClientID,
		SourceIP:  event.SourceIP,
		RequestID: event.RequestID,
		Details:   event.Details,
		CreatedAt: event.CreatedAt,
	}
}

// ListEventsResponse represents a list of security events in API responses,
// newest first.
type ListEventsResponse struct {
	Data []SecurityEventResponse `json:"data"`
}

// MapEventsToListResponse converts domain security events to a list API response.
func MapEventsToListResponse(events []auditDomain.SecurityEvent) ListEventsResponse {
	data := make([]SecurityEventResponse, 0, len(events))
	for _, event := range events {
		data = append(data, MapEventToResponse(event))
	}
	return ListEventsResponse{Data: data}
}

// SummaryResponse aggregates the audit state in API responses.
type SummaryResponse struct {
	TotalRecorded int64            `json:"total_recorded"`
	RingCapacity  int              `json:"ring_capacity"`
	CountsByType  map[string]int64 `json:"counts_by_type"`
	BlockedIPs    int              `json:"blocked_ips"`
	ActiveBuckets int              `json:"active_buckets"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// MapSummaryToResponse converts a domain summary to an API response.
func MapSummaryToResponse(summary auditDomain.Summary) SummaryResponse {
	counts := make(map[string]int64, len(summary.CountsByType))
	for eventType, count := range summary.CountsByType {
		counts[string(eventType)] = count
	}
	return SummaryResponse{
		TotalRecorded: summary.TotalRecorded,
		RingCapacity:  summary.RingCapacity,
		CountsByType:  counts,
		BlockedIPs:    summary.BlockedIPs,
		ActiveBuckets: summary.ActiveBuckets,
		GeneratedAt:   summary.GeneratedAt,
	}
}
