package domain

import "time"

// AuditEvent is one append-only row in the admin audit trail. It records
// who did what to which link, including individual CRM push attempts.
type AuditEvent struct {
	AuditID    string    `json:"audit_id"`
	Action     string    `json:"action"`
	LinkID     string    `json:"link_id"`
	ActorIP    string    `json:"actor_ip,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
