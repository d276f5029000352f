package ports

import "context"

// Lifecycle event types published on the event bus.
const (
	EventLinkIssued      = "onboarding.link_issued"
	EventAgreementSigned = "onboarding.agreement_signed"
	EventSessionApproved = "onboarding.session_approved"
	EventSessionRejected = "onboarding.session_rejected"
	EventSessionDeleted  = "onboarding.session_deleted"
)

// EventPublisher emits session lifecycle events, partitioned by link id.
// Publishing is best effort: failures are logged, never surfaced to the
// client.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, linkID string, payload any) error
	Close() error
}
