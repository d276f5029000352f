package ports

import "context"

// Profile is the typed, normalized view of a CRM record. Field-name
// variance across CRM endpoints (street/address/street_1 and friends)
// is resolved by the CRM adapter before a Profile is handed out.
type Profile struct {
	ID     string
	Kind   string // "customer" or "lead"
	Name   string
	Email  string
	Phone  string
	Street string
	City   string
	Zip    string
}

const (
	EntityCustomer = "customer"
	EntityLead     = "lead"
	EntityUnknown  = "unknown"
)

// CRMClient is the Basic-auth JSON client against the external
// system-of-record. No call is retried; each failure is final per
// attempt and surfaced to the operator.
type CRMClient interface {
	// DetectKind probes a customer-shaped fetch first and falls back to
	// lead-shaped. It returns EntityUnknown when neither resolves.
	DetectKind(ctx context.Context, id string) string
	GetProfile(ctx context.Context, id string) (Profile, error)
	// ResolvePhone hunts the record and its contacts for any field that
	// normalizes to a valid mobile number.
	ResolvePhone(ctx context.Context, id string) (string, error)
	ListLeads(ctx context.Context) ([]Profile, error)
	CreateLead(ctx context.Context, payload map[string]any) (string, error)
	UpdateLead(ctx context.Context, id string, payload map[string]any) error
	UpdateCustomer(ctx context.Context, id string, payload map[string]any) error
	UploadDocument(ctx context.Context, id, name, url string) error

	LeadEndpoint(id string) string
	CustomerEndpoint(id string) string
}

// MessageSender dispatches templated messages over the messaging
// channel (WhatsApp business API shape).
type MessageSender interface {
	SendTemplate(ctx context.Context, to, template string, params []string) error
}

// ChallengeVerifier validates a client-supplied bot-challenge token
// with the third-party provider.
type ChallengeVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// StaffTokenIssuer mints and checks the signed tokens handed to staff
// callers after a successful staff passcode verification.
type StaffTokenIssuer interface {
	Issue(subject string) (string, error)
	Verify(token string) (string, error)
}
