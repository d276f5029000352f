package ports

import (
	"context"
	"time"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
)

// SessionStore owns the onboarding session records. Saves are
// compare-and-swap on Session.Version: a stale version yields
// domain.ErrVersionConflict and the caller must re-read. Every
// successful write re-arms the sliding 24h TTL.
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, linkID string) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) (domain.Session, error)
	Delete(ctx context.Context, linkID string) error
	ListByStatus(ctx context.Context, status string) ([]domain.Session, error)
}

// PasscodePurpose selects the one-time-passcode namespace and TTL.
type PasscodePurpose string

const (
	PasscodeCustomer PasscodePurpose = "customer"
	PasscodeStaff    PasscodePurpose = "staff"
)

// PasscodeStore keeps short-lived one-time passcodes keyed by link id
// and purpose. Get returns nil when no unexpired code exists.
type PasscodeStore interface {
	Put(ctx context.Context, linkID string, purpose PasscodePurpose, code string, ttl time.Duration) error
	Get(ctx context.Context, linkID string, purpose PasscodePurpose) (string, bool, error)
	Delete(ctx context.Context, linkID string, purpose PasscodePurpose) error
}

// RenderCache memoizes derived render artifacts: wrapped paragraph
// lines keyed by a content hash, and final PDF bytes keyed by link id.
// Entries are pure functions of their inputs so they are never
// invalidated explicitly, only by TTL.
type RenderCache interface {
	GetLines(ctx context.Context, key string) ([]string, bool, error)
	PutLines(ctx context.Context, key string, lines []string, ttl time.Duration) error
	GetPDF(ctx context.Context, linkID, agreement string) ([]byte, bool, error)
	PutPDF(ctx context.Context, linkID, agreement string, data []byte, ttl time.Duration) error
	DeletePDF(ctx context.Context, linkID, agreement string) error
}

// BlobStore persists binary artifacts (uploads, signature images) under
// path-like keys and resolves public URLs for CRM attachments.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	DeletePrefix(ctx context.Context, prefix string) error
	PublicURL(key string) string
}

// AuditRepository is the append-only admin audit trail.
type AuditRepository interface {
	Append(ctx context.Context, event domain.AuditEvent) error
}
