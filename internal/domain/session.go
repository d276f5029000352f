package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	StatusInProgress = "in_progress"
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
)

const (
	AgreementMSA   = "msa"
	AgreementDebit = "debit"
)

// RejectReasonMaxLen bounds the free-text reason recorded on rejection.
const RejectReasonMaxLen = 300

// SessionTTL is the sliding lifetime of a session record. Every
// successful write re-arms it.
const SessionTTL = 24 * time.Hour

// UploadEntry is immutable once appended to a session.
type UploadEntry struct {
	Key          string `json:"key"`
	OriginalName string `json:"originalName"`
	SizeBytes    int64  `json:"sizeBytes"`
	Label        string `json:"label"`
}

// DebitOrder holds the banking instrument captured for a debit order
// agreement.
type DebitOrder struct {
	AccountHolder string `json:"accountHolder"`
	IDNumber      string `json:"idNumber"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountType   string `json:"accountType"`
	DebitDay      string `json:"debitDay"`
}

// AuditMeta is captured once at the first progress write and never
// overwritten afterwards.
type AuditMeta struct {
	IP         string    `json:"ip"`
	UserAgent  string    `json:"userAgent"`
	ApproxGeo  string    `json:"approxGeo"`
	CapturedAt time.Time `json:"capturedAt"`
}

// PushAttempt records the outcome of one CRM or document push during
// admin approval. Attempts are kept even when they fail so operators can
// retry manually.
type PushAttempt struct {
	Endpoint string `json:"endpoint"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// Session is the aggregate root of one onboarding funnel run, stored
// under onboard/<linkId>. The JSON field names are the stored wire
// format and must stay stable.
type Session struct {
	LinkID     string `json:"linkId"`
	ExternalID string `json:"externalId"`
	Status     string `json:"status"`

	Edits   map[string]string `json:"edits,omitempty"`
	Uploads []UploadEntry     `json:"uploads,omitempty"`

	Debit             *DebitOrder `json:"debit,omitempty"`
	DebitSigned       bool        `json:"debitSigned"`
	DebitSignatureKey string      `json:"debitSignatureKey,omitempty"`

	AgreementSigned       bool   `json:"agreementSigned"`
	AgreementSignatureKey string `json:"agreementSignatureKey,omitempty"`

	OTPVerified   bool `json:"otpVerified"`
	HumanVerified bool `json:"humanVerified"`

	AuditMeta *AuditMeta `json:"auditMeta,omitempty"`

	PushAttempts []PushAttempt `json:"pushAttempts,omitempty"`
	RejectReason string        `json:"rejectReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Version is the optimistic-concurrency token. Writes whose version
	// does not match the stored record are rejected.
	Version int64 `json:"version"`
}

const linkSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewLinkID mints a link identifier of the form <externalId>_<random>.
// The random part is 8 characters of [0-9a-z].
func NewLinkID(externalID string) (string, error) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(linkSuffixAlphabet))))
		if err != nil {
			return "", fmt.Errorf("mint link id: %w", err)
		}
		b.WriteByte(linkSuffixAlphabet[n.Int64()])
	}
	return externalID + "_" + b.String(), nil
}

// NewSession creates an in_progress session for an external CRM record.
func NewSession(externalID string, now time.Time) (Session, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return Session{}, fmt.Errorf("%w: external id required", ErrInvalidInput)
	}
	linkID, err := NewLinkID(externalID)
	if err != nil {
		return Session{}, err
	}
	return Session{
		LinkID:     linkID,
		ExternalID: externalID,
		Status:     StatusInProgress,
		Edits:      map[string]string{},
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}, nil
}

// CanTransition reports whether the status change follows the funnel
// in_progress -> pending -> {approved, rejected}. rejected is terminal.
func CanTransition(from, to string) bool {
	switch from {
	case StatusInProgress:
		return to == StatusPending
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	default:
		return false
	}
}

// Transition applies a status change, rejecting anything outside the
// funnel order.
func (s *Session) Transition(to string) error {
	if !CanTransition(s.Status, to) {
		return fmt.Errorf("%w: cannot move %s session to %s", ErrConflict, s.Status, to)
	}
	s.Status = to
	return nil
}

// SignatureKey returns the stored signature blob key for an agreement
// type, empty when not signed yet.
func (s *Session) SignatureKey(agreement string) string {
	switch agreement {
	case AgreementDebit:
		return s.DebitSignatureKey
	default:
		return s.AgreementSignatureKey
	}
}

// Sign records a captured signature for one agreement type. A signature
// is set at most once; re-signing requires an explicit admin reset.
func (s *Session) Sign(agreement, blobKey string) error {
	switch agreement {
	case AgreementMSA:
		if s.AgreementSigned {
			return fmt.Errorf("%w: agreement already signed", ErrConflict)
		}
		s.AgreementSigned = true
		s.AgreementSignatureKey = blobKey
	case AgreementDebit:
		if s.DebitSigned {
			return fmt.Errorf("%w: debit order already signed", ErrConflict)
		}
		s.DebitSigned = true
		s.DebitSignatureKey = blobKey
	default:
		return fmt.Errorf("%w: unknown agreement type %q", ErrInvalidInput, agreement)
	}
	if s.Status == StatusInProgress {
		s.Status = StatusPending
	}
	return nil
}

// Reject marks a pending session rejected, truncating the operator
// reason to RejectReasonMaxLen characters.
func (s *Session) Reject(reason string) error {
	if err := s.Transition(StatusRejected); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > RejectReasonMaxLen {
		reason = reason[:RejectReasonMaxLen]
	}
	s.RejectReason = reason
	return nil
}
