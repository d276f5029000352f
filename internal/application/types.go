package application

import (
	"time"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

// Config carries the tunables the funnel needs at runtime. Branding and
// network policy are explicit construction-time inputs, never package
// globals.
type Config struct {
	CustomerOTPTTL time.Duration
	StaffOTPTTL    time.Duration
	OTPTemplate    string

	// ReusePlaceholderName identifies the specially named CRM record
	// offered as a fallback reconciliation target.
	ReusePlaceholderName string
}

// ClientMeta is the request metadata captured once at the first
// progress write.
type ClientMeta struct {
	IP        string
	UserAgent string
	ApproxGeo string
}

// SaveProgressInput carries the client's field edits plus the version
// token from its last read.
type SaveProgressInput struct {
	Edits   map[string]string
	Version int64
	Meta    ClientMeta
}

// DebitInput is the banking detail form for the debit order agreement.
type DebitInput struct {
	AccountHolder string
	IDNumber      string
	BankName      string
	AccountNumber string
	AccountType   string
	DebitDay      string
	Version       int64
}

// Reconciliation modes. Mode resolution is operator-driven; the system
// never silently merges.
const (
	ModeCreate    = "create"
	ModeOverwrite = "overwrite"
	ModeReuse     = "reuse"
)

// CandidateSet is what the operator is shown before choosing a
// reconciliation mode.
type CandidateSet struct {
	Matches []ports.Profile
	// Reuse is the placeholder record offered when nothing matched.
	Reuse *ports.Profile
}

// ReconcileResult reports the outcome of one reconciliation write.
type ReconcileResult struct {
	OK       bool
	ID       string
	Link     string
	Attempts []domain.PushAttempt
}

// ApproveResult reports the terminal approval outcome including every
// push attempt, failed ones included, for operator follow-up.
type ApproveResult struct {
	Session  domain.Session
	Attempts []domain.PushAttempt
}
