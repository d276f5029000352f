package unit

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
)

func TestNormalizePhoneForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0821234567", "27821234567", true},
		{"27821234567", "27821234567", true},
		{"+27 82 123 4567", "27821234567", true},
		{"082-123-4567", "27821234567", true},
		{"821234567", "27821234567", true},
		{"12345", "", false},
		{"", "", false},
		{"not a number", "", false},
	}
	for _, tc := range cases {
		got, ok := domain.NormalizePhone(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("NormalizePhone(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	t.Parallel()

	first, ok := domain.NormalizePhone("072 555 0000")
	if !ok {
		t.Fatalf("expected valid number")
	}
	second, ok := domain.NormalizePhone(first)
	if !ok || second != first {
		t.Fatalf("normalization not idempotent: %q -> %q", first, second)
	}
}

func TestNewSessionLinkIDFormat(t *testing.T) {
	t.Parallel()

	session, err := domain.NewSession("319", time.Now().UTC())
	if err != nil {
		t.Fatalf("new session failed: %v", err)
	}
	pattern := regexp.MustCompile(`^319_[0-9a-z]{8}$`)
	if !pattern.MatchString(session.LinkID) {
		t.Fatalf("link id %q does not match %s", session.LinkID, pattern)
	}
	if session.Status != domain.StatusInProgress {
		t.Fatalf("new session status = %q", session.Status)
	}
	if session.Version != 1 {
		t.Fatalf("new session version = %d", session.Version)
	}
}

func TestNewSessionRequiresExternalID(t *testing.T) {
	t.Parallel()

	if _, err := domain.NewSession("  ", time.Now().UTC()); err == nil {
		t.Fatalf("expected error for blank external id")
	}
}

func TestStatusFunnel(t *testing.T) {
	t.Parallel()

	allowed := map[[2]string]bool{
		{domain.StatusInProgress, domain.StatusPending}: true,
		{domain.StatusPending, domain.StatusApproved}:   true,
		{domain.StatusPending, domain.StatusRejected}:   true,
	}
	statuses := []string{domain.StatusInProgress, domain.StatusPending, domain.StatusApproved, domain.StatusRejected}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			if got := domain.CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v want %v", from, to, got, want)
			}
		}
	}
}

func TestSignMovesInProgressToPending(t *testing.T) {
	t.Parallel()

	session, _ := domain.NewSession("319", time.Now().UTC())
	if err := session.Sign(domain.AgreementMSA, "agreements/x/signature.png"); err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if session.Status != domain.StatusPending {
		t.Fatalf("status after sign = %q", session.Status)
	}
	if err := session.Sign(domain.AgreementMSA, "agreements/x/signature.png"); err == nil {
		t.Fatalf("expected conflict on re-sign")
	}
	// A second agreement type still signs; the status stays pending.
	if err := session.Sign(domain.AgreementDebit, "debit_agreements/x/signature.png"); err != nil {
		t.Fatalf("debit sign failed: %v", err)
	}
	if session.Status != domain.StatusPending {
		t.Fatalf("status after debit sign = %q", session.Status)
	}
}

func TestRejectTruncatesReason(t *testing.T) {
	t.Parallel()

	session, _ := domain.NewSession("319", time.Now().UTC())
	session.Status = domain.StatusPending

	long := strings.Repeat("x", domain.RejectReasonMaxLen+50)
	if err := session.Reject(long); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if len(session.RejectReason) != domain.RejectReasonMaxLen {
		t.Fatalf("reason length = %d want %d", len(session.RejectReason), domain.RejectReasonMaxLen)
	}
	if session.Status != domain.StatusRejected {
		t.Fatalf("status after reject = %q", session.Status)
	}
}

func TestRejectFromInProgressConflicts(t *testing.T) {
	t.Parallel()

	session, _ := domain.NewSession("319", time.Now().UTC())
	if err := session.Reject("nope"); err == nil {
		t.Fatalf("expected conflict rejecting an in_progress session")
	}
}
