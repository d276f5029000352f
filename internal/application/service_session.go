package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
)

// editableFields is the fixed set of fields a client may edit.
var editableFields = map[string]bool{
	"name":    true,
	"email":   true,
	"phone":   true,
	"street":  true,
	"city":    true,
	"zip":     true,
	"service": true,
}

func (s *Service) GetSession(ctx context.Context, linkID string) (domain.Session, error) {
	linkID = strings.TrimSpace(linkID)
	if linkID == "" {
		return domain.Session{}, fmt.Errorf("%w: link id required", domain.ErrInvalidInput)
	}
	return s.sessions.Get(ctx, linkID)
}

// SaveProgress merges client field edits into the session. The version
// token from the client's last read is enforced strictly: a stale
// token is rejected and the client must re-read. Audit metadata is
// captured on the first progress write and never overwritten.
func (s *Service) SaveProgress(ctx context.Context, linkID string, input SaveProgressInput) (domain.Session, error) {
	session, err := s.GetSession(ctx, linkID)
	if err != nil {
		return domain.Session{}, err
	}
	for field := range input.Edits {
		if !editableFields[field] {
			return domain.Session{}, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, field)
		}
	}
	if input.Version != 0 {
		session.Version = input.Version
	}
	if session.Edits == nil {
		session.Edits = map[string]string{}
	}
	for field, value := range input.Edits {
		session.Edits[field] = strings.TrimSpace(value)
	}
	if session.AuditMeta == nil && (input.Meta.IP != "" || input.Meta.UserAgent != "") {
		session.AuditMeta = &domain.AuditMeta{
			IP:         input.Meta.IP,
			UserAgent:  input.Meta.UserAgent,
			ApproxGeo:  input.Meta.ApproxGeo,
			CapturedAt: s.nowFn(),
		}
	}
	return s.sessions.Save(ctx, session)
}

// SaveDebit records the banking details for the debit order agreement.
func (s *Service) SaveDebit(ctx context.Context, linkID string, input DebitInput) (domain.Session, error) {
	if strings.TrimSpace(input.AccountHolder) == "" || strings.TrimSpace(input.AccountNumber) == "" {
		return domain.Session{}, fmt.Errorf("%w: account holder and number required", domain.ErrInvalidInput)
	}
	session, err := s.GetSession(ctx, linkID)
	if err != nil {
		return domain.Session{}, err
	}
	if input.Version != 0 {
		session.Version = input.Version
	}
	session.Debit = &domain.DebitOrder{
		AccountHolder: strings.TrimSpace(input.AccountHolder),
		IDNumber:      strings.TrimSpace(input.IDNumber),
		BankName:      strings.TrimSpace(input.BankName),
		AccountNumber: strings.TrimSpace(input.AccountNumber),
		AccountType:   strings.TrimSpace(input.AccountType),
		DebitDay:      strings.TrimSpace(input.DebitDay),
	}
	return s.sessions.Save(ctx, session)
}
