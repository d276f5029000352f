package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

// SendPasscode resolves the destination number, generates a 6-digit
// code, persists it with the purpose-specific TTL and dispatches it as
// a templated message. Phone resolution order: the session's edited
// phone field first, then the external CRM record.
func (s *Service) SendPasscode(ctx context.Context, linkID string, purpose ports.PasscodePurpose) error {
	session, err := s.GetSession(ctx, linkID)
	if err != nil {
		return err
	}

	phone, _ := domain.NormalizePhone(session.Edits["phone"])
	if phone == "" && s.crm != nil {
		resolved, resolveErr := s.crm.ResolvePhone(ctx, session.ExternalID)
		if resolveErr != nil {
			s.logger.WarnContext(ctx, "crm phone resolution failed",
				"operation", "send_passcode", "outcome", "degraded",
				"link_id", linkID, "error", resolveErr.Error())
		}
		phone = resolved
	}
	if phone == "" {
		return domain.ErrNoNumberOnFile
	}

	code, err := newPasscode()
	if err != nil {
		return err
	}
	ttl := s.cfg.CustomerOTPTTL
	if purpose == ports.PasscodeStaff {
		ttl = s.cfg.StaffOTPTTL
	}
	if err := s.passcodes.Put(ctx, linkID, purpose, code, ttl); err != nil {
		return err
	}
	if err := s.messages.SendTemplate(ctx, phone, s.cfg.OTPTemplate, []string{code}); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "passcode dispatched",
		"operation", "send_passcode", "outcome", "success",
		"link_id", linkID, "purpose", string(purpose))
	return nil
}

// VerifyPasscode succeeds iff a non-expired stored code exists and the
// supplied code matches exactly as a string. A staff verification
// consumes the code and yields a signed staff token; a customer
// verification marks the session verified and lets the code expire
// naturally.
func (s *Service) VerifyPasscode(ctx context.Context, linkID string, purpose ports.PasscodePurpose, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("%w: code required", domain.ErrInvalidInput)
	}
	stored, ok, err := s.passcodes.Get(ctx, linkID, purpose)
	if err != nil {
		return "", err
	}
	if !ok || stored != code {
		return "", fmt.Errorf("%w: invalid or expired code", domain.ErrInvalidInput)
	}

	if purpose == ports.PasscodeStaff {
		if err := s.passcodes.Delete(ctx, linkID, purpose); err != nil {
			s.logger.WarnContext(ctx, "staff passcode delete failed",
				"operation", "verify_passcode", "outcome", "degraded",
				"link_id", linkID, "error", err.Error())
		}
		if s.tokens == nil {
			return "", nil
		}
		return s.tokens.Issue(linkID)
	}

	if _, err := s.mutate(ctx, linkID, func(session *domain.Session) error {
		session.OTPVerified = true
		return nil
	}); err != nil {
		return "", err
	}
	return "", nil
}

// VerifyChallenge validates the bot-challenge token. Provider or
// network failure degrades to "not secured" rather than raising a hard
// error; only explicit success flips the session flag.
func (s *Service) VerifyChallenge(ctx context.Context, linkID, token, remoteIP string) (bool, error) {
	if _, err := s.GetSession(ctx, linkID); err != nil {
		return false, err
	}
	ok, err := s.challenge.Verify(ctx, token, remoteIP)
	if err != nil {
		s.logger.WarnContext(ctx, "bot challenge verification failed",
			"operation", "verify_challenge", "outcome", "degraded",
			"link_id", linkID, "error", err.Error())
		return false, nil
	}
	if !ok {
		return false, nil
	}
	if _, err := s.mutate(ctx, linkID, func(session *domain.Session) error {
		session.HumanVerified = true
		return nil
	}); err != nil {
		return false, err
	}
	return true, nil
}
