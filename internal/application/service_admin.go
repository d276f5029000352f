package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

// GenerateLink mints a fresh onboarding session for an external CRM
// record and returns it. The link identifier embeds the external id.
func (s *Service) GenerateLink(ctx context.Context, externalID, actorIP string) (domain.Session, error) {
	session, err := domain.NewSession(externalID, s.nowFn())
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return domain.Session{}, err
	}
	s.publish(ctx, ports.EventLinkIssued, session.LinkID, map[string]string{"external_id": externalID})
	s.auditAppend(ctx, "genlink", session.LinkID, actorIP, "external_id="+externalID)
	return session, nil
}

// ListSessions maps the operator list modes to session statuses.
func (s *Service) ListSessions(ctx context.Context, mode string) ([]domain.Session, error) {
	var status string
	switch mode {
	case "inprog":
		status = domain.StatusInProgress
	case "pending":
		status = domain.StatusPending
	case "approved":
		status = domain.StatusApproved
	case "rejected":
		status = domain.StatusRejected
	default:
		return nil, fmt.Errorf("%w: unknown list mode %q", domain.ErrInvalidInput, mode)
	}
	return s.sessions.ListByStatus(ctx, status)
}

// Approve pushes the session's data to the CRM, uploads its documents,
// renders any signed agreements and marks the session approved.
// Approval is terminal even when pushes fail: every attempt is
// recorded for the operator to retry manually.
func (s *Service) Approve(ctx context.Context, linkID, actorIP string) (ApproveResult, error) {
	session, err := s.GetSession(ctx, linkID)
	if err != nil {
		return ApproveResult{}, err
	}
	if strings.TrimSpace(session.ExternalID) == "" {
		return ApproveResult{}, fmt.Errorf("%w: session has no external id", domain.ErrInvalidInput)
	}
	if !domain.CanTransition(session.Status, domain.StatusApproved) {
		return ApproveResult{}, fmt.Errorf("%w: cannot approve %s session", domain.ErrConflict, session.Status)
	}

	payload := s.crmPayload(session)
	result := s.pushToEntity(ctx, session.ExternalID, payload)
	attempts := result.Attempts

	for _, upload := range session.Uploads {
		attempt := domain.PushAttempt{Endpoint: "crm documents: " + upload.Key}
		if docErr := s.crm.UploadDocument(ctx, session.ExternalID, upload.OriginalName, s.blobs.PublicURL(upload.Key)); docErr != nil {
			attempt.Error = docErr.Error()
		} else {
			attempt.OK = true
		}
		attempts = append(attempts, attempt)
	}

	for _, agreement := range []string{domain.AgreementMSA, domain.AgreementDebit} {
		if session.SignatureKey(agreement) == "" {
			continue
		}
		attempt := domain.PushAttempt{Endpoint: "render " + agreement}
		if _, renderErr := s.renderer.Render(ctx, session, agreement); renderErr != nil {
			attempt.Error = renderErr.Error()
		} else {
			attempt.OK = true
		}
		attempts = append(attempts, attempt)
	}

	saved, err := s.mutate(ctx, linkID, func(row *domain.Session) error {
		if transitionErr := row.Transition(domain.StatusApproved); transitionErr != nil {
			return transitionErr
		}
		row.PushAttempts = append(row.PushAttempts, attempts...)
		return nil
	})
	if err != nil {
		return ApproveResult{}, err
	}

	s.publish(ctx, ports.EventSessionApproved, linkID, map[string]any{"attempts": len(attempts)})
	s.auditAppend(ctx, "approve", linkID, actorIP, fmt.Sprintf("attempts=%d", len(attempts)))
	for _, attempt := range attempts {
		s.auditAppend(ctx, "push_attempt", linkID, actorIP, fmt.Sprintf("endpoint=%s ok=%t %s", attempt.Endpoint, attempt.OK, attempt.Error))
	}
	return ApproveResult{Session: saved, Attempts: attempts}, nil
}

// Reject marks a pending session rejected with a truncated operator
// reason. The record is retained until explicit deletion.
func (s *Service) Reject(ctx context.Context, linkID, reason, actorIP string) (domain.Session, error) {
	saved, err := s.mutate(ctx, linkID, func(row *domain.Session) error {
		return row.Reject(reason)
	})
	if err != nil {
		return domain.Session{}, err
	}
	s.publish(ctx, ports.EventSessionRejected, linkID, map[string]string{"reason": saved.RejectReason})
	s.auditAppend(ctx, "reject", linkID, actorIP, saved.RejectReason)
	return saved, nil
}

// Delete removes a session and cascades over every blob key it
// references. Only the admin surface may delete sessions.
func (s *Service) Delete(ctx context.Context, linkID, actorIP string) error {
	if _, err := s.GetSession(ctx, linkID); err != nil {
		return err
	}
	for _, prefix := range []string{
		"uploads/" + linkID,
		"agreements/" + linkID,
		"debit_agreements/" + linkID,
	} {
		if err := s.blobs.DeletePrefix(ctx, prefix); err != nil {
			s.logger.WarnContext(ctx, "blob cascade delete failed",
				"operation", "delete_session", "outcome", "degraded",
				"link_id", linkID, "prefix", prefix, "error", err.Error())
		}
	}
	if s.rendered != nil {
		for _, agreement := range []string{domain.AgreementMSA, domain.AgreementDebit} {
			_ = s.rendered.DeletePDF(ctx, linkID, agreement)
		}
	}
	if err := s.sessions.Delete(ctx, linkID); err != nil {
		return err
	}
	s.publish(ctx, ports.EventSessionDeleted, linkID, nil)
	s.auditAppend(ctx, "delete", linkID, actorIP, "")
	return nil
}
