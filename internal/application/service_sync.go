package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

// crmPayload builds the CRM write body from the session's edited data,
// banking details and uploaded documents (as public blob URLs).
func (s *Service) crmPayload(session domain.Session) map[string]any {
	payload := map[string]any{}
	for field, value := range session.Edits {
		if value != "" {
			payload[field] = value
		}
	}
	if session.Debit != nil {
		payload["debit_order"] = map[string]string{
			"account_holder": session.Debit.AccountHolder,
			"id_number":      session.Debit.IDNumber,
			"bank_name":      session.Debit.BankName,
			"account_number": session.Debit.AccountNumber,
			"account_type":   session.Debit.AccountType,
			"debit_day":      session.Debit.DebitDay,
		}
	}
	if len(session.Uploads) > 0 {
		attachments := make([]string, 0, len(session.Uploads))
		for _, upload := range session.Uploads {
			attachments = append(attachments, s.blobs.PublicURL(upload.Key))
		}
		payload["attachments"] = attachments
	}
	return payload
}

// matchesCandidate applies the candidate-search rules: email equals
// exactly, phone equals exactly, or name equals/contains
// case-insensitively.
func matchesCandidate(candidate ports.Profile, email, phone, name string) bool {
	if email != "" && strings.EqualFold(candidate.Email, email) {
		return true
	}
	if phone != "" && candidate.Phone == phone {
		return true
	}
	if name != "" {
		candidateName := strings.ToLower(candidate.Name)
		query := strings.ToLower(name)
		if candidateName != "" && (candidateName == query || strings.Contains(candidateName, query)) {
			return true
		}
	}
	return false
}

// Candidates fetches the CRM's record list and filters it against the
// session's edited values. When nothing matches, the specially named
// re-use placeholder record is offered as a fallback target instead.
func (s *Service) Candidates(ctx context.Context, linkID string) (CandidateSet, error) {
	session, err := s.GetSession(ctx, linkID)
	if err != nil {
		return CandidateSet{}, err
	}
	leads, err := s.crm.ListLeads(ctx)
	if err != nil {
		return CandidateSet{}, err
	}

	email := strings.TrimSpace(session.Edits["email"])
	name := strings.TrimSpace(session.Edits["name"])
	phone, _ := domain.NormalizePhone(session.Edits["phone"])

	var out CandidateSet
	for _, lead := range leads {
		if matchesCandidate(lead, email, phone, name) {
			out.Matches = append(out.Matches, lead)
		}
	}
	if len(out.Matches) == 0 {
		for i := range leads {
			if strings.EqualFold(leads[i].Name, s.cfg.ReusePlaceholderName) {
				out.Reuse = &leads[i]
				break
			}
		}
	}
	return out, nil
}

// Reconcile executes the operator's chosen write: create a new lead,
// overwrite a specific candidate, or reuse the placeholder record.
// When the target's entity kind cannot be determined, both the
// customer and lead endpoints are attempted and each outcome is
// recorded independently; there is no rollback.
func (s *Service) Reconcile(ctx context.Context, linkID, mode, targetID string) (ReconcileResult, error) {
	session, err := s.GetSession(ctx, linkID)
	if err != nil {
		return ReconcileResult{}, err
	}
	payload := s.crmPayload(session)

	var result ReconcileResult
	switch mode {
	case ModeCreate:
		id, createErr := s.crm.CreateLead(ctx, payload)
		attempt := domain.PushAttempt{Endpoint: s.crm.LeadEndpoint("new"), OK: createErr == nil}
		if createErr != nil {
			attempt.Error = createErr.Error()
		}
		result.Attempts = append(result.Attempts, attempt)
		if createErr != nil {
			break
		}
		result.OK = true
		result.ID = id
		result.Link = s.crm.LeadEndpoint(id)

	case ModeOverwrite, ModeReuse:
		if strings.TrimSpace(targetID) == "" {
			return ReconcileResult{}, fmt.Errorf("%w: target id required for %s", domain.ErrInvalidInput, mode)
		}
		result = s.pushToEntity(ctx, targetID, payload)

	default:
		return ReconcileResult{}, fmt.Errorf("%w: unknown reconcile mode %q", domain.ErrInvalidInput, mode)
	}

	if _, saveErr := s.mutate(ctx, linkID, func(row *domain.Session) error {
		row.PushAttempts = append(row.PushAttempts, result.Attempts...)
		return nil
	}); saveErr != nil {
		s.logger.WarnContext(ctx, "recording push attempts failed",
			"operation", "reconcile", "outcome", "degraded",
			"link_id", linkID, "error", saveErr.Error())
	}
	for _, attempt := range result.Attempts {
		s.auditAppend(ctx, "reconcile_"+mode, linkID, "", fmt.Sprintf("endpoint=%s ok=%t %s", attempt.Endpoint, attempt.OK, attempt.Error))
	}
	return result, nil
}

// pushToEntity updates the chosen record, probing its entity kind
// first. Undetermined kind updates both shapes.
func (s *Service) pushToEntity(ctx context.Context, id string, payload map[string]any) ReconcileResult {
	var result ReconcileResult
	kind := s.crm.DetectKind(ctx, id)

	push := func(endpoint string, fn func() error) {
		attempt := domain.PushAttempt{Endpoint: endpoint}
		if err := fn(); err != nil {
			attempt.Error = err.Error()
		} else {
			attempt.OK = true
		}
		result.Attempts = append(result.Attempts, attempt)
		if attempt.OK && !result.OK {
			result.OK = true
			result.ID = id
			result.Link = endpoint
		}
	}

	switch kind {
	case ports.EntityCustomer:
		push(s.crm.CustomerEndpoint(id), func() error { return s.crm.UpdateCustomer(ctx, id, payload) })
	case ports.EntityLead:
		push(s.crm.LeadEndpoint(id), func() error { return s.crm.UpdateLead(ctx, id, payload) })
	default:
		push(s.crm.CustomerEndpoint(id), func() error { return s.crm.UpdateCustomer(ctx, id, payload) })
		push(s.crm.LeadEndpoint(id), func() error { return s.crm.UpdateLead(ctx, id, payload) })
	}
	return result
}
