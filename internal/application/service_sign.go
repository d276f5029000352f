package application

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

// decodeSignature accepts a PNG data URL captured by the signature pad.
func decodeSignature(dataURL string) ([]byte, error) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(dataURL, prefix) {
		return nil, fmt.Errorf("%w: signature must be a PNG data URL", domain.ErrInvalidInput)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed signature payload", domain.ErrInvalidInput)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty signature payload", domain.ErrInvalidInput)
	}
	return raw, nil
}

func signatureBlobKey(linkID, agreement string) string {
	if agreement == domain.AgreementDebit {
		return "debit_agreements/" + linkID + "/signature.png"
	}
	return "agreements/" + linkID + "/signature.png"
}

// SignAgreement stores the captured signature image and marks the
// agreement signed. Signing is what moves an in_progress session to
// pending; a second signature for the same agreement type conflicts.
func (s *Service) SignAgreement(ctx context.Context, linkID, agreement, dataURL string) (domain.Session, error) {
	if agreement != domain.AgreementMSA && agreement != domain.AgreementDebit {
		return domain.Session{}, fmt.Errorf("%w: unknown agreement type %q", domain.ErrInvalidInput, agreement)
	}
	signature, err := decodeSignature(dataURL)
	if err != nil {
		return domain.Session{}, err
	}

	// Reject before writing the blob so a conflicting re-sign cannot
	// replace the stored image.
	session, err := s.GetSession(ctx, linkID)
	if err != nil {
		return domain.Session{}, err
	}
	if session.SignatureKey(agreement) != "" {
		return domain.Session{}, fmt.Errorf("%w: %s agreement already signed", domain.ErrConflict, agreement)
	}

	key := signatureBlobKey(linkID, agreement)
	if err := s.blobs.Put(ctx, key, signature); err != nil {
		return domain.Session{}, err
	}

	saved, err := s.mutate(ctx, linkID, func(session *domain.Session) error {
		return session.Sign(agreement, key)
	})
	if err != nil {
		return domain.Session{}, err
	}
	s.publish(ctx, ports.EventAgreementSigned, linkID, map[string]string{"agreement": agreement})
	s.logger.InfoContext(ctx, "agreement signed",
		"operation", "sign_agreement", "outcome", "success",
		"link_id", linkID, "agreement", agreement, "status", saved.Status)
	return saved, nil
}

// RenderAgreement returns the agreement PDF, byte-identical across
// calls once cached. Requesting a document before its signature exists
// is a conflict, not a partial render.
func (s *Service) RenderAgreement(ctx context.Context, linkID, agreement string) ([]byte, error) {
	session, err := s.GetSession(ctx, linkID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(ctx, session, agreement)
}
