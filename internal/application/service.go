package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

// AgreementRenderer produces the cached agreement PDF for a session.
type AgreementRenderer interface {
	Render(ctx context.Context, session domain.Session, agreement string) ([]byte, error)
}

type Service struct {
	cfg       Config
	sessions  ports.SessionStore
	passcodes ports.PasscodeStore
	blobs     ports.BlobStore
	crm       ports.CRMClient
	messages  ports.MessageSender
	challenge ports.ChallengeVerifier
	tokens    ports.StaffTokenIssuer
	events    ports.EventPublisher
	audit     ports.AuditRepository
	renderer  AgreementRenderer
	rendered  ports.RenderCache
	logger    *slog.Logger
	nowFn     func() time.Time
}

type Dependencies struct {
	Config    Config
	Sessions  ports.SessionStore
	Passcodes ports.PasscodeStore
	Blobs     ports.BlobStore
	CRM       ports.CRMClient
	Messages  ports.MessageSender
	Challenge ports.ChallengeVerifier
	Tokens    ports.StaffTokenIssuer
	Events    ports.EventPublisher
	Audit     ports.AuditRepository
	Renderer  AgreementRenderer
	// RenderCache is shared with the renderer so session deletion can
	// drop cached documents too.
	RenderCache ports.RenderCache
	Logger      *slog.Logger
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.CustomerOTPTTL <= 0 {
		cfg.CustomerOTPTTL = 10 * time.Minute
	}
	if cfg.StaffOTPTTL <= 0 {
		cfg.StaffOTPTTL = 15 * time.Minute
	}
	if cfg.OTPTemplate == "" {
		cfg.OTPTemplate = "onboarding_otp"
	}
	if cfg.ReusePlaceholderName == "" {
		cfg.ReusePlaceholderName = "RE-USE"
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		sessions:  deps.Sessions,
		passcodes: deps.Passcodes,
		blobs:     deps.Blobs,
		crm:       deps.CRM,
		messages:  deps.Messages,
		challenge: deps.Challenge,
		tokens:    deps.Tokens,
		events:    deps.Events,
		audit:     deps.Audit,
		renderer:  deps.Renderer,
		rendered:  deps.RenderCache,
		logger:    logger.With("service", "onboarding", "module", "application"),
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

// mutate runs a read-modify-write against the session store, retrying
// a bounded number of times when a concurrent writer bumped the
// version first. Client-facing saves that carry their own version
// token bypass this and fail fast instead.
func (s *Service) mutate(ctx context.Context, linkID string, fn func(*domain.Session) error) (domain.Session, error) {
	for attempt := 0; attempt < 3; attempt++ {
		session, err := s.sessions.Get(ctx, linkID)
		if err != nil {
			return domain.Session{}, err
		}
		if err := fn(&session); err != nil {
			return domain.Session{}, err
		}
		saved, err := s.sessions.Save(ctx, session)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		return saved, err
	}
	return domain.Session{}, domain.ErrVersionConflict
}

func (s *Service) publish(ctx context.Context, eventType, linkID string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, linkID, payload); err != nil {
		s.logger.WarnContext(ctx, "event publish failed",
			"operation", "publish_event", "outcome", "degraded",
			"event_type", eventType, "link_id", linkID, "error", err.Error())
	}
}

func (s *Service) auditAppend(ctx context.Context, action, linkID, actorIP, detail string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Append(ctx, domain.AuditEvent{
		AuditID:    uuid.NewString(),
		Action:     action,
		LinkID:     linkID,
		ActorIP:    actorIP,
		Detail:     detail,
		OccurredAt: s.nowFn(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit append failed",
			"operation", "audit_append", "outcome", "degraded",
			"action", action, "link_id", linkID, "error", err.Error())
	}
}

// newPasscode generates a 6-digit numeric one-time code.
func newPasscode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate passcode: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
