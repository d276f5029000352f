package unit

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/blob"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/memory"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/security"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/application"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/render"
)

type fakeCRM struct {
	mu sync.Mutex

	phone string
	leads []ports.Profile
	kinds map[string]string

	updateCustomerErr error
	updateLeadErr     error
	uploadErr         error

	customerUpdates []string
	leadUpdates     []string
	created         []map[string]any
	documents       []string
}

func (c *fakeCRM) DetectKind(_ context.Context, id string) string {
	if kind, ok := c.kinds[id]; ok {
		return kind
	}
	return ports.EntityUnknown
}

func (c *fakeCRM) GetProfile(_ context.Context, id string) (ports.Profile, error) {
	return ports.Profile{ID: id}, nil
}

func (c *fakeCRM) ResolvePhone(_ context.Context, _ string) (string, error) {
	return c.phone, nil
}

func (c *fakeCRM) ListLeads(_ context.Context) ([]ports.Profile, error) {
	return c.leads, nil
}

func (c *fakeCRM) CreateLead(_ context.Context, payload map[string]any) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, payload)
	return fmt.Sprintf("lead-%d", len(c.created)), nil
}

func (c *fakeCRM) UpdateLead(_ context.Context, id string, _ map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leadUpdates = append(c.leadUpdates, id)
	return c.updateLeadErr
}

func (c *fakeCRM) UpdateCustomer(_ context.Context, id string, _ map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customerUpdates = append(c.customerUpdates, id)
	return c.updateCustomerErr
}

func (c *fakeCRM) UploadDocument(_ context.Context, _, name, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents = append(c.documents, name)
	return c.uploadErr
}

func (c *fakeCRM) LeadEndpoint(id string) string     { return "/admin/crm/leads/" + id }
func (c *fakeCRM) CustomerEndpoint(id string) string { return "/admin/customers/" + id }

type fakeSender struct {
	mu     sync.Mutex
	to     []string
	params [][]string
	err    error
}

func (s *fakeSender) SendTemplate(_ context.Context, to, _ string, params []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.params = append(s.params, params)
	return nil
}

type fakeChallenge struct {
	ok  bool
	err error
}

func (c *fakeChallenge) Verify(_ context.Context, _, _ string) (bool, error) {
	return c.ok, c.err
}

type fixture struct {
	service   *application.Service
	sessions  *memory.SessionStore
	passcodes *memory.PasscodeStore
	cache     *memory.RenderCache
	audit     *memory.AuditRepository
	blobs     *blob.FileStore
	crm       *fakeCRM
	sender    *fakeSender
	challenge *fakeChallenge
	tokens    ports.StaffTokenIssuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	blobs, err := blob.NewFileStore(t.TempDir(), "https://files.example.test")
	if err != nil {
		t.Fatalf("init blob store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := memory.NewRenderCache()
	renderer := render.NewRenderer(render.Config{
		BrandTitle:   "Vinet Internet Solutions",
		BrandContact: "www.vinet.co.za",
	}, nil, blobs, cache, logger)

	f := &fixture{
		sessions:  memory.NewSessionStore(),
		passcodes: memory.NewPasscodeStore(),
		cache:     cache,
		audit:     memory.NewAuditRepository(),
		blobs:     blobs,
		crm:       &fakeCRM{kinds: map[string]string{}},
		sender:    &fakeSender{},
		challenge: &fakeChallenge{},
		tokens:    security.NewTokenIssuer("unit-test-secret", time.Hour),
	}
	f.service = application.NewService(application.Dependencies{
		Config: application.Config{
			CustomerOTPTTL:       10 * time.Minute,
			StaffOTPTTL:          15 * time.Minute,
			OTPTemplate:          "onboarding_otp",
			ReusePlaceholderName: "RE-USE",
		},
		Sessions:    f.sessions,
		Passcodes:   f.passcodes,
		Blobs:       f.blobs,
		CRM:         f.crm,
		Messages:    f.sender,
		Challenge:   f.challenge,
		Tokens:      f.tokens,
		Audit:       f.audit,
		Renderer:    renderer,
		RenderCache: cache,
		Logger:      logger,
	})
	return f
}

// signaturePNG builds a minimal valid PNG and returns it as the data URL
// shape the signature pad posts.
func signaturePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
