package contract

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/blob"
	httpadapter "github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/http"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/memory"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/security"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/application"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/render"
)

// contractCRM is a permissive stub: no record resolves to a phone
// number, entity kinds are never determinable and every write succeeds.
type contractCRM struct{}

func (contractCRM) DetectKind(context.Context, string) string { return ports.EntityUnknown }
func (contractCRM) GetProfile(_ context.Context, id string) (ports.Profile, error) {
	return ports.Profile{ID: id}, nil
}
func (contractCRM) ResolvePhone(context.Context, string) (string, error) { return "", nil }
func (contractCRM) ListLeads(context.Context) ([]ports.Profile, error)   { return nil, nil }
func (contractCRM) CreateLead(context.Context, map[string]any) (string, error) {
	return "lead-1", nil
}
func (contractCRM) UpdateLead(context.Context, string, map[string]any) error     { return nil }
func (contractCRM) UpdateCustomer(context.Context, string, map[string]any) error { return nil }
func (contractCRM) UploadDocument(context.Context, string, string, string) error { return nil }
func (contractCRM) LeadEndpoint(id string) string                                { return "/admin/crm/leads/" + id }
func (contractCRM) CustomerEndpoint(id string) string                            { return "/admin/customers/" + id }

type contractSender struct{}

func (contractSender) SendTemplate(context.Context, string, string, []string) error { return nil }

type contractChallenge struct{}

func (contractChallenge) Verify(context.Context, string, string) (bool, error) { return true, nil }

type contractFixture struct {
	service *application.Service
	router  http.Handler
	tokens  ports.StaffTokenIssuer
}

func newContractFixture(t *testing.T) *contractFixture {
	t.Helper()

	blobs, err := blob.NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("init blob store: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := memory.NewRenderCache()
	renderer := render.NewRenderer(render.Config{
		BrandTitle:   "Vinet Internet Solutions",
		BrandContact: "www.vinet.co.za",
	}, nil, blobs, cache, logger)
	tokens := security.NewTokenIssuer("contract-test-secret", time.Hour)

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			CustomerOTPTTL: 10 * time.Minute,
			StaffOTPTTL:    15 * time.Minute,
		},
		Sessions:    memory.NewSessionStore(),
		Passcodes:   memory.NewPasscodeStore(),
		Blobs:       blobs,
		CRM:         contractCRM{},
		Messages:    contractSender{},
		Challenge:   contractChallenge{},
		Tokens:      tokens,
		Audit:       memory.NewAuditRepository(),
		Renderer:    renderer,
		RenderCache: cache,
		Logger:      logger,
	})
	return &contractFixture{
		service: service,
		router:  httpadapter.NewRouter(service, nil, tokens),
		tokens:  tokens,
	}
}

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
