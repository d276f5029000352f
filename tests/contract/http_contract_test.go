package contract

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	httpadapter "github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/http"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/contracts"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
)

func TestGenLinkHTTPContract(t *testing.T) {
	t.Parallel()

	f := newContractFixture(t)

	res := f.postJSON(t, "/api/admin/genlink", contracts.GenLinkRequest{ID: "319"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", res.Code, res.Body.String())
	}
	var body contracts.GenLinkResponse
	decode(t, res, &body)
	if !body.OK || body.ExternalID != "319" || body.Status != domain.StatusInProgress {
		t.Fatalf("unexpected genlink body %+v", body)
	}
	if !regexp.MustCompile(`^319_[0-9a-z]{8}$`).MatchString(body.LinkID) {
		t.Fatalf("unexpected link id %q", body.LinkID)
	}
}

func TestOTPSendWithoutNumberHTTPContract(t *testing.T) {
	t.Parallel()

	f := newContractFixture(t)
	linkID := f.genLink(t, "319")

	res := f.postJSON(t, "/api/otp/send", contracts.OTPSendRequest{LinkID: linkID})
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body %s", res.Code, res.Body.String())
	}
	var body contracts.ErrorResponse
	decode(t, res, &body)
	if body.OK {
		t.Fatalf("error envelope must carry ok=false")
	}
	if body.Error != "No WhatsApp number on file" {
		t.Fatalf("error message must be exact, got %q", body.Error)
	}
}

func TestUnknownSessionHTTPContract(t *testing.T) {
	t.Parallel()

	f := newContractFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/session/319_zzzzzzzz", nil)
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
	var body contracts.ErrorResponse
	decode(t, res, &body)
	if body.OK {
		t.Fatalf("error envelope must carry ok=false")
	}
}

func TestUploadHTTPContract(t *testing.T) {
	t.Parallel()

	f := newContractFixture(t)
	linkID := f.genLink(t, "319")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("link_id", linkID); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := form.WriteField("label", "identity"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := form.CreateFormFile("file", "id copy.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("pdf-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/onboard/upload", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", res.Code, res.Body.String())
	}
	var body contracts.UploadResponse
	decode(t, res, &body)
	if !body.OK || body.Entry.SizeBytes != int64(len("pdf-bytes")) || body.Entry.Label != "identity" {
		t.Fatalf("unexpected upload body %+v", body)
	}
	if body.Entry.OriginalName != "id copy.pdf" {
		t.Fatalf("original name must be preserved, got %q", body.Entry.OriginalName)
	}
}

func TestSignFlowAndPDFHTTPContract(t *testing.T) {
	t.Parallel()

	f := newContractFixture(t)
	linkID := f.genLink(t, "319")

	res := f.postJSON(t, "/api/progress/"+linkID, contracts.ProgressRequest{
		Edits: map[string]string{"name": "Ana de Wet", "email": "ana@example.test"},
	})
	if res.Code != http.StatusOK {
		t.Fatalf("progress save failed: %d %s", res.Code, res.Body.String())
	}

	// Requesting the document before signing conflicts.
	req := httptest.NewRequest(http.MethodGet, "/pdf/msa/"+linkID, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("unsigned pdf fetch should 409, got %d", rec.Code)
	}

	res = f.postJSON(t, "/api/sign", contracts.SignRequest{LinkID: linkID, Signature: signaturePNG(t)})
	if res.Code != http.StatusOK {
		t.Fatalf("sign failed: %d %s", res.Code, res.Body.String())
	}
	var signed contracts.SessionResponse
	decode(t, res, &signed)
	if signed.Session.Status != domain.StatusPending {
		t.Fatalf("status after sign = %q", signed.Session.Status)
	}

	fetch := func() []byte {
		req := httptest.NewRequest(http.MethodGet, "/pdf/msa/"+linkID, nil)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("pdf fetch failed: %d %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Fatalf("content type = %q", ct)
		}
		return rec.Body.Bytes()
	}
	first := fetch()
	second := fetch()
	if !bytes.Equal(first, second) {
		t.Fatalf("repeated pdf fetches must be byte-identical")
	}
}

func TestApproveHTTPContract(t *testing.T) {
	t.Parallel()

	f := newContractFixture(t)
	linkID := f.genLink(t, "319")

	res := f.postJSON(t, "/api/sign", contracts.SignRequest{LinkID: linkID, Signature: signaturePNG(t)})
	if res.Code != http.StatusOK {
		t.Fatalf("sign failed: %d %s", res.Code, res.Body.String())
	}

	res = f.postJSON(t, "/api/admin/approve", contracts.AdminActionRequest{LinkID: linkID})
	if res.Code != http.StatusOK {
		t.Fatalf("approve failed: %d %s", res.Code, res.Body.String())
	}
	var body contracts.ApproveResponse
	decode(t, res, &body)
	if !body.OK || body.Status != domain.StatusApproved {
		t.Fatalf("unexpected approve body %+v", body)
	}
	// Unknown entity kind pushes both shapes plus one render attempt.
	if len(body.Attempts) != 3 {
		t.Fatalf("expected 3 push attempts, got %+v", body.Attempts)
	}
	for _, attempt := range body.Attempts {
		if attempt.Endpoint == "" {
			t.Fatalf("attempt must name its endpoint: %+v", attempt)
		}
	}
}

func TestAdminSurfaceNetworkGuard(t *testing.T) {
	t.Parallel()

	f := newContractFixture(t)
	_, block, err := net.ParseCIDR("10.0.0.0/8")
	if err != nil {
		t.Fatalf("parse cidr: %v", err)
	}
	guarded := httpadapter.NewRouter(f.service, []*net.IPNet{block}, f.tokens)

	body, _ := json.Marshal(contracts.GenLinkRequest{ID: "319"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/genlink", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:40000"
	res := httptest.NewRecorder()
	guarded.ServeHTTP(res, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("outside-network caller should 403, got %d", res.Code)
	}

	// Same caller with a valid staff token is admitted.
	token, err := f.tokens.Issue("staff-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/api/admin/genlink", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.RemoteAddr = "192.0.2.10:40000"
	res = httptest.NewRecorder()
	guarded.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("staff token caller should be admitted, got %d %s", res.Code, res.Body.String())
	}

	// A caller inside the allowed range needs no token.
	req = httptest.NewRequest(http.MethodPost, "/api/admin/genlink", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.1.2.3:40000"
	res = httptest.NewRecorder()
	guarded.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("in-network caller should be admitted, got %d", res.Code)
	}
}

func TestVersionConflictHTTPContract(t *testing.T) {
	t.Parallel()

	f := newContractFixture(t)
	linkID := f.genLink(t, "319")

	res := f.postJSON(t, "/api/progress/"+linkID, contracts.ProgressRequest{
		Edits:   map[string]string{"name": "Ana"},
		Version: 1,
	})
	if res.Code != http.StatusOK {
		t.Fatalf("first save failed: %d %s", res.Code, res.Body.String())
	}

	res = f.postJSON(t, "/api/progress/"+linkID, contracts.ProgressRequest{
		Edits:   map[string]string{"name": "Bea"},
		Version: 1,
	})
	if res.Code != http.StatusConflict {
		t.Fatalf("stale version should 409, got %d %s", res.Code, res.Body.String())
	}
	var body contracts.ErrorResponse
	decode(t, res, &body)
	if body.OK {
		t.Fatalf("error envelope must carry ok=false")
	}
}

func decode(t *testing.T, res *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func (f *contractFixture) postJSON(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func (f *contractFixture) genLink(t *testing.T, externalID string) string {
	t.Helper()
	res := f.postJSON(t, "/api/admin/genlink", contracts.GenLinkRequest{ID: externalID})
	if res.Code != http.StatusOK {
		t.Fatalf("genlink failed: %d %s", res.Code, res.Body.String())
	}
	var body contracts.GenLinkResponse
	decode(t, res, &body)
	if body.LinkID == "" {
		t.Fatalf("empty link id in %s", res.Body.String())
	}
	return body.LinkID
}
