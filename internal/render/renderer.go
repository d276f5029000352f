// Package render deterministically produces agreement PDFs from
// session state. Rendering is a pure function of session + terms
// input; concurrent first-renders of the same document are safe and
// merely redundant.
package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

const (
	pageWidth     = 210.0
	pageHeight    = 297.0
	marginX       = 15.0
	marginY       = 15.0
	contentWidth  = pageWidth - 2*marginX
	termsFont     = "Helvetica"
	termsFontSize = 7.0
	termsLineH    = 3.2
	// footerReserve is the vertical space kept for the signature row.
	// Terms lines past this limit are dropped; the single-page layout
	// has no continuation page.
	footerReserve = 45.0
)

type Config struct {
	BrandTitle   string
	BrandContact string
	PDFCacheTTL  time.Duration
	WrapCacheTTL time.Duration
}

type Renderer struct {
	cfg    Config
	terms  map[string]*TermsSource
	blobs  ports.BlobStore
	cache  ports.RenderCache
	logger *slog.Logger
	nowFn  func() time.Time
}

func NewRenderer(cfg Config, terms map[string]*TermsSource, blobs ports.BlobStore, cache ports.RenderCache, logger *slog.Logger) *Renderer {
	if cfg.PDFCacheTTL <= 0 {
		cfg.PDFCacheTTL = 30 * 24 * time.Hour
	}
	if cfg.WrapCacheTTL <= 0 {
		cfg.WrapCacheTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		cfg:    cfg,
		terms:  terms,
		blobs:  blobs,
		cache:  cache,
		logger: logger.With("service", "onboarding", "module", "render"),
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// Render returns the agreement PDF for a session, serving cached bytes
// unchanged when present. The cache is only populated after signing is
// final, so a cached document never goes stale.
func (r *Renderer) Render(ctx context.Context, session domain.Session, agreement string) ([]byte, error) {
	if cached, ok, err := r.cache.GetPDF(ctx, session.LinkID, agreement); err == nil && ok {
		return cached, nil
	}

	signatureKey := session.SignatureKey(agreement)
	if signatureKey == "" {
		return nil, fmt.Errorf("%w: %s agreement has no signature", domain.ErrSignatureRequired, agreement)
	}

	termsText := TermsPlaceholder
	if src, ok := r.terms[agreement]; ok && src != nil {
		termsText = src.Text(ctx)
	}

	data, err := r.build(ctx, session, agreement, termsText, signatureKey)
	if err != nil {
		return nil, err
	}
	if err := r.cache.PutPDF(ctx, session.LinkID, agreement, data, r.cfg.PDFCacheTTL); err != nil {
		r.logger.WarnContext(ctx, "pdf cache write failed",
			"operation", "render_agreement", "outcome", "degraded",
			"link_id", session.LinkID, "error", err.Error())
	}
	return data, nil
}

func (r *Renderer) build(ctx context.Context, session domain.Session, agreement, termsText, signatureKey string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// A fixed creation date keeps repeated renders byte-identical.
	pdf.SetCreationDate(session.CreatedAt.UTC())
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentWidth, 8, r.cfg.BrandTitle, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentWidth, 5, r.cfg.BrandContact, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentWidth, 6, agreementTitle(agreement), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	r.detailColumns(pdf, session, agreement)
	pdf.Ln(4)

	r.termsBlock(ctx, pdf, termsText, agreement, session.LinkID)

	if err := r.footer(ctx, pdf, session, signatureKey); err != nil {
		return nil, err
	}

	r.securityAuditPage(pdf, session)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s agreement: %w", agreement, err)
	}
	return buf.Bytes(), nil
}

func agreementTitle(agreement string) string {
	if agreement == domain.AgreementDebit {
		return "Debit Order Instruction"
	}
	return "Master Service Agreement"
}

// detailColumns lays out the two-column client / instrument block.
func (r *Renderer) detailColumns(pdf *gofpdf.Fpdf, session domain.Session, agreement string) {
	left := []kv{
		{"Name", session.Edits["name"]},
		{"Email", session.Edits["email"]},
		{"Phone", session.Edits["phone"]},
		{"Street", session.Edits["street"]},
		{"City", session.Edits["city"]},
		{"Postal code", session.Edits["zip"]},
	}
	var right []kv
	if agreement == domain.AgreementDebit && session.Debit != nil {
		right = []kv{
			{"Account holder", session.Debit.AccountHolder},
			{"ID number", session.Debit.IDNumber},
			{"Bank", session.Debit.BankName},
			{"Account number", session.Debit.AccountNumber},
			{"Account type", session.Debit.AccountType},
			{"Debit day", session.Debit.DebitDay},
		}
	} else {
		right = []kv{
			{"Service", session.Edits["service"]},
			{"Reference", session.ExternalID},
		}
	}

	colWidth := contentWidth / 2
	top := pdf.GetY()
	renderColumn(pdf, marginX, top, colWidth-4, "Client details", left)
	leftBottom := pdf.GetY()
	renderColumn(pdf, marginX+colWidth, top, colWidth-4, "Instrument details", right)
	if leftBottom > pdf.GetY() {
		pdf.SetY(leftBottom)
	}
}

type kv struct {
	label string
	value string
}

func renderColumn(pdf *gofpdf.Fpdf, x, y, width float64, heading string, rows []kv) {
	pdf.SetXY(x, y)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(width, 5, heading, "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, row := range rows {
		value := row.value
		if value == "" {
			value = "-"
		}
		pdf.SetX(x)
		pdf.CellFormat(width, 4, row.label+": "+value, "", 2, "L", false, 0, "")
	}
}

// termsBlock word-wraps and renders the legal terms until vertical
// space runs out. Text past the footer reservation is dropped.
func (r *Renderer) termsBlock(ctx context.Context, pdf *gofpdf.Fpdf, text, agreement, linkID string) {
	pdf.SetFont(termsFont, "", termsFontSize)

	key := WrapCacheKey(text, termsFont, termsFontSize, contentWidth, agreement)
	lines, ok, err := r.cache.GetLines(ctx, key)
	if err != nil || !ok {
		lines = WrapText(text, contentWidth, pdf.GetStringWidth)
		if putErr := r.cache.PutLines(ctx, key, lines, r.cfg.WrapCacheTTL); putErr != nil {
			r.logger.WarnContext(ctx, "wrap cache write failed",
				"operation", "render_agreement", "outcome", "degraded",
				"link_id", linkID, "error", putErr.Error())
		}
	}

	limit := pageHeight - marginY - footerReserve
	dropped := 0
	for _, line := range lines {
		if pdf.GetY()+termsLineH > limit {
			dropped++
			continue
		}
		pdf.CellFormat(contentWidth, termsLineH, line, "", 1, "L", false, 0, "")
	}
	if dropped > 0 {
		r.logger.WarnContext(ctx, "terms truncated at page break",
			"operation", "render_agreement", "outcome", "degraded",
			"link_id", linkID, "agreement", agreement, "dropped_lines", dropped)
	}
}

// footer renders name, the embedded signature image and the signing date.
func (r *Renderer) footer(ctx context.Context, pdf *gofpdf.Fpdf, session domain.Session, signatureKey string) error {
	signature, err := r.blobs.Get(ctx, signatureKey)
	if err != nil {
		return fmt.Errorf("%w: load signature image", domain.ErrNotFound)
	}

	y := pageHeight - marginY - footerReserve + 6
	pdf.SetXY(marginX, y)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(60, 5, "Signed by: "+session.Edits["name"], "", 0, "L", false, 0, "")

	imgName := "signature_" + session.LinkID + "_" + signatureKey
	pdf.RegisterImageOptionsReader(imgName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(signature))
	pdf.ImageOptions(imgName, marginX+65, y-4, 45, 18, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetXY(marginX+120, y)
	pdf.CellFormat(60, 5, "Date: "+session.UpdatedAt.UTC().Format("02 January 2006"), "", 0, "R", false, 0, "")
	return nil
}

// securityAuditPage renders the fixed second-page audit block from the
// metadata captured at the first progress write.
func (r *Renderer) securityAuditPage(pdf *gofpdf.Fpdf, session domain.Session) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentWidth, 7, "Security Audit", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)

	rows := map[string]string{
		"Generated":  session.UpdatedAt.UTC().Format(time.RFC3339),
		"Link":       session.LinkID,
		"IP address": "-",
		"Location":   "-",
		"User agent": "-",
		"Captured":   "-",
	}
	if meta := session.AuditMeta; meta != nil {
		if meta.IP != "" {
			rows["IP address"] = meta.IP
		}
		if meta.ApproxGeo != "" {
			rows["Location"] = meta.ApproxGeo
		}
		if meta.UserAgent != "" {
			rows["User agent"] = meta.UserAgent
		}
		if !meta.CapturedAt.IsZero() {
			rows["Captured"] = meta.CapturedAt.UTC().Format(time.RFC3339)
		}
	}
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pdf.CellFormat(contentWidth, 5, k+": "+rows[k], "", 1, "L", false, 0, "")
	}
}
