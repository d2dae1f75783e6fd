package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/refferq/referral_api/configs"
	"github.com/refferq/referral_api/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:embed templates/statement.html
var statementFS embed.FS

var statementTemplate = template.Must(template.ParseFS(statementFS, "templates/statement.html"))

// StatementGenerator turns a payout into a PDF and stores it. Both steps are
// swappable so the flow can run without a browser or Cloudinary account.
type StatementGenerator struct {
	RenderPDF func(ctx context.Context, html string) ([]byte, error)
	Upload    func(ctx context.Context, pdf []byte, name string) (string, error)
}

func DefaultStatementGenerator() StatementGenerator {
	return StatementGenerator{RenderPDF: generatePDFFromHTML, Upload: uploadToCloudinary}
}

type statementLine struct {
	Date       string
	Customer   string
	Invoice    string
	Amount     string
	Rate       string
	Commission string
}

type statementData struct {
	AffiliateName string
	ReferralCode  string
	PayoutID      string
	Method        string
	IssuedAt      string
	Lines         []statementLine
	Total         string
}

func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func renderStatementHTML(payout models.Payout, transactions []models.Transaction, issuedAt time.Time) (string, error) {
	data := statementData{
		AffiliateName: payout.Affiliate.User.FullName,
		ReferralCode:  payout.Affiliate.ReferralCode,
		PayoutID:      payout.ID.String(),
		Method:        payout.Method,
		IssuedAt:      issuedAt.Format("January 2, 2006"),
		Total:         formatCents(payout.AmountCents),
	}
	for _, t := range transactions {
		invoice := ""
		if t.InvoiceID != nil {
			invoice = *t.InvoiceID
		}
		data.Lines = append(data.Lines, statementLine{
			Date:       t.CreatedAt.Format("2006-01-02"),
			Customer:   t.CustomerName,
			Invoice:    invoice,
			Amount:     formatCents(t.AmountCents),
			Rate:       decimal.NewFromFloat(t.CommissionRate).Mul(hundred).String() + "%",
			Commission: formatCents(t.CommissionCents),
		})
	}

	var renderedHTML bytes.Buffer
	if err := statementTemplate.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

// GeneratePayoutStatement renders, uploads and records the statement of a
// payout. It returns the stored URL.
func GeneratePayoutStatement(ctx context.Context, db *gorm.DB, gen StatementGenerator, payoutID uuid.UUID) (string, error) {
	var payout models.Payout
	if err := db.Preload("Affiliate.User").First(&payout, "id = ?", payoutID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", NewNotFound("Payout not found")
		}
		return "", err
	}

	var transactions []models.Transaction
	if err := db.Where("payout_id = ?", payout.ID).Order("created_at asc").Find(&transactions).Error; err != nil {
		return "", err
	}

	htmlData, err := renderStatementHTML(payout, transactions, time.Now())
	if err != nil {
		return "", fmt.Errorf("render statement: %w", err)
	}
	pdfBytes, err := gen.RenderPDF(ctx, htmlData)
	if err != nil {
		return "", fmt.Errorf("generate statement pdf: %w", err)
	}
	url, err := gen.Upload(ctx, pdfBytes, fmt.Sprintf("%s_%s", payout.AffiliateID, payout.ID))
	if err != nil {
		return "", fmt.Errorf("upload statement: %w", err)
	}

	if err := db.Model(&models.Payout{}).Where("id = ?", payout.ID).Update("statement_url", url).Error; err != nil {
		return "", err
	}
	log.Info().Str("payout_id", payout.ID.String()).Str("url", url).Msg("✅ Payout statement generated")
	return url, nil
}

func generatePDFFromHTML(ctx context.Context, htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(ctx context.Context, fileBytes []byte, name string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploader.UploadParams{
		PublicID:     "statements/" + name,
		Folder:       "refferq_payout_statements",
		ResourceType: "raw",
	})
	if err != nil {
		return "", err
	}
	return uploadResult.SecureURL, nil
}
