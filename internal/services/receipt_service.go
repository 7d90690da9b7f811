package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"mandirdaan/internal/common"
	"mandirdaan/internal/models"
	"mandirdaan/internal/repositories"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

const receiptLinkTTL = 24 * time.Hour

type ReceiptDocument struct {
	FileName string
	Content  []byte
	Donation *models.Donation
}

type PublishedReceipt struct {
	ReceiptNumber string    `json:"receiptNumber"`
	URL           string    `json:"url"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// ReceiptService renders printable receipts and publishes them to object storage.
type ReceiptService interface {
	Render(ctx context.Context, tenantID, donationID uuid.UUID) (*ReceiptDocument, error)
	Publish(ctx context.Context, tenantID, donationID uuid.UUID) (*PublishedReceipt, error)
}

type receiptService struct {
	donationRepo repositories.DonationRepository
	tenantRepo   repositories.TenantRepository
	storage      ObjectStorage
	bucket       string
	now          func() time.Time
}

// NewReceiptService accepts a nil storage; Publish then reports the store
// as unavailable while Render keeps working.
func NewReceiptService(donationRepo repositories.DonationRepository, tenantRepo repositories.TenantRepository, storage ObjectStorage, bucket string) ReceiptService {
	return &receiptService{
		donationRepo: donationRepo,
		tenantRepo:   tenantRepo,
		storage:      storage,
		bucket:       bucket,
		now:          time.Now,
	}
}

func (s *receiptService) Render(ctx context.Context, tenantID, donationID uuid.UUID) (*ReceiptDocument, error) {
	donation, err := s.donationRepo.GetByID(ctx, tenantID, donationID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load mandir: %w", err)
	}

	content, err := renderReceiptPDF(tenant, donation)
	if err != nil {
		return nil, err
	}
	return &ReceiptDocument{
		FileName: donation.ReceiptNumber + ".pdf",
		Content:  content,
		Donation: donation,
	}, nil
}

func (s *receiptService) Publish(ctx context.Context, tenantID, donationID uuid.UUID) (*PublishedReceipt, error) {
	if s.storage == nil {
		return nil, common.NewError(common.ErrUnavailable, "Receipt storage is not configured")
	}

	doc, err := s.Render(ctx, tenantID, donationID)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("%s/%s", tenantID, doc.FileName)
	if err := s.storage.Upload(ctx, s.bucket, objectName, bytes.NewReader(doc.Content), int64(len(doc.Content)), "application/pdf"); err != nil {
		return nil, fmt.Errorf("upload receipt: %w", common.NewError(common.ErrUnavailable, "Receipt storage is unavailable"))
	}

	url, err := s.storage.PresignedURL(ctx, s.bucket, objectName, receiptLinkTTL)
	if err != nil {
		return nil, fmt.Errorf("presign receipt: %w", common.NewError(common.ErrUnavailable, "Receipt storage is unavailable"))
	}

	return &PublishedReceipt{
		ReceiptNumber: doc.Donation.ReceiptNumber,
		URL:           url,
		ExpiresAt:     s.now().Add(receiptLinkTTL),
	}, nil
}

// renderReceiptPDF lays out a single A4 receipt.
func renderReceiptPDF(tenant *models.Tenant, d *models.Donation) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	// Mandir header
	pdf.SetXY(marginX, marginY)
	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(128, 38, 0)
	pdf.CellFormat(0, 10, tr(tenant.Name), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(33, 37, 41)
	if tenant.Address != "" {
		pdf.CellFormat(0, 6, tr(tenant.Address), "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 6, tr("Phone: "+tenant.PhoneNumber), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "DONATION RECEIPT", "TB", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Receipt No", d.ReceiptNumber},
		{"Date", d.DonationDate.Format("02-Jan-2006")},
		{"Donor Name", d.DonorName},
		{"Address", d.Address},
		{"Phone", d.PhoneNumber},
		{"Donation Type", string(d.DonationType)},
		{"Amount", fmt.Sprintf("Rs. %.2f", d.Amount)},
		{"Payment Status", string(d.PaymentStatus)},
	}

	pdf.SetFillColor(245, 240, 230)
	for i, row := range rows {
		fill := i%2 == 0
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(50, 9, row[0], "1", 0, "L", fill, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 9, tr(row[1]), "1", 1, "L", fill, 0, "")
	}
	pdf.Ln(10)

	stamp := "PENDING"
	pdf.SetTextColor(200, 120, 0)
	if d.PaymentStatus == models.PaymentStatusReceived {
		stamp = "PAID"
		pdf.SetTextColor(0, 128, 0)
	}
	pdf.SetFont("Arial", "B", 24)
	pdf.CellFormat(0, 14, stamp, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetTextColor(33, 37, 41)
	pdf.SetFont("Arial", "I", 11)
	pdf.CellFormat(0, 7, "Thank you for your support!", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 7, "Mandir Administration", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
