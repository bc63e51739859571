package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/saverana/donation-backend/configs"
	"github.com/saverana/donation-backend/database"
	"github.com/saverana/donation-backend/models"
	"github.com/saverana/donation-backend/notifications"
)

const receiptEmailSubject = "Donation Receipt - Save Rana National Trust"

// SendDonationReceipt runs the best-effort receipt pipeline for a completed
// donation: receipt row, PDF artifact, email, receipt_sent flag. Every step
// may fail without touching the donation's status; the cron sweep retries
// rows left with receipt_sent=false.
func SendDonationReceipt(donationID uuid.UUID) {
	if notifications.EmailClient == nil {
		log.Println("Email client not configured, leaving receipt for the retry sweep.")
		return
	}

	var donation models.Donation
	if err := database.DB.Preload("Donor").Where("id = ?", donationID).First(&donation).Error; err != nil {
		log.Printf("🔥 Receipt pipeline: failed to load donation %s: %v", donationID, err)
		return
	}
	if donation.Status != models.DonationCompleted || donation.ReceiptSent {
		return
	}

	receipt, err := findOrCreateReceipt(donation.ID)
	if err != nil {
		log.Printf("🔥 Receipt pipeline: failed to create receipt row for donation %s: %v", donationID, err)
		return
	}

	paymentID := ""
	if donation.RazorpayPaymentID != nil {
		paymentID = *donation.RazorpayPaymentID
	}

	html, err := renderReceiptHTML(donation.Donor.FullName, donation.Amount, donation.CreatedAt, paymentID, receipt.ReceiptNumber)
	if err != nil {
		log.Printf("🔥 Receipt pipeline: failed to render receipt HTML: %v", err)
		return
	}

	// PDF generation and upload are decorative next to the email; a missing
	// artifact still leaves a retriable receipt row.
	if config.Config("CLOUDINARY_URL") != "" {
		if pdf, err := renderReceiptPDF(html); err != nil {
			log.Printf("🔥 Receipt pipeline: PDF generation failed for donation %s: %v", donationID, err)
		} else if url, err := uploadReceiptPDF(pdf, donation.ID.String()); err != nil {
			log.Printf("🔥 Receipt pipeline: receipt upload failed for donation %s: %v", donationID, err)
		} else if err := database.DB.Model(&models.DonationReceipt{}).
			Where("id = ?", receipt.ID).Update("receipt_url", url).Error; err != nil {
			log.Printf("🔥 Receipt pipeline: failed to record receipt URL: %v", err)
		}
	}

	if err := notifications.SendEmail(donation.Donor.FullName, donation.Donor.Email, receiptEmailSubject, html); err != nil {
		// receipt_sent stays false; the sweep will try again.
		return
	}

	now := time.Now()
	if err := database.DB.Model(&models.DonationReceipt{}).
		Where("id = ?", receipt.ID).Update("sent_at", now).Error; err != nil {
		log.Printf("🔥 Receipt pipeline: failed to stamp receipt %s: %v", receipt.ReceiptNumber, err)
	}
	if err := database.DB.Model(&models.Donation{}).
		Where("id = ?", donation.ID).Update("receipt_sent", true).Error; err != nil {
		log.Printf("🔥 Receipt pipeline: failed to flag receipt_sent on donation %s: %v", donation.ID, err)
		return
	}

	log.Printf("✅ Receipt %s emailed for donation %s", receipt.ReceiptNumber, donation.ID)
}

func findOrCreateReceipt(donationID uuid.UUID) (*models.DonationReceipt, error) {
	var receipt models.DonationReceipt
	err := database.DB.Where("donation_id = ?", donationID).First(&receipt).Error
	if err == nil {
		return &receipt, nil
	}

	receipt = models.DonationReceipt{
		DonationID:    donationID,
		ReceiptNumber: generateReceiptNumber(),
	}
	if err := database.DB.Create(&receipt).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func generateReceiptNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
	return fmt.Sprintf("RCPT-%d-%s", time.Now().Year(), suffix)
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; }
    .header { background: #059669; color: white; padding: 20px; text-align: center; }
    .details { background: #f3f4f6; padding: 15px; border-radius: 5px; margin: 20px 0; }
    .amount { font-size: 24px; font-weight: bold; color: #10b981; }
    .footer { text-align: center; color: #666; font-size: 12px; margin-top: 20px; border-top: 1px solid #ddd; padding-top: 20px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Save Rana National Trust</h1>
      <p>Donation Receipt</p>
    </div>
    <p>Dear <strong>{{.DonorName}}</strong>,</p>
    <p>Thank you for your generous donation. Your support helps us protect endangered species and their habitats.</p>
    <div class="details">
      <p><strong>Receipt Number:</strong> {{.ReceiptNumber}}</p>
      <p><strong>Amount Donated:</strong> <span class="amount">₹{{.AmountRupees}}</span></p>
      <p><strong>Date:</strong> {{.Date}}</p>
      <p><strong>Transaction ID:</strong> {{.TransactionID}}</p>
    </div>
    <div class="footer">
      <p>This receipt was generated automatically. Please retain it for your records.</p>
    </div>
  </div>
</body>
</html>`))

func renderReceiptHTML(donorName string, amountPaise int64, date time.Time, transactionID, receiptNumber string) (string, error) {
	data := struct {
		DonorName     string
		AmountRupees  string
		Date          string
		TransactionID string
		ReceiptNumber string
	}{
		DonorName:     donorName,
		AmountRupees:  fmt.Sprintf("%.2f", float64(amountPaise)/100),
		Date:          date.Format("January 2, 2006"),
		TransactionID: transactionID,
		ReceiptNumber: receiptNumber,
	}

	var rendered bytes.Buffer
	if err := receiptTemplate.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func renderReceiptPDF(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, 30*time.Second)
	defer cancelTimeout()

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

func uploadReceiptPDF(fileBytes []byte, donationID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s", donationID),
		Folder:       "donation_receipts",
		ResourceType: "raw",
	})
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
