package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"

	"github.com/farmanet/farmanet-api/internal/aging"
	"github.com/farmanet/farmanet-api/internal/config"
	"github.com/farmanet/farmanet-api/internal/models"
	"github.com/farmanet/farmanet-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

const appURL = "https://farmanet.app"

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

func (s *EmailService) SendAccountCreated(ctx context.Context, user *models.User) error {
	data := struct {
		Name   string
		AppURL string
	}{
		Name:   user.FullName,
		AppURL: appURL,
	}

	body, err := s.renderTemplate("account_created.html", data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{user.Email},
		Subject: "¡Bienvenido a FarmaNet!",
		Html:    body,
	}
	_, err = s.resendClient.Emails.Send(params)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", user.Email, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: ¡Bienvenido a FarmaNet!", user.Email))
	return nil
}

// DigestInvoiceData is a row in the payables digest email
type DigestInvoiceData struct {
	SupplierName  string
	InvoiceNumber string
	Remaining     string
	DueDate       string
	DaysOverdue   int
	Savings       string
}

// SendPayablesDigest emails one admin the overdue invoices plus the invoices
// whose pronto pago discount is still reachable.
func (s *EmailService) SendPayablesDigest(ctx context.Context, user *models.User, overdue, candidates []aging.InvoiceView) error {
	var overdueRows []DigestInvoiceData
	var totalOwed float64
	for _, inv := range overdue {
		row := DigestInvoiceData{
			SupplierName:  inv.SupplierName,
			InvoiceNumber: inv.InvoiceNumber,
			Remaining:     fmt.Sprintf("$%.2f", inv.AmountRemaining),
		}
		if inv.DueDate != nil {
			row.DueDate = inv.DueDate.Format("02/01/2006")
		}
		if inv.DaysRemaining != nil && *inv.DaysRemaining < 0 {
			row.DaysOverdue = -*inv.DaysRemaining
		}
		overdueRows = append(overdueRows, row)
		totalOwed += inv.AmountRemaining
	}

	var savingsRows []DigestInvoiceData
	var totalSavings float64
	for _, inv := range candidates {
		savingsRows = append(savingsRows, DigestInvoiceData{
			SupplierName:  inv.SupplierName,
			InvoiceNumber: inv.InvoiceNumber,
			Remaining:     fmt.Sprintf("$%.2f", inv.AmountRemaining),
			Savings:       fmt.Sprintf("$%.2f", inv.EarlySavings),
		})
		totalSavings += inv.EarlySavings
	}

	data := struct {
		Name         string
		Overdue      []DigestInvoiceData
		Candidates   []DigestInvoiceData
		TotalOwed    string
		TotalSavings string
		AppURL       string
	}{
		Name:         user.FullName,
		Overdue:      overdueRows,
		Candidates:   savingsRows,
		TotalOwed:    fmt.Sprintf("$%.2f", totalOwed),
		TotalSavings: fmt.Sprintf("$%.2f", totalSavings),
		AppURL:       appURL,
	}

	body, err := s.renderTemplate("payables_digest.html", data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{user.Email},
		Subject: fmt.Sprintf("Cuentas por Pagar: %d vencidas, %d con pronto pago", len(overdue), len(candidates)),
		Html:    body,
	}
	_, err = s.resendClient.Emails.Send(params)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", user.Email, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: Cuentas por Pagar (%d vencidas)", user.Email, len(overdue)))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
