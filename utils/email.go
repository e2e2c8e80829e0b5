package utils

import (
	"fmt"

	"github.com/keighl/postmark"

	"jewellery-backend/models"
)

// EmailService sends transactional email through Postmark. A nil
// *EmailService is valid and sends nothing, so email stays optional in
// development.
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService returns an EmailService, or nil when no API token is
// configured.
func NewEmailService(apiToken, sender string) *EmailService {
	if apiToken == "" {
		return nil
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		sender: sender,
	}
}

// SendEmail sends a basic email to the specified recipient.
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if es == nil {
		return nil
	}
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendOrderConfirmation notifies the customer that their order was placed.
func (es *EmailService) SendOrderConfirmation(toEmail, name string, order *models.Order) error {
	subject := "Order Confirmation"
	content := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Total Amount: <strong>$%.2f</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		name,
		order.ID.Hex(),
		order.TotalPrice,
		order.PaymentMethod,
	)
	return es.SendEmail(toEmail, subject, content)
}

// SendOrderCancelled notifies the customer that their order was cancelled.
func (es *EmailService) SendOrderCancelled(toEmail, name string, order *models.Order) error {
	subject := "Order Cancelled"
	content := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your order (ID: %s) has been cancelled.<br>Reason: %s<br><br>If you did not request this, please contact support.",
		name,
		order.ID.Hex(),
		order.CancellationReason,
	)
	return es.SendEmail(toEmail, subject, content)
}

// SendQueryResponse notifies the customer that support replied to their
// query.
func (es *EmailService) SendQueryResponse(toEmail, name, querySubject, response string) error {
	subject := fmt.Sprintf("Re: %s", querySubject)
	content := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Our support team has responded to your query \"%s\":<br><br>%s",
		name,
		querySubject,
		response,
	)
	return es.SendEmail(toEmail, subject, content)
}
