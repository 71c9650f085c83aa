package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultResendURL = "https://api.resend.com/emails"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// Mailer delivers contact form messages through the Resend API.
type Mailer struct {
	apiKey     string
	from       string
	recipients []string
	endpoint   string
	client     *http.Client
	logger     zerolog.Logger
}

// NewMailer reads its settings from cfg:
//   - RESEND_API_KEY: Your Resend API key
//   - RESEND_FROM_EMAIL: The sender address (e.g., "Portfolio <contact@example.com>")
//   - CONTACT_RECIPIENT: Comma separated addresses receiving contact messages
//   - RESEND_API_URL: Optional override of the Resend endpoint
func NewMailer(cfg map[string]string) *Mailer {
	return &Mailer{
		apiKey:     config.GetString(cfg, "RESEND_API_KEY", ""),
		from:       config.GetString(cfg, "RESEND_FROM_EMAIL", ""),
		recipients: config.GetList(cfg, "CONTACT_RECIPIENT"),
		endpoint:   config.GetString(cfg, "RESEND_API_URL", defaultResendURL),
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     log.With().Str("component", "mailer").Logger(),
	}
}

// SendContact forwards a contact form submission to the site owner. The
// sender's address is set as reply-to.
func (m *Mailer) SendContact(ctx context.Context, msg models.ContactMessage) error {
	subject := fmt.Sprintf("Portfolio contact from %s", msg.Name)
	body := fmt.Sprintf("<p><strong>%s</strong> &lt;%s&gt; wrote:</p><p>%s</p>",
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
		strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br>"),
	)
	return m.SendEmail(ctx, subject, body, msg.Email)
}

// SendEmail sends an HTML email to the configured recipients.
func (m *Mailer) SendEmail(ctx context.Context, subject, body, replyTo string) error {
	if m.apiKey == "" {
		return errs.NewConfigMissingError("RESEND_API_KEY")
	}
	if m.from == "" {
		return errs.NewConfigMissingError("RESEND_FROM_EMAIL")
	}
	if len(m.recipients) == 0 {
		return errs.NewConfigMissingError("CONTACT_RECIPIENT")
	}

	payload := ResendEmailRequest{
		From:    m.from,
		To:      m.recipients,
		Subject: subject,
		Html:    body,
		ReplyTo: replyTo,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return errs.NewServiceUnreachableError("resend", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return errs.NewServiceUnreachableError("resend",
				fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message))
		}
		return errs.NewServiceUnreachableError("resend",
			fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes)))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		m.logger.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}

	return nil
}
