package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	config "github.com/refferq/referral_api/configs"
	"github.com/rs/zerolog/log"
)

const defaultBrevoBaseURL = "https://api.brevo.com"

type BrevoService struct {
	SenderEmail string
	SenderName  string
	client      *resty.Client
}

var EmailClient *BrevoService

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func NewBrevoService(baseURL, apiKey, senderEmail, senderName string) *BrevoService {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("accept", "application/json").
		SetHeader("api-key", apiKey)
	return &BrevoService{SenderEmail: senderEmail, SenderName: senderName, client: client}
}

func InitEmailService() {
	apiKey := config.Config("BREVO_API_KEY")
	senderEmail := config.Config("EMAIL_SENDER")
	senderName := config.ConfigDefault("EMAIL_SENDER_NAME", "Refferq")

	if apiKey == "" || senderEmail == "" {
		log.Warn().Msg("⚠️ Email service not configured. Missing BREVO_API_KEY or EMAIL_SENDER.")
		EmailClient = nil
		return
	}

	EmailClient = NewBrevoService(config.ConfigDefault("BREVO_API_BASE_URL", defaultBrevoBaseURL), apiKey, senderEmail, senderName)
	log.Info().Str("sender", senderEmail).Msg("✅ Email service initialized successfully.")
}

func (s *BrevoService) Send(toEmail, toName, subject, htmlContent string) error {
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	resp, err := s.client.R().
		SetBody(brevoPayload{
			Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
			To:          []map[string]string{{"email": toEmail, "name": recipientName}},
			Subject:     subject,
			HTMLContent: htmlContent,
		}).
		Post("/v3/smtp/email")
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode() != 201 {
		return fmt.Errorf("failed to send email via Brevo: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// SendEmail is fire-and-forget; callers usually run it in a goroutine.
func SendEmail(toName, toEmail, subject, htmlContent string) {
	if EmailClient == nil {
		log.Debug().Str("to", toEmail).Msg("Email client not initialized, skipping email send.")
		return
	}

	if err := EmailClient.Send(toEmail, toName, subject, htmlContent); err != nil {
		log.Error().Err(err).Str("to", toEmail).Msg("🔥 Failed to send email")
		return
	}

	log.Info().Str("to", toEmail).Str("subject", subject).Msg("✅ Email sent")
}
