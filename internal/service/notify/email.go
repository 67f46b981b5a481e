package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planmoni/depositwatch/internal/logger"
)

const DefaultResendURL = "https://api.resend.com"

type EmailConfig struct {
	APIURL string
	APIKey string
	From   string
}

// EmailSender delivers transactional email through the Resend HTTP API
type EmailSender struct {
	apiURL string
	apiKey string
	from   string

	client *http.Client
	logger logger.Logger
}

func NewEmailSender(cfg EmailConfig, logger logger.Logger) *EmailSender {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultResendURL
	}

	return &EmailSender{
		apiURL: apiURL,
		apiKey: cfg.APIKey,
		from:   cfg.From,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// SendDeposit sends the funds-received email for one applied deposit
func (s *EmailSender) SendDeposit(ctx context.Context, to string, firstName string, amount decimal.Decimal, reference string) error {
	if firstName == "" {
		firstName = "User"
	}

	html, err := renderDepositEmail(depositEmailData{
		FirstName:     firstName,
		Amount:        "₦" + amount.StringFixed(2),
		AccountNumber: "Virtual Account",
		Date:          time.Now().Format("January 2, 2006 15:04"),
		Reference:     reference,
	})
	if err != nil {
		return fmt.Errorf("failed to render deposit email: %w", err)
	}

	payload := struct {
		From    string `json:"from"`
		To      string `json:"to"`
		Subject string `json:"subject"`
		HTML    string `json:"html"`
	}{
		From:    s.from,
		To:      to,
		Subject: "Funds Received - Planmoni",
		HTML:    html,
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return fmt.Errorf("failed to encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/emails", buf)
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("email delivery failed with status %d", resp.StatusCode)
	}

	return nil
}

type depositEmailData struct {
	FirstName     string
	Amount        string
	AccountNumber string
	Date          string
	Reference     string
}

var depositEmailTmpl = template.Must(template.New("deposit").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Funds Received - Planmoni</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #1E3A8A; color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
      <h1>Funds Received!</h1>
      <p>Hello {{.FirstName}}, money has been added to your Planmoni wallet</p>
    </div>
    <div style="background: #f9fafb; padding: 30px; border-radius: 0 0 10px 10px;">
      <div style="font-size: 32px; font-weight: bold; color: #059669; text-align: center; margin: 20px 0;">{{.Amount}}</div>
      <div style="background: white; padding: 20px; border-radius: 8px; margin: 20px 0;">
        <p><strong>Account Number:</strong> {{.AccountNumber}}</p>
        <p><strong>Date &amp; Time:</strong> {{.Date}}</p>
        <p><strong>Reference:</strong> {{.Reference}}</p>
      </div>
      <p style="color: #6b7280; font-size: 14px; text-align: center;">
        Your funds are now available in your wallet and ready to be used for your payout plans.
      </p>
    </div>
    <div style="text-align: center; margin-top: 30px; color: #6b7280; font-size: 14px;">
      <p>This is an automated notification from Planmoni</p>
      <p>If you didn't expect this transaction, please contact support immediately</p>
    </div>
  </div>
</body>
</html>
`))

func renderDepositEmail(data depositEmailData) (string, error) {
	buf := &bytes.Buffer{}
	if err := depositEmailTmpl.Execute(buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
