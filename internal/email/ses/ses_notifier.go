package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/google/uuid"

	"shipdraft/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	consoleURL  string
	recipients  []string
}

// NewSESNotifier creates a new SES-backed BatchNotifier.
func NewSESNotifier(region, fromAddress, fromName, consoleURL string, recipients []string) (port.BatchNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesNotifier{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		consoleURL:  consoleURL,
		recipients:  recipients,
	}, nil
}

func (s *sesNotifier) NotifyBatchComplete(ctx context.Context, batchID uuid.UUID, shipmentsFound int) error {
	reviewURL := fmt.Sprintf("%s/batches/%s", s.consoleURL, batchID)

	subject := fmt.Sprintf("Batch %s finished: %d shipment(s) ready for review", shortID(batchID), shipmentsFound)
	htmlBody := buildCompleteHTML(batchID, shipmentsFound, reviewURL)
	textBody := fmt.Sprintf(
		"Batch %s finished processing.\n\n%d shipment draft(s) are ready for review:\n%s\n",
		batchID, shipmentsFound, reviewURL)

	return s.send(ctx, subject, htmlBody, textBody)
}

func (s *sesNotifier) NotifyBatchFailed(ctx context.Context, batchID uuid.UUID, reason string) error {
	reviewURL := fmt.Sprintf("%s/batches/%s", s.consoleURL, batchID)

	subject := fmt.Sprintf("Batch %s failed", shortID(batchID))
	htmlBody := buildFailedHTML(batchID, reason, reviewURL)
	textBody := fmt.Sprintf(
		"Batch %s failed during processing.\n\nReason: %s\n\nDetails:\n%s\n",
		batchID, reason, reviewURL)

	return s.send(ctx, subject, htmlBody, textBody)
}

func (s *sesNotifier) send(ctx context.Context, subject, htmlBody, textBody string) error {
	if len(s.recipients) == 0 {
		return nil
	}

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: s.recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func buildCompleteHTML(batchID uuid.UUID, shipmentsFound int, reviewURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Batch processing complete</h2>
  <p>Batch <code>%s</code> finished processing.</p>
  <p><strong>%d</strong> shipment draft(s) are ready for review.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Review Drafts</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">ShipDraft - Shipment Draft Review</p>
</body>
</html>`, batchID, shipmentsFound, reviewURL)
}

func buildFailedHTML(batchID uuid.UUID, reason, reviewURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #B91C1C;">Batch processing failed</h2>
  <p>Batch <code>%s</code> failed during processing.</p>
  <p><strong>Reason:</strong> %s</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Details</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">ShipDraft - Shipment Draft Review</p>
</body>
</html>`, batchID, reason, reviewURL)
}
