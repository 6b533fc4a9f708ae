package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"templora/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendAssetPublishedEmail(ctx context.Context, toEmail, toName, assetTitle, assetSlug string) error {
	assetURL := fmt.Sprintf("%s/assets/%s", s.frontendURL, assetSlug)

	subject := fmt.Sprintf("%q is now live on Templora", assetTitle)
	htmlBody := buildAssetPublishedHTML(toName, assetTitle, assetURL)
	textBody := fmt.Sprintf("Hi %s,\n\nYour asset %q has been published and is now available to buyers:\n%s\n\nTemplora Team",
		toName, assetTitle, assetURL)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
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

func buildAssetPublishedHTML(toName, assetTitle, assetURL string) string {
	return fmt.Sprintf(`<html>
<body style="font-family: sans-serif; color: #2a2a2a;">
  <h2>Your asset is live</h2>
  <p>Hi %s,</p>
  <p>Your asset <strong>%s</strong> has been published and is now available to buyers.</p>
  <p><a href="%s" style="display:inline-block;padding:10px 20px;background:#5046e5;color:#fff;text-decoration:none;border-radius:6px;">View listing</a></p>
  <p>Templora Team</p>
</body>
</html>`, toName, assetTitle, assetURL)
}
