package port

import "context"

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendAssetPublishedEmail(ctx context.Context, toEmail, toName, assetTitle, assetSlug string) error
}
